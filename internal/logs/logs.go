package logs

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide structured logger.
var Logger = logrus.New()

type Options struct {
	Level  string // trace|debug|info|warn|error
	Format string // text|json
	File   string // optional, mirrors output to a file
}

func Init(o Options) {
	lvl, err := logrus.ParseLevel(o.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	if o.Format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Logger.SetOutput(os.Stderr)
	if o.File != "" {
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			Logger.Warnf("log file %s: %v, keeping stderr only", o.File, err)
			return
		}
		Logger.SetOutput(io.MultiWriter(os.Stderr, f))
	}
}
