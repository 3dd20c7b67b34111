package audit

import (
	"strings"

	"wrtcloud/internal/logs"
	"wrtcloud/internal/models"

	"github.com/nicholas-fedor/shoutrrr"
	"gorm.io/gorm"
)

// Severity levels recorded in the audit trail.
const (
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
	SeverityDebug   = "DEBUG"
)

// Sender abstracts notification dispatch so the logger can be tested
// without hitting real services.
type Sender interface {
	Send(url, message string) error
}

type shoutrrrSender struct{}

func (shoutrrrSender) Send(url, message string) error {
	return shoutrrr.Send(url, message)
}

// Logger records audit entries best-effort: a DB row when a DB is
// configured, a mirror to the process log, and ERROR fan-out to the
// configured notify URLs. Failures inside the audit path are swallowed and
// never change the outcome of the request being audited.
type Logger struct {
	db     *gorm.DB
	urls   []string
	sender Sender
}

func New(db *gorm.DB, urls []string) *Logger {
	return &Logger{db: db, urls: urls, sender: shoutrrrSender{}}
}

// NewWithSender is for tests and alternative dispatchers.
func NewWithSender(db *gorm.DB, urls []string, s Sender) *Logger {
	if s == nil {
		s = shoutrrrSender{}
	}
	return &Logger{db: db, urls: urls, sender: s}
}

func (l *Logger) Error(msg string)   { l.log(SeverityError, msg, "", "") }
func (l *Logger) Warning(msg string) { l.log(SeverityWarning, msg, "", "") }
func (l *Logger) Debug(msg string)   { l.log(SeverityDebug, msg, "", "") }

func (l *Logger) DeviceError(msg, mac string)   { l.log(SeverityError, msg, mac, "") }
func (l *Logger) DeviceWarning(msg, mac string) { l.log(SeverityWarning, msg, mac, "") }
func (l *Logger) DeviceDebug(msg, mac string)   { l.log(SeverityDebug, msg, mac, "") }

func (l *Logger) UserError(msg, user string)   { l.log(SeverityError, msg, "", user) }
func (l *Logger) UserWarning(msg, user string) { l.log(SeverityWarning, msg, "", user) }
func (l *Logger) UserDebug(msg, user string)   { l.log(SeverityDebug, msg, "", user) }

func (l *Logger) log(severity, msg, mac, user string) {
	if l.db != nil {
		entry := models.AuditEntry{Severity: severity, Message: msg, DeviceMAC: mac, User: user}
		if err := l.db.Create(&entry).Error; err != nil {
			logs.Logger.Errorf("audit: db write failed: %v", err)
		}
	}

	var b strings.Builder
	b.WriteString("[audit]")
	if user != "" {
		b.WriteString("[" + user + "]")
	}
	if mac != "" {
		b.WriteString("[" + mac + "]")
	}
	b.WriteString(": " + msg)
	line := b.String()

	switch severity {
	case SeverityError:
		logs.Logger.Error(line)
	case SeverityWarning:
		logs.Logger.Warn(line)
	case SeverityDebug:
		logs.Logger.Debug(line)
	default:
		logs.Logger.Info(line)
	}

	if severity == SeverityError {
		for _, u := range l.urls {
			if err := l.sender.Send(u, line); err != nil {
				logs.Logger.Warnf("audit: notify failed: %v", err)
			}
		}
	}
}
