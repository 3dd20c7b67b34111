package main

import (
	"flag"
	"log"

	"wrtcloud/config"
	"wrtcloud/server"
)

// AppVersion is set at build time via -ldflags.
var AppVersion = "dev"

func main() {
	cfgPath := flag.String("config", "", "path to config file (default: ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log.Printf("wrtcloud %s starting", AppVersion)

	app := &server.App{}
	app.Initialize(cfg)
	if err := app.Run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
