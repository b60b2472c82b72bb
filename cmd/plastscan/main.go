package main

import (
	"context"
	"io"
	"log"
	"os"

	"plastscan/internal/config"
	"plastscan/internal/http/handlers"
	"plastscan/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	deps, err := handlers.NewDeps(context.Background(), db, cfg)
	if err != nil {
		log.Fatal(err)
	}
	app := handlers.NewApp(deps, cfg)

	log.Printf("[http] listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
