package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/trailbook/internal/config"
	"github.com/claude/trailbook/internal/export"
	"github.com/claude/trailbook/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outPath := flag.String("out", "", "GPX file to write (required, - for stdout)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *outPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: trailbook-export -config config.yaml -out workouts.gpx\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	kv, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN())
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	workouts, err := storage.NewPersister(kv, cfg.Storage.Key).LoadAll(ctx)
	if err != nil {
		log.Error("failed to load workouts", "error", err)
		os.Exit(1)
	}

	data, err := export.GPX(workouts, "trailbook-export")
	if err != nil {
		log.Error("failed to build GPX", "error", err)
		os.Exit(1)
	}

	if *outPath == "-" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(*outPath, data, 0644)
	}
	if err != nil {
		log.Error("failed to write GPX", "path", *outPath, "error", err)
		os.Exit(1)
	}
	log.Info("export complete", "workouts", len(workouts), "path", *outPath)
}
