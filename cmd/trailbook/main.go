package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/trailbook/internal/config"
	"github.com/claude/trailbook/internal/controller"
	"github.com/claude/trailbook/internal/live"
	"github.com/claude/trailbook/internal/mcp"
	"github.com/claude/trailbook/internal/models"
	"github.com/claude/trailbook/internal/server"
	"github.com/claude/trailbook/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("trailbook starting", "version", Version, "storage", cfg.Storage.Driver)

	// Open storage
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN())
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	log.Info("storage connected")

	hub := live.NewHub(64)
	ctrl := controller.New(controller.Options{
		Persister:        storage.NewPersister(kv, cfg.Storage.Key),
		Map:              hub,
		View:             hub,
		Alerter:          hub,
		Log:              log,
		Zoom:             cfg.Map.Zoom,
		FormRestoreDelay: cfg.Map.FormRestoreDelay(),
	})

	// Corrupt data starts an empty log; anything else is fatal.
	if err := ctrl.Start(ctx); err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			log.Error("failed to load workouts", "error", err)
			os.Exit(1)
		}
		log.Warn("stored workouts are unreadable, starting empty", "error", err)
	}

	// A fixed location stands in for the browser's geolocation.
	if cfg.Location.Fixed() {
		ctrl.Locate(ctx, controller.StaticLocator{
			Coords: models.Coords{Lat: *cfg.Location.Latitude, Lng: *cfg.Location.Longitude},
			Set:    true,
		})
	}

	srv := server.New(ctrl, hub, cfg.Auth.APIKey, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcp.New(mcp.Local{Ctrl: ctrl}, Version, log)))

	// Listen on the tailnet or plain TCP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
