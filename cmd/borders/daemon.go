package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/borders/internal/config"
	"github.com/1broseidon/borders/internal/daemon"
	"github.com/1broseidon/borders/internal/ipc"
	"github.com/1broseidon/borders/internal/lockfile"
	"github.com/1broseidon/borders/internal/platform"
	"github.com/1broseidon/borders/internal/runtimepath"
	"github.com/1broseidon/borders/internal/tracker"
	"github.com/1broseidon/borders/internal/x11"
)

func runDaemon(lock *lockfile.Lock, tokens []string) {
	defer lock.Release()

	cfgPath := config.DefaultConfigPath()
	cfg, err := config.LoadFromPath(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	settings := cfg.Settings
	settings.Apply(tokens, logger)

	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	backend := platform.NewLinuxBackend(conn)
	defer backend.Disconnect()

	loop := daemon.NewLoop(logger)
	d := daemon.New(backend, settings, loop, logger)

	windows := tracker.New(conn, d.Borders(), logger)
	if err := windows.Start(); err != nil {
		log.Fatalf("Failed to track windows: %v", err)
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		log.Fatalf("Failed to resolve IPC socket path: %v", err)
	}
	ipcServer := ipc.NewServer(socketPath, d.HandleUpdate, logger)
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ReconcileInterval > 0 {
		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: cfg.ReconcileInterval,
			Logger:   logger,
		}, loop, d.Borders(), windows.ListWindows)
		go reconciler.Run(ctx)
	}

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					logger.Info("received SIGHUP, reloading config", "path", cfgPath)
					newCfg, err := config.LoadFromPath(cfgPath)
					if err != nil {
						logger.Error("config reload failed", "error", err)
						continue
					}
					loop.Post(func() { d.Replace(newCfg.Settings) })
				default:
					logger.Info("shutting down", "signal", sig.String())
					cancel()
					return
				}
			}
		}
	}()

	logger.Info("borders started", "settings", d.Settings().String(), "socket", socketPath)

	before, after, quit := conn.MainPing()
	err = loop.Run(ctx, daemon.XEvents{Before: before, After: after, Quit: quit})
	if errors.Is(err, daemon.ErrDisplayClosed) {
		logger.Error("display connection closed")
	}

	// The X event goroutine is parked on its next ping, so border teardown
	// cannot race with callbacks.
	ipcServer.Stop()
	d.Shutdown()
}
