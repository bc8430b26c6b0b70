package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pimirror/internal/capture"
	"github.com/jmylchreest/pimirror/internal/config"
	"github.com/jmylchreest/pimirror/internal/daemon"
	"github.com/jmylchreest/pimirror/internal/fbdev"
	"github.com/jmylchreest/pimirror/internal/mirror"
	"github.com/jmylchreest/pimirror/internal/scale"
)

// runMirror runs the mirror loop, in the foreground or detached into
// the background with --daemon.
func runMirror(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	pidPath := cfg.Daemon.PIDFile
	if globalOpts.daemonize && pidPath == "" {
		pidPath = daemon.DefaultPIDFilePath()
	}

	// The launching process checks for a live instance and detaches.
	// The detached child comes back through here with IsDaemon set.
	if globalOpts.daemonize && !daemon.IsDaemon() {
		if pid, running := daemon.Running(pidPath); running {
			return &daemon.AlreadyRunningError{PID: pid}
		}
		return daemon.Daemonize()
	}

	if pidPath != "" {
		pidFile, err := daemon.OpenPIDFile(pidPath)
		if err != nil {
			return err
		}
		defer pidFile.Remove()

		if err := pidFile.Write(); err != nil {
			return fmt.Errorf("failed to write pid file: %w", err)
		}
	}

	// A daemon has no terminal, so it logs through syslog instead
	if daemon.IsDaemon() {
		handler, err := daemon.NewSyslogHandler("pimirror", logLevel.Level())
		if err != nil {
			return err
		}
		logger = slog.New(handler)
		slog.SetDefault(logger)
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	source, err := capture.New(capture.Backend(cfg.Source.Backend), cfg.Source.Display)
	if err != nil {
		logger.Error("failed to open source display", "error", err)
		return err
	}
	defer source.Close()

	dest, err := fbdev.Open(cfg.Output.Framebuffer)
	if err != nil {
		logger.Error("failed to open destination display", "error", err)
		return err
	}
	defer dest.Close()

	engine, err := mirror.NewEngine(source, dest, mirror.Options{
		Scaler:  scale.New(scale.Filter(cfg.Output.ScaleFilter)),
		Limiter: mirror.NewLimiter(cfg.Output.FPS),
		Stats:   mirror.NewCollector(),
		Logger:  logger,
		Once:    globalOpts.once,
	})
	if err != nil {
		return err
	}

	var reporter *mirror.Reporter
	if cfg.Stats.Enabled && !globalOpts.once {
		reporter = mirror.NewReporter(engine.Stats(), engine.Limiter(), cfg.Stats.Interval.Duration(), logger)
		if err := reporter.Start(ctx); err != nil {
			logger.Warn("failed to start stats reporter", "error", err)
		} else {
			defer reporter.Stop()
		}
	}

	if !globalOpts.once {
		watcher, err := daemon.NewConfigWatcher(globalOpts.configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			watcher.SetReloadCallback(func(newConfig *config.Config) {
				engine.UpdateConfig(newConfig)
				if reporter != nil {
					reporter.SetInterval(newConfig.Stats.Interval.Duration())
				}
			})
			if err := watcher.Start(ctx, cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
			defer watcher.Stop()
		}
	}

	if err := engine.Run(ctx); err != nil {
		logger.Error("mirror failed", "error", err)
		return err
	}

	totals := engine.Stats().Totals()
	logger.Info("exiting",
		"uptime", totals.Elapsed.Round(time.Second).String(),
		"frames", totals.Frames,
		"copied", humanize.IBytes(totals.Bytes),
		"fps", fmt.Sprintf("%.1f", totals.AverageRate()))

	return nil
}
