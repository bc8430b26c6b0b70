package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/pimirror/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		daemonize   bool
		source      int
		destination int
		fps         int
		pidfile     string
		capture     string
		once        bool
		verbose     bool
		configPath  string
	}
	logger   *slog.Logger
	logLevel = new(slog.LevelVar)
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pimirror",
	Short: "Display mirroring daemon for the Raspberry Pi",
	Long: `pimirror copies the contents of one display onto another at a fixed
frame rate, for example the primary screen onto a small SPI or DSI
framebuffer panel.

Running pimirror without a subcommand starts the mirror loop. Use
--daemon to detach into the background.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if !globalOpts.verbose {
			logLevel.Set(cfg.LogLevel())
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMirror(cmd, args)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/pimirror/config.toml)")

	addMirrorFlags(rootCmd.Flags())
}

// addMirrorFlags registers the mirror options. The flag set writes into
// globalOpts; applyFlags decides which values actually override the
// config file.
func addMirrorFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&globalOpts.daemonize, "daemon", "D", false,
		"Start in the background as a daemon")
	flags.IntVarP(&globalOpts.source, "source", "s", config.DefaultSourceDisplay,
		"Source display number")
	flags.IntVarP(&globalOpts.destination, "destination", "d", config.DefaultFramebuffer,
		"Destination framebuffer number")
	flags.IntVarP(&globalOpts.fps, "fps", "f", config.DefaultFPS,
		"Desired frames per second")
	flags.StringVarP(&globalOpts.pidfile, "pidfile", "p", "",
		"Create and lock a PID file at this path")
	flags.StringVar(&globalOpts.capture, "capture", "",
		"Capture backend (auto, screen or fb)")
	flags.BoolVar(&globalOpts.once, "once", false,
		"Copy a single frame and exit")
}

// applyFlags overlays explicitly set command line flags onto the config.
// A flag left at its default does not override the config file value.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("source") {
		cfg.Source.Display = globalOpts.source
	}
	if flags.Changed("destination") {
		cfg.Output.Framebuffer = globalOpts.destination
	}
	if flags.Changed("fps") {
		cfg.Output.FPS = globalOpts.fps
	}
	if flags.Changed("pidfile") {
		cfg.Daemon.PIDFile = globalOpts.pidfile
	}
	if flags.Changed("capture") {
		cfg.Source.Backend = globalOpts.capture
	}

	cfg.Normalize()
	return cfg.Validate()
}

// setupLogger configures the global slog logger.
func setupLogger() {
	logLevel.Set(slog.LevelInfo)
	if globalOpts.verbose {
		logLevel.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
