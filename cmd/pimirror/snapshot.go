package main

import (
	"crypto/rand"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pimirror/internal/capture"
	"github.com/jmylchreest/pimirror/internal/config"
)

var snapshotOpts struct {
	output  string
	source  int
	backend string
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture one frame from the source display to a PNG file",
	Long: `Capture a single frame from the configured source display and write
it out as a PNG. The output path defaults to a generated filename in
the current directory.`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotOpts.output, "output", "o", "",
		"Output file (default: pimirror-<id>.png)")
	snapshotCmd.Flags().IntVarP(&snapshotOpts.source, "source", "s", config.DefaultSourceDisplay,
		"Source display number")
	snapshotCmd.Flags().StringVar(&snapshotOpts.backend, "capture", "",
		"Capture backend (auto, screen or fb)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	displayNumber := cfg.Source.Display
	if cmd.Flags().Changed("source") {
		displayNumber = snapshotOpts.source
	}
	backend := cfg.Source.Backend
	if cmd.Flags().Changed("capture") {
		backend = snapshotOpts.backend
	}

	source, err := capture.New(capture.Backend(backend), displayNumber)
	if err != nil {
		return err
	}
	defer source.Close()

	frame, err := source.Capture()
	if err != nil {
		return err
	}

	path := snapshotOpts.output
	if path == "" {
		id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
		if err != nil {
			return fmt.Errorf("failed to generate snapshot id: %w", err)
		}
		path = fmt.Sprintf("pimirror-%s.png", id.String())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, frame); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	fmt.Println(path)
	return nil
}
