package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pimirror/internal/daemon"
)

var stopOpts struct {
	pidfile string
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running pimirror daemon",
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)

	stopCmd.Flags().StringVarP(&stopOpts.pidfile, "pidfile", "p", "",
		"PID file of the daemon to stop")
}

func runStop(cmd *cobra.Command, args []string) error {
	path := daemonPIDPath(stopOpts.pidfile)

	pid, err := daemon.Stop(path)
	if err != nil {
		return fmt.Errorf("failed to stop pimirror: %w", err)
	}

	fmt.Printf("sent SIGTERM to pimirror (pid %d)\n", pid)
	return nil
}
