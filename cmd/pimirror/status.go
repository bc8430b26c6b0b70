package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pimirror/internal/daemon"
)

var statusOpts struct {
	pidfile string
	jsonOut bool
}

// daemonStatus is the JSON shape of the status command output.
type daemonStatus struct {
	Running    bool    `json:"running"`
	PID        int     `json:"pid,omitempty"`
	PIDFile    string  `json:"pidfile"`
	CPUPercent float64 `json:"cpu_percent,omitempty"`
	RSSBytes   uint64  `json:"rss_bytes,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a pimirror daemon is running",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.pidfile, "pidfile", "p", "",
		"PID file to check")
	statusCmd.Flags().BoolVar(&statusOpts.jsonOut, "json", false,
		"Output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	path := daemonPIDPath(statusOpts.pidfile)

	pid, running := daemon.Running(path)
	st := daemonStatus{Running: running, PID: pid, PIDFile: path}

	if running {
		// Resource usage is best effort, a failed reading just leaves
		// the fields empty
		if proc, err := process.NewProcess(int32(pid)); err == nil {
			if cpu, err := proc.CPUPercent(); err == nil {
				st.CPUPercent = cpu
			}
			if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
				st.RSSBytes = mem.RSS
			}
		}
	}

	if statusOpts.jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		return encoder.Encode(st)
	}

	if !st.Running {
		fmt.Println("pimirror is not running")
		return nil
	}

	fmt.Printf("pimirror is running (pid %d)\n", st.PID)
	if st.RSSBytes > 0 {
		fmt.Printf("  cpu: %.1f%%  rss: %s\n", st.CPUPercent, humanize.IBytes(st.RSSBytes))
	}
	return nil
}

// daemonPIDPath resolves which pid file the status and stop commands
// inspect: the flag, then the config file, then the default location.
func daemonPIDPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.Daemon.PIDFile != "" {
		return cfg.Daemon.PIDFile
	}
	return daemon.DefaultPIDFilePath()
}
