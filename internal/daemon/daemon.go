package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonEnv marks the re-executed child so it does not detach again.
const daemonEnv = "PIMIRROR_DAEMON"

// IsDaemon reports whether this process is the detached child.
func IsDaemon() bool {
	return os.Getenv(daemonEnv) == "1"
}

// Daemonize detaches the current invocation from the terminal by
// re-executing it in a new session with stdio closed and the working
// directory moved to /. The parent exits once the child has started;
// in the child Daemonize returns immediately.
func Daemonize() error {
	if IsDaemon() {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonEnv+"=1")
	cmd.Dir = "/"
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // New session, no controlling terminal
	}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// Parent is done, the daemon carries on
	os.Exit(0)
	return nil
}
