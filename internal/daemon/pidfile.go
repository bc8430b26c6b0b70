package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// AlreadyRunningError reports that another instance holds the pid file.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("pimirror is already running (pid %d)", e.PID)
	}
	return "pimirror is already running"
}

// PIDFile is an exclusively held pid file. The file stays flocked for
// the lifetime of the process, so a second instance can tell a live
// daemon from a stale file left behind by a crash.
type PIDFile struct {
	path string
	file *os.File
}

// DefaultPIDFilePath returns where the pid file lives when no path is
// configured: the user runtime dir when available, /run for root, and
// the user cache dir otherwise.
func DefaultPIDFilePath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "pimirror.pid")
	}
	if os.Geteuid() == 0 {
		return "/run/pimirror.pid"
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "pimirror", "pimirror.pid")
	}
	return filepath.Join(os.TempDir(), "pimirror.pid")
}

// OpenPIDFile creates or takes over the pid file at path and locks it.
// A live holder produces an AlreadyRunningError carrying its pid. The
// current pid is not recorded until Write is called, leaving room to
// daemonize between the two.
func OpenPIDFile(path string) (*PIDFile, error) {
	if path == "" {
		path = DefaultPIDFilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create pid file directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open pid file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		pid := readPIDFrom(file)
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, &AlreadyRunningError{PID: pid}
		}
		return nil, fmt.Errorf("failed to lock pid file: %w", err)
	}

	return &PIDFile{path: path, file: file}, nil
}

// Write records the current pid in the locked file.
func (p *PIDFile) Write() error {
	if err := p.file.Truncate(0); err != nil {
		return err
	}
	if _, err := p.file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return err
	}
	return p.file.Sync()
}

// Path returns the pid file location.
func (p *PIDFile) Path() string {
	return p.path
}

// Remove drops the lock and deletes the pid file.
func (p *PIDFile) Remove() error {
	if p.file == nil {
		return nil
	}
	p.file.Close()
	p.file = nil
	return os.Remove(p.path)
}

// readPIDFrom parses the pid recorded in an open pid file.
func readPIDFrom(file *os.File) int {
	buf := make([]byte, 32)
	n, _ := file.ReadAt(buf, 0)
	if n == 0 {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(buf[:n])))
	if err != nil {
		return 0
	}
	return pid
}

// ReadPID reads the pid recorded at path.
func ReadPID(path string) (int, error) {
	if path == "" {
		path = DefaultPIDFilePath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", path, err)
	}
	return pid, nil
}

// IsProcessRunning tries to detect if a pid refers to a running process.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// Running reports whether the instance recorded at path is alive,
// returning the recorded pid either way.
func Running(path string) (int, bool) {
	pid, err := ReadPID(path)
	if err != nil {
		return 0, false
	}
	return pid, IsProcessRunning(pid)
}

// Stop sends SIGTERM to the instance recorded at path.
func Stop(path string) (int, error) {
	pid, err := ReadPID(path)
	if err != nil {
		return 0, err
	}
	if !IsProcessRunning(pid) {
		return pid, errors.New("process not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, err
	}
	return pid, nil
}
