// Package daemon provides background operation for pimirror.
// It covers detaching from the terminal, pid file handling, syslog
// logging and configuration hot reload.
package daemon
