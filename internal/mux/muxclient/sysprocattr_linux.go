//go:build linux

package muxclient

import "syscall"

// detachedProcAttr puts the spawned daemon in a new process group so a
// Ctrl-C delivered to the caller's foreground process group does not also
// kill the daemon (§4.9).
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
