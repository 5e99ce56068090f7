//go:build !linux

package muxclient

import "syscall"

// detachedProcAttr is a no-op on platforms where process-group isolation
// for Ctrl-C is not part of this spec's scope (§4.9 only promises it on
// Linux).
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}
