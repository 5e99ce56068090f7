//go:build linux

package muxclient

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tenexmux/internal/mux/endpoint"
)

// runningMuxSockets scans /proc for processes whose command line contains
// the arg "muxd" and whose environment carries a non-empty
// TENEX_MUX_SOCKET, returning each such socket's display value (§4.9
// Cross-generation discovery, step 3).
func runningMuxSockets() []string {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil
	}

	var sockets []string
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		if !hasMuxdArg(pid) {
			continue
		}
		if sock := socketFromEnviron(pid); sock != "" {
			sockets = append(sockets, sock)
		}
	}
	return sockets
}

func hasMuxdArg(pid int) bool {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "cmdline"))
	if err != nil {
		return false
	}
	for _, arg := range bytes.Split(data, []byte{0}) {
		if string(arg) == "muxd" {
			return true
		}
	}
	return false
}

func socketFromEnviron(pid int) string {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "environ"))
	if err != nil {
		return ""
	}
	for _, kv := range bytes.Split(data, []byte{0}) {
		s := string(kv)
		if val, ok := strings.CutPrefix(s, endpoint.EnvOverride+"="); ok && val != "" {
			return val
		}
	}
	return ""
}
