//go:build !linux

package muxclient

// runningMuxSockets is empty on platforms without /proc-style process
// introspection (§4.9 Cross-generation discovery, step 3).
func runningMuxSockets() []string {
	return nil
}
