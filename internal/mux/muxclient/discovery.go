package muxclient

import (
	"net"
	"time"

	"tenexmux/internal/mux/endpoint"
	"tenexmux/internal/mux/framing"
	"tenexmux/internal/mux/protocol"
)

// probeTimeout bounds each discovery candidate's connect+ListSessions
// round trip so a dead or hung candidate doesn't stall discovery.
const probeTimeout = 500 * time.Millisecond

// DiscoverSocket probes candidate daemon sockets in the order required by
// §4.9: the preferred socket (if non-empty), the default endpoint, then
// every running muxd process discovered via /proc (Linux only; empty
// elsewhere). It returns the display form of the candidate with the
// highest ListSessions match count against wanted, ties broken by that
// order. ok is false if no candidate had any match.
func DiscoverSocket(wanted map[string]bool, preferredSocket string) (socket string, ok bool) {
	var candidates []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		candidates = append(candidates, s)
	}

	add(preferredSocket)
	if def, err := endpoint.Resolve(); err == nil {
		add(def.Name)
	}
	for _, s := range runningMuxSockets() {
		add(s)
	}

	bestCount := 0
	var best string
	for _, candidate := range candidates {
		count := probeMatches(candidate, wanted)
		if count > bestCount {
			bestCount = count
			best = candidate
		}
	}
	if bestCount == 0 {
		return "", false
	}
	return best, true
}

// probeMatches connects to socket, sends ListSessions, and counts how many
// returned names are in wanted. Any failure counts as zero matches.
func probeMatches(socket string, wanted map[string]bool) int {
	conn, err := net.DialTimeout("unix", socket, probeTimeout)
	if err != nil {
		return 0
	}
	defer conn.Close()

	deadline := time.Now().Add(probeTimeout)
	req := protocol.Request{Type: protocol.ReqListSessions}
	if err := framing.WriteDeadline(conn, req, deadline); err != nil {
		return 0
	}
	var resp protocol.Response
	if err := framing.ReadDeadline(conn, &resp, deadline); err != nil {
		return 0
	}
	if resp.Type != protocol.RespSessions {
		return 0
	}
	count := 0
	for _, s := range resp.Sessions {
		if wanted[s.Name] {
			count++
		}
	}
	return count
}
