package protocol

import (
	"encoding/json"
	"reflect"
	"testing"

	"tenexmux/internal/mux/muxerr"
)

func TestParseTargetSessionOnly(t *testing.T) {
	target, err := ParseTarget("s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Session != "s1" || target.WindowIndex != 0 {
		t.Fatalf("got %+v", target)
	}
}

func TestParseTargetSessionAndIndex(t *testing.T) {
	target, err := ParseTarget("s1:3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Session != "s1" || target.WindowIndex != 3 {
		t.Fatalf("got %+v", target)
	}
}

func TestParseTargetRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", ":3", "s1:", "s1:x", "s1:-1", "s1:2:3"} {
		if _, err := ParseTarget(bad); err == nil {
			t.Fatalf("target %q: expected error, got none", bad)
		} else if muxerr.KindOf(err) != muxerr.InvalidTarget {
			t.Fatalf("target %q: expected InvalidTarget, got %v", bad, muxerr.KindOf(err))
		}
	}
}

func TestWindowTargetStringRoundTrip(t *testing.T) {
	cases := []WindowTarget{
		{Session: "s1", WindowIndex: 0},
		{Session: "s1", WindowIndex: 2},
	}
	for _, c := range cases {
		parsed, err := ParseTarget(c.String())
		if err != nil {
			t.Fatalf("%+v: %v", c, err)
		}
		if parsed != c {
			t.Fatalf("round trip mismatch: %+v != %+v", parsed, c)
		}
	}
}

// Encoding then decoding any request or response with framing is the
// identity (§8 round-trip property), exercised here at the JSON layer that
// framing wraps.
func TestRequestJSONRoundTrip(t *testing.T) {
	req := Request{
		Type:       ReqCreateSession,
		Name:       "s1",
		WorkingDir: "/tmp",
		Command:    []string{"sh", "-c", "true"},
		Cols:       80,
		Rows:       24,
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Request
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Request holds slices, so it is compared with reflect.DeepEqual.
	if !reflect.DeepEqual(got, req) {
		t.Fatalf("round trip mismatch: %+v != %+v", got, req)
	}
}

// An absent Command key must leave the field nil (default shell), while an
// explicit empty array must leave it non-nil (explicit empty argv), per the
// window spawn contract (§4.4).
func TestCommandAbsentVsEmpty(t *testing.T) {
	var absent Request
	if err := json.Unmarshal([]byte(`{"type":"create_session"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.Command != nil {
		t.Fatalf("expected nil Command for absent key, got %#v", absent.Command)
	}

	var explicit Request
	if err := json.Unmarshal([]byte(`{"type":"create_session","command":[]}`), &explicit); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if explicit.Command == nil {
		t.Fatalf("expected non-nil Command for explicit empty array")
	}
	if len(explicit.Command) != 0 {
		t.Fatalf("expected empty Command, got %#v", explicit.Command)
	}
}

func TestResponseConstructors(t *testing.T) {
	if resp := Ok(); resp.Type != RespOk {
		t.Fatalf("Ok() = %+v", resp)
	}
	if resp := Pong("tenex-mux/0.2.0"); resp.Type != RespPong || resp.Version != "tenex-mux/0.2.0" {
		t.Fatalf("Pong() = %+v", resp)
	}
	if resp := Bool(true); resp.Type != RespBool || !resp.Value {
		t.Fatalf("Bool() = %+v", resp)
	}
	if resp := Err("boom"); resp.Type != RespErr || resp.Message != "boom" {
		t.Fatalf("Err() = %+v", resp)
	}
}
