package terminal

import (
	"bytes"
	"testing"
)

func TestScanSingleChunkCPR(t *testing.T) {
	s := NewQueryScanner()
	out := s.Scan([]byte("\x1b[6n"), 4, 9)
	want := []byte("\x1b[5;10R")
	if !bytes.Equal(out, want) {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestScanSplitAcrossChunksProducesExactlyOneReply(t *testing.T) {
	s := NewQueryScanner()
	if out := s.Scan([]byte("\x1b["), 0, 0); out != nil {
		t.Fatalf("first chunk: expected no reply yet, got %q", out)
	}
	out := s.Scan([]byte("6n"), 0, 0)
	want := []byte("\x1b[1;1R")
	if !bytes.Equal(out, want) {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestScanCPRThenDAOrdersCPRFirst(t *testing.T) {
	s := NewQueryScanner()
	out := s.Scan([]byte("\x1b[6n\x1b[c"), 0, 0)
	want := append(append([]byte{}, buildCPRReply(0, 0)...), daReply...)
	if !bytes.Equal(out, want) {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestScanRetainsShortTailInFull(t *testing.T) {
	s := NewQueryScanner()
	chunk := []byte("short")
	s.Scan(chunk, 0, 0)
	if !bytes.Equal(s.tail, chunk) {
		t.Fatalf("tail = %q, want %q (chunk shorter than QueryTailSize)", s.tail, chunk)
	}
}

func TestScanNoQueryReturnsNil(t *testing.T) {
	s := NewQueryScanner()
	if out := s.Scan([]byte("hello world\r\n"), 0, 0); out != nil {
		t.Fatalf("expected nil, got %q", out)
	}
}

func TestScanDoesNotDoubleCountAcrossCalls(t *testing.T) {
	s := NewQueryScanner()
	s.Scan([]byte("\x1b[6n"), 0, 0)
	// A second, unrelated chunk must not re-trigger the already-consumed
	// query sitting in the retained tail.
	if out := s.Scan([]byte("xyz"), 0, 0); out != nil {
		t.Fatalf("expected nil on follow-up chunk, got %q", out)
	}
}

func TestScanOSC10AndOSC11BothTerminators(t *testing.T) {
	s := NewQueryScanner()
	out := s.Scan([]byte("\x1b]10;?\x07\x1b]11;?\x1b\\"), 0, 0)
	want := append(append([]byte{}, osc10Reply...), osc11Reply...)
	if !bytes.Equal(out, want) {
		t.Fatalf("got %q, want %q", out, want)
	}
}
