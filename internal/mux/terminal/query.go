package terminal

import "bytes"

// QueryScanner detects in-band terminal queries (CPR, DA, OSC10, OSC11)
// across chunk boundaries and builds the byte sequences that answer them
// (§4.3.4). It holds no reference to a Model; the caller supplies the
// cursor position to use for CPR replies at scan time.
type QueryScanner struct {
	tail []byte // retained tail (<= QueryTailSize) from the previous chunk
}

// NewQueryScanner returns a scanner with an empty retained tail.
func NewQueryScanner() *QueryScanner {
	return &QueryScanner{}
}

var (
	cprNeedle  = []byte("\x1b[6n")
	daNeedle   = []byte("\x1b[c")
	osc10Bel   = []byte("\x1b]10;?\x07")
	osc10St    = []byte("\x1b]10;?\x1b\\")
	osc11Bel   = []byte("\x1b]11;?\x07")
	osc11St    = []byte("\x1b]11;?\x1b\\")
	daReply    = []byte("\x1b[?1;0c")
	osc10Reply = []byte("\x1b]10;rgb:ffff/ffff/ffff\x1b\\")
	osc11Reply = []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")
)

// Scan examines chunk (prefixed by the retained tail from the previous
// call) for in-band queries and returns the bytes that should be written
// back to the PTY in reply, in the order CPR, DA, OSC10, OSC11. It returns
// nil if no query was found. cursorRow/cursorCol are the model's current
// 0-based cursor position, used to build CPR replies with 1-based
// coordinates.
func (s *QueryScanner) Scan(chunk []byte, cursorRow, cursorCol int) []byte {
	combined := make([]byte, 0, len(s.tail)+len(chunk))
	combined = append(combined, s.tail...)
	combined = append(combined, chunk...)
	tailLen := len(s.tail)

	cprCount := countPattern(combined, cprNeedle, tailLen)
	daCount := countPattern(combined, daNeedle, tailLen)
	osc10Count := countPattern(combined, osc10Bel, tailLen) + countPattern(combined, osc10St, tailLen)
	osc11Count := countPattern(combined, osc11Bel, tailLen) + countPattern(combined, osc11St, tailLen)

	s.updateTail(combined)

	if cprCount == 0 && daCount == 0 && osc10Count == 0 && osc11Count == 0 {
		return nil
	}

	var out []byte
	cprReply := buildCPRReply(cursorRow, cursorCol)
	for i := 0; i < cprCount; i++ {
		out = append(out, cprReply...)
	}
	for i := 0; i < daCount; i++ {
		out = append(out, daReply...)
	}
	for i := 0; i < osc10Count; i++ {
		out = append(out, osc10Reply...)
	}
	for i := 0; i < osc11Count; i++ {
		out = append(out, osc11Reply...)
	}
	return out
}

func (s *QueryScanner) updateTail(combined []byte) {
	if len(combined) <= QueryTailSize {
		s.tail = append(s.tail[:0], combined...)
		return
	}
	s.tail = append(s.tail[:0], combined[len(combined)-QueryTailSize:]...)
}

// buildCPRReply formats ESC[row;colR with 1-based coordinates from the
// parser's 0-based cursor position.
func buildCPRReply(row, col int) []byte {
	return []byte("\x1b[" + itoa(row+1) + ";" + itoa(col+1) + "R")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// countPattern counts occurrences of needle in haystack, excluding matches
// that fall entirely within the retained tail from the previous chunk (they
// were already counted on the prior call). A match at position i counts
// only if i + len(needle) > tailLen, i.e. it extends at least one byte into
// newly arrived data.
func countPattern(haystack, needle []byte, tailLen int) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if bytes.Equal(haystack[i:i+len(needle)], needle) {
			if i+len(needle) > tailLen {
				count++
			}
		}
	}
	return count
}
