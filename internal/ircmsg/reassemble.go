// Package ircmsg implements the wire-level pieces of the RFC 1459 subset
// this server speaks: reassembling a raw byte stream into whole lines and
// parsing a line into a prefix/command/params record.
package ircmsg

import "strings"

// MaxLineBytes is the hard cap on a client's residual, unterminated
// input. RFC 1459 caps a message at 512 bytes including the CRLF; a
// larger residue without a terminator means the peer sent a line with no
// end in sight, and is treated as a flood.
const MaxLineBytes = 512

// Reassembler turns an arbitrary byte stream into complete IRC lines. It
// owns a single growable buffer per connection; callers Append() bytes as
// they arrive off the socket and drain TakeLine() until it reports no
// more lines are available.
type Reassembler struct {
	buf []byte
}

// Append adds newly read bytes to the reassembler's buffer.
func (r *Reassembler) Append(b []byte) {
	r.buf = append(r.buf, b...)
}

// TakeLine extracts the next complete line, if one is present. The line
// ends at whichever terminator comes first in the buffer: a CRLF, or a
// bare LF (stripping a trailing CR if present). Empty lines are returned
// as empty strings — the dispatcher is responsible for dropping them.
func (r *Reassembler) TakeLine() (string, bool) {
	crlf := indexCRLF(r.buf)
	lf := indexByte(r.buf, '\n')
	if crlf >= 0 && crlf+1 == lf {
		line := string(r.buf[:crlf])
		r.buf = r.buf[crlf+2:]
		return line, true
	}
	if i := lf; i >= 0 {
		line := string(r.buf[:i])
		r.buf = r.buf[i+1:]
		return strings.TrimSuffix(line, "\r"), true
	}
	return "", false
}

// Overflowed reports whether the residual, un-terminated buffer exceeds
// MaxLineBytes. The event loop must disconnect the client with no reply
// when this is true.
func (r *Reassembler) Overflowed() bool {
	return len(r.buf) > MaxLineBytes
}

func indexCRLF(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
