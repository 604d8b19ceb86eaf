package ircmsg

import (
	"reflect"
	"testing"
)

func TestParseBasic(t *testing.T) {
	cases := []struct {
		in   string
		want Message
	}{
		{
			in:   "NICK alice",
			want: Message{Command: "NICK", Params: []string{"alice"}},
		},
		{
			in:   "join #x",
			want: Message{Command: "JOIN", Params: []string{"#x"}},
		},
		{
			in:   ":alice!a@h PRIVMSG #chan :hello there world",
			want: Message{Prefix: "alice!a@h", Command: "PRIVMSG", Params: []string{"#chan", "hello there world"}},
		},
		{
			in:   "USER a 0 * :Real Name",
			want: Message{Command: "USER", Params: []string{"a", "0", "*", "Real Name"}},
		},
		{
			in:   "",
			want: Message{},
		},
		{
			in:   "PING",
			want: Message{Command: "PING"},
		},
	}

	for _, c := range cases {
		got := Parse(c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	msgs := []Message{
		{Command: "NICK", Params: []string{"bob"}},
		{Prefix: "bob!u@h", Command: "JOIN", Params: []string{"#chan"}},
		{Prefix: "bob!u@h", Command: "PRIVMSG", Params: []string{"#chan", "hello there"}},
		{Command: "MODE", Params: []string{"#chan", "+o", "bob"}},
	}

	for _, m := range msgs {
		line := m.Format()
		trimmed := line[:len(line)-2]
		got := Parse(trimmed)
		if !reflect.DeepEqual(got, m) {
			t.Errorf("round trip mismatch: %+v -> %q -> %+v", m, line, got)
		}
	}
}

func TestReassemblerCRLFAndLF(t *testing.T) {
	var r Reassembler
	r.Append([]byte("NICK a\r\nUSER a 0 * :A\nPING x\r\n"))

	var lines []string
	for {
		line, ok := r.TakeLine()
		if !ok {
			break
		}
		lines = append(lines, line)
	}

	want := []string{"NICK a", "USER a 0 * :A", "PING x"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("got %v, want %v", lines, want)
	}
}

func TestReassemblerOverflow(t *testing.T) {
	var r Reassembler
	r.Append(make([]byte, 513))
	if !r.Overflowed() {
		t.Errorf("expected overflow at 513 residual bytes")
	}

	var r2 Reassembler
	line := make([]byte, 510)
	for i := range line {
		line[i] = 'x'
	}
	r2.Append(line)
	r2.Append([]byte("\r\n"))
	got, ok := r2.TakeLine()
	if !ok || len(got) != 510 {
		t.Errorf("510 byte content line should parse whole, got len=%d ok=%v", len(got), ok)
	}
	if r2.Overflowed() {
		t.Errorf("should not overflow after draining full line")
	}
}

func TestReassemblerPartialLine(t *testing.T) {
	var r Reassembler
	r.Append([]byte("NICK a"))
	if _, ok := r.TakeLine(); ok {
		t.Errorf("should not yield a line before a terminator arrives")
	}
	r.Append([]byte("bc\r\n"))
	line, ok := r.TakeLine()
	if !ok || line != "NICK abc" {
		t.Errorf("got %q ok=%v", line, ok)
	}
}
