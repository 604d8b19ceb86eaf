package ircmsg

import "strings"

// Message is the decomposed form of a single IRC line: an optional
// prefix, an uppercased command token, and an ordered parameter list.
// The trailing (":"-led) parameter, if present, is indistinguishable from
// any other parameter once parsed — see spec.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// Parse decomposes a single, already-trimmed, non-empty line into a
// Message. It is total: any input produces a Message, never an error. An
// empty Command means "ignore" — the caller drops it. Parse intentionally
// does not validate the command name or parameter counts; that is the
// dispatcher's job, so it can produce the right numeric reply.
func Parse(line string) Message {
	var m Message

	if len(line) == 0 {
		return m
	}

	rest := line
	if rest[0] == ':' {
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			m.Prefix = rest[1:]
			return m
		}
		m.Prefix = rest[1:sp]
		rest = rest[sp+1:]
	}

	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return m
	}

	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		m.Command = strings.ToUpper(rest)
		return m
	}
	m.Command = strings.ToUpper(rest[:sp])
	rest = rest[sp+1:]

	for {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			break
		}
		if rest[0] == ':' {
			m.Params = append(m.Params, rest[1:])
			break
		}
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			m.Params = append(m.Params, rest)
			break
		}
		m.Params = append(m.Params, rest[:sp])
		rest = rest[sp+1:]
	}

	return m
}

// Format renders m back onto the wire, CRLF-terminated, using the
// trailing-colon form for the final parameter whenever it contains a
// space or is empty (the only cases where omitting the colon would be
// ambiguous or lossy).
func (m Message) Format() string {
	var b strings.Builder
	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)
	if n := len(m.Params); n > 0 {
		for _, p := range m.Params[:n-1] {
			b.WriteByte(' ')
			b.WriteString(p)
		}
		last := m.Params[n-1]
		b.WriteByte(' ')
		if strings.Contains(last, " ") || strings.HasPrefix(last, ":") || last == "" {
			b.WriteByte(':')
		}
		b.WriteString(last)
	}
	b.WriteString("\r\n")
	return b.String()
}
