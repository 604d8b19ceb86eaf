package ircd

import (
	"strings"

	"ircserv/internal/ircmsg"
	"ircserv/internal/store"
)

type handlerFunc func(s *Server, c *store.Client, m ircmsg.Message)

// handlers is the dispatch table, keyed by the already-uppercased command
// token. An unknown token yields ERR_UNKNOWNCOMMAND (421). Any form of
// table is fine per the design notes; a map keeps the registration block
// below readable.
var handlers = map[string]handlerFunc{
	"PASS":    handlePass,
	"NICK":    handleNick,
	"USER":    handleUser,
	"JOIN":    handleJoin,
	"PART":    handlePart,
	"PRIVMSG": handlePrivmsg,
	"KICK":    handleKick,
	"INVITE":  handleInvite,
	"TOPIC":   handleTopic,
	"MODE":    handleMode,
	"QUIT":    handleQuit,
}

// preRegistrationAllowed is the set of commands a Fresh or Authenticated
// (not yet Registered) client may run. Every other handler silently
// ignores the command in that state, per the registration state machine.
var preRegistrationAllowed = map[string]bool{
	"PASS": true,
	"NICK": true,
	"USER": true,
	"QUIT": true,
}

// Dispatch parses and executes a single line on behalf of c. It is the
// sole entry point the event loop calls per drained line.
func (s *Server) Dispatch(c *store.Client, line string) {
	if line == "" {
		return
	}
	m := ircmsg.Parse(line)
	if m.Command == "" {
		return
	}

	// Commands are matched in uppercase only: a token that Parse had to
	// uppercase is unknown, and the 421 reply names it as it was sent.
	raw := line
	if raw[0] == ':' {
		raw = raw[strings.IndexByte(raw, ' ')+1:]
	}
	raw = strings.TrimLeft(raw, " ")
	if sp := strings.IndexByte(raw, ' '); sp >= 0 {
		raw = raw[:sp]
	}
	if raw != m.Command {
		s.sendNumeric(c, 421, raw, "Unknown command")
		return
	}

	h, ok := handlers[m.Command]
	if !ok {
		s.sendNumeric(c, 421, m.Command, "Unknown command")
		return
	}

	if !c.Registered && !preRegistrationAllowed[m.Command] {
		return
	}

	h(s, c, m)
}
