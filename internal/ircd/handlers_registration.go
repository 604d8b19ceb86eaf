package ircd

import (
	"ircserv/internal/ircmsg"
	"ircserv/internal/store"
)

func handlePass(s *Server, c *store.Client, m ircmsg.Message) {
	if c.Registered {
		s.sendNumeric(c, 462, "You may not reregister")
		return
	}
	if len(m.Params) != 1 {
		s.sendNumeric(c, 461, "PASS", "Not enough parameters")
		return
	}
	if m.Params[0] != s.password {
		s.sendNumeric(c, 464, "Password incorrect")
		return
	}
	c.Authenticated = true
	s.maybeWelcome(c)
}

func handleNick(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) < 1 || m.Params[0] == "" {
		s.sendNumeric(c, 431, "No nickname given")
		return
	}
	nick := m.Params[0]
	if !store.ValidNickname(nick) {
		s.sendNumeric(c, 432, nick, "Erroneous nickname")
		return
	}
	if existing, ok := s.store.ClientByNick(nick); ok && existing.ID != c.ID {
		s.sendNumeric(c, 433, nick, "Nickname is already in use")
		return
	}

	wasRegistered := c.Registered
	old := c.Prefix()
	s.store.SetNick(c, nick)

	if wasRegistered {
		s.broadcastNickChange(c, old, nick)
		return
	}

	if s.checkBanned(c) {
		return
	}

	s.maybeWelcome(c)
}

func handleUser(s *Server, c *store.Client, m ircmsg.Message) {
	if c.Registered {
		s.sendNumeric(c, 462, "You may not reregister")
		return
	}
	if len(m.Params) < 4 {
		s.sendNumeric(c, 461, "USER", "Not enough parameters")
		return
	}
	c.User = m.Params[0]
	c.Real = m.Params[3]
	s.maybeWelcome(c)
}

// maybeWelcome recomputes the registration predicate and, on the rising
// edge, checks the host ban list and emits the welcome burst.
func (s *Server) maybeWelcome(c *store.Client) {
	if !c.RecomputeRegistered() {
		return
	}
	if s.checkBanned(c) {
		return
	}
	s.sendWelcome(c)
}

// broadcastNickChange notifies every registered client that c changed
// nick, per the §4.3 broadcast-to-all policy — a client's nick is
// visible server-wide once registered, so channel membership is not
// walked: registered clients sharing no channel with c are notified too.
func (s *Server) broadcastNickChange(c *store.Client, oldPrefix, newNick string) {
	s.store.EachClient(func(other *store.Client) {
		if !other.Registered {
			return
		}
		s.sendRaw(other, ":"+oldPrefix+" NICK :"+newNick)
	})
}
