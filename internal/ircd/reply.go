package ircd

import (
	"strings"

	"ircserv/internal/store"
)

// sendWelcome emits the 001-004 welcome burst exactly once, guarded by the
// client's own latch, and is called on the registration predicate's rising
// edge.
func (s *Server) sendWelcome(c *store.Client) {
	if c.WelcomeSent {
		return
	}
	c.WelcomeSent = true

	s.sendNumeric(c, 1, "Welcome to the Internet Relay Network "+c.Prefix())
	s.sendNumeric(c, 2, "Your host is "+s.name+", running version 1.0")
	s.sendNumeric(c, 3, "This server was created "+s.createdAt)
	s.sendNumeric(c, 4, s.name, "1.0", "o", "itkol")

	if len(s.motd) > 0 {
		s.sendMOTD(c)
	}
}

func (s *Server) sendMOTD(c *store.Client) {
	s.sendNumeric(c, 375, "- "+s.name+" Message of the day -")
	for _, line := range s.motd {
		s.sendNumeric(c, 372, "- "+line)
	}
	s.sendNumeric(c, 376, "End of MOTD command")
}

// sendNames sends the 353/366 pair for ch to c — the join burst's names
// listing.
func (s *Server) sendNames(c *store.Client, ch *store.Channel) {
	nicks := make([]string, 0, ch.MemberCount())
	for _, m := range ch.MembersInOrder() {
		nicks = append(nicks, m.Nick)
	}
	s.sendNumeric(c, 353, "=", ch.Name, strings.Join(nicks, " "))
	s.sendNumeric(c, 366, ch.Name, "End of NAMES list")
}

// sendChannelModeIs replies 324 with ch's current mode string.
func (s *Server) sendChannelModeIs(c *store.Client, ch *store.Channel) {
	spec, args := ch.ModeString()
	params := append([]string{ch.Name, spec}, args...)
	s.sendNumeric(c, 324, params...)
}
