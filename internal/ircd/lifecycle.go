package ircd

import "ircserv/internal/store"

// disconnect is the single convergence point for all client removal:
// socket EOF/error, buffer overflow, and a successful QUIT handler all
// funnel through here. It broadcasts a QUIT to the remaining members of
// every channel the client was in (if it was registered), then delegates
// to the store for the registry-level teardown, and finally closes the
// socket.
func (s *Server) disconnect(c *store.Client, reason string) {
	if c.Registered {
		for _, ch := range s.channelsOf(c) {
			s.broadcastChannel(ch, c, true, "QUIT", reason)
		}
	}

	s.store.RemoveClient(c)

	s.closeSocket(c)
}

// checkBanned matches c's current nick!user@host prefix against the
// configured host ban list. A match sends an ERROR close-link line and
// disconnects c before it ever reaches the welcome burst, mirroring the
// teacher's own confdata.Ban check at registration time.
func (s *Server) checkBanned(c *store.Client) bool {
	pattern, banned := s.bans.Matches(c.Prefix())
	if !banned {
		return false
	}
	s.sendRaw(c, "ERROR :Closing Link: "+c.Host+" (Banned: "+pattern+")")
	s.disconnect(c, "Banned")
	return true
}

// channelsOf returns every channel c currently belongs to.
func (s *Server) channelsOf(c *store.Client) []*store.Channel {
	var out []*store.Channel
	for _, ch := range s.store.AllChannels() {
		if ch.HasMember(c) {
			out = append(out, ch)
		}
	}
	return out
}

// broadcastChannel sends command/params, prefixed by origin, to every
// member of ch. When excludeOrigin is true the origin itself is skipped
// (PRIVMSG semantics); otherwise it is included (JOIN/PART/MODE/TOPIC
// semantics, per spec).
func (s *Server) broadcastChannel(ch *store.Channel, origin *store.Client, excludeOrigin bool, command string, params ...string) {
	for _, m := range ch.MembersInOrder() {
		if excludeOrigin && m.ID == origin.ID {
			continue
		}
		s.sendFromClient(m, origin, command, params...)
	}
}
