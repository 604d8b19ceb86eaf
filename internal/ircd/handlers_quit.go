package ircd

import (
	"ircserv/internal/ircmsg"
	"ircserv/internal/store"
)

func handleQuit(s *Server, c *store.Client, m ircmsg.Message) {
	reason := "Client Quit"
	if len(m.Params) >= 1 {
		reason = m.Params[0]
	}
	s.disconnect(c, reason)
}
