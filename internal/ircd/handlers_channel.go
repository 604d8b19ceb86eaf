package ircd

import (
	"strconv"

	"ircserv/internal/ircmsg"
	"ircserv/internal/store"
)

func handleJoin(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) < 1 {
		s.sendNumeric(c, 461, "JOIN", "Not enough parameters")
		return
	}
	name := m.Params[0]
	var key string
	if len(m.Params) >= 2 {
		key = m.Params[1]
	}
	if !store.ValidChannelName(name) {
		s.sendNumeric(c, 403, name, "No such channel")
		return
	}

	ch, existed := s.store.ChannelByName(name)
	if !existed {
		ch = s.store.CreateChannel(name)
	}

	if existed {
		if ch.InviteOnly && !c.IsInvited(name) {
			s.sendNumeric(c, 473, name, "Cannot join channel (+i)")
			return
		}
		if ch.Key != "" && ch.Key != key {
			s.sendNumeric(c, 475, name, "Cannot join channel (+k)")
			return
		}
		if ch.Limit > 0 && ch.MemberCount() >= ch.Limit {
			s.sendNumeric(c, 471, name, "Cannot join channel (+l)")
			return
		}
	}

	ch.AddMember(c)
	if !existed {
		ch.SetOperator(c, true)
	}
	c.ClearInvite(name)

	s.broadcastChannel(ch, c, false, "JOIN", name)

	if ch.Topic != "" {
		s.sendNumeric(c, 332, name, ch.Topic)
	}
	s.sendNames(c, ch)
}

func handlePart(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) < 1 {
		s.sendNumeric(c, 461, "PART", "Not enough parameters")
		return
	}
	name := m.Params[0]
	ch, ok := s.store.ChannelByName(name)
	if !ok || !ch.HasMember(c) {
		s.sendNumeric(c, 442, name, "You're not on that channel")
		return
	}

	reason := c.Nick
	if len(m.Params) >= 2 {
		reason = m.Params[1]
	}
	s.broadcastChannel(ch, c, false, "PART", name, reason)

	ch.RemoveMember(c)
	s.store.RemoveChannelIfEmpty(ch)
}

func handlePrivmsg(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) == 0 {
		s.sendNumeric(c, 411, "No recipient given (PRIVMSG)")
		return
	}
	if len(m.Params) == 1 {
		s.sendNumeric(c, 412, "No text to send")
		return
	}
	target, text := m.Params[0], m.Params[1]

	if len(target) > 0 && target[0] == '#' {
		ch, ok := s.store.ChannelByName(target)
		if !ok {
			s.sendNumeric(c, 403, target, "No such channel")
			return
		}
		if !ch.HasMember(c) {
			s.sendNumeric(c, 404, target, "Cannot send to channel")
			return
		}
		s.broadcastChannel(ch, c, true, "PRIVMSG", target, text)
		return
	}

	dest, ok := s.store.ClientByNick(target)
	if !ok {
		s.sendNumeric(c, 401, target, "No such nick/channel")
		return
	}
	s.sendFromClient(dest, c, "PRIVMSG", target, text)
}

func handleKick(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) < 2 {
		s.sendNumeric(c, 461, "KICK", "Not enough parameters")
		return
	}
	name, targetNick := m.Params[0], m.Params[1]
	reason := c.Nick
	if len(m.Params) >= 3 {
		reason = m.Params[2]
	}

	ch, ok := s.store.ChannelByName(name)
	if !ok {
		s.sendNumeric(c, 403, name, "No such channel")
		return
	}
	if !ch.HasMember(c) {
		s.sendNumeric(c, 442, name, "You're not on that channel")
		return
	}
	if !ch.IsOperator(c) {
		s.sendNumeric(c, 482, name, "You're not channel operator")
		return
	}
	target, ok := s.store.ClientByNick(targetNick)
	if !ok || !ch.HasMember(target) {
		s.sendNumeric(c, 441, targetNick, name, "They aren't on that channel")
		return
	}

	s.broadcastChannel(ch, c, false, "KICK", name, targetNick, reason)
	ch.RemoveMember(target)
	s.store.RemoveChannelIfEmpty(ch)
}

func handleInvite(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) < 2 {
		s.sendNumeric(c, 461, "INVITE", "Not enough parameters")
		return
	}
	targetNick, name := m.Params[0], m.Params[1]

	ch, ok := s.store.ChannelByName(name)
	if !ok {
		s.sendNumeric(c, 403, name, "No such channel")
		return
	}
	if !ch.HasMember(c) {
		s.sendNumeric(c, 442, name, "You're not on that channel")
		return
	}
	if !ch.IsOperator(c) {
		s.sendNumeric(c, 482, name, "You're not channel operator")
		return
	}
	target, ok := s.store.ClientByNick(targetNick)
	if !ok {
		s.sendNumeric(c, 401, targetNick, "No such nick/channel")
		return
	}
	if ch.HasMember(target) {
		s.sendNumeric(c, 443, targetNick, name, "is already on channel")
		return
	}

	target.Invite(name)
	s.sendFromClient(target, c, "INVITE", targetNick, name)
}

func handleTopic(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) < 1 {
		s.sendNumeric(c, 461, "TOPIC", "Not enough parameters")
		return
	}
	name := m.Params[0]
	ch, ok := s.store.ChannelByName(name)
	if !ok {
		s.sendNumeric(c, 403, name, "No such channel")
		return
	}
	if !ch.HasMember(c) {
		s.sendNumeric(c, 442, name, "You're not on that channel")
		return
	}

	if len(m.Params) == 1 {
		if ch.Topic != "" {
			s.sendNumeric(c, 332, name, ch.Topic)
		}
		return
	}

	if ch.TopicRestricted && !ch.IsOperator(c) {
		s.sendNumeric(c, 482, name, "You're not channel operator")
		return
	}
	ch.Topic = m.Params[1]
	s.broadcastChannel(ch, c, false, "TOPIC", name, ch.Topic)
}

func handleMode(s *Server, c *store.Client, m ircmsg.Message) {
	if len(m.Params) < 1 {
		s.sendNumeric(c, 461, "MODE", "Not enough parameters")
		return
	}
	name := m.Params[0]
	ch, ok := s.store.ChannelByName(name)
	if !ok {
		s.sendNumeric(c, 403, name, "No such channel")
		return
	}
	if !ch.HasMember(c) {
		s.sendNumeric(c, 442, name, "You're not on that channel")
		return
	}

	if len(m.Params) == 1 {
		s.sendChannelModeIs(c, ch)
		return
	}
	if !ch.IsOperator(c) {
		s.sendNumeric(c, 482, name, "You're not channel operator")
		return
	}

	applied, appliedArgs := applyModeString(s, ch, m.Params[1], m.Params[2:])
	if applied == "" {
		return
	}
	all := append([]string{name, applied}, appliedArgs...)
	s.broadcastChannel(ch, c, false, "MODE", all...)
}

// applyModeString parses a +/- mode string left-to-right against ch,
// consuming trailing args in order for letters that require one, and
// returns the modestring and argument list actually applied (for the
// broadcast line). Unknown letters are ignored; unknown/non-member -o
// targets are silently skipped per the letter table.
func applyModeString(s *Server, ch *store.Channel, modes string, args []string) (string, []string) {
	var spec []byte
	var outArgs []string
	dir := byte('+')
	argi := 0

	next := func() (string, bool) {
		if argi >= len(args) {
			return "", false
		}
		v := args[argi]
		argi++
		return v, true
	}

	for i := 0; i < len(modes); i++ {
		switch modes[i] {
		case '+', '-':
			dir = modes[i]
			continue
		case 'i':
			ch.InviteOnly = dir == '+'
			spec = append(spec, dir, 'i')
		case 't':
			ch.TopicRestricted = dir == '+'
			spec = append(spec, dir, 't')
		case 'k':
			if dir == '+' {
				key, ok := next()
				if !ok {
					continue
				}
				ch.Key = key
				spec = append(spec, dir, 'k')
				outArgs = append(outArgs, key)
			} else {
				ch.Key = ""
				spec = append(spec, dir, 'k')
			}
		case 'l':
			if dir == '+' {
				lim, ok := next()
				if !ok {
					continue
				}
				n, err := strconv.Atoi(lim)
				if err != nil || n <= 0 {
					continue
				}
				ch.Limit = n
				spec = append(spec, dir, 'l')
				outArgs = append(outArgs, lim)
			} else {
				ch.Limit = 0
				spec = append(spec, dir, 'l')
			}
		case 'o':
			nick, ok := next()
			if !ok {
				continue
			}
			target, ok := s.store.ClientByNick(nick)
			if !ok || !ch.HasMember(target) {
				continue
			}
			ch.SetOperator(target, dir == '+')
			spec = append(spec, dir, 'o')
			outArgs = append(outArgs, nick)
		}
	}

	return string(spec), outArgs
}
