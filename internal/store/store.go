package store

import (
	"strings"

	cmap "github.com/orcaman/concurrent-map"
	"github.com/google/uuid"
)

// Store is the process-wide entity store: every connected client and
// every live channel, indexed the ways the dispatcher needs them. It is
// exclusively owned and mutated by the event loop's single goroutine.
type Store struct {
	clientsByID   cmap.ConcurrentMap // ID.String() -> *Client
	clientsByFd   map[int]*Client
	clientsByNick map[string]*Client // exact case, per design
	channels      map[string]*Channel // exact case, per design
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		clientsByID:   cmap.New(),
		clientsByFd:   map[int]*Client{},
		clientsByNick: map[string]*Client{},
		channels:      map[string]*Channel{},
	}
}

// AddClient registers a newly accepted client.
func (s *Store) AddClient(c *Client) {
	s.clientsByID.Set(c.ID.String(), c)
	s.clientsByFd[c.Fd] = c
}

// ClientByFd looks up a client by its socket file descriptor.
func (s *Store) ClientByFd(fd int) (*Client, bool) {
	c, ok := s.clientsByFd[fd]
	return c, ok
}

// ClientByNick looks up a client by exact-case nickname.
func (s *Store) ClientByNick(nick string) (*Client, bool) {
	c, ok := s.clientsByNick[nick]
	return c, ok
}

// ClientByID looks up a client by its stable identity.
func (s *Store) ClientByID(id uuid.UUID) (*Client, bool) {
	v, ok := s.clientsByID.Get(id.String())
	if !ok {
		return nil, false
	}
	return v.(*Client), true
}

// SetNick records c under a new nickname, removing any prior mapping.
// Callers must have already checked uniqueness.
func (s *Store) SetNick(c *Client, nick string) {
	if c.Nick != "" {
		delete(s.clientsByNick, c.Nick)
	}
	c.Nick = nick
	s.clientsByNick[nick] = c
}

// EachClient iterates over every connected client, in no particular
// order, calling fn for each.
func (s *Store) EachClient(fn func(*Client)) {
	for t := range s.clientsByID.IterBuffered() {
		fn(t.Val.(*Client))
	}
}

// ChannelByName looks up a channel by exact-case name.
func (s *Store) ChannelByName(name string) (*Channel, bool) {
	ch, ok := s.channels[name]
	return ch, ok
}

// CreateChannel creates and registers a new, empty channel named name.
// Callers must have already checked it doesn't exist.
func (s *Store) CreateChannel(name string) *Channel {
	ch := NewChannel(name)
	s.channels[name] = ch
	return ch
}

// AllChannels returns every live channel, in no particular order.
func (s *Store) AllChannels() []*Channel {
	out := make([]*Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	return out
}

// RemoveChannel deletes a channel by name.
func (s *Store) RemoveChannel(name string) {
	delete(s.channels, name)
}

// RemoveChannelIfEmpty deletes ch from the registry if it has no more
// members — the convergence point for "empty channels do not exist".
func (s *Store) RemoveChannelIfEmpty(ch *Channel) {
	if ch.MemberCount() == 0 {
		delete(s.channels, ch.Name)
	}
}

// RemoveClient is the single convergence point for every disconnect
// path: it tears down c's channel membership regardless of how the client
// is leaving (abrupt socket error, buffer overflow, or QUIT), deletes
// every channel that is left empty, and drops c from the client
// registries. It reports the channels c was removed from; any of them
// that became empty is already gone from the registry by then.
func (s *Store) RemoveClient(c *Client) []*Channel {
	var affected []*Channel
	for _, ch := range s.channels {
		if ch.HasMember(c) {
			ch.RemoveMember(c)
			affected = append(affected, ch)
		}
	}
	for _, ch := range affected {
		s.RemoveChannelIfEmpty(ch)
	}

	if c.Nick != "" {
		delete(s.clientsByNick, c.Nick)
	}
	delete(s.clientsByFd, c.Fd)
	s.clientsByID.Remove(c.ID.String())

	return affected
}

// ValidNickname reports whether nick satisfies the nickname grammar:
// first char a letter or one of []{}\|^_-, subsequent chars additionally
// digits, length bounded.
func ValidNickname(nick string) bool {
	if nick == "" || len(nick) > 30 {
		return false
	}
	if !isNickLead(nick[0]) {
		return false
	}
	for i := 1; i < len(nick); i++ {
		c := nick[i]
		if !isNickLead(c) && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func isNickLead(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case strings.IndexByte("[]{}\\|^_-", c) >= 0:
		return true
	}
	return false
}

// ValidChannelName reports whether name satisfies the channel grammar:
// '#' prefix, non-empty, no space/comma/control bytes, length <= 50.
func ValidChannelName(name string) bool {
	if len(name) < 2 || len(name) > 50 {
		return false
	}
	if name[0] != '#' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if c == ' ' || c == ',' || c < 0x20 || c == 0x7f {
			return false
		}
	}
	return true
}
