package store

import (
	"strconv"

	cmap "github.com/orcaman/concurrent-map"
)

// Channel is a named (#-prefixed) multicast group of clients.
type Channel struct {
	Name  string
	Topic string

	// Members and Operators are keyed by Client.ID.String(). Operators
	// is always a subset of Members.
	Members   cmap.ConcurrentMap
	Operators cmap.ConcurrentMap

	InviteOnly     bool
	TopicRestricted bool
	Key            string
	Limit          int // 0 means unlimited

	// order preserves join order for NAMES listing, since cmap's
	// iteration order is unspecified.
	order []string
}

// NewChannel creates an empty channel named name.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:      name,
		Members:   cmap.New(),
		Operators: cmap.New(),
	}
}

// AddMember inserts c into the channel's membership, preserving join
// order. It leaves c's invitations as they are (see Client.ClearInvite).
func (ch *Channel) AddMember(c *Client) {
	key := c.ID.String()
	if ch.Members.Has(key) {
		return
	}
	ch.Members.Set(key, c)
	ch.order = append(ch.order, key)
}

// RemoveMember deletes c from membership and the operator set, and from
// the join-order list.
func (ch *Channel) RemoveMember(c *Client) {
	key := c.ID.String()
	ch.Members.Remove(key)
	ch.Operators.Remove(key)
	for i, k := range ch.order {
		if k == key {
			ch.order = append(ch.order[:i], ch.order[i+1:]...)
			break
		}
	}
}

// HasMember reports whether c is currently a member.
func (ch *Channel) HasMember(c *Client) bool {
	return ch.Members.Has(c.ID.String())
}

// IsOperator reports whether c currently holds channel-operator status.
func (ch *Channel) IsOperator(c *Client) bool {
	return ch.Operators.Has(c.ID.String())
}

// SetOperator grants or revokes operator status for c. Granting a
// non-member is a no-op, matching MODE +o's silent-ignore contract.
func (ch *Channel) SetOperator(c *Client, on bool) {
	key := c.ID.String()
	if !ch.Members.Has(key) {
		return
	}
	if on {
		ch.Operators.Set(key, c)
	} else {
		ch.Operators.Remove(key)
	}
}

// MemberCount returns the number of members, O(1) against the backing map.
func (ch *Channel) MemberCount() int {
	return ch.Members.Count()
}

// MembersInOrder returns members in join order, for NAMES listings.
func (ch *Channel) MembersInOrder() []*Client {
	out := make([]*Client, 0, len(ch.order))
	for _, key := range ch.order {
		if v, ok := ch.Members.Get(key); ok {
			out = append(out, v.(*Client))
		}
	}
	return out
}

// IsInvited reports whether c is on the invited-bypass list.
func (c *Client) IsInvited(channelName string) bool {
	_, ok := c.Invited[channelName]
	return ok
}

// Invite adds channelName to c's invited-bypass set.
func (c *Client) Invite(channelName string) {
	c.Invited[channelName] = struct{}{}
}

// ClearInvite removes channelName from c's invited-bypass set, called on
// a successful JOIN.
func (c *Client) ClearInvite(channelName string) {
	delete(c.Invited, channelName)
}

// ModeString renders the channel's active simple flags and their
// arguments (i, t, k, l, in that order), for RPL_CHANNELMODEIS.
func (ch *Channel) ModeString() (spec string, args []string) {
	spec = "+"
	if ch.InviteOnly {
		spec += "i"
	}
	if ch.TopicRestricted {
		spec += "t"
	}
	if ch.Key != "" {
		spec += "k"
		args = append(args, ch.Key)
	}
	if ch.Limit > 0 {
		spec += "l"
		args = append(args, strconv.Itoa(ch.Limit))
	}
	return
}
