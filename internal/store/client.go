// Package store holds the process-wide collection of connected clients
// and named channels: the entity store described by the server design.
// It owns no sockets and runs no goroutines of its own — the event loop
// is the sole mutator, which is what lets every method here run without
// locking.
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ircserv/internal/ircmsg"
)

// Client is one connected peer, possibly still pre-registration.
type Client struct {
	// ID is a stable identifier surviving nickname changes, used as the
	// client registry's primary key and as the channel membership key —
	// the generational-id strategy the design notes recommend in place
	// of raw pointers.
	ID uuid.UUID

	Fd   int // the socket's file descriptor, used by the event loop's poll set
	Host string

	Authenticated bool
	Nick          string
	User          string
	Real          string

	Registered   bool
	WelcomeSent  bool
	ConnectedAt  time.Time

	SendQCur uint
	SendQMax uint

	Reassembler ircmsg.Reassembler

	// Invited is the set of canonical channel names this client may JOIN
	// despite +i, populated by INVITE and drained on successful JOIN.
	Invited map[string]struct{}

	send func(string) error
}

// NewClient constructs a fresh, pre-registration client bound to fd and
// host, with the given line sender.
func NewClient(fd int, host string, send func(string) error) *Client {
	return &Client{
		ID:          uuid.New(),
		Fd:          fd,
		Host:        host,
		ConnectedAt: time.Now(),
		SendQMax:    512 * 1024,
		Invited:     map[string]struct{}{},
		send:        send,
	}
}

// Prefix renders the nick!user@host identifier used as a message prefix
// for lines this client originates.
func (c *Client) Prefix() string {
	return fmt.Sprintf("%s!%s@%s", c.Nick, c.User, c.Host)
}

// Send writes a single CRLF-terminated line through the client's sender,
// enforcing the soft send-queue cap. Nothing is buffered: SendQCur counts
// only the line being written, so the cap rejects a single line longer
// than SendQMax. Returns the cap or write error, if any.
func (c *Client) Send(line string) error {
	if c.SendQCur+uint(len(line)) > c.SendQMax {
		return fmt.Errorf("sendq exceeded for %s", c.ID)
	}
	c.SendQCur += uint(len(line))
	err := c.send(line)
	c.SendQCur -= uint(len(line))
	return err
}

// RecomputeRegistered applies the registration predicate — authenticated
// and both Nick and User set — and reports whether this call produced the
// rising edge (the one moment the welcome burst must fire).
func (c *Client) RecomputeRegistered() (risingEdge bool) {
	was := c.Registered
	c.Registered = c.Authenticated && c.Nick != "" && c.User != ""
	return c.Registered && !was
}
