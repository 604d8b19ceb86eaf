// Package ircd implements the command dispatcher, registration state
// machine, numeric-reply formatting, and the poll-driven event loop that
// together multiplex connected IRC clients over named channels.
package ircd

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"ircserv/internal/config"
	"ircserv/internal/store"
)

// ServerName is the constant identity this server reports in its
// prefix and in RPL_YOURHOST/RPL_MYINFO, unless overridden by config.
const ServerName = "ft_irc.42.fr"

// Config bundles everything Server needs at construction. The listening
// port is not part of Config — it is passed explicitly to Listen, since
// Listen is a separate step from construction.
type Config struct {
	Password string
	Name     string // overrides ServerName when non-empty
	MOTD     []string
	Bans     config.BanList
	Log      zerolog.Logger
}

// Server holds all process-wide IRC state: the password, the entity
// store, and the single shutdown flag the event loop polls. It is
// exclusively owned and mutated by the event loop's goroutine, with the
// sole exception of the shutdown flag, which a signal handler may set
// concurrently — hence the atomic.
type Server struct {
	name      string
	password  string
	createdAt string
	motd      []string
	bans      config.BanList
	log       zerolog.Logger

	store *store.Store

	shutdown atomic.Bool

	listenFd int
}

// New constructs a Server ready to Run. It does not open any socket.
func New(cfg Config) *Server {
	name := cfg.Name
	if name == "" {
		name = ServerName
	}
	return &Server{
		name:      name,
		password:  cfg.Password,
		createdAt: time.Now().Format(time.RFC1123),
		motd:      cfg.MOTD,
		bans:      cfg.Bans,
		log:       cfg.Log,
		store:     store.New(),
	}
}

// RequestShutdown sets the shared shutdown flag. It performs no
// allocation and no I/O, so it is safe to call from a signal handler.
func (s *Server) RequestShutdown() {
	s.shutdown.Store(true)
}

func (s *Server) shutdownRequested() bool {
	return s.shutdown.Load()
}

// sendNumeric formats and sends a numeric reply to c: ":<server> <code>
// <nick-or-*> <message...>".
func (s *Server) sendNumeric(c *store.Client, code int, params ...string) {
	nick := c.Nick
	if nick == "" {
		nick = "*"
	}
	all := append([]string{nick}, params...)
	s.sendFromServer(c, fmt.Sprintf("%03d", code), all...)
}

// sendFromServer sends a message prefixed by this server's name.
func (s *Server) sendFromServer(c *store.Client, command string, params ...string) {
	s.sendRaw(c, ":"+s.name+" "+formatTrailing(command, params))
}

// sendFromClient sends a message prefixed by origin's nick!user@host.
func (s *Server) sendFromClient(c *store.Client, origin *store.Client, command string, params ...string) {
	s.sendRaw(c, ":"+origin.Prefix()+" "+formatTrailing(command, params))
}

func (s *Server) sendRaw(c *store.Client, line string) {
	if err := c.Send(line + "\r\n"); err != nil {
		s.log.Debug().Str("client", c.ID.String()).Err(err).Msg("write failed, disconnecting")
		s.disconnect(c, "write error")
	}
}

// formatTrailing joins command and params IRC-wire style, using a
// leading colon on the final parameter when it contains a space, starts
// with a colon, or is empty, matching ircmsg.Message.Format's
// trailing-parameter rule.
func formatTrailing(command string, params []string) string {
	out := command
	n := len(params)
	for i, p := range params {
		out += " "
		if i == n-1 && (p == "" || p[0] == ':' || containsSpace(p)) {
			out += ":"
		}
		out += p
	}
	return out
}

// closeSocket closes c's underlying file descriptor. It is always called
// after the client has already been removed from the store, so the event
// loop's next readiness rebuild will no longer reference this fd.
func (s *Server) closeSocket(c *store.Client) {
	if err := unix.Close(c.Fd); err != nil {
		s.log.Debug().Int("fd", c.Fd).Err(err).Msg("close failed")
	}
}

func containsSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return true
		}
	}
	return false
}
