package ircd

import (
	"fmt"

	"golang.org/x/sys/unix"

	"ircserv/internal/store"
)

const (
	readBufSize  = 512
	pollTimeout  = 1000 // ms
	listenBacklog = 10
)

// Listen opens the IPv4 listening socket on port, non-blocking, with
// SO_REUSEADDR set and the backlog spec.md §6 mandates.
func (s *Server) Listen(port int) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("setsockopt: %w", err)
	}
	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return fmt.Errorf("bind: %w", err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return fmt.Errorf("listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return fmt.Errorf("nonblock: %w", err)
	}
	s.listenFd = fd
	return nil
}

// Port reports the actual port the listening socket is bound to, which
// matters when Listen was called with port 0 (OS-assigned), as tests do.
func (s *Server) Port() int {
	sa, err := unix.Getsockname(s.listenFd)
	if err != nil {
		return 0
	}
	if a, ok := sa.(*unix.SockaddrInet4); ok {
		return a.Port
	}
	return 0
}

// Run drives the single-threaded poll loop until the shutdown flag is
// observed or the listener/poll primitive fails terminally.
func (s *Server) Run() error {
	for {
		if s.shutdownRequested() {
			s.teardown()
			return nil
		}

		fds := s.buildPollset()
		n, err := unix.Poll(fds, pollTimeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			s.log.Error().Err(err).Msg("poll failed, terminating")
			s.teardown()
			return err
		}
		if n == 0 {
			continue
		}

		listenerFd := fds[0]
		if listenerFd.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			s.log.Error().Int("revents", int(listenerFd.Revents)).Msg("listener failed, terminating")
			s.teardown()
			return fmt.Errorf("listener socket error (revents %#x)", listenerFd.Revents)
		}
		if listenerFd.Revents&unix.POLLIN != 0 {
			s.acceptOne()
		}

		for _, pfd := range fds[1:] {
			if pfd.Revents == 0 {
				continue
			}
			c, ok := s.store.ClientByFd(int(pfd.Fd))
			if !ok {
				continue
			}
			if pfd.Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
				s.disconnect(c, "Connection reset")
				continue
			}
			if pfd.Revents&unix.POLLIN != 0 {
				s.serviceClient(c)
			}
		}
	}
}

// buildPollset rebuilds the readiness array from scratch: the listener
// first, then every connected client, all requesting read-readiness —
// rebuilding every iteration keeps this in step with accepts/disconnects
// that happened during the previous iteration.
func (s *Server) buildPollset() []unix.PollFd {
	fds := []unix.PollFd{{Fd: int32(s.listenFd), Events: unix.POLLIN}}
	s.store.EachClient(func(c *store.Client) {
		fds = append(fds, unix.PollFd{Fd: int32(c.Fd), Events: unix.POLLIN})
	})
	return fds
}

// acceptOne accepts a single pending connection, by design, so that one
// connect storm cannot starve already-connected clients within a single
// 1-second poll interval.
func (s *Server) acceptOne() {
	fd, sa, err := unix.Accept(s.listenFd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return
		}
		s.log.Debug().Err(err).Msg("accept failed")
		return
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		s.log.Debug().Err(err).Msg("nonblock failed on accepted socket")
		unix.Close(fd)
		return
	}

	host := hostOf(sa)
	c := store.NewClient(fd, host, func(line string) error {
		_, werr := unix.Write(fd, []byte(line))
		return werr
	})
	s.store.AddClient(c)
}

func hostOf(sa unix.Sockaddr) string {
	if a, ok := sa.(*unix.SockaddrInet4); ok {
		return fmt.Sprintf("%d.%d.%d.%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3])
	}
	return "unknown"
}

// serviceClient reads once into a fixed buffer, appends to the client's
// reassembler, and drains every whole line it now yields. After each
// dispatched line it re-checks that the client still exists in the
// registry, since a QUIT or overflow may have removed it mid-drain.
func (s *Server) serviceClient(c *store.Client) {
	var buf [readBufSize]byte
	n, err := unix.Read(c.Fd, buf[:])
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
		return
	}
	if err != nil || n == 0 {
		s.disconnect(c, "EOF")
		return
	}

	c.Reassembler.Append(buf[:n])

	for {
		line, ok := c.Reassembler.TakeLine()
		if !ok {
			break
		}
		s.Dispatch(c, line)
		if _, stillPresent := s.store.ClientByFd(c.Fd); !stillPresent {
			return
		}
	}

	if c.Reassembler.Overflowed() {
		s.disconnect(c, "Input buffer overflow")
	}
}

// teardown runs on graceful shutdown: every connected client is
// disconnected (which empties and prunes every channel), then the
// listening socket is closed.
func (s *Server) teardown() {
	for _, c := range s.allClients() {
		s.disconnect(c, "Server shutting down")
	}
	unix.Close(s.listenFd)
}

func (s *Server) allClients() []*store.Client {
	var out []*store.Client
	s.store.EachClient(func(c *store.Client) {
		out = append(out, c)
	})
	return out
}
