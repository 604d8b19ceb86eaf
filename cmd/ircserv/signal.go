package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"ircserv/internal/ircd"
)

// installShutdownTrigger wires SIGINT and SIGTERM to the server's shared
// shutdown flag. The Go runtime's own signal handler only forwards the
// signal to a channel; the goroutine receiving it logs the signal and then
// calls RequestShutdown, which itself is a single atomic store — no
// allocation, no I/O.
func installShutdownTrigger(srv *ircd.Server, log zerolog.Logger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-ch
		log.Info().Str("signal", sig.String()).Msg("shutdown requested")
		srv.RequestShutdown()
	}()
}
