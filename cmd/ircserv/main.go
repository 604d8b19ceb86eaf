// Command ircserv is the process entry point: it validates the
// <port> <password> invocation, loads the optional HCL config file,
// opens the listening socket, and runs the event loop until shutdown.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ircserv/internal/config"
	"ircserv/internal/ircd"
	"ircserv/internal/logging"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "ircserv <port> <password>",
		Short: "A single-process RFC 1459 subset IRC server",
		Args:  cobra.ExactArgs(2),
		RunE:  run,
	}
	root.SetOut(os.Stderr)
	root.SetErr(os.Stderr)
	root.Flags().StringVar(&configPath, "config", "", "optional HCL config file (MOTD, server name, ban list)")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	// Malformed invocations (wrong arg count, bad port/password) print
	// usage to stderr via cobra's default error handling; any error here
	// is a startup or fatal runtime failure, exit code 1 either way.
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	port, err := parsePort(args[0])
	if err != nil {
		return err
	}
	password, err := parsePassword(args[1])
	if err != nil {
		return err
	}

	log := logging.New(logLevel)

	extra, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config %q: %w", configPath, err)
	}

	var motd []string
	if extra.MOTDPath != "" {
		motd = loadMOTD(extra.MOTDPath, log)
	}

	srv := ircd.New(ircd.Config{
		Password: password,
		Name:     extra.ServerName,
		MOTD:     motd,
		Bans:     config.NewBanList(extra.Bans),
		Log:      log,
	})

	// SIGPIPE is ignored so that writes to a peer that has already closed
	// its read side return an ordinary EPIPE error instead of killing the
	// process.
	signal.Ignore(syscall.SIGPIPE)
	installShutdownTrigger(srv, log)

	if err := srv.Listen(port); err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	log.Info().Int("port", port).Msg("listening")

	if err := srv.Run(); err != nil {
		return err
	}
	log.Info().Msg("shut down gracefully")
	return nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1024 || n > 65535 {
		return 0, fmt.Errorf("port must be an integer in [1024, 65535], got %q", s)
	}
	return n, nil
}

func parsePassword(s string) (string, error) {
	if s == "" || len(s) > 50 || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("password must be non-empty, at most 50 bytes, and contain no whitespace")
	}
	return s, nil
}

func loadMOTD(path string, log zerolog.Logger) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not read MOTD file")
		return nil
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
