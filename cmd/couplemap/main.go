// Package main is a terminal client for a CoupleMap server. It keeps the
// invite code in a credentials file and goes through the same sync layer a
// map UI would: a cached store, marker reconciliation, a debounced search
// and the draft workflow for saving a result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/couplemap/couplemap/internal/client"
	"github.com/couplemap/couplemap/internal/logging"
	"github.com/couplemap/couplemap/internal/mapsync"
)

const defaultServer = "http://localhost:8080"

const usage = `usage: couplemap [flags] <command> [args]

commands:
  create                 start a new couple and store its invite code
  join CODE              join a partner's couple
  rotate                 replace the invite code (the partner must join again)
  code                   print the stored invite code
  folders                list folders with their place counts
  places                 list places as map markers (-folder, -unassigned)
  search QUERY           search for a place
  save QUERY             search and save a result (-pick, -title, -tags, ...)
  delete PLACE_ID        delete a saved place

flags:
`

// usageError is a mistake on the command line, reported as is.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "couplemap:", message(err))
		os.Exit(1)
	}
}

// app is everything a command needs.
type app struct {
	client   *client.Client
	store    *mapsync.Store
	out      io.Writer
	debounce time.Duration
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("couplemap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	server := fs.String("server", envOr("COUPLEMAP_SERVER", defaultServer), "server base URL (env COUPLEMAP_SERVER)")
	credPath := fs.String("credentials", defaultCredentialsPath(), "file holding the invite code")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	debounce := fs.Duration("debounce", mapsync.DefaultDebounce, "pause before a search is sent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return usagef("no command given")
	}

	logger := logging.New(stderr, *logLevel, "text")
	c, err := client.New(*server, client.Options{
		Credentials: &client.FileCredentials{Path: *credPath},
		OnAuthError: func() { logger.Warn("invite code rejected; stored code cleared") },
		Logger:      logger,
	})
	if err != nil {
		return usagef("%v", err)
	}
	a := &app{
		client:   c,
		store:    mapsync.NewStore(c, c.Credentials().Get),
		out:      stdout,
		debounce: *debounce,
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		return usagef("unknown command %q", name)
	}
	if err := cmd(ctx, a, rest); err != nil {
		logger.Debug("command failed", "command", name, "error", err)
		return err
	}
	return nil
}

// message picks the text shown for err. Server and network failures get the
// same friendly copy the app shows; local mistakes are printed verbatim.
func message(err error) string {
	var apiErr *client.Error
	switch {
	case errors.Is(err, client.ErrNoCredential):
		return "no invite code stored; run `couplemap create` or `couplemap join CODE` first"
	case errors.As(err, &apiErr), errors.Is(err, client.ErrUnreachable):
		return client.UserMessage(err)
	default:
		return err.Error()
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".couplemap-credentials.json"
	}
	return filepath.Join(dir, "couplemap", "credentials.json")
}
