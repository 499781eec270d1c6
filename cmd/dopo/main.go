// Package main provides the dopo command-line client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dopoapp/dopo-go/pkg/api"
	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/keystore"
	"github.com/dopoapp/dopo-go/pkg/remoteconfig"
	"github.com/dopoapp/dopo-go/pkg/session"
)

const version = "1.0.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

const usage = `Usage: dopo [-config path] <command> [arguments]

Commands:
  login          sign in with email and password
  signup         create an account
  logout         sign out and clear stored credentials
  whoami         show the signed-in account
  list           list saves, with optional filters
  search         natural-language search across saves
  save           save a URL
  fav            toggle a save's favorite flag
  rm             delete a save
  collections    manage collections
  collaborators  manage collection collaborators
  flags          show remote feature flags
  version        print the client version
`

func run(args []string) error {
	globals := flag.NewFlagSet("dopo", flag.ContinueOnError)
	configPath := globals.String("config", "", "path to configuration file")
	globals.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := globals.Parse(args); err != nil {
		return err
	}

	rest := globals.Args()
	if len(rest) == 0 {
		globals.Usage()
		return errors.New("no command given")
	}
	command, commandArgs := rest[0], rest[1:]

	if command == "version" {
		fmt.Printf("dopo version %s\n", version)
		return nil
	}

	ctx := setupSignalHandler()

	app, err := newApp(ctx, *configPath)
	if err != nil {
		return err
	}
	return app.dispatch(ctx, command, commandArgs)
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

// app wires the services behind the subcommands.
type app struct {
	cfg     config.Config
	session *session.Manager
	client  *api.Client
	remote  remoteconfig.Config
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store := keystore.NewKeyringStore(cfg.KeyringService)
	legacy := keystore.NewFileStore(legacyStorePath())

	manager := session.NewManager(cfg, store, session.WithLegacyStore(legacy))
	client := api.New(cfg, manager, api.WithUnauthorizedHandler(manager))

	// One-shot config fetch; failures degrade to defaults and never block.
	remote := remoteconfig.NewFetcher(cfg).Fetch(ctx)
	if remote.UpdateRequired(cfg.AppVersion) {
		return nil, fmt.Errorf("this client version (%s) is no longer supported, please update", cfg.AppVersion)
	}

	return &app{cfg: cfg, session: manager, client: client, remote: remote}, nil
}

// legacyStorePath is where pre-keyring releases kept credentials in plain
// text; Initialize migrates it into the keyring once.
func legacyStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "dopo", "credentials.json")
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "signup":
		return a.cmdSignUp(ctx, args)
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoAmI(ctx)
	case "list":
		return a.cmdList(ctx, args)
	case "search":
		return a.cmdSearch(ctx, args)
	case "save":
		return a.cmdSave(ctx, args)
	case "fav":
		return a.cmdFavorite(ctx, args)
	case "rm":
		return a.cmdRemove(ctx, args)
	case "collections":
		return a.cmdCollections(ctx, args)
	case "collaborators":
		return a.cmdCollaborators(ctx, args)
	case "flags":
		return a.cmdFlags()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// withRetry runs one gateway call and retries it once when a 401 was
// absorbed by a successful refresh. The gateway itself never retries.
func (a *app) withRetry(ctx context.Context, call func() error) error {
	err := call()
	if !errors.Is(err, api.ErrUnauthorized) {
		return userFacing(err)
	}
	if a.session.State().SessionExpired {
		return userFacing(err)
	}
	return userFacing(call())
}

// userFacing converts gateway errors to their short user-facing messages.
func userFacing(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(api.UserMessage(err))
}
