// Package main provides dopo-share, the one-shot save command used from
// share sheets and scripts. It runs independently of the main client: it
// reads the shared credential namespace, performs a single ingest, and never
// signs in or refreshes tokens.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/keystore"
	"github.com/dopoapp/dopo-go/pkg/share"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("dopo-share", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, "Usage: dopo-share [-config path] <url-or-text>\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("nothing to save")
	}

	rawURL, ok := share.ExtractURL(fs.Arg(0))
	if !ok {
		return errors.New("no URL found in shared content")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	store := keystore.NewKeyringStore(cfg.KeyringService)
	client := share.New(cfg, store)

	fmt.Printf("Saving %s...\n", share.DisplayHost(rawURL))

	result, err := client.Ingest(context.Background(), rawURL)
	switch {
	case errors.Is(err, share.ErrNotSignedIn):
		return errors.New("not signed in — run `dopo login` first")
	case err != nil:
		return err
	case result.AlreadySaved:
		fmt.Println("Already in your library!")
	default:
		fmt.Printf("Saved! %s\n", result.Title)
	}
	return nil
}
