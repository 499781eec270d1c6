package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/dopoapp/dopo-go/pkg/api"
	"github.com/dopoapp/dopo-go/pkg/session"
)

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	if err := a.session.SignIn(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", a.session.State().User.Email)
	return nil
}

func (a *app) cmdSignUp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("signup requires -email and -password")
	}

	pending, err := a.session.SignUp(ctx, *email, *password)
	if err != nil {
		return err
	}
	if pending {
		fmt.Println(session.SignUpPendingMessage)
		return nil
	}
	fmt.Printf("Signed up and signed in as %s\n", *email)
	return nil
}

func (a *app) cmdLogout() error {
	a.session.Logout()
	fmt.Println("Signed out")
	return nil
}

func (a *app) cmdWhoAmI(ctx context.Context) error {
	a.session.Initialize(ctx)

	state := a.session.State()
	switch {
	case state.IsAuthenticated:
		fmt.Printf("%s (%s)\n", state.User.Email, state.User.ID)
	case state.SessionExpired:
		fmt.Println("Session expired. Please sign in again.")
	default:
		fmt.Println("Not signed in")
	}
	return nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	query := fs.String("q", "", "filter by text query")
	platform := fs.String("platform", "", "filter by platform (tiktok, youtube, ...)")
	collection := fs.String("collection", "", "filter by collection ID")
	limit := fs.Int("limit", 0, "page size")
	offset := fs.Int("offset", 0, "page offset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var resp *api.LibraryResponse
	err := a.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = a.client.FetchLibrary(ctx, api.LibraryFilter{
			Query:        *query,
			Platform:     *platform,
			CollectionID: *collection,
			Limit:        *limit,
			Offset:       *offset,
		})
		return callErr
	})
	if err != nil {
		return err
	}

	printSaves(resp.Saves)
	return nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	platform := fs.String("platform", "", "filter by platform")
	limit := fs.Int("limit", 0, "result limit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return errors.New("search requires a query")
	}

	var resp *api.SmartSearchResponse
	err := a.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = a.client.SmartSearch(ctx, query, *platform, *limit)
		return callErr
	})
	if err != nil {
		// Smart search degrades to a plain library text search.
		return a.basicSearch(ctx, query, *platform, *limit)
	}

	if resp.Parsed != nil && resp.Parsed.SemanticQuery != "" {
		fmt.Printf("Interpreted as: %s\n", resp.Parsed.SemanticQuery)
	}
	printSaves(resp.Saves)
	return nil
}

func (a *app) basicSearch(ctx context.Context, query, platform string, limit int) error {
	var resp *api.LibraryResponse
	err := a.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = a.client.FetchLibrary(ctx, api.LibraryFilter{
			Query:    query,
			Platform: platform,
			Limit:    limit,
		})
		return callErr
	})
	if err != nil {
		return err
	}
	printSaves(resp.Saves)
	return nil
}

func (a *app) cmdFlags() error {
	if len(a.remote.Features) == 0 {
		fmt.Println("No feature flags")
	}
	for name, feature := range a.remote.Features {
		state := "off"
		if feature.Enabled {
			state = fmt.Sprintf("on (%d%% rollout)", feature.Rollout)
		}
		fmt.Printf("%-24s %s\n", name, state)
	}
	fmt.Printf("minimum version: %s\n", a.remote.MinimumVersion)
	if a.remote.APIVersion != nil && a.remote.APIVersion.Current != "" {
		fmt.Printf("api version: %s\n", a.remote.APIVersion.Current)
	}
	return nil
}

func (a *app) cmdSave(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("save requires exactly one URL")
	}

	var resp *api.IngestResponse
	err := a.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = a.client.Ingest(ctx, args[0])
		return callErr
	})
	if err != nil {
		return err
	}

	if resp.Save != nil {
		fmt.Printf("Saved: %s\n", resp.Save.DisplayTitle())
	} else {
		fmt.Println("Saved")
	}
	return nil
}

func (a *app) cmdFavorite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fav", flag.ContinueOnError)
	off := fs.Bool("off", false, "remove the favorite flag instead of setting it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("fav requires exactly one save ID")
	}

	return a.withRetry(ctx, func() error {
		return a.client.ToggleFavorite(ctx, fs.Arg(0), !*off)
	})
}

func (a *app) cmdRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("rm requires exactly one save ID")
	}
	return a.withRetry(ctx, func() error {
		return a.client.DeleteSave(ctx, args[0])
	})
}

func (a *app) cmdCollections(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	action, actionArgs := args[0], args[1:]

	switch action {
	case "list":
		var resp *api.CollectionsResponse
		err := a.withRetry(ctx, func() error {
			var callErr error
			resp, callErr = a.client.FetchCollections(ctx)
			return callErr
		})
		if err != nil {
			return err
		}
		for _, col := range resp.Collections {
			role := "owner"
			if col.IsOwner != nil && !*col.IsOwner {
				role = col.Role
			}
			fmt.Printf("%s  %s %s (%d saves, %s)\n", col.ID, col.Emoji, col.Name, col.SaveCount, role)
		}
		return nil

	case "create":
		fs := flag.NewFlagSet("collections create", flag.ContinueOnError)
		name := fs.String("name", "", "collection name")
		emoji := fs.String("emoji", "", "collection emoji")
		if err := fs.Parse(actionArgs); err != nil {
			return err
		}
		if *name == "" {
			return errors.New("collections create requires -name")
		}
		return a.withRetry(ctx, func() error {
			return a.client.CreateCollection(ctx, *name, *emoji)
		})

	case "rename":
		fs := flag.NewFlagSet("collections rename", flag.ContinueOnError)
		id := fs.String("id", "", "collection ID")
		name := fs.String("name", "", "new name")
		emoji := fs.String("emoji", "", "new emoji (optional)")
		if err := fs.Parse(actionArgs); err != nil {
			return err
		}
		if *id == "" || *name == "" {
			return errors.New("collections rename requires -id and -name")
		}
		return a.withRetry(ctx, func() error {
			return a.client.RenameCollection(ctx, *id, *name, *emoji)
		})

	case "delete":
		if len(actionArgs) != 1 {
			return errors.New("collections delete requires exactly one collection ID")
		}
		return a.withRetry(ctx, func() error {
			return a.client.DeleteCollection(ctx, actionArgs[0])
		})

	case "add", "remove":
		fs := flag.NewFlagSet("collections "+action, flag.ContinueOnError)
		id := fs.String("id", "", "collection ID")
		save := fs.String("save", "", "save ID")
		if err := fs.Parse(actionArgs); err != nil {
			return err
		}
		if *id == "" || *save == "" {
			return fmt.Errorf("collections %s requires -id and -save", action)
		}
		return a.withRetry(ctx, func() error {
			if action == "add" {
				return a.client.AddSaveToCollection(ctx, *id, *save)
			}
			return a.client.RemoveSaveFromCollection(ctx, *id, *save)
		})

	case "share":
		if len(actionArgs) != 1 {
			return errors.New("collections share requires exactly one collection ID")
		}
		var col *api.Collection
		err := a.withRetry(ctx, func() error {
			var callErr error
			col, callErr = a.client.ToggleCollectionShare(ctx, actionArgs[0])
			return callErr
		})
		if err != nil {
			return err
		}
		if col.IsPublic {
			fmt.Printf("Sharing on: %s\n", col.ShareToken)
		} else {
			fmt.Println("Sharing off")
		}
		return nil

	default:
		return fmt.Errorf("unknown collections action: %s", action)
	}
}

func (a *app) cmdCollaborators(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("collaborators requires an action: list, invite, remove")
	}
	action, actionArgs := args[0], args[1:]

	switch action {
	case "list":
		if len(actionArgs) != 1 {
			return errors.New("collaborators list requires exactly one collection ID")
		}
		var resp *api.CollaboratorsResponse
		err := a.withRetry(ctx, func() error {
			var callErr error
			resp, callErr = a.client.FetchCollaborators(ctx, actionArgs[0])
			return callErr
		})
		if err != nil {
			return err
		}
		for _, collab := range resp.Collaborators {
			status := "accepted"
			if !collab.Accepted {
				status = "invited"
			}
			fmt.Printf("%s  %s (%s, %s)\n", collab.ID, collab.DisplayEmail(), collab.Role, status)
		}
		return nil

	case "invite":
		fs := flag.NewFlagSet("collaborators invite", flag.ContinueOnError)
		id := fs.String("id", "", "collection ID")
		email := fs.String("email", "", "invitee email")
		role := fs.String("role", "viewer", "role: viewer or editor")
		if err := fs.Parse(actionArgs); err != nil {
			return err
		}
		if *id == "" || *email == "" {
			return errors.New("collaborators invite requires -id and -email")
		}
		return a.withRetry(ctx, func() error {
			return a.client.InviteCollaborator(ctx, *id, *email, *role)
		})

	case "remove":
		if len(actionArgs) != 1 {
			return errors.New("collaborators remove requires exactly one collaborator ID")
		}
		return a.withRetry(ctx, func() error {
			return a.client.RemoveCollaborator(ctx, actionArgs[0])
		})

	default:
		return fmt.Errorf("unknown collaborators action: %s", action)
	}
}

func printSaves(saves []api.Save) {
	if len(saves) == 0 {
		fmt.Println("No saves")
		return
	}
	for _, save := range saves {
		fav := " "
		if save.IsFavorite {
			fav = "*"
		}
		fmt.Printf("%s %s  [%s] %s\n", fav, save.ID, save.Platform, save.DisplayTitle())
	}
}
