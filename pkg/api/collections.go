package api

import (
	"context"
	"net/http"

	"github.com/yosida95/uritemplate/v3"
)

// Collection action verbs. The collections endpoint multiplexes membership
// and sharing mutations through action-style POSTs.
const (
	actionAddSave     = "add_save"
	actionRemoveSave  = "remove_save"
	actionToggleShare = "toggle_share"
)

func (c *Client) collectionsURL() string {
	return expand(collectionsTmpl, uritemplate.Values{
		"base": uritemplate.String(c.libraryURL),
	})
}

// FetchCollections lists the user's collections, owned and collaborative.
func (c *Client) FetchCollections(ctx context.Context) (*CollectionsResponse, error) {
	data, err := c.do(ctx, http.MethodGet, c.collectionsURL(), nil)
	if err != nil {
		return nil, err
	}

	var out CollectionsResponse
	if err := c.decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCollection creates a named collection.
func (c *Client) CreateCollection(ctx context.Context, name, emoji string) error {
	body := map[string]string{"name": name, "emoji": emoji}
	_, err := c.do(ctx, http.MethodPost, c.collectionsURL(), body)
	return err
}

// RenameCollection updates a collection's name and, when non-empty, its
// emoji.
func (c *Client) RenameCollection(ctx context.Context, collectionID, name, emoji string) error {
	body := map[string]string{"id": collectionID, "name": name}
	if emoji != "" {
		body["emoji"] = emoji
	}
	_, err := c.do(ctx, http.MethodPatch, c.collectionsURL(), body)
	return err
}

// DeleteCollection removes a collection by ID. Saves inside it are not
// deleted.
func (c *Client) DeleteCollection(ctx context.Context, collectionID string) error {
	url := expand(collectionByIDTmpl, uritemplate.Values{
		"base": uritemplate.String(c.libraryURL),
		"id":   uritemplate.String(collectionID),
	})
	_, err := c.do(ctx, http.MethodDelete, url, nil)
	return err
}

// AddSaveToCollection places a save into a collection.
func (c *Client) AddSaveToCollection(ctx context.Context, collectionID, saveID string) error {
	body := map[string]string{
		"action":        actionAddSave,
		"collection_id": collectionID,
		"save_id":       saveID,
	}
	_, err := c.do(ctx, http.MethodPost, c.collectionsURL(), body)
	return err
}

// RemoveSaveFromCollection takes a save out of a collection.
func (c *Client) RemoveSaveFromCollection(ctx context.Context, collectionID, saveID string) error {
	body := map[string]string{
		"action":        actionRemoveSave,
		"collection_id": collectionID,
		"save_id":       saveID,
	}
	_, err := c.do(ctx, http.MethodPost, c.collectionsURL(), body)
	return err
}

// ToggleCollectionShare flips a collection's public sharing and returns the
// updated collection (including the share token when enabled).
func (c *Client) ToggleCollectionShare(ctx context.Context, collectionID string) (*Collection, error) {
	body := map[string]string{
		"action":        actionToggleShare,
		"collection_id": collectionID,
	}
	data, err := c.do(ctx, http.MethodPost, c.collectionsURL(), body)
	if err != nil {
		return nil, err
	}

	var out Collection
	if err := c.decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
