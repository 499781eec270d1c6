package api

import (
	"context"
	"net/http"

	"github.com/yosida95/uritemplate/v3"
)

// FetchCollaborators lists the collaborators of a collection.
func (c *Client) FetchCollaborators(ctx context.Context, collectionID string) (*CollaboratorsResponse, error) {
	url := expand(collaboratorsTmpl, uritemplate.Values{
		"base":          uritemplate.String(c.libraryURL),
		"collection_id": uritemplate.String(collectionID),
	})
	data, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var out CollaboratorsResponse
	if err := c.decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InviteCollaborator invites an email address to a collection with the given
// role ("viewer" or "editor").
func (c *Client) InviteCollaborator(ctx context.Context, collectionID, email, role string) error {
	url := expand(collaboratorsTmpl, uritemplate.Values{
		"base": uritemplate.String(c.libraryURL),
	})
	body := map[string]string{
		"collection_id": collectionID,
		"email":         email,
		"role":          role,
	}
	_, err := c.do(ctx, http.MethodPost, url, body)
	return err
}

// RemoveCollaborator removes a collaborator by ID.
func (c *Client) RemoveCollaborator(ctx context.Context, collaboratorID string) error {
	url := expand(collaboratorByIDTmpl, uritemplate.Values{
		"base": uritemplate.String(c.libraryURL),
		"id":   uritemplate.String(collaboratorID),
	})
	_, err := c.do(ctx, http.MethodDelete, url, nil)
	return err
}
