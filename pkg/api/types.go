package api

// Save is a stored bookmark enriched by the backend with AI-derived metadata.
type Save struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id,omitempty"`
	URL              string   `json:"url"`
	CanonicalURL     string   `json:"canonical_url,omitempty"`
	Platform         string   `json:"platform"`
	ContentType      string   `json:"content_type,omitempty"`
	Title            string   `json:"title,omitempty"`
	CreatorName      string   `json:"creator_name,omitempty"`
	CreatorHandle    string   `json:"creator_handle,omitempty"`
	ThumbnailURL     string   `json:"thumbnail_url,omitempty"`
	AITags           []string `json:"ai_tags,omitempty"`
	AISummary        string   `json:"ai_summary,omitempty"`
	Category         string   `json:"category,omitempty"`
	SavedAt          string   `json:"saved_at,omitempty"`
	IsFavorite       bool     `json:"is_favorite,omitempty"`
	UserNote         string   `json:"user_note,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	EnrichmentStatus string   `json:"enrichment_status,omitempty"`
	CollectionIDs    []string `json:"collection_ids,omitempty"`
}

// DisplayTitle returns the best available human-readable label for the save.
func (s Save) DisplayTitle() string {
	switch {
	case s.Title != "":
		return s.Title
	case s.CanonicalURL != "":
		return s.CanonicalURL
	default:
		return s.URL
	}
}

// LibraryResponse is the library listing payload.
type LibraryResponse struct {
	Saves        []Save `json:"saves"`
	Total        int    `json:"total,omitempty"`
	Query        string `json:"query,omitempty"`
	CollectionID string `json:"collection_id,omitempty"`
}

// IngestResponse is the payload returned after submitting a URL.
type IngestResponse struct {
	Save  *Save  `json:"save,omitempty"`
	Error string `json:"error,omitempty"`
}

// SearchParsed is the backend's interpretation of a natural-language query.
type SearchParsed struct {
	SemanticQuery string `json:"semantic_query,omitempty"`
	Platform      string `json:"platform,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	Temporal      string `json:"temporal,omitempty"`
}

// SmartSearchResponse is the smart-search payload: results plus the parsed
// filter intent.
type SmartSearchResponse struct {
	Saves        []Save        `json:"saves"`
	Total        int           `json:"total"`
	Query        string        `json:"query"`
	Parsed       *SearchParsed `json:"parsed,omitempty"`
	SearchMethod string        `json:"search_method,omitempty"`
}

// Collection is a named group of saves, optionally shared via token and
// optionally collaborative.
type Collection struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id,omitempty"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji,omitempty"`
	Desc       string `json:"description,omitempty"`
	IsPublic   bool   `json:"is_public,omitempty"`
	ShareToken string `json:"share_token,omitempty"`
	SortOrder  int    `json:"sort_order,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	SaveCount  int    `json:"save_count,omitempty"`
	IsOwner    *bool  `json:"is_owner,omitempty"`
	Role       string `json:"role,omitempty"`
}

// IsViewOnly reports whether the current user can only read this collection.
func (c Collection) IsViewOnly() bool {
	if c.IsOwner == nil || *c.IsOwner {
		return false
	}
	return c.Role == "viewer"
}

// IsEditor reports whether the current user can modify this collection.
func (c Collection) IsEditor() bool {
	if c.IsOwner == nil || *c.IsOwner {
		return true
	}
	return c.Role == "editor"
}

// CollectionsResponse is the collections listing payload.
type CollectionsResponse struct {
	Collections []Collection `json:"collections"`
}

// Collaborator is a user invited to a collection.
type Collaborator struct {
	ID           string `json:"id"`
	CollectionID string `json:"collection_id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Role         string `json:"role"`
	Accepted     bool   `json:"accepted"`
	Email        string `json:"email,omitempty"`
	InvitedEmail string `json:"invited_email,omitempty"`
}

// DisplayEmail returns the best available address for the collaborator.
func (c Collaborator) DisplayEmail() string {
	switch {
	case c.Email != "":
		return c.Email
	case c.InvitedEmail != "":
		return c.InvitedEmail
	default:
		return "unknown"
	}
}

// CollaboratorsResponse is the collaborators listing payload.
type CollaboratorsResponse struct {
	Collaborators []Collaborator `json:"collaborators"`
	IsOwner       bool           `json:"is_owner,omitempty"`
}
