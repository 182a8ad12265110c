package api

import (
	"github.com/starford/ansuz/internal/links"
	"github.com/starford/ansuz/internal/objects"
)

// CreateObjectRequest is the request body for creating an object.
type CreateObjectRequest struct {
	ID       string `json:"id,omitempty"`
	Markdown string `json:"markdown"`
}

// UpdateObjectRequest is the request body for replacing object content.
type UpdateObjectRequest struct {
	Markdown string `json:"markdown"`
}

// AddLinkRequest is the request body for appending a link to an object.
type AddLinkRequest struct {
	TargetID    string `json:"target_id"`
	DisplayText string `json:"display_text,omitempty"`
	Embed       bool   `json:"embed,omitempty"`
}

// ObjectDetail is the full object response type (aliased from the domain layer).
type ObjectDetail = objects.Detail

// ObjectListItem is a lightweight item in a list response (aliased from the domain layer).
type ObjectListItem = objects.ListItem

// ObjectListResponse wraps paginated object listings.
type ObjectListResponse struct {
	Objects []ObjectListItem `json:"objects"`
	Total   int              `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// LinksResponse wraps the outgoing relations of an object.
type LinksResponse struct {
	Links []links.Relation `json:"links"`
}

// BacklinksResponse wraps the ids of objects that link to the requested one.
type BacklinksResponse struct {
	Backlinks []string `json:"backlinks"`
}
