// Package objects coordinates the block codec, link codec, store, and
// graph traversal behind one service surface consumed by the API and the
// MCP server.
package objects

import (
	"context"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/blocks"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/links"
	"github.com/starford/ansuz/internal/store"
)

// Detail is the full representation of a content object.
type Detail struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Markdown  string         `json:"markdown"`
	Blocks    []blocks.Block `json:"blocks"`
	Checksum  string         `json:"checksum"`
	Backlinks []string       `json:"backlinks"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ListItem is a lightweight item in a list response.
type ListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates codec and store operations.
type Service struct {
	db store.ObjectStore
	// resolver feeds graph traversals; in production this is the store
	// itself, in tests it can be any fixed graph.
	resolver graph.Resolver
	onChange func(kind, id string)
}

// NewService creates a new object service. The store doubles as the
// traversal resolver.
func NewService(db *store.DB) *Service {
	return &Service{db: db, resolver: db}
}

// OnChange registers a callback invoked after every successful mutation.
// kind is one of "created", "updated", "deleted". Register before the
// service handles traffic; there is no locking around the callback slot.
func (s *Service) OnChange(fn func(kind, id string)) {
	s.onChange = fn
}

func (s *Service) notify(kind, id string) {
	if s.onChange != nil {
		s.onChange(kind, id)
	}
}

// Create parses markdown into blocks and stores a new object. The id is
// generated unless one is supplied; supplying the id of an existing
// object is rejected.
func (s *Service) Create(_ context.Context, id, markdown string) (*Detail, error) {
	if id == "" {
		id = blocks.NewID()
	} else if _, err := s.db.GetObject(id); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	detail, err := s.write(id, markdown)
	if err != nil {
		return nil, err
	}
	s.notify("created", id)
	return detail, nil
}

// Get loads an object and enriches it with backlinks.
func (s *Service) Get(_ context.Context, id string) (*Detail, error) {
	row, err := s.db.GetObject(id)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(row)
}

// Update stores new markdown content with optimistic concurrency: when
// ifMatch is non-empty it must equal the stored checksum.
func (s *Service) Update(_ context.Context, id, markdown, ifMatch string) (*Detail, error) {
	existing, err := s.db.GetObject(id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != existing.Checksum {
		return nil, apperr.ErrConflict
	}
	detail, err := s.write(id, markdown)
	if err != nil {
		return nil, err
	}
	s.notify("updated", id)
	return detail, nil
}

// Delete removes an object from the store.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := s.db.DeleteObject(id); err != nil {
		return err
	}
	s.notify("deleted", id)
	return nil
}

// List returns paginated objects.
func (s *Service) List(_ context.Context, limit, offset int) ([]ListItem, int, error) {
	rows, total, err := s.db.ListObjects(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ListItem, len(rows))
	for i, r := range rows {
		items[i] = ListItem{ID: r.ID, Title: r.Title, Checksum: r.Checksum, UpdatedAt: r.UpdatedAt}
	}
	return items, total, nil
}

// Search delegates full-text search to the store.
func (s *Service) Search(_ context.Context, query string, limit int) ([]store.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Links returns the outgoing relations of an object, recomputed from its
// current block content.
func (s *Service) Links(_ context.Context, id string) ([]links.Relation, error) {
	row, err := s.db.GetObject(id)
	if err != nil {
		return nil, err
	}
	return links.Extract(row.Blocks, row.ID), nil
}

// Backlinks returns the ids of all objects linking to id.
func (s *Service) Backlinks(_ context.Context, id string) ([]string, error) {
	return s.db.Backlinks(id)
}

// AddLink appends a link from source to target, inline into the last
// text block or as a block-level embed, and persists the result.
func (s *Service) AddLink(_ context.Context, sourceID, targetID, displayText string, asEmbed bool) (*Detail, error) {
	source, err := s.db.GetObject(sourceID)
	if err != nil {
		return nil, err
	}
	if displayText == "" {
		if target, err := s.db.GetObject(targetID); err == nil && target.Title != "" {
			displayText = target.Title
		} else {
			displayText = targetID
		}
	}

	updated := links.Add(source.Blocks, targetID, displayText, asEmbed)
	detail, err := s.writeBlocks(sourceID, updated)
	if err != nil {
		return nil, err
	}
	s.notify("updated", sourceID)
	return detail, nil
}

// Traverse walks the link graph from start using the store as resolver.
func (s *Service) Traverse(_ context.Context, start string, maxDepth int, direction graph.Direction) (graph.Result, error) {
	if _, err := s.db.GetObject(start); err != nil {
		return graph.Result{}, err
	}
	return graph.Traverse(start, maxDepth, direction, s.resolver)
}

// GraphSummary traverses and aggregates node counts per depth.
func (s *Service) GraphSummary(ctx context.Context, start string, maxDepth int, direction graph.Direction) (graph.Summary, error) {
	res, err := s.Traverse(ctx, start, maxDepth, direction)
	if err != nil {
		return graph.Summary{}, err
	}
	return graph.Summarize(res), nil
}

// write parses markdown and persists the resulting blocks.
func (s *Service) write(id, markdown string) (*Detail, error) {
	bs := blocks.FromMarkdown(markdown)
	row := store.ObjectRow{
		ID:        id,
		Title:     deriveTitle(bs),
		Checksum:  checksum.SumString(markdown),
		Body:      markdown,
		Blocks:    bs,
		UpdatedAt: time.Now(),
	}
	if err := s.db.UpsertObject(row); err != nil {
		return nil, err
	}
	return s.buildDetail(&row)
}

// writeBlocks persists an updated block sequence, re-deriving the
// markdown body from it.
func (s *Service) writeBlocks(id string, bs []blocks.Block) (*Detail, error) {
	markdown := blocks.ToMarkdown(bs)
	row := store.ObjectRow{
		ID:        id,
		Title:     deriveTitle(bs),
		Checksum:  checksum.SumString(markdown),
		Body:      markdown,
		Blocks:    bs,
		UpdatedAt: time.Now(),
	}
	if err := s.db.UpsertObject(row); err != nil {
		return nil, err
	}
	return s.buildDetail(&row)
}

func (s *Service) buildDetail(row *store.ObjectRow) (*Detail, error) {
	bl, err := s.db.Backlinks(row.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		ID:        row.ID,
		Title:     row.Title,
		Markdown:  row.Body,
		Blocks:    nonNilSlice(row.Blocks),
		Checksum:  row.Checksum,
		Backlinks: nonNilSlice(bl),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// deriveTitle returns the text of the first heading block, falling back
// to the first words of the first text block.
func deriveTitle(bs []blocks.Block) string {
	for _, b := range bs {
		if b.Kind == blocks.KindHeading {
			return inlineText(b.Text)
		}
	}
	for _, b := range bs {
		if b.Kind == blocks.KindText && len(b.Lines) > 0 {
			line := inlineText(b.Lines[0])
			if len(line) > 80 {
				line = line[:80]
			}
			return line
		}
	}
	return ""
}

func inlineText(seq []blocks.Inline) string {
	var sb strings.Builder
	for _, tok := range seq {
		if tok.Kind == blocks.InlineLink {
			sb.WriteString(tok.DisplayText)
			continue
		}
		sb.WriteString(tok.Text)
	}
	return strings.TrimSpace(sb.String())
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
