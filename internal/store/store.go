package store

import (
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/links"
)

// ObjectStore defines the interface for content object persistence.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type ObjectStore interface {
	UpsertObject(row ObjectRow) error
	GetObject(id string) (*ObjectRow, error)
	DeleteObject(id string) error
	ListObjects(limit, offset int) ([]ObjectRow, int, error)
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	Links(id string) ([]links.Relation, error)
	Backlinks(target string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies ObjectStore and graph.Resolver at compile time.
var (
	_ ObjectStore    = (*DB)(nil)
	_ graph.Resolver = (*DB)(nil)
)
