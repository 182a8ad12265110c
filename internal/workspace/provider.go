// Package workspace mirrors stored content objects as Markdown files in
// a local directory: objects export as `<id>.md` with YAML frontmatter,
// and files edited on disk import back into the store.
package workspace

import "time"

// FileInfo is lightweight metadata for one workspace file.
type FileInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for workspace file operations. Paths are
// relative to the workspace root.
type Provider interface {
	// List returns metadata for every .md file in the workspace.
	List() ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Root returns the absolute workspace root directory.
	Root() string
}
