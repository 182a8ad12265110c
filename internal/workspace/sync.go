package workspace

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/objects"
)

// Syncer keeps the workspace directory and the object store aligned.
type Syncer struct {
	provider Provider
	svc      *objects.Service
	logger   *slog.Logger

	// exported remembers the checksum of the file content this syncer
	// last wrote per object id, so re-imports of our own exports are
	// skipped. Guarded by mu: exports run from mutation callbacks while
	// imports run from the watcher goroutine.
	mu       sync.Mutex
	exported map[string]string
}

// NewSyncer creates a Syncer over the given provider and service.
func NewSyncer(provider Provider, svc *objects.Service, logger *slog.Logger) *Syncer {
	return &Syncer{
		provider: provider,
		svc:      svc,
		logger:   logger,
		exported: make(map[string]string),
	}
}

// fileName maps an object id to its workspace file.
func fileName(id string) string {
	return id + ".md"
}

// idFromPath maps a workspace file back to an object id, or "" when the
// file is not an exported object.
func idFromPath(path string) string {
	if !strings.HasSuffix(path, ".md") {
		return ""
	}
	return strings.TrimSuffix(path, ".md")
}

// ExportAll writes every stored object to the workspace, skipping files
// whose content already matches.
func (s *Syncer) ExportAll(ctx context.Context) error {
	const pageSize = 200
	for offset := 0; ; offset += pageSize {
		items, total, err := s.svc.List(ctx, pageSize, offset)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.ExportObject(ctx, item.ID); err != nil {
				s.logger.Warn("export failed", slog.String("id", item.ID), slog.String("error", err.Error()))
			}
		}
		if len(items) == 0 || offset+len(items) >= total {
			return nil
		}
	}
}

// ExportObject writes one object to its workspace file.
func (s *Syncer) ExportObject(ctx context.Context, id string) error {
	detail, err := s.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	data, err := renderFile(fileMeta{ID: detail.ID, Title: detail.Title}, detail.Markdown)
	if err != nil {
		return err
	}

	cs := checksum.Sum(data)
	s.mu.Lock()
	skip := s.exported[id] == cs
	s.mu.Unlock()
	if skip {
		return nil
	}
	if err := s.provider.Write(fileName(id), data); err != nil {
		return err
	}
	s.mu.Lock()
	s.exported[id] = cs
	s.mu.Unlock()
	s.logger.Debug("exported", slog.String("id", id))
	return nil
}

// RemoveObject deletes the workspace file of a removed object.
func (s *Syncer) RemoveObject(id string) {
	s.mu.Lock()
	delete(s.exported, id)
	s.mu.Unlock()
	if err := s.provider.Delete(fileName(id)); err != nil {
		s.logger.Debug("remove skipped", slog.String("id", id), slog.String("error", err.Error()))
	}
}

// RestoreObject re-exports an object whose workspace file was removed
// behind the syncer's back. No-op when the object is gone from the
// store as well.
func (s *Syncer) RestoreObject(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.exported, id)
	s.mu.Unlock()
	if err := s.ExportObject(ctx, id); err != nil {
		s.logger.Debug("restore skipped", slog.String("id", id), slog.String("error", err.Error()))
	}
}

// ImportFile reads one workspace file and writes its content into the
// store. The object id comes from the frontmatter when present, else
// from the file name. Returns the imported object id.
func (s *Syncer) ImportFile(ctx context.Context, path string) (string, error) {
	data, err := s.provider.Read(path)
	if err != nil {
		return "", err
	}
	cs := checksum.Sum(data)

	meta, body := parseFile(data)
	id := meta.ID
	if id == "" {
		id = idFromPath(path)
	}
	if id == "" {
		return "", nil
	}
	// Our own export coming back; nothing changed.
	s.mu.Lock()
	echo := s.exported[id] == cs
	s.mu.Unlock()
	if echo {
		return id, nil
	}

	if _, err := s.svc.Update(ctx, id, body, ""); err == nil {
		s.markExported(id, cs)
		s.logger.Debug("imported", slog.String("id", id), slog.String("path", path))
		return id, nil
	}
	if _, err := s.svc.Create(ctx, id, body); err != nil {
		return "", err
	}
	s.markExported(id, cs)
	s.logger.Debug("imported new", slog.String("id", id), slog.String("path", path))
	return id, nil
}

func (s *Syncer) markExported(id, cs string) {
	s.mu.Lock()
	s.exported[id] = cs
	s.mu.Unlock()
}

// ImportAll runs ImportFile over every workspace file whose content
// differs from the last export.
func (s *Syncer) ImportAll(ctx context.Context) error {
	files, err := s.provider.List()
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := s.ImportFile(ctx, f.Path); err != nil {
			s.logger.Warn("import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		}
	}
	return nil
}
