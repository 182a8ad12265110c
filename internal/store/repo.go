package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/blocks"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/links"
)

// ObjectRow is the stored representation of a content object.
// Body holds the serialized Markdown (for search and export); Blocks is
// the authoritative typed content.
type ObjectRow struct {
	ID        string
	Title     string
	Checksum  string
	Body      string
	Blocks    []blocks.Block
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

// UpsertObject inserts or replaces an object and rebuilds its outgoing
// link rows from the block content within one transaction. Link relations
// are always recomputed, never patched.
func (db *DB) UpsertObject(row ObjectRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	blocksJSON, err := json.Marshal(row.Blocks)
	if err != nil {
		return fmt.Errorf("store: encode blocks: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO objects (id, title, checksum, body, blocks, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			blocks     = excluded.blocks,
			updated_at = excluded.updated_at
	`, row.ID, row.Title, row.Checksum, row.Body, string(blocksJSON), row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert object: %w", err)
	}

	if err := ftsUpsert(tx, row.ID, row.Title, row.Body); err != nil {
		return err
	}

	// Replace link rows: delete old then bulk insert the recomputed set.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, row.ID)
	rels := links.Extract(row.Blocks, row.ID)
	if len(rels) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, display, embed) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("store: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, rel := range rels {
			if _, err := stmt.Exec(rel.SourceID, rel.TargetID, rel.DisplayText, rel.Embed); err != nil {
				return fmt.Errorf("store: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetObject loads one object with its decoded block content.
func (db *DB) GetObject(id string) (*ObjectRow, error) {
	var row ObjectRow
	var blocksJSON string
	err := db.conn.QueryRow(`
		SELECT id, title, checksum, body, blocks, updated_at
		FROM objects WHERE id = ?
	`, id).Scan(&row.ID, &row.Title, &row.Checksum, &row.Body, &blocksJSON, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get object %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(blocksJSON), &row.Blocks); err != nil {
		return nil, fmt.Errorf("store: decode blocks for %s: %w", id, err)
	}
	return &row, nil
}

// DeleteObject removes an object, its FTS entry, and its outgoing links.
func (db *DB) DeleteObject(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, id)
	res, err := tx.Exec(`DELETE FROM objects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete object: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}

	return tx.Commit()
}

// ListObjects returns paginated object rows, newest first, without the
// decoded block payload.
func (db *DB) ListObjects(limit, offset int) ([]ObjectRow, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM objects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count objects: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT id, title, checksum, updated_at
		FROM objects ORDER BY updated_at DESC, id LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list objects: %w", err)
	}
	defer rows.Close()

	var out []ObjectRow
	for rows.Next() {
		var r ObjectRow
		if err := rows.Scan(&r.ID, &r.Title, &r.Checksum, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// GetChecksum returns the stored checksum for an object.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM objects WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id -> checksum for every stored object.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM objects`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Links returns the stored outgoing relations of an object.
func (db *DB) Links(id string) ([]links.Relation, error) {
	rows, err := db.conn.Query(`SELECT source, target, display, embed FROM links WHERE source = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("store: links: %w", err)
	}
	defer rows.Close()

	var out []links.Relation
	for rows.Next() {
		var r links.Relation
		if err := rows.Scan(&r.SourceID, &r.TargetID, &r.DisplayText, &r.Embed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Backlinks returns the ids of all objects that link to target.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source FROM links WHERE target = ?`, target)
	if err != nil {
		return nil, fmt.Errorf("store: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Resolve returns the outgoing and incoming neighbor ids of an object,
// making *DB a graph.Resolver.
func (db *DB) Resolve(id string) (graph.Neighbors, error) {
	var nb graph.Neighbors

	rows, err := db.conn.Query(`SELECT DISTINCT target FROM links WHERE source = ?`, id)
	if err != nil {
		return nb, fmt.Errorf("store: resolve outgoing: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nb, err
		}
		nb.Outgoing = append(nb.Outgoing, t)
	}
	if err := rows.Err(); err != nil {
		return nb, err
	}

	incoming, err := db.Backlinks(id)
	if err != nil {
		return nb, err
	}
	nb.Incoming = incoming
	return nb, nil
}
