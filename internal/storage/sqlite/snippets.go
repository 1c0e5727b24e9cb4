// ABOUTME: Snippet metadata store: ordered rows aligned with the vector index
// ABOUTME: Supports positional lookup, id lookup and section scans
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

// SnippetStore handles snippet metadata persistence.
type SnippetStore struct {
	db *DB
}

// NewSnippetStore creates a SnippetStore on the given database.
func NewSnippetStore(db *DB) *SnippetStore {
	return &SnippetStore{db: db}
}

// ReplaceAll rewrites the whole table with the given snippets, assigning
// pos from slice order. Builds are full rebuilds; there is no append mode.
func (s *SnippetStore) ReplaceAll(snippets []models.Snippet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM snippets"); err != nil {
		return fmt.Errorf("failed to clear snippets: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snippets (pos, id, section, title, short_summary, full_text_path,
			updated_at, source_path, aliases, tags, contact, coords, blob_type, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for pos, sn := range snippets {
		if err := sn.Validate(); err != nil {
			return err
		}
		aliases, err := marshalNullable(sn.Aliases, len(sn.Aliases) > 0)
		if err != nil {
			return err
		}
		tags, err := marshalNullable(sn.Tags, len(sn.Tags) > 0)
		if err != nil {
			return err
		}
		contact, err := marshalNullable(sn.Contact, sn.Contact != nil)
		if err != nil {
			return err
		}
		coords, err := marshalNullable(sn.Coords, sn.Coords != nil)
		if err != nil {
			return err
		}
		metadata, err := marshalNullable(sn.Metadata, len(sn.Metadata) > 0)
		if err != nil {
			return err
		}

		blobType := sn.BlobType
		if blobType == "" {
			blobType = models.BlobTypeText
		}

		if _, err := stmt.Exec(pos, sn.ID, sn.Section, sn.Title,
			nullString(sn.ShortSummary), sn.FullTextPath, sn.UpdatedAt.UTC().Format(time.RFC3339),
			sn.SourcePath, aliases, tags, contact, coords, blobType, metadata); err != nil {
			return fmt.Errorf("failed to insert snippet %s: %w", sn.ID, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of stored snippet records.
func (s *SnippetStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snippets").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snippets: %w", err)
	}
	return count, nil
}

const selectColumns = `pos, id, section, title, short_summary, full_text_path,
	updated_at, source_path, aliases, tags, contact, coords, blob_type, metadata`

// GetByPosition returns the snippet at the given vector position, or nil
// if no row exists there.
func (s *SnippetStore) GetByPosition(pos int) (*models.Snippet, error) {
	row := s.db.QueryRow("SELECT "+selectColumns+" FROM snippets WHERE pos = ?", pos)
	return scanSnippet(row)
}

// GetByID returns the snippet with the given id, or nil if absent.
func (s *SnippetStore) GetByID(id string) (*models.Snippet, error) {
	row := s.db.QueryRow("SELECT "+selectColumns+" FROM snippets WHERE id = ?", id)
	return scanSnippet(row)
}

// ListBySection returns all snippets in a section, in position order.
// Used for operational debugging, not the query path.
func (s *SnippetStore) ListBySection(section string) ([]models.Snippet, error) {
	rows, err := s.db.Query("SELECT "+selectColumns+" FROM snippets WHERE section = ? ORDER BY pos ASC", section)
	if err != nil {
		return nil, fmt.Errorf("failed to list section %s: %w", section, err)
	}
	defer func() { _ = rows.Close() }()

	var snippets []models.Snippet
	for rows.Next() {
		sn, err := scanSnippetRow(rows)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, *sn)
	}
	return snippets, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnippet(row *sql.Row) (*models.Snippet, error) {
	sn, err := scanSnippetRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sn, err
}

func scanSnippetRow(row rowScanner) (*models.Snippet, error) {
	var (
		sn        models.Snippet
		pos       int
		summary   sql.NullString
		updatedAt string
		aliases   sql.NullString
		tags      sql.NullString
		contact   sql.NullString
		coords    sql.NullString
		metadata  sql.NullString
	)

	err := row.Scan(&pos, &sn.ID, &sn.Section, &sn.Title, &summary, &sn.FullTextPath,
		&updatedAt, &sn.SourcePath, &aliases, &tags, &contact, &coords, &sn.BlobType, &metadata)
	if err != nil {
		return nil, err
	}

	if summary.Valid {
		sn.ShortSummary = summary.String
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		sn.UpdatedAt = t
	}
	if err := unmarshalNullable(aliases, &sn.Aliases); err != nil {
		return nil, fmt.Errorf("snippet %s: bad aliases: %w", sn.ID, err)
	}
	if err := unmarshalNullable(tags, &sn.Tags); err != nil {
		return nil, fmt.Errorf("snippet %s: bad tags: %w", sn.ID, err)
	}
	if err := unmarshalNullable(contact, &sn.Contact); err != nil {
		return nil, fmt.Errorf("snippet %s: bad contact: %w", sn.ID, err)
	}
	if err := unmarshalNullable(coords, &sn.Coords); err != nil {
		return nil, fmt.Errorf("snippet %s: bad coords: %w", sn.ID, err)
	}
	if err := unmarshalNullable(metadata, &sn.Metadata); err != nil {
		return nil, fmt.Errorf("snippet %s: bad metadata: %w", sn.ID, err)
	}
	return &sn, nil
}

func marshalNullable(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal nested field: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalNullable(ns sql.NullString, dest any) error {
	if !ns.Valid {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), dest)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
