// ABOUTME: SQLite schema for the snippet metadata store
// ABOUTME: pos keeps the table positionally aligned with the vector index
package sqlite

// Schema contains all SQL statements for database initialization.
// The pos column records vector insertion order; the row at pos i maps
// search hits at position i back to their snippet.
const Schema = `
CREATE TABLE IF NOT EXISTS snippets (
    pos INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    section TEXT NOT NULL,
    title TEXT NOT NULL,
    short_summary TEXT,
    full_text_path TEXT NOT NULL,
    updated_at DATETIME NOT NULL,
    source_path TEXT NOT NULL,
    aliases TEXT,
    tags TEXT,
    contact TEXT,
    coords TEXT,
    blob_type TEXT NOT NULL DEFAULT 'text',
    metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_snippets_section ON snippets(section);
`
