package local

import "database/sql"

// The vec0 table is fixed at 768 dimensions, matching nomic-embed-text and
// text-embedding-004 class models. Switching to a model with a different
// dimensionality requires a reset.
const ddl = `
PRAGMA journal_mode=WAL;
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS articles (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    doc_id   TEXT NOT NULL UNIQUE,
    content  TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_articles USING vec0(
    article_id INTEGER PRIMARY KEY,
    embedding float[768]
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// initSchema creates the schema tables if they don't exist.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}
