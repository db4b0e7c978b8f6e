// Package local implements the index contract on an embedded SQLite
// database with the sqlite-vec extension. Embeddings come from an external
// embedding service; this package only stores and searches them.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"wikirag/internal/embedder"
	"wikirag/internal/index"
)

func init() {
	sqlite_vec.Auto()
}

const metaEmbeddingModel = "embedding_model"

// Store implements index.Index backed by SQLite + sqlite-vec.
type Store struct {
	db  *sql.DB
	emb embedder.Embedder
}

// Open creates or opens a SQLite database at the given path and initializes
// the schema. The embedder is used for both document and query embedding.
func Open(dbPath string, emb embedder.Embedder) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, emb: emb}, nil
}

// Upsert embeds the documents and stores them keyed by Document.ID.
// Existing documents with the same ID are overwritten, so re-loading an
// unchanged corpus never duplicates entries.
func (s *Store) Upsert(ctx context.Context, docs []index.Document) error {
	if len(docs) == 0 {
		return nil
	}

	// Refuse to mix embeddings from different models in one index.
	lastModel, err := s.getMeta(metaEmbeddingModel)
	if err != nil {
		return fmt.Errorf("get meta: %w", err)
	}
	if lastModel != "" && lastModel != s.emb.Model() {
		return fmt.Errorf("index was built with embedding model %q, current model is %q: reset the index first",
			lastModel, s.emb.Model())
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	embeddings, err := s.emb.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, doc := range docs {
		metaJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}

		var rowID int64
		err = tx.QueryRowContext(ctx, "SELECT id FROM articles WHERE doc_id = ?", doc.ID).Scan(&rowID)
		switch {
		case err == sql.ErrNoRows:
			res, err := tx.ExecContext(ctx,
				"INSERT INTO articles (doc_id, content, metadata) VALUES (?, ?, ?)",
				doc.ID, doc.Content, string(metaJSON),
			)
			if err != nil {
				return fmt.Errorf("insert %s: %w", doc.ID, err)
			}
			rowID, err = res.LastInsertId()
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if _, err := tx.ExecContext(ctx, "DELETE FROM vec_articles WHERE article_id = ?", rowID); err != nil {
				return fmt.Errorf("delete old embedding for %s: %w", doc.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE articles SET content = ?, metadata = ? WHERE id = ?",
				doc.Content, string(metaJSON), rowID,
			); err != nil {
				return fmt.Errorf("update %s: %w", doc.ID, err)
			}
		}

		blob, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for %s: %w", doc.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vec_articles (article_id, embedding) VALUES (?, ?)", rowID, blob,
		); err != nil {
			return fmt.Errorf("insert embedding for %s: %w", doc.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		metaEmbeddingModel, s.emb.Model(),
	); err != nil {
		return fmt.Errorf("set meta: %w", err)
	}

	return tx.Commit()
}

// Query embeds the text and returns the n closest documents in ascending
// distance order. Filters are applied after the nearest-neighbor search,
// so the query over-fetches to keep filtered result sets full.
func (s *Store) Query(ctx context.Context, text string, n int, filter *index.Filter) ([]index.Result, error) {
	vec, err := s.emb.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	blob, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	fetch := n
	if filter != nil {
		fetch = n * 4
		if fetch < 16 {
			fetch = 16
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.doc_id, a.content, a.metadata, v.distance
		FROM vec_articles v
		JOIN articles a ON a.id = v.article_id
		WHERE v.embedding MATCH ?
		ORDER BY v.distance
		LIMIT ?
	`, blob, fetch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []index.Result
	for rows.Next() {
		var r index.Result
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.Content, &metaJSON, &r.Distance); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaJSON), &r.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", r.ID, err)
		}
		if !filter.Matches(r.Metadata) {
			continue
		}
		results = append(results, r)
		if len(results) == n {
			break
		}
	}
	return results, rows.Err()
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// DeleteCollection removes all documents, embeddings, and metadata.
// This is irreversible.
func (s *Store) DeleteCollection(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vec_articles"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM articles"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM meta WHERE key = ?", metaEmbeddingModel); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) getMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
