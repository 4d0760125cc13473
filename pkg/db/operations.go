package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/models"
)

// ChunkRecord is a chunk row as stored in the export.
type ChunkRecord struct {
	DocumentID      int64
	Position        int
	ChunkID         string
	Title           string
	HeadingLevel    int
	EstimatedTokens int
	Content         string
	ContentHash     string
}

// RunStats summarises what the export holds for one run.
type RunStats struct {
	Documents      int
	FailedDocs     int
	Chunks         int
	TotalTokens    int
	MaxChunkTokens int
}

// InsertRun records the run header. cfg should already have defaults applied.
func (db *DB) InsertRun(runID string, startedAt time.Time, totalDocuments int, cfg models.ChunkerConfig) error {
	_, err := db.Exec(`
		INSERT INTO runs (run_id, started_at, total_documents, target_tokens, max_tokens, min_tokens)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, startedAt.UnixMilli(), totalDocuments, cfg.TargetTokens, cfg.MaxTokens, cfg.MinTokens)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// InsertDocument writes one document and its chunks in a single transaction and
// returns the document_id. page may be nil for failed documents; failure is the
// fetch or conversion error, empty on success.
func (db *DB) InsertDocument(runID string, doc models.FetchedDocument, page *models.Page, chunks []models.Chunk, failure string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	var title, language, hash string
	var wordCount int
	if page != nil {
		title = page.Title
		language = page.Metadata.Language
		wordCount = page.Metadata.WordCount
		hash = common.ContentHash([]byte(page.ToMarkdown()))
	}
	if title == "" {
		title = doc.Reference.Title
	}

	var fetchedAt sql.NullInt64
	if !doc.FetchedAt.IsZero() {
		fetchedAt = sql.NullInt64{Int64: doc.FetchedAtMillis(), Valid: true}
	}

	result, err := tx.Exec(`
		INSERT INTO documents (run_id, url, source_url, title, category, description,
			content_kind, language, word_count, content_hash, fetched_at, failure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, doc.Reference.Locator, NewNullString(doc.SourceLocator), NewNullString(title),
		NewNullString(doc.Reference.Category), NewNullString(doc.Reference.Description),
		NewNullString(string(doc.ContentKind)), NewNullString(language), wordCount,
		NewNullString(hash), fetchedAt, NewNullString(failure))
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	docID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get document ID: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chunks (document_id, position, chunk_id, title, heading_level,
			estimated_tokens, content, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.Exec(docID, i, c.ID, c.Title, c.HeadingLevel, c.EstimatedTokens,
			c.Content, common.ContentHash([]byte(c.Content))); err != nil {
			return 0, fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit document: %w", err)
	}
	return docID, nil
}

// ListChunks returns a document's chunks in order.
func (db *DB) ListChunks(documentID int64) ([]ChunkRecord, error) {
	rows, err := db.Query(`
		SELECT document_id, position, chunk_id, title, heading_level, estimated_tokens, content, content_hash
		FROM chunks
		WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []ChunkRecord
	for rows.Next() {
		var c ChunkRecord
		if err := rows.Scan(&c.DocumentID, &c.Position, &c.ChunkID, &c.Title, &c.HeadingLevel,
			&c.EstimatedTokens, &c.Content, &c.ContentHash); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// RunStats aggregates the documents and chunks stored for runID.
func (db *DB) RunStats(runID string) (RunStats, error) {
	var s RunStats
	err := db.QueryRow(`
		SELECT COUNT(*), COUNT(failure)
		FROM documents
		WHERE run_id = ?
	`, runID).Scan(&s.Documents, &s.FailedDocs)
	if err != nil {
		return s, fmt.Errorf("failed to count documents: %w", err)
	}

	err = db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(c.estimated_tokens), 0), COALESCE(MAX(c.estimated_tokens), 0)
		FROM chunks c
		JOIN documents d ON d.document_id = c.document_id
		WHERE d.run_id = ?
	`, runID).Scan(&s.Chunks, &s.TotalTokens, &s.MaxChunkTokens)
	if err != nil {
		return s, fmt.Errorf("failed to count chunks: %w", err)
	}
	return s, nil
}

// NewNullString maps "" to NULL.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
