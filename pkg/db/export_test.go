package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/chunker"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func insertTestRun(t *testing.T, db *DB, runID string) {
	t.Helper()
	cfg := models.ChunkerConfig{}.WithDefaults()
	if err := db.InsertRun(runID, time.Now(), 2, cfg); err != nil {
		t.Fatalf("InsertRun() error = %v", err)
	}
}

func TestInsertDocument(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	insertTestRun(t, db, "run-1")

	doc := models.FetchedDocument{
		Reference:     models.DocumentReference{Locator: "https://example.com/a", Title: "Ref title", Category: "Docs"},
		SourceLocator: "https://example.com/a.md",
		RawContent:    "# A",
		ContentKind:   models.ContentKindStructuredText,
		FetchedAt:     time.UnixMilli(1700000000000),
	}
	page := &models.Page{Title: "A", Text: "# A\n\none\n\ntwo", Metadata: models.PageMetadata{Language: "en", WordCount: 4}}
	chunks := []models.Chunk{
		{ID: "a-one", Title: "One", Content: "one", HeadingLevel: 2, EstimatedTokens: 2},
		{ID: "a-two", Title: "Two", Content: "two", HeadingLevel: 2, EstimatedTokens: 3},
	}

	docID, err := db.InsertDocument("run-1", doc, page, chunks, "")
	if err != nil {
		t.Fatalf("InsertDocument() error = %v", err)
	}
	if docID == 0 {
		t.Fatal("InsertDocument() returned 0 ID")
	}

	got, err := db.ListChunks(docID)
	if err != nil {
		t.Fatalf("ListChunks() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListChunks() returned %d chunks, want 2", len(got))
	}
	for i, c := range got {
		if c.Position != i || c.ChunkID != chunks[i].ID || c.Content != chunks[i].Content {
			t.Errorf("chunk %d = %+v, want %+v", i, c, chunks[i])
		}
		if len(c.ContentHash) != 64 {
			t.Errorf("chunk %d hash = %q", i, c.ContentHash)
		}
	}

	var title, language string
	var fetchedAt int64
	err = db.QueryRow("SELECT title, language, fetched_at FROM documents WHERE document_id = ?", docID).
		Scan(&title, &language, &fetchedAt)
	if err != nil {
		t.Fatalf("select document: %v", err)
	}
	if title != "A" || language != "en" || fetchedAt != 1700000000000 {
		t.Errorf("document row = (%q, %q, %d)", title, language, fetchedAt)
	}
}

func TestInsertDocument_Failed(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	insertTestRun(t, db, "run-1")

	doc := models.FetchedDocument{
		Reference: models.DocumentReference{Locator: "https://example.com/b", Title: "B"},
		Failure:   "fetch cancelled",
	}
	docID, err := db.InsertDocument("run-1", doc, nil, nil, doc.Failure)
	if err != nil {
		t.Fatalf("InsertDocument() error = %v", err)
	}

	var title, failure string
	if err := db.QueryRow("SELECT title, failure FROM documents WHERE document_id = ?", docID).Scan(&title, &failure); err != nil {
		t.Fatalf("select document: %v", err)
	}
	if title != "B" || failure != "fetch cancelled" {
		t.Errorf("document row = (%q, %q)", title, failure)
	}
}

func TestInsertDocument_RollsBackOnBadChunk(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	insertTestRun(t, db, "run-1")

	doc := models.FetchedDocument{Reference: models.DocumentReference{Locator: "https://example.com/c"}}
	chunks := []models.Chunk{
		{ID: "dup", Title: "x", Content: "x", HeadingLevel: 1, EstimatedTokens: 1},
		{ID: "dup", Title: "y", Content: "y", HeadingLevel: 1, EstimatedTokens: 1},
	}
	if _, err := db.InsertDocument("run-1", doc, &models.Page{Text: "x"}, chunks, ""); err == nil {
		t.Fatal("InsertDocument() expected error for duplicate chunk id")
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if n != 0 {
		t.Errorf("documents after rollback = %d, want 0", n)
	}
}

func TestInsertDocument_ChunksWithSimilarHeadings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	insertTestRun(t, db, "run-1")

	body := strings.Repeat("lorem ipsum dolor sit amet ", 6)
	text := "## Usage 2\n\n" + body + "\n\n## Usage\n\n" + body + "\n\n## Usage\n\n" + body
	chunks := chunker.Chunk(text, "Doc", models.ChunkerConfig{MaxTokens: 60, TargetTokens: 50, MinTokens: 1})
	if len(chunks) != 3 {
		t.Fatalf("Chunk() returned %d chunks, want 3", len(chunks))
	}

	doc := models.FetchedDocument{Reference: models.DocumentReference{Locator: "https://example.com/usage"}, FetchedAt: time.Now()}
	page := &models.Page{Title: "Doc", Text: text}
	docID, err := db.InsertDocument("run-1", doc, page, chunks, "")
	if err != nil {
		t.Fatalf("InsertDocument() error = %v", err)
	}

	got, err := db.ListChunks(docID)
	if err != nil {
		t.Fatalf("ListChunks() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("ListChunks() returned %d chunks, want 3", len(got))
	}
}

func TestInsertDocument_UnknownRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	doc := models.FetchedDocument{Reference: models.DocumentReference{Locator: "https://example.com/d"}}
	if _, err := db.InsertDocument("missing", doc, nil, nil, ""); err == nil {
		t.Error("InsertDocument() expected foreign key error")
	}
}

func TestRunStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	insertTestRun(t, db, "run-1")

	ok := models.FetchedDocument{Reference: models.DocumentReference{Locator: "https://example.com/a"}}
	chunks := []models.Chunk{
		{ID: "a", Title: "a", Content: "a", HeadingLevel: 1, EstimatedTokens: 100},
		{ID: "b", Title: "b", Content: "b", HeadingLevel: 2, EstimatedTokens: 250},
	}
	if _, err := db.InsertDocument("run-1", ok, &models.Page{Text: "ab"}, chunks, ""); err != nil {
		t.Fatalf("InsertDocument() error = %v", err)
	}
	failed := models.FetchedDocument{Reference: models.DocumentReference{Locator: "https://example.com/b"}, Failure: "boom"}
	if _, err := db.InsertDocument("run-1", failed, nil, nil, failed.Failure); err != nil {
		t.Fatalf("InsertDocument() error = %v", err)
	}

	stats, err := db.RunStats("run-1")
	if err != nil {
		t.Fatalf("RunStats() error = %v", err)
	}
	want := RunStats{Documents: 2, FailedDocs: 1, Chunks: 2, TotalTokens: 350, MaxChunkTokens: 250}
	if stats != want {
		t.Errorf("RunStats() = %+v, want %+v", stats, want)
	}

	empty, err := db.RunStats("other")
	if err != nil {
		t.Fatalf("RunStats() error = %v", err)
	}
	if empty != (RunStats{}) {
		t.Errorf("RunStats(other) = %+v, want zero", empty)
	}
}

func TestCreate_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDBName)
	if err := os.WriteFile(path, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	db, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	insertTestRun(t, db, "run-1")
}
