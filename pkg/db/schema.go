package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per chunk command invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,      -- epoch ms
    total_documents INTEGER NOT NULL,
    target_tokens INTEGER NOT NULL,
    max_tokens INTEGER NOT NULL,
    min_tokens INTEGER NOT NULL
);

-- Documents: every reference of the run, failed ones included
CREATE TABLE IF NOT EXISTS documents (
    document_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    url TEXT NOT NULL,
    source_url TEXT,
    title TEXT,
    category TEXT,
    description TEXT,
    content_kind TEXT,
    language TEXT,
    word_count INTEGER DEFAULT 0,
    content_hash TEXT,
    fetched_at INTEGER,               -- epoch ms
    failure TEXT,                     -- NULL on success
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url);

-- Chunks: ordered segments of a document
CREATE TABLE IF NOT EXISTS chunks (
    chunk_row_id INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL,
    position INTEGER NOT NULL,
    chunk_id TEXT NOT NULL,
    title TEXT NOT NULL,
    heading_level INTEGER NOT NULL CHECK (heading_level BETWEEN 1 AND 3),
    estimated_tokens INTEGER NOT NULL,
    content TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    FOREIGN KEY (document_id) REFERENCES documents(document_id) ON DELETE CASCADE,
    UNIQUE(document_id, chunk_id),
    UNIQUE(document_id, position)
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
CREATE INDEX IF NOT EXISTS idx_chunks_tokens ON chunks(estimated_tokens);
`
