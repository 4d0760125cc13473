package help

const ColdstartYAML = `# llm-doc-chunker Quick Start

commands:
  fetch: |
    llm-doc-chunker fetch --urls "https://example.com/docs/intro,https://example.com/guide.md"
    llm-doc-chunker fetch --manifest https://example.com/llms.txt --format json

  chunk: |
    llm-doc-chunker chunk --manifest https://example.com/llms.txt --output-dir ldc-results
    llm-doc-chunker chunk --urls "https://example.com/guide.md" --max-tokens 4000 --min-tokens 300

  estimate: |
    llm-doc-chunker estimate README.md
    cat notes.md | llm-doc-chunker estimate --chunks

fetch_strategy:
  - "Locators ending in .md are fetched as structured text"
  - "Other locators first try <path>.md once, then fall back to the page itself"
  - "Pages are converted with readability; headings are kept for chunking"

chunking:
  max_tokens: "Hard budget per chunk (default 6000); only a single oversized paragraph may exceed it"
  min_tokens: "Chunks below this merge into the next one when the pair fits (default 500)"
  target_tokens: "Reporting threshold; chunks above it are counted in summary.yaml (default 3000)"
  split_order: "whole document -> ## sections -> ### subsections -> paragraphs"

output_files:
  - "ldc-results/summary.yaml (run overview, failures, per-document chunk counts)"
  - "ldc-results/<host_path>-<hash>/index.yaml (chunk ids, titles, token estimates)"
  - "ldc-results/<host_path>-<hash>/NNN-<chunk-id>.md (one file per chunk)"
  - "ldc-results/chunks.db (SQLite export, recreated every run; skip with --no-db)"

exit_codes:
  0: "all documents succeeded"
  1: "some documents failed, or bad input"
  2: "all documents failed, or a fatal setup error"

config_file: |
  # --config config.yaml
  fetch:
    workers: 5
    timeout: 30s
    retries: 1
    retry_backoff: 1s
    rate_limit: 0        # requests per second, 0 = unlimited
  chunker:
    max_tokens: 6000
    min_tokens: 500
    target_tokens: 3000
`
