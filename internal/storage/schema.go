package storage

const schemaSQL = `
-- One row per pipeline run
CREATE TABLE IF NOT EXISTS crawl_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed_url TEXT NOT NULL,
    fields_json TEXT NOT NULL,
    started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    finished_at DATETIME,

    -- Filled in when the run finishes
    index_pages INTEGER,
    index_failures INTEGER,
    worklist_size INTEGER,
    attempted INTEGER,
    failures INTEGER,
    duration_ms INTEGER,
    run_error TEXT
);

-- Records in table order; values_json is an object keyed by field name
CREATE TABLE IF NOT EXISTS records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES crawl_runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    url TEXT NOT NULL,
    fetch_error TEXT,
    values_json TEXT NOT NULL,
    crawled_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id, position);
CREATE INDEX IF NOT EXISTS idx_records_url ON records(url);
CREATE INDEX IF NOT EXISTS idx_records_failed ON records(run_id) WHERE fetch_error IS NOT NULL;

-- Crawl meta table stores metadata as key-value pairs
CREATE TABLE IF NOT EXISTS crawl_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
