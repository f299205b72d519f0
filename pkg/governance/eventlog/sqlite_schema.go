package eventlog

// SchemaVersion is the current event database schema version.
const SchemaVersion = 1

// Schema creates the governance event tables. Timestamps are stored as
// Unix nanoseconds so range queries behave the same under both drivers.
const Schema = `
CREATE TABLE IF NOT EXISTS governance_events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    timestamp_ns INTEGER NOT NULL,
    session_id TEXT NOT NULL DEFAULT '',
    cycle INTEGER NOT NULL,
    type TEXT NOT NULL,
    description TEXT NOT NULL,
    drift_score REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_governance_events_timestamp ON governance_events(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_governance_events_session ON governance_events(session_id);
CREATE INDEX IF NOT EXISTS idx_governance_events_type ON governance_events(type);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

const insertEvent = `
INSERT INTO governance_events (id, timestamp_ns, session_id, cycle, type, description, drift_score)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
