package store

// schemaVersion1 is the current schema.
const schemaVersion1 = 1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS investigations (
	id         TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	investigation_id    TEXT NOT NULL REFERENCES investigations(id),
	agent_type          TEXT NOT NULL,
	source              TEXT,
	data                TEXT NOT NULL DEFAULT '{}',
	confidence_score    INTEGER,
	verification_status TEXT NOT NULL DEFAULT 'needs_review',
	created_at          TEXT NOT NULL,
	UNIQUE(investigation_id, agent_type)
);

CREATE INDEX IF NOT EXISTS idx_findings_investigation ON findings(investigation_id);
CREATE INDEX IF NOT EXISTS idx_findings_agent ON findings(investigation_id, agent_type);
`
