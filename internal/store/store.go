package store

import "fmt"

// DefaultDBPath is the default relative path for the SQLite DB (per-workspace).
// Resolve against cwd or workspace root; Open() creates the parent dir (e.g. .dossier).
const DefaultDBPath = ".dossier/dossier.db"

// Investigation statuses.
const (
	StatusActive   = "active"
	StatusComplete = "complete"
)

// Verification statuses a finding can carry. Every finding starts as
// needs_review; only a human reviewer moves it.
const (
	VerificationNeedsReview = "needs_review"
	VerificationVerified    = "verified"
	VerificationInaccurate  = "inaccurate"
)

// ValidVerificationStatus reports whether s is one of the three allowed
// verification statuses.
func ValidVerificationStatus(s string) bool {
	switch s {
	case VerificationNeedsReview, VerificationVerified, VerificationInaccurate:
		return true
	}
	return false
}

// Investigation is one submitted fragment set. IDs are UUID strings; the
// status flips active -> complete once every dispatched task has settled.
// Investigations are never deleted here.
type Investigation struct {
	ID        string
	Target    string
	Status    string
	CreatedAt string
}

// Finding is one persisted result record: one per agent type per
// investigation, or the single merged record for the web-search class.
// AgentType is the capitalized string key downstream consumers match on.
// Data is a JSON document; ConfidenceScore is nil for web-class and failed
// findings.
type Finding struct {
	ID                 int64
	InvestigationID    string
	AgentType          string
	Source             string
	Data               string
	ConfidenceScore    *int
	VerificationStatus string
	CreatedAt          string
}

// DiagnosticEntry summarizes how one dispatched task ended. The full set for
// an investigation is serialized into the aggregate System finding; it is
// never retried automatically and exists to drive per-agent retries.
type DiagnosticEntry struct {
	AgentType string `json:"agentType"`
	Status    string `json:"status"` // ok | error | no_data | failed
	Error     string `json:"error,omitempty"`
	HasData   bool   `json:"hasData"`
}

// Diagnostics is the payload shape of the System finding.
type Diagnostics struct {
	Entries      []DiagnosticEntry `json:"entries"`
	FailedAgents []string          `json:"failedAgents"`
}

// Store is the persistence facade the orchestrator and CLI use; the
// implementation is SQLite or in-memory.
type Store interface {
	// Investigations
	CreateInvestigation(inv *Investigation) (string, error)
	GetInvestigation(id string) (*Investigation, error)
	ListInvestigations() ([]*Investigation, error)
	UpdateInvestigationStatus(id, status string) error
	// Findings
	SaveFinding(f *Finding) (int64, error)
	GetFinding(id int64) (*Finding, error)
	GetFindingByAgent(investigationID, agentType string) (*Finding, error)
	ListFindingsByInvestigation(investigationID string) ([]*Finding, error)
	UpdateVerificationStatus(findingID int64, status string) error

	Close() error
}

func checkVerificationStatus(s string) error {
	if !ValidVerificationStatus(s) {
		return fmt.Errorf("invalid verification status %q", s)
	}
	return nil
}
