package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .dossier) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion1); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		v = schemaVersion1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}

	switch v {
	case schemaVersion1:
		return nil
	default:
		return fmt.Errorf("unknown schema version %d", v)
	}
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// --- Investigations ---

// CreateInvestigation inserts the investigation and returns its ID,
// generating a UUID when none was supplied.
func (s *SqlStore) CreateInvestigation(inv *Investigation) (string, error) {
	if inv == nil {
		return "", errors.New("investigation is nil")
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = StatusActive
	}
	if inv.CreatedAt == "" {
		inv.CreatedAt = nowUTC()
	}
	_, err := s.db.Exec(
		"INSERT INTO investigations(id, target, status, created_at) VALUES(?, ?, ?, ?)",
		inv.ID, inv.Target, inv.Status, inv.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert investigation: %w", err)
	}
	return inv.ID, nil
}

func (s *SqlStore) GetInvestigation(id string) (*Investigation, error) {
	var inv Investigation
	err := s.db.QueryRow(
		"SELECT id, target, status, created_at FROM investigations WHERE id = ?", id,
	).Scan(&inv.ID, &inv.Target, &inv.Status, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get investigation: %w", err)
	}
	return &inv, nil
}

func (s *SqlStore) ListInvestigations() ([]*Investigation, error) {
	rows, err := s.db.Query(
		"SELECT id, target, status, created_at FROM investigations ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("list investigations: %w", err)
	}
	defer rows.Close()
	var out []*Investigation
	for rows.Next() {
		var inv Investigation
		if err := rows.Scan(&inv.ID, &inv.Target, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan investigation: %w", err)
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}

func (s *SqlStore) UpdateInvestigationStatus(id, status string) error {
	res, err := s.db.Exec(
		"UPDATE investigations SET status = ? WHERE id = ?", status, id,
	)
	if err != nil {
		return fmt.Errorf("update investigation status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("investigation %s not found", id)
	}
	return nil
}

// --- Findings ---

// SaveFinding inserts a finding, or updates it when f.ID is set (the retry
// path overwrites the previous record for the agent).
func (s *SqlStore) SaveFinding(f *Finding) (int64, error) {
	if f == nil {
		return 0, errors.New("finding is nil")
	}
	if f.VerificationStatus == "" {
		f.VerificationStatus = VerificationNeedsReview
	}
	if err := checkVerificationStatus(f.VerificationStatus); err != nil {
		return 0, err
	}
	if f.Data == "" {
		f.Data = "{}"
	}
	if f.ID != 0 {
		_, err := s.db.Exec(
			`UPDATE findings SET source=?, data=?, confidence_score=?, verification_status=? WHERE id=?`,
			nilIfEmpty(f.Source), f.Data, nilIfNilInt(f.ConfidenceScore), f.VerificationStatus, f.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("update finding: %w", err)
		}
		return f.ID, nil
	}
	if f.CreatedAt == "" {
		f.CreatedAt = nowUTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO findings(investigation_id, agent_type, source, data, confidence_score, verification_status, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		f.InvestigationID, f.AgentType, nilIfEmpty(f.Source), f.Data,
		nilIfNilInt(f.ConfidenceScore), f.VerificationStatus, f.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert finding: %w", err)
	}
	return res.LastInsertId()
}

func (s *SqlStore) GetFinding(id int64) (*Finding, error) {
	var f Finding
	var source sql.NullString
	var score sql.NullInt64
	err := s.db.QueryRow(
		`SELECT id, investigation_id, agent_type, source, data, confidence_score, verification_status, created_at
		 FROM findings WHERE id = ?`, id,
	).Scan(&f.ID, &f.InvestigationID, &f.AgentType, &source, &f.Data, &score, &f.VerificationStatus, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get finding: %w", err)
	}
	f.Source = nullStr(source)
	f.ConfidenceScore = intPtr(score)
	return &f, nil
}

func (s *SqlStore) GetFindingByAgent(investigationID, agentType string) (*Finding, error) {
	var f Finding
	var source sql.NullString
	var score sql.NullInt64
	err := s.db.QueryRow(
		`SELECT id, investigation_id, agent_type, source, data, confidence_score, verification_status, created_at
		 FROM findings WHERE investigation_id = ? AND agent_type = ?`, investigationID, agentType,
	).Scan(&f.ID, &f.InvestigationID, &f.AgentType, &source, &f.Data, &score, &f.VerificationStatus, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get finding by agent: %w", err)
	}
	f.Source = nullStr(source)
	f.ConfidenceScore = intPtr(score)
	return &f, nil
}

func (s *SqlStore) ListFindingsByInvestigation(investigationID string) ([]*Finding, error) {
	rows, err := s.db.Query(
		`SELECT id, investigation_id, agent_type, source, data, confidence_score, verification_status, created_at
		 FROM findings WHERE investigation_id = ? ORDER BY id`, investigationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()
	var out []*Finding
	for rows.Next() {
		var f Finding
		var source sql.NullString
		var score sql.NullInt64
		if err := rows.Scan(&f.ID, &f.InvestigationID, &f.AgentType, &source, &f.Data,
			&score, &f.VerificationStatus, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.Source = nullStr(source)
		f.ConfidenceScore = intPtr(score)
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (s *SqlStore) UpdateVerificationStatus(findingID int64, status string) error {
	if err := checkVerificationStatus(status); err != nil {
		return err
	}
	res, err := s.db.Exec(
		"UPDATE findings SET verification_status = ? WHERE id = ?", status, findingID,
	)
	if err != nil {
		return fmt.Errorf("update verification status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("finding %d not found", findingID)
	}
	return nil
}

// --- nil helpers for optional SQL params ---

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nilIfNilInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
