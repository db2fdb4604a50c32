package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store for tests and dry runs. Safe for concurrent
// use; all reads return copies.
type MemStore struct {
	mu             sync.Mutex
	once           sync.Once
	investigations map[string]*Investigation
	findings       map[int64]*Finding
	nextFindingID  int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	s := &MemStore{}
	s.init()
	return s
}

func (s *MemStore) init() {
	s.once.Do(func() {
		s.investigations = map[string]*Investigation{}
		s.findings = map[int64]*Finding{}
		s.nextFindingID = 1
	})
}

func (s *MemStore) Close() error { return nil }

// --- Investigations ---

func (s *MemStore) CreateInvestigation(inv *Investigation) (string, error) {
	if inv == nil {
		return "", errors.New("investigation is nil")
	}
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = StatusActive
	}
	if inv.CreatedAt == "" {
		inv.CreatedAt = nowUTC()
	}
	if _, exists := s.investigations[inv.ID]; exists {
		return "", fmt.Errorf("investigation %s already exists", inv.ID)
	}
	cp := *inv
	s.investigations[inv.ID] = &cp
	return inv.ID, nil
}

func (s *MemStore) GetInvestigation(id string) (*Investigation, error) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investigations[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (s *MemStore) ListInvestigations() ([]*Investigation, error) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Investigation, 0, len(s.investigations))
	for _, inv := range s.investigations {
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemStore) UpdateInvestigationStatus(id, status string) error {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investigations[id]
	if !ok {
		return fmt.Errorf("investigation %s not found", id)
	}
	inv.Status = status
	return nil
}

// --- Findings ---

func (s *MemStore) SaveFinding(f *Finding) (int64, error) {
	if f == nil {
		return 0, errors.New("finding is nil")
	}
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
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
		prev, ok := s.findings[f.ID]
		if !ok {
			return 0, fmt.Errorf("finding %d not found", f.ID)
		}
		cp := *f
		cp.InvestigationID = prev.InvestigationID
		cp.AgentType = prev.AgentType
		cp.CreatedAt = prev.CreatedAt
		s.findings[f.ID] = &cp
		return f.ID, nil
	}
	for _, existing := range s.findings {
		if existing.InvestigationID == f.InvestigationID && existing.AgentType == f.AgentType {
			return 0, fmt.Errorf("finding for agent %s already exists in investigation %s", f.AgentType, f.InvestigationID)
		}
	}
	if f.CreatedAt == "" {
		f.CreatedAt = nowUTC()
	}
	f.ID = s.nextFindingID
	s.nextFindingID++
	cp := *f
	s.findings[f.ID] = &cp
	return f.ID, nil
}

func (s *MemStore) GetFinding(id int64) (*Finding, error) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.findings[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *MemStore) GetFindingByAgent(investigationID, agentType string) (*Finding, error) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.findings {
		if f.InvestigationID == investigationID && f.AgentType == agentType {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemStore) ListFindingsByInvestigation(investigationID string) ([]*Finding, error) {
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Finding
	for _, f := range s.findings {
		if f.InvestigationID == investigationID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) UpdateVerificationStatus(findingID int64, status string) error {
	if err := checkVerificationStatus(status); err != nil {
		return err
	}
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.findings[findingID]
	if !ok {
		return fmt.Errorf("finding %d not found", findingID)
	}
	f.VerificationStatus = status
	return nil
}
