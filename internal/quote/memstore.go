package quote

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// MemoryStore is an in-memory Store for testing and single-instance use.
type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[string]model.Quote
}

// NewMemoryStore creates a new in-memory quote store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[string]model.Quote)}
}

// Create persists a new quote.
func (s *MemoryStore) Create(_ context.Context, q model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.quotes[q.ID]; exists {
		return model.NewConflictError(fmt.Sprintf("quote %q already exists", q.ID))
	}

	s.quotes[q.ID] = q
	return nil
}

// Get retrieves a quote by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (model.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, exists := s.quotes[id]
	if !exists {
		return model.Quote{}, model.NewNotFoundError(fmt.Sprintf("quote %q not found", id))
	}
	return q, nil
}

// FindBySubject returns quotes created by a subject, newest first.
func (s *MemoryStore) FindBySubject(_ context.Context, subjectID string, filters Filters) ([]model.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Quote
	for _, q := range s.quotes {
		if q.SubjectID != subjectID {
			continue
		}
		if filters.ProductID != "" && q.ProductID != filters.ProductID {
			continue
		}
		result = append(result, q)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(result) {
			return []model.Quote{}, nil
		}
		result = result[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(result) {
		result = result[:filters.Limit]
	}

	return result, nil
}

// Len returns the total number of quotes. For testing.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}
