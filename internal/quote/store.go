// Package quote persists priced configurations so a customer can hand a
// quote ID to sales and get the same numbers back later.
package quote

import (
	"context"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// Store persists quotes.
type Store interface {
	// Create persists a new quote. Returns CONFLICT if the ID exists.
	Create(ctx context.Context, q model.Quote) error

	// Get retrieves a quote by ID. Returns NOT_FOUND if absent.
	Get(ctx context.Context, id string) (model.Quote, error)

	// FindBySubject returns quotes created by a subject, newest first.
	FindBySubject(ctx context.Context, subjectID string, filters Filters) ([]model.Quote, error)
}

// Filters are optional filters for listing quotes.
type Filters struct {
	ProductID string
	Limit     int
	Offset    int
}
