package quote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// PgStore is a PostgreSQL-backed Store using pgx/v5.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a new PostgreSQL quote store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// HealthCheck pings the database, satisfying the readiness probe.
func (s *PgStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Create inserts a new quote. Configuration, pricing, and verdict are stored
// as JSONB so the snapshot survives catalog schema changes.
func (s *PgStore) Create(ctx context.Context, q model.Quote) error {
	configJSON, err := json.Marshal(q.Configuration)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	pricingJSON, err := json.Marshal(q.Pricing)
	if err != nil {
		return fmt.Errorf("marshal pricing: %w", err)
	}
	verdictJSON, err := json.Marshal(q.Verdict)
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO quotes (
			id, reference_code, product_id,
			configuration, pricing, verdict,
			subject_id, email, company, idempotency_key,
			created_at, expires_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8, $9, $10,
			$11, $12
		)`,
		q.ID, q.ReferenceCode, q.ProductID,
		configJSON, pricingJSON, verdictJSON,
		q.SubjectID, q.Email, q.Company, q.IdempotencyKey,
		q.CreatedAt, q.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// Get retrieves a quote by ID.
func (s *PgStore) Get(ctx context.Context, id string) (model.Quote, error) {
	var q model.Quote
	var configJSON, pricingJSON, verdictJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT id, reference_code, product_id,
		       configuration, pricing, verdict,
		       subject_id, email, company, idempotency_key,
		       created_at, expires_at
		FROM quotes
		WHERE id = $1`,
		id,
	).Scan(
		&q.ID, &q.ReferenceCode, &q.ProductID,
		&configJSON, &pricingJSON, &verdictJSON,
		&q.SubjectID, &q.Email, &q.Company, &q.IdempotencyKey,
		&q.CreatedAt, &q.ExpiresAt,
	)
	if err == pgx.ErrNoRows {
		return model.Quote{}, model.NewNotFoundError(fmt.Sprintf("quote %q not found", id))
	}
	if err != nil {
		return model.Quote{}, fmt.Errorf("query quote: %w", err)
	}

	if err := unmarshalQuoteJSON(&q, configJSON, pricingJSON, verdictJSON); err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

// FindBySubject returns quotes created by a subject, newest first.
func (s *PgStore) FindBySubject(ctx context.Context, subjectID string, filters Filters) ([]model.Quote, error) {
	query := `SELECT id, reference_code, product_id,
	                 configuration, pricing, verdict,
	                 subject_id, email, company, idempotency_key,
	                 created_at, expires_at
	          FROM quotes
	          WHERE subject_id = $1`
	args := []any{subjectID}
	argIdx := 2

	if filters.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", argIdx)
		args = append(args, filters.ProductID)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []model.Quote
	for rows.Next() {
		var q model.Quote
		var configJSON, pricingJSON, verdictJSON []byte
		if err := rows.Scan(
			&q.ID, &q.ReferenceCode, &q.ProductID,
			&configJSON, &pricingJSON, &verdictJSON,
			&q.SubjectID, &q.Email, &q.Company, &q.IdempotencyKey,
			&q.CreatedAt, &q.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if err := unmarshalQuoteJSON(&q, configJSON, pricingJSON, verdictJSON); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func unmarshalQuoteJSON(q *model.Quote, configJSON, pricingJSON, verdictJSON []byte) error {
	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &q.Configuration); err != nil {
			return fmt.Errorf("unmarshal configuration: %w", err)
		}
	}
	if pricingJSON != nil {
		if err := json.Unmarshal(pricingJSON, &q.Pricing); err != nil {
			return fmt.Errorf("unmarshal pricing: %w", err)
		}
	}
	if verdictJSON != nil {
		if err := json.Unmarshal(verdictJSON, &q.Verdict); err != nil {
			return fmt.Errorf("unmarshal verdict: %w", err)
		}
	}
	return nil
}
