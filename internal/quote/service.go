package quote

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opiegroup/boscotek2026-sub001/internal/solver"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// DefaultValidity is how long a quote holds its price.
const DefaultValidity = 30 * 24 * time.Hour

// Pricer prices a configuration for a caller.
type Pricer interface {
	Price(state model.ConfigurationState, caller *model.CallerContext, currencyCode string) (*model.PricingResult, error)
}

// RuleChecker evaluates the commercial verdict for a configuration.
type RuleChecker interface {
	Check(state model.ConfigurationState) (model.RuleVerdict, error)
}

// ProductCatalog is the slice of the catalog registry the service needs.
type ProductCatalog interface {
	Product(id string) (model.ProductDefinition, bool)
}

// ReferenceCodeFunc synthesizes the reference code for a configuration.
type ReferenceCodeFunc func(product model.ProductDefinition, state model.ConfigurationState) string

// Service creates and retrieves quotes. Creation snapshots the pricing and
// verdict at request time; stored quotes are never repriced.
type Service struct {
	store      Store
	idem       IdempotencyStore
	pricer     Pricer
	rules      RuleChecker
	catalog    ProductCatalog
	refCode    ReferenceCodeFunc
	idemTTL    time.Duration
	validity   time.Duration
	now        func() time.Time
	generateID func() string
}

// NewService wires a quote Service.
func NewService(store Store, idem IdempotencyStore, pricer Pricer, rules RuleChecker,
	catalog ProductCatalog, refCode ReferenceCodeFunc, idemTTL time.Duration) *Service {
	return &Service{
		store:      store,
		idem:       idem,
		pricer:     pricer,
		rules:      rules,
		catalog:    catalog,
		refCode:    refCode,
		idemTTL:    idemTTL,
		validity:   DefaultValidity,
		now:        func() time.Time { return time.Now().UTC() },
		generateID: func() string { return uuid.NewString() },
	}
}

// CreateRequest is one quote creation request.
type CreateRequest struct {
	State          model.ConfigurationState
	Currency       string
	IdempotencyKey string
	// RawBody is the raw request payload, hashed for replay detection.
	RawBody []byte
}

// Create prices the configuration, evaluates the commercial verdict, and
// persists the quote. With an idempotency key, replays with identical input
// return the original quote; replays with different input return CONFLICT.
func (s *Service) Create(ctx context.Context, req CreateRequest, caller *model.CallerContext) (model.Quote, error) {
	var idemKey, inputHash string
	if req.IdempotencyKey != "" && s.idem != nil {
		var subjectID string
		if caller != nil {
			subjectID = caller.SubjectID
		}
		idemKey = FormatIdempotencyKey(subjectID, req.IdempotencyKey)
		inputHash = HashInput(req.RawBody)

		cached, found, err := s.idem.Check(ctx, idemKey, inputHash)
		if err != nil {
			return model.Quote{}, err
		}
		if found {
			return *cached, nil
		}
	}

	product, ok := s.catalog.Product(req.State.ProductID)
	if !ok {
		return model.Quote{}, model.NewNotFoundError("product " + req.State.ProductID + " not found")
	}

	// A stored quote must hold canonical drawer stacks; the priced and
	// persisted configuration are the same normalized value.
	state := s.normalizeStacks(product, req.State)

	pricing, err := s.pricer.Price(state, caller, req.Currency)
	if err != nil {
		return model.Quote{}, err
	}

	verdict, err := s.rules.Check(state)
	if err != nil {
		return model.Quote{}, err
	}

	now := s.now()
	q := model.Quote{
		ID:             s.generateID(),
		ReferenceCode:  s.refCode(product, state),
		ProductID:      state.ProductID,
		Configuration:  state,
		Pricing:        *pricing,
		Verdict:        verdict,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.validity),
	}
	if caller != nil {
		q.SubjectID = caller.SubjectID
		q.Email = caller.Email
		q.Company = caller.Company
	}

	if err := s.store.Create(ctx, q); err != nil {
		return model.Quote{}, err
	}

	if idemKey != "" {
		if err := s.idem.Store(ctx, idemKey, inputHash, q, s.idemTTL); err != nil {
			// The quote is persisted; a failed idempotency write only
			// weakens replay protection.
			return q, nil
		}
	}

	return q, nil
}

// Get retrieves a quote by ID.
func (s *Service) Get(ctx context.Context, id string) (model.Quote, error) {
	return s.store.Get(ctx, id)
}

// List returns the caller's quotes, newest first.
func (s *Service) List(ctx context.Context, caller *model.CallerContext, filters Filters) ([]model.Quote, error) {
	if caller == nil || caller.Anonymous() {
		return nil, model.NewUnauthorizedError("Listing quotes requires a signed-in caller")
	}
	return s.store.FindBySubject(ctx, caller.SubjectID, filters)
}

// normalizeStacks returns the configuration with every drawer stack in
// canonical order and trimmed to capacity. Embedded cabinet stacks run
// against the host's pinned embedded capacity, never the nested cabinet's
// own height option.
func (s *Service) normalizeStacks(host model.ProductDefinition, state model.ConfigurationState) model.ConfigurationState {
	out := state.Clone()
	out.Drawers = normalizeStack(host, out.Drawers, solver.CapacityFor(host, state))
	for i := range out.EmbeddedCabinets {
		cfg := out.EmbeddedCabinets[i].Configuration
		nested, ok := s.catalog.Product(cfg.ProductID)
		if !ok {
			continue
		}
		out.EmbeddedCabinets[i].Configuration.Drawers =
			normalizeStack(nested, cfg.Drawers, solver.EmbeddedCapacityFor(host))
	}
	return out
}

// normalizeStack rebuilds a stack through the solver so ordering and
// capacity are both enforced. Drawers that no longer fit are dropped.
func normalizeStack(product model.ProductDefinition, drawers []model.DrawerConfiguration, capacityMM float64) []model.DrawerConfiguration {
	group, ok := drawerStackGroup(product)
	if !ok || len(drawers) == 0 {
		return drawers
	}
	stack := solver.New(group, capacityMM)
	out := make([]model.DrawerConfiguration, 0, len(drawers))
	for _, d := range drawers {
		out, _ = stack.Add(out, d)
	}
	return out
}

func drawerStackGroup(product model.ProductDefinition) (model.OptionGroup, bool) {
	for _, g := range product.Groups {
		if g.Type == model.GroupDrawerStack {
			return g, true
		}
	}
	return model.OptionGroup{}, false
}
