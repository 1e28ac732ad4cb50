package quote

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

type stubPricer struct {
	calls int
}

func (p *stubPricer) Price(state model.ConfigurationState, _ *model.CallerContext, currency string) (*model.PricingResult, error) {
	p.calls++
	if currency == "" {
		currency = "AUD"
	}
	return &model.PricingResult{
		ProductID: state.ProductID,
		Total:     decimal.NewFromInt(1250),
		Currency:  model.Currency{Code: currency, ExchangeRate: 1, DecimalPlaces: 2},
	}, nil
}

type stubRules struct{}

func (stubRules) Check(model.ConfigurationState) (model.RuleVerdict, error) {
	return model.RuleVerdict{Action: model.ActionBuyOnline, CanPurchaseOnline: true}, nil
}

type stubProductCatalog struct{}

func (stubProductCatalog) Product(id string) (model.ProductDefinition, bool) {
	if id != "hd-cabinet" {
		return model.ProductDefinition{}, false
	}
	return model.ProductDefinition{
		ID: "hd-cabinet", CodePrefix: "BHD", Segment: "CAB", Series: "50",
		EmbeddedCapacityMM: 300,
		Groups: []model.OptionGroup{
			{ID: "height", Type: model.GroupSelect, Facet: model.FacetHeight, Options: []model.Option{
				{ID: "ru-12", Label: "12RU", Meta: map[string]any{model.MetaRU: 12}},
			}},
			{ID: "drawers", Type: model.GroupDrawerStack, Options: []model.Option{
				{ID: "dr-75", Label: "75mm Drawer", Meta: map[string]any{model.MetaFrontMM: 75}},
				{ID: "dr-150", Label: "150mm Drawer", Meta: map[string]any{model.MetaFrontMM: 150}},
				{ID: "dr-300", Label: "300mm Drawer", Meta: map[string]any{model.MetaFrontMM: 300}},
			}},
		},
	}, true
}

func stubRefCode(product model.ProductDefinition, _ model.ConfigurationState) string {
	return product.CodePrefix + "." + product.Segment + "." + product.Series
}

func newTestService(t *testing.T) (*Service, *MemoryStore, *stubPricer) {
	t.Helper()
	store := NewMemoryStore()
	pricer := &stubPricer{}
	svc := NewService(store, NewMemoryIdempotencyStore(), pricer, stubRules{},
		stubProductCatalog{}, stubRefCode, time.Hour)
	return svc, store, pricer
}

func caller() *model.CallerContext {
	return &model.CallerContext{
		SubjectID: "user-1",
		Email:     "buyer@example.com",
		Company:   "Example Pty Ltd",
		Tier:      model.PriceTier{Code: "distributor", MarkupPercent: 10},
	}
}

func createReq(key string) CreateRequest {
	return CreateRequest{
		State:          model.ConfigurationState{ProductID: "hd-cabinet"},
		Currency:       "AUD",
		IdempotencyKey: key,
		RawBody:        []byte(`{"product_id":"hd-cabinet"}`),
	}
}

func TestService_Create(t *testing.T) {
	svc, store, _ := newTestService(t)

	q, err := svc.Create(context.Background(), createReq(""), caller())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if q.ID == "" {
		t.Error("quote should have an ID")
	}
	if q.ReferenceCode != "BHD.CAB.50" {
		t.Errorf("reference code = %q", q.ReferenceCode)
	}
	if !q.Pricing.Total.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("total = %s", q.Pricing.Total)
	}
	if !q.Verdict.CanPurchaseOnline {
		t.Error("verdict should allow online purchase")
	}
	if q.SubjectID != "user-1" || q.Company != "Example Pty Ltd" {
		t.Errorf("caller fields = %q %q", q.SubjectID, q.Company)
	}
	if !q.ExpiresAt.After(q.CreatedAt) {
		t.Error("quote must have a validity window")
	}
	if store.Len() != 1 {
		t.Errorf("store len = %d, want 1", store.Len())
	}
}

func TestService_Create_normalizesDrawerStacks(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := CreateRequest{
		State: model.ConfigurationState{
			ProductID:  "hd-cabinet",
			Selections: map[string]any{"height": "ru-12"},
			Drawers: []model.DrawerConfiguration{
				{ShellID: "dr-300"}, {ShellID: "dr-75"}, {ShellID: "dr-150"},
			},
			EmbeddedCabinets: []model.EmbeddedCabinet{{
				Position: "under-bench-left",
				Configuration: model.ConfigurationState{
					ProductID: "hd-cabinet",
					Drawers: []model.DrawerConfiguration{
						{ShellID: "dr-150"}, {ShellID: "dr-300"},
					},
				},
			}},
		},
		Currency: "AUD",
	}

	q, err := svc.Create(context.Background(), req, caller())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := shellIDs(q.Configuration.Drawers); got != "dr-75,dr-150,dr-300" {
		t.Errorf("stored stack = %s, want ascending fronts", got)
	}

	// The embedded stack runs against the host's 300mm pinned capacity:
	// the 150mm drawer fits, the 300mm drawer no longer does.
	emb := q.Configuration.EmbeddedCabinets[0].Configuration.Drawers
	if got := shellIDs(emb); got != "dr-150" {
		t.Errorf("embedded stack = %s, want dr-150 only", got)
	}
}

func shellIDs(drawers []model.DrawerConfiguration) string {
	ids := make([]string, len(drawers))
	for i, d := range drawers {
		ids[i] = d.ShellID
	}
	return strings.Join(ids, ",")
}

func TestService_Create_idempotentReplay(t *testing.T) {
	svc, store, pricer := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, createReq("key-1"), caller())
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := svc.Create(ctx, createReq("key-1"), caller())
	if err != nil {
		t.Fatalf("replay Create: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("replay returned a new quote: %s vs %s", first.ID, second.ID)
	}
	if store.Len() != 1 {
		t.Errorf("store len = %d, want 1", store.Len())
	}
	if pricer.calls != 1 {
		t.Errorf("pricer called %d times, want 1", pricer.calls)
	}
}

func TestService_Create_keyReuseWithDifferentInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, createReq("key-1"), caller()); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	req := createReq("key-1")
	req.RawBody = []byte(`{"product_id":"hd-cabinet","selections":{"width":"900"}}`)
	_, err := svc.Create(ctx, req, caller())
	assertConflict(t, err)
}

func TestService_Create_sameKeyDifferentSubjects(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, createReq("key-1"), caller())
	if err != nil {
		t.Fatalf("Create subject a: %v", err)
	}
	other := caller()
	other.SubjectID = "user-2"
	b, err := svc.Create(ctx, createReq("key-1"), other)
	if err != nil {
		t.Fatalf("Create subject b: %v", err)
	}

	if a.ID == b.ID {
		t.Error("idempotency keys must be scoped per subject")
	}
	if store.Len() != 2 {
		t.Errorf("store len = %d, want 2", store.Len())
	}
}

func TestService_Create_unknownProduct(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := createReq("")
	req.State.ProductID = "nope"
	_, err := svc.Create(context.Background(), req, caller())

	var env *model.ErrorEnvelope
	if !errors.As(err, &env) || env.Code != model.ErrNotFound {
		t.Fatalf("error = %v, want NOT_FOUND envelope", err)
	}
}

func TestService_Create_anonymousCaller(t *testing.T) {
	svc, _, _ := newTestService(t)

	q, err := svc.Create(context.Background(), createReq(""), nil)
	if err != nil {
		t.Fatalf("Create anonymous: %v", err)
	}
	if q.SubjectID != "" {
		t.Errorf("subject = %q, want empty", q.SubjectID)
	}
}

func TestService_List_requiresIdentity(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.List(context.Background(), &model.CallerContext{}, Filters{})
	var env *model.ErrorEnvelope
	if !errors.As(err, &env) || env.Code != model.ErrUnauthorized {
		t.Fatalf("error = %v, want UNAUTHORIZED envelope", err)
	}
}

func TestService_GetRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq(""), caller())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ReferenceCode != created.ReferenceCode {
		t.Errorf("reference code = %q, want %q", got.ReferenceCode, created.ReferenceCode)
	}
}
