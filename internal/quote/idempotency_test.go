package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

func testQuote() model.Quote {
	return model.Quote{
		ID:            "q-1",
		ReferenceCode: "BHD.CAB.50.12.900.600",
		ProductID:     "hd-cabinet",
		Pricing: model.PricingResult{
			ProductID: "hd-cabinet",
			Total:     decimal.NewFromInt(1250),
			Currency:  model.Currency{Code: "AUD", Symbol: "$", ExchangeRate: 1, DecimalPlaces: 2},
		},
		Verdict:   model.RuleVerdict{Action: model.ActionBuyOnline, CanPurchaseOnline: true},
		CreatedAt: time.Now().UTC(),
	}
}

func assertConflict(t *testing.T, err error) {
	t.Helper()
	var env *model.ErrorEnvelope
	if !errors.As(err, &env) || env.Code != model.ErrConflict {
		t.Fatalf("error = %v, want CONFLICT envelope", err)
	}
}

// --- MemoryIdempotencyStore ---

func TestMemoryIdempotencyStore_CheckNotFound(t *testing.T) {
	store := NewMemoryIdempotencyStore()

	q, found, err := store.Check(context.Background(), "quote-idem:anon:key1", "hash-abc")
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if found {
		t.Error("found = true, want false")
	}
	if q != nil {
		t.Errorf("quote = %+v, want nil", q)
	}
}

func TestMemoryIdempotencyStore_StoreAndCheck(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()
	key := "quote-idem:user-1:key1"

	if err := store.Store(ctx, key, "hash-abc", testQuote(), 5*time.Minute); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	q, found, err := store.Check(ctx, key, "hash-abc")
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if !found {
		t.Fatal("found = false, want true")
	}
	if q.ID != "q-1" || !q.Pricing.Total.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("quote = %+v", q)
	}
}

func TestMemoryIdempotencyStore_hashMismatchConflicts(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()
	key := "quote-idem:user-1:key1"

	if err := store.Store(ctx, key, "hash-abc", testQuote(), 5*time.Minute); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	_, found, err := store.Check(ctx, key, "hash-other")
	if !found {
		t.Error("found = false, want true")
	}
	assertConflict(t, err)
}

func TestMemoryIdempotencyStore_ttlExpiry(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()
	key := "quote-idem:user-1:key1"

	if err := store.Store(ctx, key, "hash-abc", testQuote(), -1*time.Second); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	_, found, err := store.Check(ctx, key, "hash-abc")
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if found {
		t.Error("expired entry should not be found")
	}
	if store.Len() != 0 {
		t.Errorf("expired entry should be evicted, len = %d", store.Len())
	}
}

// --- RedisIdempotencyStore ---

func newRedisStore(t *testing.T) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisIdempotencyStore(client), mr
}

func TestRedisIdempotencyStore_StoreAndCheck(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	key := "quote-idem:user-1:key1"

	if err := store.Store(ctx, key, "hash-abc", testQuote(), 5*time.Minute); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	q, found, err := store.Check(ctx, key, "hash-abc")
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if !found {
		t.Fatal("found = false, want true")
	}
	if q.ReferenceCode != "BHD.CAB.50.12.900.600" {
		t.Errorf("reference code = %q", q.ReferenceCode)
	}
}

func TestRedisIdempotencyStore_hashMismatchConflicts(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	key := "quote-idem:user-1:key1"

	if err := store.Store(ctx, key, "hash-abc", testQuote(), 5*time.Minute); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	_, found, err := store.Check(ctx, key, "hash-other")
	if !found {
		t.Error("found = false, want true")
	}
	assertConflict(t, err)
}

func TestRedisIdempotencyStore_ttlExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	key := "quote-idem:user-1:key1"

	if err := store.Store(ctx, key, "hash-abc", testQuote(), 1*time.Minute); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, found, err := store.Check(ctx, key, "hash-abc")
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if found {
		t.Error("expired entry should not be found")
	}
}

func TestFormatIdempotencyKey(t *testing.T) {
	if got := FormatIdempotencyKey("user-1", "abc"); got != "quote-idem:user-1:abc" {
		t.Errorf("key = %q", got)
	}
	if got := FormatIdempotencyKey("", "abc"); got != "quote-idem:anon:abc" {
		t.Errorf("anonymous key = %q", got)
	}
}

func TestHashInput_stable(t *testing.T) {
	a := HashInput([]byte(`{"product_id":"hd-cabinet"}`))
	b := HashInput([]byte(`{"product_id":"hd-cabinet"}`))
	c := HashInput([]byte(`{"product_id":"workbench"}`))
	if a != b {
		t.Error("identical input must hash identically")
	}
	if a == c {
		t.Error("different input must hash differently")
	}
}
