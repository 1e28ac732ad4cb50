package identity

import (
	"testing"
	"time"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

type stubTierCatalog struct {
	tiers map[string]model.PriceTier
	calls int
}

func (s *stubTierCatalog) Tier(code string) (model.PriceTier, bool) {
	s.calls++
	t, ok := s.tiers[code]
	return t, ok
}

func testCatalog() *stubTierCatalog {
	return &stubTierCatalog{tiers: map[string]model.PriceTier{
		"public":      {Code: "public", Label: "Public", MarkupPercent: 25},
		"distributor": {Code: "distributor", Label: "Distributor", MarkupPercent: 10},
	}}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testIdentityCfg(), testCatalog(), 25)

	cc := r.Resolve(map[string]any{
		"sub":        "user-1",
		"email":      "buyer@example.com",
		"company":    "Example Pty Ltd",
		"roles":      []any{"purchasing", "staff"},
		"price_tier": "distributor",
	}, "corr-1")

	if cc.SubjectID != "user-1" {
		t.Errorf("subject = %q", cc.SubjectID)
	}
	if cc.Company != "Example Pty Ltd" {
		t.Errorf("company = %q", cc.Company)
	}
	if cc.Tier.Code != "distributor" || cc.Tier.MarkupPercent != 10 {
		t.Errorf("tier = %+v, want distributor", cc.Tier)
	}
	if !cc.Staff {
		t.Error("staff role should mark caller as staff")
	}
	if cc.CorrelationID != "corr-1" {
		t.Errorf("correlation id = %q", cc.CorrelationID)
	}
}

func TestResolver_unknownTierFallsBackToPublic(t *testing.T) {
	r := NewResolver(testIdentityCfg(), testCatalog(), 25)

	cc := r.Resolve(map[string]any{
		"sub":        "user-2",
		"price_tier": "platinum",
	}, "")

	if cc.Tier.Code != "public" {
		t.Errorf("tier = %q, want public fallback", cc.Tier.Code)
	}
	if cc.Staff {
		t.Error("caller without staff role must not be staff")
	}
}

func TestResolver_missingTierClaim(t *testing.T) {
	r := NewResolver(testIdentityCfg(), testCatalog(), 25)

	cc := r.Resolve(map[string]any{"sub": "user-3"}, "")
	if cc.Tier.Code != "public" {
		t.Errorf("tier = %q, want public", cc.Tier.Code)
	}
}

func TestResolver_nestedRolesClaimPath(t *testing.T) {
	cfg := testIdentityCfg()
	cfg.ClaimPaths["roles"] = "realm_access.roles"
	r := NewResolver(cfg, testCatalog(), 25)

	cc := r.Resolve(map[string]any{
		"sub": "user-4",
		"realm_access": map[string]any{
			"roles": []any{"sales_admin"},
		},
	}, "")

	if !cc.Staff {
		t.Error("nested staff role should mark caller as staff")
	}
}

func TestResolver_tierCache(t *testing.T) {
	cfg := testIdentityCfg()
	cfg.TierCacheTTL = time.Hour
	catalog := testCatalog()
	r := NewResolver(cfg, catalog, 25)

	claims := map[string]any{"sub": "user-5", "price_tier": "distributor"}
	r.Resolve(claims, "")
	before := catalog.calls
	r.Resolve(claims, "")
	if catalog.calls != before {
		t.Errorf("second resolve hit the catalog (%d calls)", catalog.calls)
	}

	r.Invalidate("user-5")
	r.Resolve(claims, "")
	if catalog.calls == before {
		t.Error("resolve after Invalidate should hit the catalog")
	}
}

func TestResolver_PublicTier_catalogMissing(t *testing.T) {
	r := NewResolver(testIdentityCfg(), &stubTierCatalog{tiers: map[string]model.PriceTier{}}, 30)

	tier := r.PublicTier()
	if tier.Code != "public" || tier.MarkupPercent != 30 {
		t.Errorf("tier = %+v, want configured public markup", tier)
	}
}

func TestResolver_AnonymousCaller(t *testing.T) {
	r := NewResolver(testIdentityCfg(), testCatalog(), 25)

	cc := r.AnonymousCaller("corr-9")
	if !cc.Anonymous() {
		t.Error("caller should be anonymous")
	}
	if cc.Tier.Code != "public" {
		t.Errorf("tier = %q, want public", cc.Tier.Code)
	}
	if cc.CorrelationID != "corr-9" {
		t.Errorf("correlation id = %q", cc.CorrelationID)
	}
}
