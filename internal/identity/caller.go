package identity

import (
	"strings"
	"sync"
	"time"

	"github.com/opiegroup/boscotek2026-sub001/internal/config"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// PublicTierCode is the tier every anonymous or unrecognized caller prices at.
const PublicTierCode = "public"

// TierCatalog is the slice of the catalog registry tier resolution needs.
type TierCatalog interface {
	Tier(code string) (model.PriceTier, bool)
}

type tierEntry struct {
	tier    model.PriceTier
	expires time.Time
}

// Resolver turns verified claims into a CallerContext. Tier lookups are
// cached per subject for the configured TTL so a catalog reload does not
// reprice a caller mid-session.
type Resolver struct {
	cfg                 config.IdentityConfig
	catalog             TierCatalog
	publicMarkupPercent float64
	ttl                 time.Duration
	mu                  sync.RWMutex
	cache               map[string]tierEntry
}

// NewResolver creates a Resolver backed by the given tier catalog.
func NewResolver(cfg config.IdentityConfig, catalog TierCatalog, publicMarkupPercent float64) *Resolver {
	return &Resolver{
		cfg:                 cfg,
		catalog:             catalog,
		publicMarkupPercent: publicMarkupPercent,
		ttl:                 cfg.TierCacheTTL,
		cache:               make(map[string]tierEntry),
	}
}

// PublicTier returns the tier for callers with no trade account. The catalog
// definition wins when present so its markup stays authoritative.
func (r *Resolver) PublicTier() model.PriceTier {
	if tier, ok := r.catalog.Tier(PublicTierCode); ok {
		return tier
	}
	return model.PriceTier{
		Code:          PublicTierCode,
		Label:         "Public",
		MarkupPercent: r.publicMarkupPercent,
	}
}

// AnonymousCaller returns the CallerContext for requests without a token.
func (r *Resolver) AnonymousCaller(correlationID string) *model.CallerContext {
	return &model.CallerContext{
		Tier:          r.PublicTier(),
		CorrelationID: correlationID,
	}
}

// Resolve builds a CallerContext from verified claims. An unknown tier claim
// degrades to the public tier rather than failing the request.
func (r *Resolver) Resolve(claims map[string]any, correlationID string) *model.CallerContext {
	roles := extractClaimStringSlice(claims, r.claimPath("roles"))

	cc := &model.CallerContext{
		SubjectID:     extractClaimString(claims, r.claimPath("subject_id")),
		Email:         extractClaimString(claims, r.claimPath("email")),
		Company:       extractClaimString(claims, r.claimPath("company")),
		Roles:         roles,
		Claims:        claims,
		CorrelationID: correlationID,
	}

	tierCode := extractClaimString(claims, r.claimPath("tier"))
	cc.Tier = r.resolveTier(cc.SubjectID, tierCode)

	for _, staffRole := range r.cfg.StaffRoles {
		if cc.HasRole(staffRole) {
			cc.Staff = true
			break
		}
	}

	return cc
}

// Invalidate drops the cached tiers for a subject, forcing the next request
// to resolve against the current catalog.
func (r *Resolver) Invalidate(subjectID string) {
	prefix := subjectID + ":"
	r.mu.Lock()
	for key := range r.cache {
		if strings.HasPrefix(key, prefix) {
			delete(r.cache, key)
		}
	}
	r.mu.Unlock()
}

func (r *Resolver) resolveTier(subjectID, tierCode string) model.PriceTier {
	if tierCode == "" {
		return r.PublicTier()
	}

	key := subjectID + ":" + tierCode

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && time.Now().Before(entry.expires) {
		r.mu.RUnlock()
		return entry.tier
	}
	r.mu.RUnlock()

	tier, ok := r.catalog.Tier(tierCode)
	if !ok {
		tier = r.PublicTier()
	}

	if r.ttl > 0 {
		r.mu.Lock()
		r.cache[key] = tierEntry{tier: tier, expires: time.Now().Add(r.ttl)}
		r.mu.Unlock()
	}

	return tier
}

func (r *Resolver) claimPath(name string) string {
	if p, ok := r.cfg.ClaimPaths[name]; ok {
		return p
	}
	return name
}

// extractClaimString resolves a dot-notation path against nested claim maps.
func extractClaimString(claims map[string]any, path string) string {
	v := extractClaim(claims, path)
	s, _ := v.(string)
	return s
}

// extractClaimStringSlice resolves a dot-notation path to a string slice.
// Both []any and []string claim shapes are accepted.
func extractClaimStringSlice(claims map[string]any, path string) []string {
	switch v := extractClaim(claims, path).(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

func extractClaim(claims map[string]any, path string) any {
	if claims == nil || path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	var current any = claims
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}
