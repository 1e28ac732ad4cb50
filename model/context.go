package model

import "context"

// CallerContext carries the identity and pricing tier resolved for one
// request. It is immutable after construction and safe for concurrent reads.
// Anonymous callers carry the public tier and no subject.
type CallerContext struct {
	SubjectID     string
	Email         string
	Company       string
	Roles         []string
	Tier          PriceTier
	Staff         bool
	Claims        map[string]any
	CorrelationID string
}

// Anonymous reports whether the caller presented no verifiable identity.
func (cc *CallerContext) Anonymous() bool {
	return cc.SubjectID == ""
}

// HasRole returns true if the caller holds the given role.
func (cc *CallerContext) HasRole(role string) bool {
	for _, r := range cc.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Claim returns the value of the given claim key, or nil if not present.
func (cc *CallerContext) Claim(key string) any {
	if cc.Claims == nil {
		return nil
	}
	return cc.Claims[key]
}

type callerKey struct{}

// WithCallerContext attaches a CallerContext to the given context.
func WithCallerContext(ctx context.Context, cc *CallerContext) context.Context {
	return context.WithValue(ctx, callerKey{}, cc)
}

// CallerContextFrom extracts the CallerContext from the context, or returns
// nil if not present.
func CallerContextFrom(ctx context.Context) *CallerContext {
	cc, _ := ctx.Value(callerKey{}).(*CallerContext)
	return cc
}
