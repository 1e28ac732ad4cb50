package catalog

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

type dimensionKey struct {
	series  string
	ru      int
	widthMM int
	depthMM int
}

// snapshot is an immutable collection of all catalog data indexed for lookup.
type snapshot struct {
	products    map[string]model.ProductDefinition
	interiors   []model.Interior
	accessories []model.Accessory
	interiorIdx map[string]model.Interior
	accessoryIdx map[string]model.Accessory
	dimensions  map[dimensionKey]model.DimensionEntry
	dimensionList []model.DimensionEntry
	currencies  map[string]model.Currency
	tiers       map[string]model.PriceTier
	rules       []model.CommercialRule
	checksum    string
}

// Registry is a read-optimized, thread-safe store of all loaded catalog data.
// It uses atomic pointer swap for lock-free concurrent reads, so pricing and
// rule evaluation across concurrent requests never contend.
type Registry struct {
	snap atomic.Pointer[snapshot]
}

// NewRegistry creates a Registry from the given catalog documents.
func NewRegistry(docs []model.CatalogDocument) *Registry {
	r := &Registry{}
	r.Replace(docs)
	return r
}

// Replace atomically swaps the registry contents with a new snapshot built
// from the given documents. Interior and accessory order within a document
// is preserved because the solver's filtered lists feed ordered UI controls.
func (r *Registry) Replace(docs []model.CatalogDocument) {
	s := &snapshot{
		products:     make(map[string]model.ProductDefinition),
		interiorIdx:  make(map[string]model.Interior),
		accessoryIdx: make(map[string]model.Accessory),
		dimensions:   make(map[dimensionKey]model.DimensionEntry),
		currencies:   make(map[string]model.Currency),
		tiers:        make(map[string]model.PriceTier),
	}

	var checksumParts []string

	for _, doc := range docs {
		checksumParts = append(checksumParts, doc.Checksum)

		for _, p := range doc.Products {
			s.products[p.ID] = p
		}
		for _, in := range doc.Interiors {
			s.interiors = append(s.interiors, in)
			s.interiorIdx[in.ID] = in
		}
		for _, a := range doc.Accessories {
			s.accessories = append(s.accessories, a)
			s.accessoryIdx[a.ID] = a
		}
		for _, d := range doc.Dimensions {
			s.dimensions[dimensionKey{d.Series, d.RU, d.WidthMM, d.DepthMM}] = d
			s.dimensionList = append(s.dimensionList, d)
		}
		for _, c := range doc.Currencies {
			s.currencies[c.Code] = c
		}
		for _, tier := range doc.Tiers {
			s.tiers[tier.Code] = tier
		}
		s.rules = append(s.rules, doc.CommercialRules...)
	}

	sort.Strings(checksumParts)
	combined := strings.Join(checksumParts, ":")
	s.checksum = fmt.Sprintf("%x", sha256.Sum256([]byte(combined)))

	r.snap.Store(s)
}

func (r *Registry) current() *snapshot {
	return r.snap.Load()
}

// Product returns the product definition with the given ID.
func (r *Registry) Product(productID string) (model.ProductDefinition, bool) {
	p, ok := r.current().products[productID]
	return p, ok
}

// Products returns all product definitions, sorted by ID for stable output.
func (r *Registry) Products() []model.ProductDefinition {
	s := r.current()
	out := make([]model.ProductDefinition, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Interiors returns all interiors in catalog order.
func (r *Registry) Interiors() []model.Interior {
	return r.current().interiors
}

// Interior returns the interior with the given ID.
func (r *Registry) Interior(interiorID string) (model.Interior, bool) {
	in, ok := r.current().interiorIdx[interiorID]
	return in, ok
}

// Accessories returns all accessories in catalog order.
func (r *Registry) Accessories() []model.Accessory {
	return r.current().accessories
}

// Accessory returns the accessory with the given ID.
func (r *Registry) Accessory(accessoryID string) (model.Accessory, bool) {
	a, ok := r.current().accessoryIdx[accessoryID]
	return a, ok
}

// Dimension returns the matrix entry for the given size tuple.
func (r *Registry) Dimension(series string, ru, widthMM, depthMM int) (model.DimensionEntry, bool) {
	d, ok := r.current().dimensions[dimensionKey{series, ru, widthMM, depthMM}]
	return d, ok
}

// IsStandardSize reports whether the size tuple exists in the dimension
// matrix and is flagged standard. Any tuple outside the matrix is custom.
func (r *Registry) IsStandardSize(series string, ru, widthMM, depthMM int) bool {
	d, ok := r.Dimension(series, ru, widthMM, depthMM)
	return ok && d.Standard
}

// BasePriceFor returns the matrix base price for a size tuple. An exact
// match wins; a custom size still gets a best-effort price from the
// nearest entry in the same series, with RU distance weighted to
// millimetres. False when the series has no matrix rows at all.
func (r *Registry) BasePriceFor(series string, ru, widthMM, depthMM int) (float64, bool) {
	if d, ok := r.Dimension(series, ru, widthMM, depthMM); ok {
		return d.BasePrice, true
	}

	var best model.DimensionEntry
	bestDist := -1.0
	for _, d := range r.current().dimensionList {
		if d.Series != series {
			continue
		}
		dist := float64(abs(d.RU-ru))*model.RackUnitMM +
			float64(abs(d.WidthMM-widthMM)) +
			float64(abs(d.DepthMM-depthMM))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	if bestDist < 0 {
		return 0, false
	}
	return best.BasePrice, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Currency returns the currency with the given code.
func (r *Registry) Currency(code string) (model.Currency, bool) {
	c, ok := r.current().currencies[code]
	return c, ok
}

// Tier returns the pricing tier with the given code.
func (r *Registry) Tier(code string) (model.PriceTier, bool) {
	t, ok := r.current().tiers[code]
	return t, ok
}

// Rules returns the commercial rule list in declaration order. Order is
// business priority: the evaluator applies the first match.
func (r *Registry) Rules() []model.CommercialRule {
	return r.current().rules
}

// Checksum returns the combined checksum of all loaded catalog documents.
func (r *Registry) Checksum() string {
	return r.current().checksum
}
