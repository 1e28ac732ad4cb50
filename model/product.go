// Package model defines the domain types shared across the configurator
// engine: the catalog option model, configuration state, pricing results,
// commercial rules, and the caller context.
package model

// GroupType identifies how an option group is selected and priced.
type GroupType string

// Supported option group types.
const (
	GroupSelect      GroupType = "select"
	GroupRadio       GroupType = "radio"
	GroupCheckbox    GroupType = "checkbox"
	GroupColor       GroupType = "color"
	GroupQty         GroupType = "qty"
	GroupQtyList     GroupType = "qty_list"
	GroupDrawerStack GroupType = "drawer_stack"
)

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool {
	switch t {
	case GroupSelect, GroupRadio, GroupCheckbox, GroupColor, GroupQty, GroupQtyList, GroupDrawerStack:
		return true
	}
	return false
}

// Facet tags an option group with the semantic role its selection plays in
// derived facts (dimensions, security class, reference codes). Groups with
// no derived role carry an empty facet.
type Facet string

// Known facets.
const (
	FacetHeight      Facet = "height"
	FacetWidth       Facet = "width"
	FacetDepth       Facet = "depth"
	FacetSecurity    Facet = "security"
	FacetDoor        Facet = "door"
	FacetLock        Facet = "lock"
	FacetBench       Facet = "bench"
	FacetAccessories Facet = "accessories"
)

// Drawer pricing styles. Aggregate products compress the drawer stack into
// per-height and per-code buckets; itemized products emit one line per drawer.
const (
	DrawerPricingAggregate = "aggregate"
	DrawerPricingItemized  = "itemized"
)

// Meta keys understood by the solver, pricing calculator, and reference code
// generator. The meta bag itself is an open map so catalog authors can attach
// renderer-only data without touching the engine.
const (
	MetaFrontMM          = "front_mm"
	MetaLoadCapacityKG   = "load_capacity_kg"
	MetaRU               = "ru"
	MetaMM               = "mm"
	MetaUsablePerRUMM    = "usable_height_per_ru_mm"
	MetaSecurityClass    = "class"
	MetaCode             = "code"
	MetaCabinetsReplaced = "cabinets_replaced"
	MetaCabinetCredit    = "cabinet_credit"
	MetaHex              = "hex"
)

// RackUnitMM is the standard vertical increment for rack-mount equipment.
const RackUnitMM = 44.45

// ProductDefinition is the static description of a configurable product.
// Loaded once at catalog build time and never mutated afterwards.
type ProductDefinition struct {
	ID            string        `yaml:"id"             json:"id"`
	Label         string        `yaml:"label"          json:"label"`
	Series        string        `yaml:"series"         json:"series"`
	BasePrice     float64       `yaml:"base_price"     json:"base_price"`
	CodePrefix    string        `yaml:"code_prefix"    json:"code_prefix"`
	Segment       string        `yaml:"segment"        json:"segment,omitempty"`
	DrawerPricing string        `yaml:"drawer_pricing" json:"drawer_pricing,omitempty"`
	SecurityCoded bool          `yaml:"security_coded" json:"security_coded,omitempty"`

	// EmbeddedCapacityMM pins the drawer capacity of cabinets embedded in
	// this product, independent of the nested cabinet's own height option.
	EmbeddedCapacityMM float64 `yaml:"embedded_capacity_mm" json:"embedded_capacity_mm,omitempty"`

	Groups []OptionGroup `yaml:"groups" json:"groups"`
}

// Group returns the option group with the given ID.
func (p *ProductDefinition) Group(groupID string) (OptionGroup, bool) {
	for _, g := range p.Groups {
		if g.ID == groupID {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// GroupByFacet returns the first option group carrying the given facet.
func (p *ProductDefinition) GroupByFacet(f Facet) (OptionGroup, bool) {
	for _, g := range p.Groups {
		if g.Facet == f {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// OptionGroup is an ordered set of selectable options within a product.
type OptionGroup struct {
	ID      string    `yaml:"id"      json:"id"`
	Label   string    `yaml:"label"   json:"label"`
	Type    GroupType `yaml:"type"    json:"type"`
	Facet   Facet     `yaml:"facet"   json:"facet,omitempty"`
	Step    int       `yaml:"step"    json:"step,omitempty"`
	Default any       `yaml:"default" json:"default,omitempty"`
	Options []Option  `yaml:"options" json:"options"`
}

// Option returns the option with the given ID. A miss is not an error: the
// engine treats unknown option IDs as absent so deprecated catalog entries
// never break old saved configurations.
func (g *OptionGroup) Option(optionID string) (Option, bool) {
	for _, o := range g.Options {
		if o.ID == optionID {
			return o, true
		}
	}
	return Option{}, false
}

// Option is a single selectable value with a signed price delta relative to
// the group's no-selection baseline. Negative deltas credit money back.
type Option struct {
	ID         string         `yaml:"id"          json:"id"`
	Label      string         `yaml:"label"       json:"label"`
	PriceDelta float64        `yaml:"price_delta" json:"price_delta"`
	Meta       map[string]any `yaml:"meta"        json:"meta,omitempty"`
}

// MetaString returns the named meta value as a string, or "" if absent.
func (o Option) MetaString(key string) string {
	s, _ := o.Meta[key].(string)
	return s
}

// MetaFloat returns the named meta value as a float64, or 0 if absent.
// YAML decodes whole numbers as int, so both numeric kinds are accepted.
func (o Option) MetaFloat(key string) float64 {
	switch v := o.Meta[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// MetaInt returns the named meta value as an int, or 0 if absent.
func (o Option) MetaInt(key string) int {
	return int(o.MetaFloat(key))
}
