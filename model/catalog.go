package model

// CatalogDocument is the root structure of a catalog file. Each file may
// declare products, interior/accessory libraries, the dimension matrix,
// currencies, pricing tiers, and the ordered commercial rule list.
type CatalogDocument struct {
	Products        []ProductDefinition `yaml:"products"         json:"products,omitempty"`
	Interiors       []Interior          `yaml:"interiors"        json:"interiors,omitempty"`
	Accessories     []Accessory         `yaml:"accessories"      json:"accessories,omitempty"`
	Dimensions      []DimensionEntry    `yaml:"dimensions"       json:"dimensions,omitempty"`
	Currencies      []Currency          `yaml:"currencies"       json:"currencies,omitempty"`
	Tiers           []PriceTier         `yaml:"tiers"            json:"tiers,omitempty"`
	CommercialRules []CommercialRule    `yaml:"commercial_rules" json:"commercial_rules,omitempty"`

	// Checksum is computed at load time and not part of the YAML.
	Checksum string `yaml:"-" json:"-"`
	// SourceFile records the originating file path.
	SourceFile string `yaml:"-" json:"-"`
}

// Depth classes for drawer interiors. A drawer deeper than
// DeepDrawerThresholdMM is "deep", everything else is "standard".
const (
	DepthClassStandard = "standard"
	DepthClassDeep     = "deep"

	DeepDrawerThresholdMM = 700
)

// HeightPlaceholder is the token in interior and accessory catalog codes that
// is substituted with the actual drawer front height at resolution time. One
// catalog entry stays valid across every height it supports.
const HeightPlaceholder = "{H}"

// Interior is a pre-configured partition/bin layout fitted inside a drawer
// shell. Compatibility is declared by width, depth class, and front heights.
type Interior struct {
	ID           string  `yaml:"id"            json:"id"`
	Code         string  `yaml:"code"          json:"code"`
	Label        string  `yaml:"label"         json:"label"`
	WidthMM      int     `yaml:"width_mm"      json:"width_mm"`
	DepthClass   string  `yaml:"depth_class"   json:"depth_class"`
	FrontHeights []int   `yaml:"front_heights" json:"front_heights"`
	Price        float64 `yaml:"price"         json:"price"`
}

// FitsFront reports whether the interior supports the given front height.
func (i Interior) FitsFront(frontMM int) bool {
	for _, h := range i.FrontHeights {
		if h == frontMM {
			return true
		}
	}
	return false
}

// Accessory is an a la carte drawer fitting compatible with a contiguous
// range of front heights.
type Accessory struct {
	ID         string  `yaml:"id"           json:"id"`
	Code       string  `yaml:"code"         json:"code"`
	Label      string  `yaml:"label"        json:"label"`
	MinFrontMM int     `yaml:"min_front_mm" json:"min_front_mm"`
	MaxFrontMM int     `yaml:"max_front_mm" json:"max_front_mm"`
	Price      float64 `yaml:"price"        json:"price"`
}

// FitsFront reports whether the accessory's compatible range includes the
// given front height.
func (a Accessory) FitsFront(frontMM int) bool {
	return frontMM >= a.MinFrontMM && frontMM <= a.MaxFrontMM
}

// DimensionEntry maps a (series, RU height, width, depth) tuple to a base
// price and a standard/custom flag. Used both for pricing lookup and for the
// "is this a custom size" fact consumed by the rules evaluator.
type DimensionEntry struct {
	Series    string  `yaml:"series"     json:"series"`
	RU        int     `yaml:"ru"         json:"ru"`
	WidthMM   int     `yaml:"width_mm"   json:"width_mm"`
	DepthMM   int     `yaml:"depth_mm"   json:"depth_mm"`
	BasePrice float64 `yaml:"base_price" json:"base_price"`
	Standard  bool    `yaml:"standard"   json:"standard"`
}

// BaseCurrency is the currency all catalog prices are expressed in.
const BaseCurrency = "AUD"

// Currency describes a display currency and its conversion from the base.
type Currency struct {
	Code          string  `yaml:"code"           json:"code"`
	Symbol        string  `yaml:"symbol"         json:"symbol"`
	ExchangeRate  float64 `yaml:"exchange_rate"  json:"exchange_rate"`
	DecimalPlaces int     `yaml:"decimal_places" json:"decimal_places"`
}

// PriceTier is a caller-specific markup applied to wholesale cost. Markup
// zero means the caller sees wholesale prices.
type PriceTier struct {
	Code          string  `yaml:"code"           json:"code"`
	Label         string  `yaml:"label"          json:"label"`
	MarkupPercent float64 `yaml:"markup_percent" json:"markup_percent"`
}
