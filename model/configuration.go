package model

// ConfigurationState is the unit of work passed into every engine call: a
// product, the buyer's option selections, the ordered drawer stack, and any
// embedded cabinets. Engine functions treat it as a value — they return new
// states or derived results and never mutate one in place, which keeps
// concurrent pricing calls over shared catalog data trivially safe.
type ConfigurationState struct {
	ProductID        string            `yaml:"product_id" json:"product_id"`
	Selections       map[string]any    `yaml:"selections" json:"selections,omitempty"`
	Drawers          []DrawerConfiguration `yaml:"drawers" json:"drawers,omitempty"`
	EmbeddedCabinets []EmbeddedCabinet `yaml:"embedded_cabinets" json:"embedded_cabinets,omitempty"`
}

// StringValue returns the selection for a select/radio/color group, or ""
// when absent or of the wrong shape.
func (s ConfigurationState) StringValue(groupID string) string {
	v, _ := s.Selections[groupID].(string)
	return v
}

// BoolValue returns the selection for a checkbox group. Absent is false.
func (s ConfigurationState) BoolValue(groupID string) bool {
	v, _ := s.Selections[groupID].(bool)
	return v
}

// QtyValue returns the selection for a qty group. JSON decodes numbers as
// float64; YAML fixtures produce int.
func (s ConfigurationState) QtyValue(groupID string) int {
	switch v := s.Selections[groupID].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// QtyListValue returns the (optionID, quantity) selection for a qty_list
// group. Zero and negative quantities are dropped, matching the invariant
// that quantity-zero entries are removed rather than stored.
func (s ConfigurationState) QtyListValue(groupID string) map[string]int {
	out := make(map[string]int)
	switch v := s.Selections[groupID].(type) {
	case map[string]int:
		for id, q := range v {
			if q > 0 {
				out[id] = q
			}
		}
	case map[string]any:
		for id, raw := range v {
			var q int
			switch n := raw.(type) {
			case int:
				q = n
			case float64:
				q = int(n)
			}
			if q > 0 {
				out[id] = q
			}
		}
	}
	return out
}

// Clone returns a deep copy of the configuration.
func (s ConfigurationState) Clone() ConfigurationState {
	out := s
	if s.Selections != nil {
		out.Selections = make(map[string]any, len(s.Selections))
		for k, v := range s.Selections {
			if m, ok := v.(map[string]any); ok {
				mc := make(map[string]any, len(m))
				for mk, mv := range m {
					mc[mk] = mv
				}
				out.Selections[k] = mc
				continue
			}
			out.Selections[k] = v
		}
	}
	if s.Drawers != nil {
		out.Drawers = make([]DrawerConfiguration, len(s.Drawers))
		for i, d := range s.Drawers {
			out.Drawers[i] = d.Clone()
		}
	}
	if s.EmbeddedCabinets != nil {
		out.EmbeddedCabinets = make([]EmbeddedCabinet, len(s.EmbeddedCabinets))
		for i, c := range s.EmbeddedCabinets {
			out.EmbeddedCabinets[i] = EmbeddedCabinet{
				Position:      c.Position,
				Configuration: c.Configuration.Clone(),
			}
		}
	}
	return out
}

// DrawerConfiguration is one drawer in the stack: a shell option reference,
// an optional pre-configured interior, and optional a la carte accessories.
// An interior and accessories may coexist; zero-quantity accessory entries
// must not be stored.
type DrawerConfiguration struct {
	ShellID     string                     `yaml:"shell_id"    json:"shell_id"`
	InteriorID  string                     `yaml:"interior_id" json:"interior_id,omitempty"`
	Accessories []DrawerAccessorySelection `yaml:"accessories" json:"accessories,omitempty"`
}

// Clone returns a deep copy of the drawer configuration.
func (d DrawerConfiguration) Clone() DrawerConfiguration {
	out := d
	if d.Accessories != nil {
		out.Accessories = make([]DrawerAccessorySelection, len(d.Accessories))
		copy(out.Accessories, d.Accessories)
	}
	return out
}

// DrawerAccessorySelection is one accessory choice within a drawer.
type DrawerAccessorySelection struct {
	AccessoryID string `yaml:"accessory_id" json:"accessory_id"`
	Quantity    int    `yaml:"quantity"     json:"quantity"`
}

// Embedded cabinet placements.
const (
	PositionLeft  = "left"
	PositionRight = "right"
)

// EmbeddedCabinet is a fully independent nested product configuration placed
// inside a parent product's cavity. Nesting is exactly one level deep; the
// pricing calculator hard-fails on anything deeper.
type EmbeddedCabinet struct {
	Position      string             `yaml:"position"      json:"position"`
	Configuration ConfigurationState `yaml:"configuration" json:"configuration"`
}
