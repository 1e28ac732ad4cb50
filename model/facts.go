package model

// Dimensions are the resolved size facts of a configuration, derived from
// the facet-tagged option groups. Zero values mean the product does not
// carry that dimension.
type Dimensions struct {
	RU      int
	WidthMM int
	DepthMM int
}

// Unsized reports whether no dimension could be resolved at all.
func (d Dimensions) Unsized() bool {
	return d.RU == 0 && d.WidthMM == 0 && d.DepthMM == 0
}

// ResolveDimensions derives the RU height, width, and depth from the
// configuration's selections. Unknown or absent selections leave the
// dimension at zero.
func ResolveDimensions(product ProductDefinition, state ConfigurationState) Dimensions {
	var dims Dimensions
	if o, ok := selectedFacetOption(product, state, FacetHeight); ok {
		dims.RU = o.MetaInt(MetaRU)
	}
	if o, ok := selectedFacetOption(product, state, FacetWidth); ok {
		dims.WidthMM = o.MetaInt(MetaMM)
	}
	if o, ok := selectedFacetOption(product, state, FacetDepth); ok {
		dims.DepthMM = o.MetaInt(MetaMM)
	}
	return dims
}

// SecurityClass returns the selected security classification ("B", "C", ...)
// or "" when the product has no security group or nothing is selected.
func SecurityClass(product ProductDefinition, state ConfigurationState) string {
	o, ok := selectedFacetOption(product, state, FacetSecurity)
	if !ok {
		return ""
	}
	return o.MetaString(MetaSecurityClass)
}

// AccessoryCount totals the accessory quantities of a configuration: every
// drawer accessory selection plus every qty_list group tagged with the
// accessories facet.
func AccessoryCount(product ProductDefinition, state ConfigurationState) int {
	var count int
	for _, d := range state.Drawers {
		for _, sel := range d.Accessories {
			if sel.Quantity > 0 {
				count += sel.Quantity
			}
		}
	}
	for _, g := range product.Groups {
		if g.Type != GroupQtyList || g.Facet != FacetAccessories {
			continue
		}
		for _, qty := range state.QtyListValue(g.ID) {
			count += qty
		}
	}
	return count
}

func selectedFacetOption(product ProductDefinition, state ConfigurationState, f Facet) (Option, bool) {
	g, ok := product.GroupByFacet(f)
	if !ok {
		return Option{}, false
	}
	return g.Option(state.StringValue(g.ID))
}
