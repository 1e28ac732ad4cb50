// Package refcode builds the deterministic, human-readable reference code
// staff use to cross-reference physical SKUs. There is no validation here,
// only formatting; part order matches the printed catalog documentation and
// must not change.
package refcode

import (
	"strconv"
	"strings"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// separator joins reference code parts.
const separator = "."

// Generate synthesizes the reference code for a configuration: prefix,
// segment, series, security-class letter (security-coded products only),
// RU height, width, depth, door code, lock code. Zero or absent parts are
// omitted entirely, never rendered as "0".
func Generate(product model.ProductDefinition, state model.ConfigurationState) string {
	parts := make([]string, 0, 9)

	if product.CodePrefix != "" {
		parts = append(parts, product.CodePrefix)
	}
	if product.Segment != "" {
		parts = append(parts, product.Segment)
	}
	if product.Series != "" {
		parts = append(parts, product.Series)
	}

	if product.SecurityCoded {
		if class := model.SecurityClass(product, state); class != "" {
			parts = append(parts, class)
		}
	}

	dims := model.ResolveDimensions(product, state)
	if dims.RU > 0 {
		parts = append(parts, strconv.Itoa(dims.RU))
	}
	if dims.WidthMM > 0 {
		parts = append(parts, strconv.Itoa(dims.WidthMM))
	}
	if dims.DepthMM > 0 {
		parts = append(parts, strconv.Itoa(dims.DepthMM))
	}

	if code := facetCode(product, state, model.FacetDoor); code != "" {
		parts = append(parts, code)
	}
	if code := facetCode(product, state, model.FacetLock); code != "" {
		parts = append(parts, code)
	}

	return strings.Join(parts, separator)
}

// facetCode returns the catalog code of the selected option in the group
// carrying the given facet, or "" when absent.
func facetCode(product model.ProductDefinition, state model.ConfigurationState, f model.Facet) string {
	g, ok := product.GroupByFacet(f)
	if !ok {
		return ""
	}
	o, ok := g.Option(state.StringValue(g.ID))
	if !ok {
		return ""
	}
	return o.MetaString(model.MetaCode)
}
