// Package solver enforces drawer stack capacity, canonical ordering, and
// interior/accessory compatibility. All operations are pure: inputs are
// never mutated, so stacks can be shared across concurrent requests and the
// ordering invariant is trivially testable.
package solver

import (
	"sort"
	"strconv"
	"strings"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// Stack binds a drawer group definition to an enclosure's usable height
// capacity. It carries no mutable state.
type Stack struct {
	group      model.OptionGroup
	capacityMM float64
}

// New creates a Stack for the given drawer group and capacity.
func New(group model.OptionGroup, capacityMM float64) Stack {
	return Stack{group: group, capacityMM: capacityMM}
}

// CapacityMM returns the enclosure's usable height.
func (s Stack) CapacityMM() float64 {
	return s.capacityMM
}

// frontOf returns a drawer shell's front height. Unknown shell IDs
// contribute no height: a stale drawer reference must not block the rest of
// the stack.
func (s Stack) frontOf(shellID string) float64 {
	o, ok := s.group.Option(shellID)
	if !ok {
		return 0
	}
	return o.MetaFloat(model.MetaFrontMM)
}

// UsedHeight sums the shell front heights of every drawer in the stack.
func (s Stack) UsedHeight(drawers []model.DrawerConfiguration) float64 {
	var used float64
	for _, d := range drawers {
		used += s.frontOf(d.ShellID)
	}
	return used
}

// RemainingHeight returns the unused capacity.
func (s Stack) RemainingHeight(drawers []model.DrawerConfiguration) float64 {
	return s.capacityMM - s.UsedHeight(drawers)
}

// CanAdd reports whether a drawer with the given shell fits in the remaining
// capacity. Strictly conservative: a drawer that would overflow by any
// amount is rejected. The caller is expected to disable the add control;
// there is no error and no message here.
func (s Stack) CanAdd(drawers []model.DrawerConfiguration, shellID string) bool {
	return s.RemainingHeight(drawers) >= s.frontOf(shellID)
}

// Add appends a drawer and returns the new, normalized stack. The second
// return is false and the original slice is returned untouched when the
// drawer does not fit.
func (s Stack) Add(drawers []model.DrawerConfiguration, drawer model.DrawerConfiguration) ([]model.DrawerConfiguration, bool) {
	if !s.CanAdd(drawers, drawer.ShellID) {
		return drawers, false
	}
	next := make([]model.DrawerConfiguration, 0, len(drawers)+1)
	next = append(next, drawers...)
	next = append(next, drawer)
	return s.Normalize(next), true
}

// Remove deletes the drawer at the given index and returns the new stack.
// Out-of-range indexes return the original slice.
func (s Stack) Remove(drawers []model.DrawerConfiguration, index int) []model.DrawerConfiguration {
	if index < 0 || index >= len(drawers) {
		return drawers
	}
	next := make([]model.DrawerConfiguration, 0, len(drawers)-1)
	next = append(next, drawers[:index]...)
	next = append(next, drawers[index+1:]...)
	return s.Normalize(next)
}

// Normalize returns the stack in canonical order: smallest front height at
// index 0 (top of the cabinet), largest at the bottom, ties broken by the
// order drawers were added. Normalizing an already-normalized stack returns
// the same sequence.
func (s Stack) Normalize(drawers []model.DrawerConfiguration) []model.DrawerConfiguration {
	out := make([]model.DrawerConfiguration, len(drawers))
	copy(out, drawers)
	sort.SliceStable(out, func(i, j int) bool {
		return s.frontOf(out[i].ShellID) < s.frontOf(out[j].ShellID)
	})
	return out
}

// CapacityFor resolves a product's usable drawer height from its selected
// height option: RU count times usable height per RU (falling back to the
// standard rack unit when the catalog does not override it).
func CapacityFor(product model.ProductDefinition, state model.ConfigurationState) float64 {
	g, ok := product.GroupByFacet(model.FacetHeight)
	if !ok {
		return 0
	}
	o, ok := g.Option(state.StringValue(g.ID))
	if !ok {
		return 0
	}
	perRU := o.MetaFloat(model.MetaUsablePerRUMM)
	if perRU == 0 {
		perRU = model.RackUnitMM
	}
	return o.MetaFloat(model.MetaRU) * perRU
}

// EmbeddedCapacityFor returns the pinned drawer capacity for cabinets
// embedded in the given host product. Embedded stacks ignore the nested
// cabinet's own height option entirely.
func EmbeddedCapacityFor(host model.ProductDefinition) float64 {
	return host.EmbeddedCapacityMM
}

// DepthClass derives the interior depth class from the drawer depth.
func DepthClass(depthMM int) string {
	if depthMM > model.DeepDrawerThresholdMM {
		return model.DepthClassDeep
	}
	return model.DepthClassStandard
}

// FilterInteriors returns the interiors compatible with a drawer of the
// given width, depth, and front height, preserving catalog order.
func FilterInteriors(interiors []model.Interior, widthMM, depthMM, frontMM int) []model.Interior {
	depthClass := DepthClass(depthMM)
	var out []model.Interior
	for _, in := range interiors {
		if in.WidthMM == widthMM && in.DepthClass == depthClass && in.FitsFront(frontMM) {
			out = append(out, in)
		}
	}
	return out
}

// FilterAccessories returns the accessories whose compatible height range
// includes the given front height, preserving catalog order.
func FilterAccessories(accessories []model.Accessory, frontMM int) []model.Accessory {
	var out []model.Accessory
	for _, a := range accessories {
		if a.FitsFront(frontMM) {
			out = append(out, a)
		}
	}
	return out
}

// ResolvePartitionCode substitutes the height placeholder in an interior
// catalog code with the actual drawer front height. One catalog entry stays
// valid across every height it supports.
func ResolvePartitionCode(code string, frontMM int) string {
	return strings.ReplaceAll(code, model.HeightPlaceholder, strconv.Itoa(frontMM))
}

// ResolveAccessoryCode substitutes the height placeholder in an accessory
// catalog code. Codes without a placeholder pass through unchanged.
func ResolveAccessoryCode(code string, frontMM int) string {
	return strings.ReplaceAll(code, model.HeightPlaceholder, strconv.Itoa(frontMM))
}
