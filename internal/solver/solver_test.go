package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

func drawerGroup() model.OptionGroup {
	return model.OptionGroup{
		ID:   "drawers",
		Type: model.GroupDrawerStack,
		Options: []model.Option{
			{ID: "dr-75", PriceDelta: 185, Meta: map[string]any{model.MetaFrontMM: 75}},
			{ID: "dr-150", PriceDelta: 240, Meta: map[string]any{model.MetaFrontMM: 150}},
			{ID: "dr-200", PriceDelta: 270, Meta: map[string]any{model.MetaFrontMM: 200}},
			{ID: "dr-300", PriceDelta: 320, Meta: map[string]any{model.MetaFrontMM: 300}},
		},
	}
}

func stackOf(ids ...string) []model.DrawerConfiguration {
	out := make([]model.DrawerConfiguration, len(ids))
	for i, id := range ids {
		out[i] = model.DrawerConfiguration{ShellID: id}
	}
	return out
}

func fronts(s Stack, drawers []model.DrawerConfiguration) []float64 {
	out := make([]float64, len(drawers))
	for i, d := range drawers {
		out[i] = s.frontOf(d.ShellID)
	}
	return out
}

func TestUsedHeight(t *testing.T) {
	s := New(drawerGroup(), 750)
	assert.Equal(t, 0.0, s.UsedHeight(nil))
	assert.Equal(t, 525.0, s.UsedHeight(stackOf("dr-75", "dr-150", "dr-300")))
}

func TestUsedHeight_unknownShellContributesNothing(t *testing.T) {
	s := New(drawerGroup(), 750)
	assert.Equal(t, 150.0, s.UsedHeight(stackOf("dr-150", "dr-discontinued")))
}

func TestCanAdd_capacityScenario(t *testing.T) {
	// Capacity 750: add 200 then 300 (used 500, remaining 250), a further
	// 300 must be rejected and the stack left unchanged.
	s := New(drawerGroup(), 750)

	drawers, ok := s.Add(nil, model.DrawerConfiguration{ShellID: "dr-200"})
	require.True(t, ok)
	drawers, ok = s.Add(drawers, model.DrawerConfiguration{ShellID: "dr-300"})
	require.True(t, ok)
	require.Equal(t, 500.0, s.UsedHeight(drawers))

	rejected, ok := s.Add(drawers, model.DrawerConfiguration{ShellID: "dr-300"})
	assert.False(t, ok)
	assert.Equal(t, drawers, rejected, "rejected add must leave the stack unchanged")
	assert.Equal(t, []float64{200, 300}, fronts(s, rejected), "stack stays normalized ascending")
}

func TestCanAdd_exactFitAccepted(t *testing.T) {
	s := New(drawerGroup(), 450)
	drawers, _ := s.Add(nil, model.DrawerConfiguration{ShellID: "dr-150"})
	assert.True(t, s.CanAdd(drawers, "dr-300"), "exact remaining fit is allowed")
	drawers, ok := s.Add(drawers, model.DrawerConfiguration{ShellID: "dr-300"})
	assert.True(t, ok)
	assert.Equal(t, 0.0, s.RemainingHeight(drawers))
}

func TestNormalize_ascendingStable(t *testing.T) {
	s := New(drawerGroup(), 2000)

	in := stackOf("dr-300", "dr-75", "dr-150", "dr-75")
	in[1].InteriorID = "first-75"
	in[3].InteriorID = "second-75"

	out := s.Normalize(in)
	assert.Equal(t, []float64{75, 75, 150, 300}, fronts(s, out))
	// Ties keep insertion order.
	assert.Equal(t, "first-75", out[0].InteriorID)
	assert.Equal(t, "second-75", out[1].InteriorID)
	// Input untouched.
	assert.Equal(t, []float64{300, 75, 150, 75}, fronts(s, in))
}

func TestNormalize_idempotent(t *testing.T) {
	s := New(drawerGroup(), 2000)
	stacks := [][]model.DrawerConfiguration{
		nil,
		stackOf("dr-150"),
		stackOf("dr-300", "dr-75", "dr-150"),
		stackOf("dr-75", "dr-75", "dr-300", "dr-150", "dr-150"),
	}
	for _, in := range stacks {
		once := s.Normalize(in)
		twice := s.Normalize(once)
		assert.Equal(t, once, twice, "normalize must be a no-op on a normalized stack")
	}
}

func TestNormalize_orderingInvariant(t *testing.T) {
	s := New(drawerGroup(), 2000)
	out := s.Normalize(stackOf("dr-300", "dr-200", "dr-150", "dr-75", "dr-300"))
	fs := fronts(s, out)
	for i := 0; i+1 < len(fs); i++ {
		assert.LessOrEqual(t, fs[i], fs[i+1], "front(drawers[%d]) must not exceed front(drawers[%d])", i, i+1)
	}
}

func TestCapacityMonotonicity(t *testing.T) {
	s := New(drawerGroup(), 750)
	var drawers []model.DrawerConfiguration
	adds := []string{"dr-300", "dr-200", "dr-150", "dr-75", "dr-75", "dr-75"}
	for _, id := range adds {
		next, ok := s.Add(drawers, model.DrawerConfiguration{ShellID: id})
		if ok {
			drawers = next
		}
		assert.LessOrEqual(t, s.UsedHeight(drawers), s.CapacityMM(),
			"used height must never exceed capacity after an accepted add")
	}
}

func TestRemove(t *testing.T) {
	s := New(drawerGroup(), 2000)
	drawers := s.Normalize(stackOf("dr-75", "dr-150", "dr-300"))

	out := s.Remove(drawers, 1)
	assert.Equal(t, []float64{75, 300}, fronts(s, out))
	assert.Len(t, drawers, 3, "Remove must not mutate the input")

	assert.Equal(t, drawers, s.Remove(drawers, -1))
	assert.Equal(t, drawers, s.Remove(drawers, 3))
}

func TestCapacityFor(t *testing.T) {
	product := model.ProductDefinition{
		Groups: []model.OptionGroup{
			{ID: "height", Type: model.GroupSelect, Facet: model.FacetHeight, Options: []model.Option{
				{ID: "ru-12", Meta: map[string]any{model.MetaRU: 12, model.MetaUsablePerRUMM: 44.45}},
				{ID: "ru-18", Meta: map[string]any{model.MetaRU: 18}},
			}},
		},
	}

	state := model.ConfigurationState{Selections: map[string]any{"height": "ru-12"}}
	assert.InDelta(t, 533.4, CapacityFor(product, state), 0.0001)

	// Missing per-RU meta falls back to the standard rack unit.
	state.Selections["height"] = "ru-18"
	assert.InDelta(t, 18*model.RackUnitMM, CapacityFor(product, state), 0.0001)

	// Unknown selection contributes nothing.
	state.Selections["height"] = "ru-99"
	assert.Equal(t, 0.0, CapacityFor(product, state))
}

func TestEmbeddedCapacityFor(t *testing.T) {
	host := model.ProductDefinition{EmbeddedCapacityMM: 650}
	assert.Equal(t, 650.0, EmbeddedCapacityFor(host))
}

func TestDepthClass(t *testing.T) {
	assert.Equal(t, model.DepthClassStandard, DepthClass(600))
	assert.Equal(t, model.DepthClassStandard, DepthClass(700), "700mm is the last standard depth")
	assert.Equal(t, model.DepthClassDeep, DepthClass(701))
	assert.Equal(t, model.DepthClassDeep, DepthClass(750))
}

func TestFilterInteriors(t *testing.T) {
	interiors := []model.Interior{
		{ID: "a", WidthMM: 900, DepthClass: model.DepthClassStandard, FrontHeights: []int{75, 150}},
		{ID: "b", WidthMM: 900, DepthClass: model.DepthClassDeep, FrontHeights: []int{150}},
		{ID: "c", WidthMM: 1200, DepthClass: model.DepthClassStandard, FrontHeights: []int{150}},
		{ID: "d", WidthMM: 900, DepthClass: model.DepthClassStandard, FrontHeights: []int{300}},
	}

	got := FilterInteriors(interiors, 900, 600, 150)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	got = FilterInteriors(interiors, 900, 750, 150)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID, "depth over 700mm selects deep interiors")

	assert.Empty(t, FilterInteriors(interiors, 600, 600, 150))
}

func TestFilterAccessories(t *testing.T) {
	accessories := []model.Accessory{
		{ID: "mat", MinFrontMM: 75, MaxFrontMM: 150},
		{ID: "divider", MinFrontMM: 75, MaxFrontMM: 300},
		{ID: "holder", MinFrontMM: 150, MaxFrontMM: 300},
	}

	got := FilterAccessories(accessories, 75)
	require.Len(t, got, 2)
	assert.Equal(t, "mat", got[0].ID)
	assert.Equal(t, "divider", got[1].ID)

	got = FilterAccessories(accessories, 300)
	require.Len(t, got, 2)
	assert.Equal(t, "divider", got[0].ID)
	assert.Equal(t, "holder", got[1].ID)
}

func TestResolveCodes(t *testing.T) {
	assert.Equal(t, "HPD.150.900", ResolvePartitionCode("HPD.{H}.900", 150))
	assert.Equal(t, "HDV.75", ResolveAccessoryCode("HDV.{H}", 75))
	assert.Equal(t, "HRM", ResolveAccessoryCode("HRM", 75), "codes without placeholder pass through")
}
