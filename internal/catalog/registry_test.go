package catalog

import (
	"sync"
	"testing"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

func testDocs() []model.CatalogDocument {
	return []model.CatalogDocument{
		{
			Checksum: "abc123",
			Products: []model.ProductDefinition{
				{
					ID: "hd-cabinet", Series: "50", BasePrice: 1200,
					Groups: []model.OptionGroup{
						{ID: "height", Type: model.GroupSelect, Facet: model.FacetHeight,
							Options: []model.Option{{ID: "ru-12", PriceDelta: 0}}},
					},
				},
				{ID: "workbench", Series: "20", BasePrice: 1000},
			},
			Interiors: []model.Interior{
				{ID: "int-a", Code: "HPD.{H}.900", WidthMM: 900, DepthClass: model.DepthClassStandard},
				{ID: "int-b", Code: "HPD.{H}.1200", WidthMM: 1200, DepthClass: model.DepthClassDeep},
			},
			Accessories: []model.Accessory{
				{ID: "acc-a", Code: "HDV.{H}", MinFrontMM: 75, MaxFrontMM: 300},
			},
			Dimensions: []model.DimensionEntry{
				{Series: "50", RU: 12, WidthMM: 900, DepthMM: 600, BasePrice: 1200, Standard: true},
				{Series: "50", RU: 18, WidthMM: 1200, DepthMM: 750, BasePrice: 1680, Standard: false},
			},
			Currencies: []model.Currency{
				{Code: "AUD", Symbol: "$", ExchangeRate: 1, DecimalPlaces: 2},
			},
			Tiers: []model.PriceTier{
				{Code: "public", MarkupPercent: 25},
			},
			CommercialRules: []model.CommercialRule{
				{ID: "r1", Action: model.ActionConsultRequired},
				{ID: "r2", Action: model.ActionBuyOnline},
			},
		},
		{
			Checksum: "def456",
			Currencies: []model.Currency{
				{Code: "NZD", Symbol: "NZ$", ExchangeRate: 1.08, DecimalPlaces: 2},
			},
		},
	}
}

func TestRegistry_Product(t *testing.T) {
	r := NewRegistry(testDocs())

	p, ok := r.Product("hd-cabinet")
	if !ok {
		t.Fatal("Product(hd-cabinet) not found")
	}
	if p.Series != "50" {
		t.Errorf("Series = %q, want 50", p.Series)
	}

	_, ok = r.Product("unknown")
	if ok {
		t.Error("Product(unknown) should return false")
	}
}

func TestRegistry_Products_sorted(t *testing.T) {
	r := NewRegistry(testDocs())
	ps := r.Products()
	if len(ps) != 2 {
		t.Fatalf("Products() = %d, want 2", len(ps))
	}
	if ps[0].ID != "hd-cabinet" || ps[1].ID != "workbench" {
		t.Errorf("Products() order = [%s %s], want sorted by ID", ps[0].ID, ps[1].ID)
	}
}

func TestRegistry_InteriorsAndAccessories(t *testing.T) {
	r := NewRegistry(testDocs())

	ins := r.Interiors()
	if len(ins) != 2 || ins[0].ID != "int-a" || ins[1].ID != "int-b" {
		t.Errorf("Interiors() should preserve catalog order, got %v", ins)
	}

	in, ok := r.Interior("int-b")
	if !ok || in.DepthClass != model.DepthClassDeep {
		t.Errorf("Interior(int-b) = %+v, %v", in, ok)
	}

	a, ok := r.Accessory("acc-a")
	if !ok || a.Code != "HDV.{H}" {
		t.Errorf("Accessory(acc-a) = %+v, %v", a, ok)
	}
}

func TestRegistry_IsStandardSize(t *testing.T) {
	r := NewRegistry(testDocs())

	if !r.IsStandardSize("50", 12, 900, 600) {
		t.Error("12RU 900x600 should be standard")
	}
	// Present in the matrix but flagged custom.
	if r.IsStandardSize("50", 18, 1200, 750) {
		t.Error("18RU 1200x750 should not be standard")
	}
	// Absent from the matrix entirely.
	if r.IsStandardSize("50", 24, 900, 600) {
		t.Error("size missing from the matrix should not be standard")
	}
}

func TestRegistry_BasePriceFor(t *testing.T) {
	r := NewRegistry(testDocs())

	price, ok := r.BasePriceFor("50", 12, 900, 600)
	if !ok || price != 1200 {
		t.Errorf("exact match = %v, %v, want 1200, true", price, ok)
	}

	// A custom size resolves to the nearest matrix row in the series.
	// 13RU 900x620 sits ~64mm from the 12RU row and far from the 18RU one.
	price, ok = r.BasePriceFor("50", 13, 900, 620)
	if !ok || price != 1200 {
		t.Errorf("nearest match = %v, %v, want 1200, true", price, ok)
	}

	price, ok = r.BasePriceFor("50", 17, 1200, 700)
	if !ok || price != 1680 {
		t.Errorf("nearest match = %v, %v, want 1680, true", price, ok)
	}

	// Series with no matrix rows at all.
	if _, ok = r.BasePriceFor("20", 12, 900, 600); ok {
		t.Error("series without matrix rows should return false")
	}
}

func TestRegistry_CurrencyAndTier(t *testing.T) {
	r := NewRegistry(testDocs())

	c, ok := r.Currency("NZD")
	if !ok || c.ExchangeRate != 1.08 {
		t.Errorf("Currency(NZD) = %+v, %v", c, ok)
	}
	tier, ok := r.Tier("public")
	if !ok || tier.MarkupPercent != 25 {
		t.Errorf("Tier(public) = %+v, %v", tier, ok)
	}
}

func TestRegistry_Rules_order(t *testing.T) {
	r := NewRegistry(testDocs())
	rules := r.Rules()
	if len(rules) != 2 {
		t.Fatalf("Rules() = %d, want 2", len(rules))
	}
	if rules[0].ID != "r1" || rules[1].ID != "r2" {
		t.Error("Rules() must preserve declaration order")
	}
}

func TestRegistry_Replace_concurrent(t *testing.T) {
	r := NewRegistry(testDocs())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Product("hd-cabinet")
				r.Rules()
				r.Checksum()
			}
		}()
	}
	for i := 0; i < 10; i++ {
		r.Replace(testDocs())
	}
	wg.Wait()

	if r.Checksum() == "" {
		t.Error("Checksum should not be empty after Replace")
	}
}
