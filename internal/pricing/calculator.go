// Package pricing walks a resolved configuration and produces an additive
// price breakdown with tiered markup, GST, and currency conversion. The only
// hard failures are an unknown product and embedded nesting beyond one
// level; every other stale or partial selection degrades to "contributes
// nothing" so old saved configurations never crash pricing.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/opiegroup/boscotek2026-sub001/internal/solver"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// maxNestingDepth is the hard ceiling on embedded cabinet recursion.
const maxNestingDepth = 1

// nestedPrefix indents embedded cabinet line items under their parent line.
const nestedPrefix = "    "

// cabinetTotalMarker closes each embedded cabinet's nested breakdown.
const cabinetTotalMarker = "= Cabinet Total"

// Catalog is the read-only catalog surface the calculator depends on.
type Catalog interface {
	Product(id string) (model.ProductDefinition, bool)
	Interior(id string) (model.Interior, bool)
	Accessory(id string) (model.Accessory, bool)
	Currency(code string) (model.Currency, bool)
	BasePriceFor(series string, ru, widthMM, depthMM int) (float64, bool)
}

// Calculator prices configurations against a catalog. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	catalog             Catalog
	publicMarkupPercent float64
}

// NewCalculator creates a Calculator. publicMarkupPercent is the markup of
// the public tier, used to derive the retail figure on staff responses.
func NewCalculator(catalog Catalog, publicMarkupPercent float64) *Calculator {
	return &Calculator{catalog: catalog, publicMarkupPercent: publicMarkupPercent}
}

// Price computes the full pricing result for one configuration, one caller
// tier, and one target currency. An unknown currency code falls back to the
// base currency rather than failing; an unknown product ID is a hard
// NOT_FOUND.
func (c *Calculator) Price(state model.ConfigurationState, caller *model.CallerContext, currencyCode string) (*model.PricingResult, error) {
	product, ok := c.catalog.Product(state.ProductID)
	if !ok {
		return nil, model.NewNotFoundError(fmt.Sprintf("product %q not found", state.ProductID))
	}

	items, err := c.breakdown(product, state, 0)
	if err != nil {
		return nil, err
	}

	wholesale := decimal.Zero
	for _, it := range items {
		wholesale = wholesale.Add(it.Price)
	}

	if caller == nil {
		caller = &model.CallerContext{Tier: model.PriceTier{Code: "public", MarkupPercent: c.publicMarkupPercent}}
	}
	tier := caller.Tier
	factor := markupFactor(tier.MarkupPercent)

	// Markup every line item so the displayed breakdown stays additive at
	// the caller's tier, not just at wholesale.
	marked := make([]model.LineItem, len(items))
	for i, it := range items {
		marked[i] = model.LineItem{Code: it.Code, Label: it.Label, Price: it.Price.Mul(factor)}
	}
	total := wholesale.Mul(factor)
	gst := total.Mul(model.GSTRate)

	currency, ok := c.catalog.Currency(currencyCode)
	if !ok || currencyCode == "" {
		currency = model.Currency{Code: model.BaseCurrency, Symbol: "$", ExchangeRate: 1, DecimalPlaces: 2}
	}

	result := &model.PricingResult{
		ProductID:         product.ID,
		BasePrice:         c.basePriceFor(product, state),
		Subtotal:          wholesale,
		Total:             total,
		GST:               gst,
		BaseCurrencyTotal: total.Round(2),
		Items:             marked,
		Currency:          currency,
		Tier:              tier,
	}

	if currency.Code != model.BaseCurrency {
		rate := decimal.NewFromFloat(currency.ExchangeRate)
		places := int32(currency.DecimalPlaces)
		for i := range result.Items {
			result.Items[i].Price = result.Items[i].Price.Mul(rate).Round(places)
		}
		result.BasePrice = result.BasePrice.Mul(rate).Round(places)
		result.Subtotal = result.Subtotal.Mul(rate).Round(places)
		result.Total = result.Total.Mul(rate).Round(places)
		result.GST = result.GST.Mul(rate).Round(places)
	}

	if caller.Staff {
		retail := wholesale.Mul(markupFactor(c.publicMarkupPercent))
		result.Staff = &model.StaffPricing{
			WholesaleCost: wholesale,
			Margin:        total.Sub(wholesale),
			Retail:        retail,
		}
	}

	return result, nil
}

// breakdown produces the wholesale line items for one configuration level.
// Item order is part of the contract: base first, then groups in catalog
// order, then the drawer stack, then embedded cabinets.
func (c *Calculator) breakdown(product model.ProductDefinition, state model.ConfigurationState, depth int) ([]model.LineItem, error) {
	items := []model.LineItem{{
		Code:  product.ID,
		Label: product.Label + " (Base)",
		Price: c.basePriceFor(product, state),
	}}

	for _, group := range product.Groups {
		if group.Type == model.GroupDrawerStack {
			continue
		}
		items = append(items, c.groupItems(group, state)...)
	}

	if group, ok := drawerGroup(product); ok && len(state.Drawers) > 0 {
		items = append(items, c.drawerItems(product, group, state.Drawers)...)
	}

	for _, emb := range state.EmbeddedCabinets {
		nested, err := c.embeddedItems(emb, depth)
		if err != nil {
			return nil, err
		}
		items = append(items, nested...)
	}

	return items, nil
}

// basePriceFor resolves the base cabinet price. When the configuration's
// dimension facets resolve to a size with a dimension-matrix row, the matrix
// price wins; an unsized configuration or a series absent from the matrix
// keeps the product's flat base price.
func (c *Calculator) basePriceFor(product model.ProductDefinition, state model.ConfigurationState) decimal.Decimal {
	dims := model.ResolveDimensions(product, state)
	if !dims.Unsized() {
		if price, ok := c.catalog.BasePriceFor(product.Series, dims.RU, dims.WidthMM, dims.DepthMM); ok {
			return decimal.NewFromFloat(price)
		}
	}
	return decimal.NewFromFloat(product.BasePrice)
}

// groupItems dispatches one non-drawer group by type. Unmatched option IDs
// and absent selections contribute nothing.
func (c *Calculator) groupItems(group model.OptionGroup, state model.ConfigurationState) []model.LineItem {
	if _, present := state.Selections[group.ID]; !present {
		return nil
	}

	switch group.Type {
	case model.GroupQtyList:
		quantities := state.QtyListValue(group.ID)
		var items []model.LineItem
		// Iterate catalog option order, not map order, for stable output.
		for _, o := range group.Options {
			qty := quantities[o.ID]
			if qty <= 0 {
				continue
			}
			items = append(items, model.LineItem{
				Code:  o.MetaString(model.MetaCode),
				Label: fmt.Sprintf("%s x %d", o.Label, qty),
				Price: decimal.NewFromFloat(o.PriceDelta).Mul(decimal.NewFromInt(int64(qty))),
			})
		}
		return items

	case model.GroupCheckbox:
		if !state.BoolValue(group.ID) || len(group.Options) == 0 {
			return nil
		}
		o := group.Options[0]
		return []model.LineItem{{
			Code:  o.MetaString(model.MetaCode),
			Label: o.Label,
			Price: decimal.NewFromFloat(o.PriceDelta),
		}}

	case model.GroupQty:
		qty := state.QtyValue(group.ID)
		if qty <= 0 || len(group.Options) == 0 {
			return nil
		}
		o := group.Options[0]
		return []model.LineItem{{
			Code:  o.MetaString(model.MetaCode),
			Label: fmt.Sprintf("%s x %d", o.Label, qty),
			Price: decimal.NewFromFloat(o.PriceDelta).Mul(decimal.NewFromInt(int64(qty))),
		}}

	case model.GroupSelect, model.GroupRadio, model.GroupColor:
		o, ok := group.Option(state.StringValue(group.ID))
		if !ok {
			return nil
		}
		items := []model.LineItem{{
			Code:  o.MetaString(model.MetaCode),
			Label: o.Label,
			Price: decimal.NewFromFloat(o.PriceDelta),
		}}
		if credit := c.underBenchCredit(o, state); !credit.IsZero() {
			items = append(items, model.LineItem{
				Label: "Under-bench cabinet credit",
				Price: credit.Neg(),
			})
		}
		return items
	}

	return nil
}

// underBenchCredit computes the credit subtracted when a selection is
// logically replaced by embedded cabinets already priced elsewhere. The
// credit never exceeds the number of cabinets actually embedded, so the
// same physical cabinet is never double-charged or double-credited.
func (c *Calculator) underBenchCredit(o model.Option, state model.ConfigurationState) decimal.Decimal {
	replaced := o.MetaInt(model.MetaCabinetsReplaced)
	if replaced <= 0 || len(state.EmbeddedCabinets) == 0 {
		return decimal.Zero
	}
	count := len(state.EmbeddedCabinets)
	if replaced < count {
		count = replaced
	}
	return decimal.NewFromFloat(o.MetaFloat(model.MetaCabinetCredit)).Mul(decimal.NewFromInt(int64(count)))
}

// drawerItems prices the drawer stack. Aggregate products compress the
// stack into per-height and per-code buckets; itemized products emit one
// line per drawer with nested interior and accessory sub-lines.
func (c *Calculator) drawerItems(product model.ProductDefinition, group model.OptionGroup, drawers []model.DrawerConfiguration) []model.LineItem {
	if product.DrawerPricing == model.DrawerPricingAggregate {
		return c.aggregateDrawerItems(group, drawers)
	}
	return c.itemizedDrawerItems(group, drawers)
}

func (c *Calculator) aggregateDrawerItems(group model.OptionGroup, drawers []model.DrawerConfiguration) []model.LineItem {
	var items []model.LineItem

	// One line per shell height bucket, in catalog option order.
	shellCount := make(map[string]int)
	for _, d := range drawers {
		shellCount[d.ShellID]++
	}
	for _, o := range group.Options {
		n := shellCount[o.ID]
		if n == 0 {
			continue
		}
		items = append(items, model.LineItem{
			Code:  o.MetaString(model.MetaCode),
			Label: fmt.Sprintf("%s x %d", o.Label, n),
			Price: decimal.NewFromFloat(o.PriceDelta).Mul(decimal.NewFromInt(int64(n))),
		})
	}

	// One line per distinct resolved interior code, first-seen order.
	type bucket struct {
		count int
		price decimal.Decimal
	}
	var interiorOrder []string
	interiorBuckets := make(map[string]*bucket)
	for _, d := range drawers {
		in, ok := c.catalog.Interior(d.InteriorID)
		if !ok {
			continue
		}
		code := solver.ResolvePartitionCode(in.Code, c.frontOf(group, d.ShellID))
		b, seen := interiorBuckets[code]
		if !seen {
			b = &bucket{price: decimal.NewFromFloat(in.Price)}
			interiorBuckets[code] = b
			interiorOrder = append(interiorOrder, code)
		}
		b.count++
	}
	for _, code := range interiorOrder {
		b := interiorBuckets[code]
		items = append(items, model.LineItem{
			Code:  code,
			Label: fmt.Sprintf("%s x %d", code, b.count),
			Price: b.price.Mul(decimal.NewFromInt(int64(b.count))),
		})
	}

	// One line per distinct resolved accessory code, first-seen order.
	var accessoryOrder []string
	accessoryBuckets := make(map[string]*bucket)
	for _, d := range drawers {
		for _, sel := range d.Accessories {
			if sel.Quantity <= 0 {
				continue
			}
			acc, ok := c.catalog.Accessory(sel.AccessoryID)
			if !ok {
				continue
			}
			code := solver.ResolveAccessoryCode(acc.Code, c.frontOf(group, d.ShellID))
			b, seen := accessoryBuckets[code]
			if !seen {
				b = &bucket{price: decimal.NewFromFloat(acc.Price)}
				accessoryBuckets[code] = b
				accessoryOrder = append(accessoryOrder, code)
			}
			b.count += sel.Quantity
		}
	}
	for _, code := range accessoryOrder {
		b := accessoryBuckets[code]
		items = append(items, model.LineItem{
			Code:  code,
			Label: fmt.Sprintf("%s x %d", code, b.count),
			Price: b.price.Mul(decimal.NewFromInt(int64(b.count))),
		})
	}

	return items
}

func (c *Calculator) itemizedDrawerItems(group model.OptionGroup, drawers []model.DrawerConfiguration) []model.LineItem {
	var items []model.LineItem

	for i, d := range drawers {
		o, ok := group.Option(d.ShellID)
		if !ok {
			continue
		}
		front := o.MetaInt(model.MetaFrontMM)
		items = append(items, model.LineItem{
			Code:  o.MetaString(model.MetaCode),
			Label: fmt.Sprintf("Drawer %d: %s", i+1, o.Label),
			Price: decimal.NewFromFloat(o.PriceDelta),
		})

		if in, ok := c.catalog.Interior(d.InteriorID); ok {
			code := solver.ResolvePartitionCode(in.Code, front)
			items = append(items, model.LineItem{
				Code:  code,
				Label: fmt.Sprintf("  - %s", in.Label),
				Price: decimal.NewFromFloat(in.Price),
			})
		}

		for _, sel := range d.Accessories {
			if sel.Quantity <= 0 {
				continue
			}
			acc, ok := c.catalog.Accessory(sel.AccessoryID)
			if !ok {
				continue
			}
			code := solver.ResolveAccessoryCode(acc.Code, front)
			items = append(items, model.LineItem{
				Code:  code,
				Label: fmt.Sprintf("  - %s x %d", acc.Label, sel.Quantity),
				Price: decimal.NewFromFloat(acc.Price).Mul(decimal.NewFromInt(int64(sel.Quantity))),
			})
		}
	}

	return items
}

// embeddedItems prices one embedded cabinet: an opaque total line, the
// nested breakdown prefixed for traceability, and a subtotal marker.
func (c *Calculator) embeddedItems(emb model.EmbeddedCabinet, depth int) ([]model.LineItem, error) {
	if depth >= maxNestingDepth {
		return nil, model.NewMaxNestingExceededError()
	}
	nestedProduct, ok := c.catalog.Product(emb.Configuration.ProductID)
	if !ok {
		return nil, model.NewNotFoundError(
			fmt.Sprintf("embedded product %q not found", emb.Configuration.ProductID))
	}

	nested, err := c.breakdown(nestedProduct, emb.Configuration, depth+1)
	if err != nil {
		return nil, err
	}

	nestedTotal := decimal.Zero
	for _, it := range nested {
		nestedTotal = nestedTotal.Add(it.Price)
	}

	items := []model.LineItem{{
		Code:  nestedProduct.ID,
		Label: fmt.Sprintf("Embedded Cabinet (%s)", emb.Position),
		Price: nestedTotal,
	}}
	for _, it := range nested {
		items = append(items, model.LineItem{
			Code:  it.Code,
			Label: nestedPrefix + it.Label,
			Price: decimal.Zero,
		})
	}
	items = append(items, model.LineItem{
		Label: nestedPrefix + cabinetTotalMarker,
		Price: decimal.Zero,
	})

	return items, nil
}

func (c *Calculator) frontOf(group model.OptionGroup, shellID string) int {
	o, ok := group.Option(shellID)
	if !ok {
		return 0
	}
	return o.MetaInt(model.MetaFrontMM)
}

func drawerGroup(product model.ProductDefinition) (model.OptionGroup, bool) {
	for _, g := range product.Groups {
		if g.Type == model.GroupDrawerStack {
			return g, true
		}
	}
	return model.OptionGroup{}, false
}

func markupFactor(percent float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)))
}
