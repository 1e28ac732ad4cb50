package model

import "github.com/shopspring/decimal"

// GSTRate is the goods and services tax rate applied to the marked-up total.
var GSTRate = decimal.NewFromFloat(0.10)

// LineItem is one entry in a price breakdown. Nested (embedded cabinet)
// items are prefixed in the label for traceability; the order of items is
// part of the contract and survives soft-absent selections unchanged.
type LineItem struct {
	Code  string          `json:"code,omitempty"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// PricingResult is the full outcome of pricing one configuration for one
// caller in one currency.
type PricingResult struct {
	ProductID string `json:"product_id"`

	// BasePrice and Subtotal are wholesale figures: the product base price
	// and the additive total of base plus every line item, before markup.
	BasePrice decimal.Decimal `json:"base_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`

	// Total is the marked-up price in the target currency. GST is 10% of
	// the marked-up total.
	Total decimal.Decimal `json:"total"`
	GST   decimal.Decimal `json:"gst"`

	// BaseCurrencyTotal retains the marked-up total in the base currency
	// for audit and display when a conversion was applied.
	BaseCurrencyTotal decimal.Decimal `json:"base_currency_total"`

	Items []LineItem `json:"breakdown"`

	Currency Currency  `json:"currency"`
	Tier     PriceTier `json:"tier"`

	// Staff carries wholesale cost and margin figures. Populated only for
	// staff-role callers; omitted from every other response.
	Staff *StaffPricing `json:"staff,omitempty"`
}

// StaffPricing is the internal-accounting view attached for staff callers.
type StaffPricing struct {
	WholesaleCost decimal.Decimal `json:"wholesale_cost"`
	Margin        decimal.Decimal `json:"margin"`
	Retail        decimal.Decimal `json:"retail"`
}
