// Package rules classifies a configuration's purchasability against the
// ordered commercial rule list. The list is hand-ordered most-restrictive-
// first and the first matching restrictive rule wins; this ordering is
// business priority and must not be replaced by any conflict-resolution
// scheme.
package rules

import (
	"fmt"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// Catalog is the read-only catalog surface the evaluator depends on.
type Catalog interface {
	Product(id string) (model.ProductDefinition, bool)
	IsStandardSize(series string, ru, widthMM, depthMM int) bool
	Rules() []model.CommercialRule
}

// Evaluator evaluates commercial rules. It holds no mutable state and is
// safe for concurrent use.
type Evaluator struct {
	catalog Catalog
}

// NewEvaluator creates an Evaluator over the given catalog.
func NewEvaluator(catalog Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Facts are the derived inputs rules match against.
type Facts struct {
	Series         string `json:"series"`
	SecurityClass  string `json:"security_class,omitempty"`
	CustomSize     bool   `json:"custom_size"`
	AccessoryCount int    `json:"accessory_count"`
}

// Check classifies the configuration. Rules are evaluated in declaration
// order; conditions present on a rule are ANDed, absent conditions are
// wildcards, and the first match whose action is not buy_online wins. A
// configuration matching no restrictive rule can be bought online.
func (e *Evaluator) Check(state model.ConfigurationState) (model.RuleVerdict, error) {
	product, ok := e.catalog.Product(state.ProductID)
	if !ok {
		return model.RuleVerdict{}, model.NewNotFoundError(fmt.Sprintf("product %q not found", state.ProductID))
	}

	facts := e.facts(product, state)

	for _, rule := range e.catalog.Rules() {
		if rule.Action == model.ActionBuyOnline {
			continue
		}
		if matches(rule, facts) {
			return model.RuleVerdict{
				Action:            rule.Action,
				Message:           rule.Message,
				CanPurchaseOnline: false,
			}, nil
		}
	}

	return model.RuleVerdict{Action: model.ActionBuyOnline, CanPurchaseOnline: true}, nil
}

// facts derives the rule inputs from the configuration. A product that
// carries no dimension facets at all is never treated as custom-sized.
func (e *Evaluator) facts(product model.ProductDefinition, state model.ConfigurationState) Facts {
	dims := model.ResolveDimensions(product, state)
	custom := false
	if !dims.Unsized() {
		custom = !e.catalog.IsStandardSize(product.Series, dims.RU, dims.WidthMM, dims.DepthMM)
	}
	return Facts{
		Series:         product.Series,
		SecurityClass:  model.SecurityClass(product, state),
		CustomSize:     custom,
		AccessoryCount: model.AccessoryCount(product, state),
	}
}

func matches(rule model.CommercialRule, facts Facts) bool {
	if len(rule.Series) > 0 && !contains(rule.Series, facts.Series) {
		return false
	}
	if len(rule.SecurityClasses) > 0 && !contains(rule.SecurityClasses, facts.SecurityClass) {
		return false
	}
	if rule.CustomSize != nil && *rule.CustomSize != facts.CustomSize {
		return false
	}
	if rule.MinAccessories != nil && facts.AccessoryCount < *rule.MinAccessories {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
