package catalog

import (
	"fmt"

	"github.com/opiegroup/boscotek2026-sub001/model"
)

// VError describes a single validation error in a catalog document.
type VError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e VError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validator validates catalog documents structurally and referentially.
// Validation runs once at startup; a failing catalog aborts the process
// rather than surfacing as per-request errors.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks all catalog documents.
func (v *Validator) Validate(docs []model.CatalogDocument) []VError {
	var errs []VError
	for i, doc := range docs {
		prefix := fmt.Sprintf("catalog[%d]", i)
		errs = append(errs, v.validateDocument(prefix, doc)...)
	}
	return errs
}

func (v *Validator) validateDocument(prefix string, doc model.CatalogDocument) []VError {
	var errs []VError

	productIDs := make(map[string]bool)
	for i, p := range doc.Products {
		pp := fmt.Sprintf("%s.products[%d]", prefix, i)
		if p.ID == "" {
			errs = append(errs, VError{Path: pp + ".id", Code: "REQUIRED", Message: "product id is required"})
			continue
		}
		if productIDs[p.ID] {
			errs = append(errs, VError{Path: pp + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate product id %q", p.ID)})
		}
		productIDs[p.ID] = true
		errs = append(errs, v.validateProduct(pp, p)...)
	}

	interiorIDs := make(map[string]bool)
	for i, in := range doc.Interiors {
		ip := fmt.Sprintf("%s.interiors[%d]", prefix, i)
		if in.ID == "" {
			errs = append(errs, VError{Path: ip + ".id", Code: "REQUIRED", Message: "interior id is required"})
			continue
		}
		if interiorIDs[in.ID] {
			errs = append(errs, VError{Path: ip + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate interior id %q", in.ID)})
		}
		interiorIDs[in.ID] = true
		if in.DepthClass != model.DepthClassStandard && in.DepthClass != model.DepthClassDeep {
			errs = append(errs, VError{Path: ip + ".depth_class", Code: "INVALID",
				Message: fmt.Sprintf("depth_class %q must be %q or %q", in.DepthClass, model.DepthClassStandard, model.DepthClassDeep)})
		}
	}

	accessoryIDs := make(map[string]bool)
	for i, a := range doc.Accessories {
		ap := fmt.Sprintf("%s.accessories[%d]", prefix, i)
		if a.ID == "" {
			errs = append(errs, VError{Path: ap + ".id", Code: "REQUIRED", Message: "accessory id is required"})
			continue
		}
		if accessoryIDs[a.ID] {
			errs = append(errs, VError{Path: ap + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate accessory id %q", a.ID)})
		}
		accessoryIDs[a.ID] = true
		if a.MaxFrontMM < a.MinFrontMM {
			errs = append(errs, VError{Path: ap, Code: "INVALID", Message: "max_front_mm must not be less than min_front_mm"})
		}
	}

	for i, c := range doc.Currencies {
		cp := fmt.Sprintf("%s.currencies[%d]", prefix, i)
		if c.Code == "" {
			errs = append(errs, VError{Path: cp + ".code", Code: "REQUIRED", Message: "currency code is required"})
		}
		if c.ExchangeRate <= 0 {
			errs = append(errs, VError{Path: cp + ".exchange_rate", Code: "INVALID", Message: "exchange_rate must be positive"})
		}
		if c.DecimalPlaces < 0 || c.DecimalPlaces > 4 {
			errs = append(errs, VError{Path: cp + ".decimal_places", Code: "INVALID", Message: "decimal_places must be between 0 and 4"})
		}
	}

	for i, tier := range doc.Tiers {
		tp := fmt.Sprintf("%s.tiers[%d]", prefix, i)
		if tier.Code == "" {
			errs = append(errs, VError{Path: tp + ".code", Code: "REQUIRED", Message: "tier code is required"})
		}
		if tier.MarkupPercent < 0 {
			errs = append(errs, VError{Path: tp + ".markup_percent", Code: "INVALID", Message: "markup_percent must not be negative"})
		}
	}

	for i, rule := range doc.CommercialRules {
		rp := fmt.Sprintf("%s.commercial_rules[%d]", prefix, i)
		if rule.ID == "" {
			errs = append(errs, VError{Path: rp + ".id", Code: "REQUIRED", Message: "rule id is required"})
		}
		if !rule.Action.Valid() {
			errs = append(errs, VError{Path: rp + ".action", Code: "INVALID",
				Message: fmt.Sprintf("unknown rule action %q", rule.Action)})
		}
	}

	return errs
}

func (v *Validator) validateProduct(prefix string, p model.ProductDefinition) []VError {
	var errs []VError

	if p.BasePrice < 0 {
		errs = append(errs, VError{Path: prefix + ".base_price", Code: "INVALID", Message: "base_price must not be negative"})
	}
	if p.DrawerPricing != "" && p.DrawerPricing != model.DrawerPricingAggregate && p.DrawerPricing != model.DrawerPricingItemized {
		errs = append(errs, VError{Path: prefix + ".drawer_pricing", Code: "INVALID",
			Message: fmt.Sprintf("drawer_pricing %q must be %q or %q", p.DrawerPricing, model.DrawerPricingAggregate, model.DrawerPricingItemized)})
	}

	groupIDs := make(map[string]bool)
	for i, g := range p.Groups {
		gp := fmt.Sprintf("%s.groups[%d]", prefix, i)
		if g.ID == "" {
			errs = append(errs, VError{Path: gp + ".id", Code: "REQUIRED", Message: "group id is required"})
			continue
		}
		if groupIDs[g.ID] {
			errs = append(errs, VError{Path: gp + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate group id %q", g.ID)})
		}
		groupIDs[g.ID] = true
		if !g.Type.Valid() {
			errs = append(errs, VError{Path: gp + ".type", Code: "INVALID", Message: fmt.Sprintf("unknown group type %q", g.Type)})
		}
		// Checkbox and qty groups price off their single option; extra
		// options would silently never be priced.
		if (g.Type == model.GroupCheckbox || g.Type == model.GroupQty) && len(g.Options) > 1 {
			errs = append(errs, VError{Path: gp + ".options", Code: "INVALID",
				Message: fmt.Sprintf("%s group %q must have at most one option", g.Type, g.ID)})
		}

		optionIDs := make(map[string]bool)
		for j, o := range g.Options {
			op := fmt.Sprintf("%s.options[%d]", gp, j)
			if o.ID == "" {
				errs = append(errs, VError{Path: op + ".id", Code: "REQUIRED", Message: "option id is required"})
				continue
			}
			if optionIDs[o.ID] {
				errs = append(errs, VError{Path: op + ".id", Code: "DUPLICATE", Message: fmt.Sprintf("duplicate option id %q within group %q", o.ID, g.ID)})
			}
			optionIDs[o.ID] = true
		}
	}

	return errs
}
