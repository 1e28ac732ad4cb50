package model

// RuleAction classifies a configuration's purchasability.
type RuleAction string

// Rule actions, least to most restrictive.
const (
	ActionBuyOnline       RuleAction = "buy_online"
	ActionQuoteRequired   RuleAction = "quote_required"
	ActionConsultRequired RuleAction = "consult_required"
)

// Valid reports whether a is a known rule action.
func (a RuleAction) Valid() bool {
	switch a {
	case ActionBuyOnline, ActionQuoteRequired, ActionConsultRequired:
		return true
	}
	return false
}

// CommercialRule is one ordered record in the commercial rule list.
// Conditions present on a rule are ANDed; absent conditions are wildcards.
// The list is hand-ordered most-restrictive-first and the first matching
// non-buy_online rule wins — this ordering is business priority, not an
// implementation accident.
type CommercialRule struct {
	ID              string     `yaml:"id"                  json:"id"`
	Series          []string   `yaml:"series"              json:"series,omitempty"`
	SecurityClasses []string   `yaml:"security_classes"    json:"security_classes,omitempty"`
	CustomSize      *bool      `yaml:"custom_size"         json:"custom_size,omitempty"`
	MinAccessories  *int       `yaml:"min_accessory_count" json:"min_accessory_count,omitempty"`
	Action          RuleAction `yaml:"action"              json:"action"`
	Message         string     `yaml:"message"             json:"message,omitempty"`
}

// RuleVerdict is the outcome of evaluating the commercial rule list.
type RuleVerdict struct {
	Action            RuleAction `json:"action"`
	Message           string     `json:"message,omitempty"`
	CanPurchaseOnline bool       `json:"can_purchase_online"`
}
