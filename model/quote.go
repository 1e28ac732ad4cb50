package model

import "time"

// Quote is a persisted pricing snapshot. Once created it never reprices:
// catalog or tier changes after creation do not alter a stored quote.
type Quote struct {
	ID             string             `json:"id"`
	ReferenceCode  string             `json:"reference_code"`
	ProductID      string             `json:"product_id"`
	Configuration  ConfigurationState `json:"configuration"`
	Pricing        PricingResult      `json:"pricing"`
	Verdict        RuleVerdict        `json:"verdict"`
	SubjectID      string             `json:"subject_id,omitempty"`
	Email          string             `json:"email,omitempty"`
	Company        string             `json:"company,omitempty"`
	IdempotencyKey string             `json:"-"`
	CreatedAt      time.Time          `json:"created_at"`
	ExpiresAt      time.Time          `json:"expires_at"`
}
