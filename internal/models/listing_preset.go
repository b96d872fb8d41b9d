package models

import "time"

// ListingPreset — операторские настройки листинга по умолчанию, ключ — ASIN.
type ListingPreset struct {
	ID               int       `json:"id" db:"id"`
	ASIN             string    `json:"asin" db:"asin"` // indexed, not unique — an operator may keep history
	Condition        string    `json:"condition" db:"condition"`
	ConditionNote    string    `json:"condition_note,omitempty" db:"condition_note"`
	ShippingPattern  string    `json:"shipping_pattern" db:"shipping_pattern"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
