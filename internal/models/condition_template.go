package models

import "time"

// ConditionTemplate — статичный текст описания состояния товара, ключ —
// условие из AmazonCondition*. Справочные данные, редко меняются.
type ConditionTemplate struct {
	ID            int       `json:"id" db:"id"`
	ConditionType string    `json:"condition_type" db:"condition_type"` // unique
	Title         string    `json:"title" db:"title"`
	Body          string    `json:"body" db:"body"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultConditionTemplates are seeded on first migration; operators may
// edit Title/Body afterwards through the HTTP surface.
var DefaultConditionTemplates = []ConditionTemplate{
	{ConditionType: AmazonConditionLikeNew, Title: "ほぼ新品"},
	{ConditionType: AmazonConditionVeryGood, Title: "非常に良い"},
	{ConditionType: AmazonConditionGood, Title: "良い"},
	{ConditionType: AmazonConditionAcceptable, Title: "可"},
}
