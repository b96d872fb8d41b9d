package models

import (
	"encoding/json"
	"time"
)

// KeywordCandidate — предложение ключевого слова, сгенерированное движком
// обнаружения, ожидающее валидации и/или решения оператора.
type KeywordCandidate struct {
	ID              int             `json:"id" db:"id"`
	Keyword         string          `json:"keyword" db:"keyword"`
	Strategy        string          `json:"strategy" db:"strategy"`
	Confidence      float64         `json:"confidence" db:"confidence"`
	ParentKeywordID *int            `json:"parent_keyword_id,omitempty" db:"parent_keyword_id"`
	Reasoning       string          `json:"reasoning,omitempty" db:"reasoning"`
	Status          string          `json:"status" db:"status"`
	ValidationResult json.RawMessage `json:"validation_result,omitempty" db:"validation_result"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Стратегии генерации кандидатов
const (
	StrategyBrand    = "brand"
	StrategyTitle    = "title"
	StrategyCategory = "category"
	StrategySynonym  = "synonym"
	StrategySeries   = "series"
	StrategyDemand   = "demand"
	StrategySuggest  = "suggest"
	StrategyLLM      = "llm"
)

// Статусы кандидата
const (
	CandidateStatusPending    = "pending"
	CandidateStatusValidated  = "validated"
	CandidateStatusAutoAdded  = "auto_added"
	CandidateStatusApproved   = "approved"
	CandidateStatusRejected   = "rejected"
)
