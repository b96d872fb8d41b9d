package models

import (
	"encoding/json"
	"time"
)

// DiscoveryLog — сводка одного цикла движка обнаружения ключевых слов.
type DiscoveryLog struct {
	ID               int             `json:"id" db:"id"`
	StartedAt        time.Time       `json:"started_at" db:"started_at"`
	FinishedAt       *time.Time      `json:"finished_at,omitempty" db:"finished_at"`
	Status           string          `json:"status" db:"status"`
	CandidatesGenerated int          `json:"candidates_generated" db:"candidates_generated"`
	CandidatesValidated int          `json:"candidates_validated" db:"candidates_validated"`
	KeywordsAdded       int          `json:"keywords_added" db:"keywords_added"`
	StrategyBreakdown   json.RawMessage `json:"strategy_breakdown,omitempty" db:"strategy_breakdown"`
	ErrorMessage        string       `json:"error_message,omitempty" db:"error_message"`
}

// Статусы цикла обнаружения
const (
	DiscoveryStatusRunning   = "running"
	DiscoveryStatusCompleted = "completed"
	DiscoveryStatusError     = "error"
)
