package models

import "encoding/json"

// RejectionPattern — выученный override для matcher'а. Уникальность по
// (PatternType, PatternKey). Апсерт: при повторном попадании HitCount += 1,
// Confidence = min(Confidence + 0.1, 1.0).
type RejectionPattern struct {
	ID          int             `json:"id" db:"id"`
	PatternType string          `json:"pattern_type" db:"pattern_type"`
	PatternKey  string          `json:"pattern_key" db:"pattern_key"`
	PatternData json.RawMessage `json:"pattern_data,omitempty" db:"pattern_data"`
	HitCount    int             `json:"hit_count" db:"hit_count"`
	Confidence  float64         `json:"confidence" db:"confidence"`
	IsActive    bool            `json:"is_active" db:"is_active"`
}

// Типы паттернов
const (
	PatternTypeAccessoryWord  = "accessory_word"
	PatternTypeProblemPair    = "problem_pair"
	PatternTypeModelConflict  = "model_conflict"
	PatternTypeBlockedASIN    = "blocked_asin"
	PatternTypeThresholdHint  = "threshold_hint"
	PatternTypeNeverShowPair  = "never_show_pair"
)

const patternConfidenceCap = 1.0
const patternConfidenceStep = 0.1

// RecordHit applies upsert semantics for a repeated pattern observation.
func (p *RejectionPattern) RecordHit() {
	p.HitCount++
	p.Confidence += patternConfidenceStep
	if p.Confidence > patternConfidenceCap {
		p.Confidence = patternConfidenceCap
	}
}
