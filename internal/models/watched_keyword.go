package models

import "time"

// WatchedKeyword — поисковый запрос под наблюдением сканера.
type WatchedKeyword struct {
	ID               int        `json:"id" db:"id"`
	Keyword          string     `json:"keyword" db:"keyword"` // unique, trimmed
	IsActive         bool       `json:"is_active" db:"is_active"`
	LastScannedAt    *time.Time `json:"last_scanned_at,omitempty" db:"last_scanned_at"`
	Notes            string     `json:"notes,omitempty" db:"notes"`
	Source           string     `json:"source" db:"source"` // manual, ai_<strategy>, ai_seed
	ParentKeywordID  *int       `json:"parent_keyword_id,omitempty" db:"parent_keyword_id"`

	PerformanceScore   float64    `json:"performance_score" db:"performance_score"` // [0,1]
	TotalScans         int        `json:"total_scans" db:"total_scans"`
	TotalDealsFound    int        `json:"total_deals_found" db:"total_deals_found"`
	TotalGrossProfit   int        `json:"total_gross_profit" db:"total_gross_profit"` // JPY, накопительно
	ScansSinceLastDeal int        `json:"scans_since_last_deal" db:"scans_since_last_deal"`
	Confidence         float64    `json:"confidence" db:"confidence"`
	AutoDeactivatedAt  *time.Time `json:"auto_deactivated_at,omitempty" db:"auto_deactivated_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Источник ключевого слова
const (
	KeywordSourceManual = "manual"
	KeywordSourceAISeed = "ai_seed"
)

// KeywordSourceAI возвращает источник вида ai_<strategy> (brand, title, ...).
func KeywordSourceAI(strategy string) string {
	return "ai_" + strategy
}

// IsManual сообщает, что слово введено оператором вручную и никогда не
// деактивируется автоматически (только приостанавливается при простое).
func (k *WatchedKeyword) IsManual() bool {
	return k.Source == KeywordSourceManual
}
