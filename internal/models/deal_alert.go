package models

import "time"

// DealAlert — одна подобранная пара (лот аукциона, товар маркетплейса) по
// ключевому слову. Уникальность по (YahooAuctionID, AmazonASIN).
type DealAlert struct {
	ID              int    `json:"id" db:"id"`
	KeywordID       int    `json:"keyword_id" db:"keyword_id"`
	YahooAuctionID  string `json:"yahoo_auction_id" db:"yahoo_auction_id"`
	AmazonASIN      string `json:"amazon_asin" db:"amazon_asin"`

	YahooTitle  string `json:"yahoo_title" db:"yahoo_title"`
	AmazonTitle string `json:"amazon_title" db:"amazon_title"`
	YahooURL    string `json:"yahoo_url" db:"yahoo_url"`
	AmazonURL   string `json:"amazon_url,omitempty" db:"amazon_url"`

	YahooPrice    int `json:"yahoo_price" db:"yahoo_price"`
	YahooShipping int `json:"yahoo_shipping" db:"yahoo_shipping"`
	SellPrice     int `json:"sell_price" db:"sell_price"`

	AmazonFeePct   float64 `json:"amazon_fee_pct" db:"amazon_fee_pct"`
	ForwardingCost int     `json:"forwarding_cost" db:"forwarding_cost"`

	GrossProfit    int     `json:"gross_profit" db:"gross_profit"`
	GrossMarginPct float64 `json:"gross_margin_pct" db:"gross_margin_pct"`

	Status           string     `json:"status" db:"status"`
	RejectionReason  string     `json:"rejection_reason,omitempty" db:"rejection_reason"`
	RejectionNote    string     `json:"rejection_note,omitempty" db:"rejection_note"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	NotifiedAt       *time.Time `json:"notified_at,omitempty" db:"notified_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Статусы алерта
const (
	DealStatusActive   = "active"
	DealStatusRejected = "rejected"
	DealStatusListed   = "listed"
	DealStatusExpired  = "expired"
)

// Причины отклонения
const (
	RejectionReasonWrongProduct  = "wrong_product"
	RejectionReasonAccessory     = "accessory"
	RejectionReasonModelVariant  = "model_variant"
	RejectionReasonBadPrice      = "bad_price"
	RejectionReasonNeverShow     = "never_show"
	RejectionReasonOther         = "other"
)

// IsActionable сообщает, что по алерту ещё не принято решение оператора.
func (d *DealAlert) IsActionable() bool {
	return d.Status == DealStatusActive
}
