package models

import (
	"encoding/json"
	"time"
)

// MonitoredItem — один отслеживаемый лот аукциона.
type MonitoredItem struct {
	ID        int    `json:"id" db:"id"`
	AuctionID string `json:"auction_id" db:"auction_id"` // уникальный идентификатор лота площадки

	Title       string `json:"title" db:"title"`
	URL         string `json:"url" db:"url"`
	ImageURL    string `json:"image_url,omitempty" db:"image_url"`
	CurrentPrice  int `json:"current_price" db:"current_price"`   // JPY
	StartPrice    int `json:"start_price" db:"start_price"`       // JPY
	BuyNowPrice   int `json:"buy_now_price,omitempty" db:"buy_now_price"`
	WinPrice      int `json:"win_price,omitempty" db:"win_price"` // заполняется по завершении

	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
	BidCount  int       `json:"bid_count" db:"bid_count"`
	Status    string    `json:"status" db:"status"` // active, ended_no_winner, ended_sold

	CheckIntervalSeconds int       `json:"check_interval_seconds" db:"check_interval_seconds"`
	AutoAdjustInterval   bool      `json:"auto_adjust_interval" db:"auto_adjust_interval"`
	IsMonitoringActive   bool      `json:"is_monitoring_active" db:"is_monitoring_active"`
	LastCheckedAt        *time.Time `json:"last_checked_at,omitempty" db:"last_checked_at"`

	// блок маркетплейса — заполняется после создания листинга
	AmazonASIN           string          `json:"amazon_asin,omitempty" db:"amazon_asin"`
	AmazonSKU            string          `json:"amazon_sku,omitempty" db:"amazon_sku"`
	AmazonCondition      string          `json:"amazon_condition,omitempty" db:"amazon_condition"`
	AmazonListingStatus  string          `json:"amazon_listing_status,omitempty" db:"amazon_listing_status"`
	AmazonPrice          int             `json:"amazon_price,omitempty" db:"amazon_price"`
	EstimatedWinPrice    int             `json:"estimated_win_price,omitempty" db:"estimated_win_price"`
	ShippingCost         int             `json:"shipping_cost,omitempty" db:"shipping_cost"`
	ForwardingCost       int             `json:"forwarding_cost,omitempty" db:"forwarding_cost"`
	AmazonFeePct         float64         `json:"amazon_fee_pct,omitempty" db:"amazon_fee_pct"`
	AmazonMarginPct      float64         `json:"amazon_margin_pct,omitempty" db:"amazon_margin_pct"`
	AmazonLeadTimeDays   int             `json:"amazon_lead_time_days,omitempty" db:"amazon_lead_time_days"`
	AmazonShippingPattern string         `json:"amazon_shipping_pattern,omitempty" db:"amazon_shipping_pattern"`
	AmazonConditionNote  string          `json:"amazon_condition_note,omitempty" db:"amazon_condition_note"`
	AmazonLastSyncedAt   *time.Time      `json:"amazon_last_synced_at,omitempty" db:"amazon_last_synced_at"`
	SellerCentralChecklist json.RawMessage `json:"seller_central_checklist,omitempty" db:"seller_central_checklist"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Статусы аукциона
const (
	ItemStatusActive        = "active"
	ItemStatusEndedNoWinner = "ended_no_winner"
	ItemStatusEndedSold     = "ended_sold"
)

// Состояния условия товара на маркетплейсе
const (
	AmazonConditionLikeNew = "used_like_new"
	AmazonConditionVeryGood = "used_very_good"
	AmazonConditionGood     = "used_good"
	AmazonConditionAcceptable = "used_acceptable"
)

// Статусы листинга на маркетплейсе
const (
	AmazonListingStatusActive   = "active"
	AmazonListingStatusInactive = "inactive"
	AmazonListingStatusError    = "error"
	AmazonListingStatusDelisted = "delisted"
)

// Паттерны срока доставки
const (
	ShippingPattern1To2Days = "1_2_days"
	ShippingPattern2To3Days = "2_3_days"
	ShippingPattern3To7Days = "3_7_days"
)

// IsEnded сообщает, завершён ли аукцион (продан или без победителя).
func (m *MonitoredItem) IsEnded() bool {
	return m.Status == ItemStatusEndedNoWinner || m.Status == ItemStatusEndedSold
}

// IsListedOnAmazon сообщает, есть ли активный листинг на маркетплейсе.
func (m *MonitoredItem) IsListedOnAmazon() bool {
	return m.AmazonASIN != "" && m.AmazonListingStatus == AmazonListingStatusActive
}

// EligibleForPurge сообщает, что запись старше 7 дней после завершения и
// делистинга и может быть удалена фоновой job'ой.
func (m *MonitoredItem) EligibleForPurge(now time.Time) bool {
	if !m.IsEnded() || m.AmazonListingStatus != AmazonListingStatusDelisted {
		return false
	}
	return now.Sub(m.UpdatedAt) > 7*24*time.Hour
}
