package models

import "time"

// NotificationLog — запись об отправленном уведомлении по MonitoredItem,
// только добавление.
type NotificationLog struct {
	ID        int       `json:"id" db:"id"`
	ItemID    int       `json:"item_id" db:"item_id"`
	Channel   string    `json:"channel" db:"channel"` // имя класса нотификатора: discord, slack, line
	EventType string    `json:"event_type" db:"event_type"`
	Message   string    `json:"message" db:"message"`
	Success   bool      `json:"success" db:"success"`
	SentAt    time.Time `json:"sent_at" db:"sent_at"`
}

// Каналы доставки
const (
	NotifierChannelDiscord = "discord"
	NotifierChannelSlack   = "slack"
	NotifierChannelLINE    = "line"
)
