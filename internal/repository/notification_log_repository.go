package repository

import (
	"database/sql"
	"time"

	"arbitrage/internal/models"
)

// NotificationLogRepository - работа с таблицей notification_log (только добавление)
type NotificationLogRepository struct {
	db *sql.DB
}

// NewNotificationLogRepository создает новый экземпляр репозитория
func NewNotificationLogRepository(db *sql.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

const notificationLogColumns = `id, item_id, channel, event_type, message, success, sent_at`

// Record сохраняет результат попытки отправки уведомления.
func (r *NotificationLogRepository) Record(n *models.NotificationLog) error {
	query := `
		INSERT INTO notification_log (item_id, channel, event_type, message, success, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	n.SentAt = time.Now()

	return r.db.QueryRow(query, n.ItemID, n.Channel, n.EventType, n.Message, n.Success, n.SentAt).Scan(&n.ID)
}

// GetByItemID возвращает журнал уведомлений по лоту, от новых к старым.
func (r *NotificationLogRepository) GetByItemID(itemID int) ([]*models.NotificationLog, error) {
	query := `SELECT ` + notificationLogColumns + ` FROM notification_log WHERE item_id = $1 ORDER BY sent_at DESC`

	rows, err := r.db.Query(query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.NotificationLog
	for rows.Next() {
		n := &models.NotificationLog{}
		if err := rows.Scan(&n.ID, &n.ItemID, &n.Channel, &n.EventType, &n.Message, &n.Success, &n.SentAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

// CountFailuresSince возвращает число неудачных отправок по каналу за окно
// времени.
func (r *NotificationLogRepository) CountFailuresSince(channel string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM notification_log WHERE channel = $1 AND success = false AND sent_at >= $2`

	var count int
	err := r.db.QueryRow(query, channel, since).Scan(&count)
	return count, err
}
