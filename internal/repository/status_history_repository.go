package repository

import (
	"database/sql"
	"time"

	"arbitrage/internal/models"
)

// StatusHistoryRepository - работа с таблицей status_history (только добавление)
type StatusHistoryRepository struct {
	db *sql.DB
}

// NewStatusHistoryRepository создает новый экземпляр репозитория
func NewStatusHistoryRepository(db *sql.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

const statusHistoryColumns = `
		id, item_id, change_type, old_status, new_status, old_price, new_price,
		old_bid_count, new_bid_count, recorded_at`

// Record добавляет запись audit-журнала по лоту.
func (r *StatusHistoryRepository) Record(h *models.StatusHistory) error {
	query := `
		INSERT INTO status_history (
			item_id, change_type, old_status, new_status, old_price, new_price,
			old_bid_count, new_bid_count, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	h.RecordedAt = time.Now()

	return r.db.QueryRow(
		query, h.ItemID, h.ChangeType, h.OldStatus, h.NewStatus,
		h.OldPrice, h.NewPrice, h.OldBidCount, h.NewBidCount, h.RecordedAt,
	).Scan(&h.ID)
}

// GetByItemID возвращает полную историю изменений лота, от новых к старым.
func (r *StatusHistoryRepository) GetByItemID(itemID int) ([]*models.StatusHistory, error) {
	query := `SELECT ` + statusHistoryColumns + ` FROM status_history WHERE item_id = $1 ORDER BY recorded_at DESC`

	rows, err := r.db.Query(query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.StatusHistory
	for rows.Next() {
		h := &models.StatusHistory{}
		if err := rows.Scan(
			&h.ID, &h.ItemID, &h.ChangeType, &h.OldStatus, &h.NewStatus,
			&h.OldPrice, &h.NewPrice, &h.OldBidCount, &h.NewBidCount, &h.RecordedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}

	return out, rows.Err()
}

// DeleteOlderThan очищает историю старше retention-окна (фоновая уборка).
func (r *StatusHistoryRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM status_history WHERE recorded_at < $1`, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
