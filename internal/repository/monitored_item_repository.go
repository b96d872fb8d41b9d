package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"arbitrage/internal/models"
)

// Ошибки репозитория отслеживаемых лотов
var (
	ErrMonitoredItemNotFound = errors.New("monitored item not found")
	ErrMonitoredItemExists   = errors.New("auction already monitored")
)

// MonitoredItemRepository - работа с таблицей monitored_items
type MonitoredItemRepository struct {
	db *sql.DB
}

// NewMonitoredItemRepository создает новый экземпляр репозитория
func NewMonitoredItemRepository(db *sql.DB) *MonitoredItemRepository {
	return &MonitoredItemRepository{db: db}
}

const monitoredItemColumns = `
		id, auction_id, title, url, image_url, current_price, start_price, buy_now_price, win_price,
		start_time, end_time, bid_count, status, check_interval_seconds, auto_adjust_interval,
		is_monitoring_active, last_checked_at, amazon_asin, amazon_sku, amazon_condition,
		amazon_listing_status, amazon_price, estimated_win_price, shipping_cost, forwarding_cost,
		amazon_fee_pct, amazon_margin_pct, amazon_lead_time_days, amazon_shipping_pattern,
		amazon_condition_note, amazon_last_synced_at, seller_central_checklist, created_at, updated_at`

func scanMonitoredItem(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.MonitoredItem, error) {
	m := &models.MonitoredItem{}
	err := scanner.Scan(
		&m.ID,
		&m.AuctionID,
		&m.Title,
		&m.URL,
		&m.ImageURL,
		&m.CurrentPrice,
		&m.StartPrice,
		&m.BuyNowPrice,
		&m.WinPrice,
		&m.StartTime,
		&m.EndTime,
		&m.BidCount,
		&m.Status,
		&m.CheckIntervalSeconds,
		&m.AutoAdjustInterval,
		&m.IsMonitoringActive,
		&m.LastCheckedAt,
		&m.AmazonASIN,
		&m.AmazonSKU,
		&m.AmazonCondition,
		&m.AmazonListingStatus,
		&m.AmazonPrice,
		&m.EstimatedWinPrice,
		&m.ShippingCost,
		&m.ForwardingCost,
		&m.AmazonFeePct,
		&m.AmazonMarginPct,
		&m.AmazonLeadTimeDays,
		&m.AmazonShippingPattern,
		&m.AmazonConditionNote,
		&m.AmazonLastSyncedAt,
		&m.SellerCentralChecklist,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create регистрирует новый лот для отслеживания.
func (r *MonitoredItemRepository) Create(m *models.MonitoredItem) error {
	query := `
		INSERT INTO monitored_items (
			auction_id, title, url, image_url, current_price, start_price, buy_now_price,
			start_time, end_time, bid_count, status, check_interval_seconds,
			auto_adjust_interval, is_monitoring_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING id`

	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Status == "" {
		m.Status = models.ItemStatusActive
	}

	err := r.db.QueryRow(
		query,
		m.AuctionID,
		m.Title,
		m.URL,
		m.ImageURL,
		m.CurrentPrice,
		m.StartPrice,
		m.BuyNowPrice,
		m.StartTime,
		m.EndTime,
		m.BidCount,
		m.Status,
		m.CheckIntervalSeconds,
		m.AutoAdjustInterval,
		m.IsMonitoringActive,
		now,
	).Scan(&m.ID)

	if err != nil {
		if isMonitoredItemUniqueViolation(err) {
			return ErrMonitoredItemExists
		}
		return err
	}

	return nil
}

// GetByID возвращает лот по внутреннему ID.
func (r *MonitoredItemRepository) GetByID(id int) (*models.MonitoredItem, error) {
	query := `SELECT ` + monitoredItemColumns + ` FROM monitored_items WHERE id = $1`

	m, err := scanMonitoredItem(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMonitoredItemNotFound
		}
		return nil, err
	}

	return m, nil
}

// GetByAuctionID возвращает лот по идентификатору аукциона площадки.
func (r *MonitoredItemRepository) GetByAuctionID(auctionID string) (*models.MonitoredItem, error) {
	query := `SELECT ` + monitoredItemColumns + ` FROM monitored_items WHERE auction_id = $1`

	m, err := scanMonitoredItem(r.db.QueryRow(query, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMonitoredItemNotFound
		}
		return nil, err
	}

	return m, nil
}

// GetActive возвращает все лоты, ещё требующие периодической проверки.
func (r *MonitoredItemRepository) GetActive() ([]*models.MonitoredItem, error) {
	query := `
		SELECT ` + monitoredItemColumns + `
		FROM monitored_items
		WHERE is_monitoring_active = true AND status = $1
		ORDER BY end_time ASC`

	rows, err := r.db.Query(query, models.ItemStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MonitoredItem
	for rows.Next() {
		m, err := scanMonitoredItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

// GetDueForCheck возвращает активные лоты, чьё время следующей проверки
// (last_checked_at + check_interval_seconds) уже наступило.
func (r *MonitoredItemRepository) GetDueForCheck(now time.Time) ([]*models.MonitoredItem, error) {
	query := `
		SELECT ` + monitoredItemColumns + `
		FROM monitored_items
		WHERE is_monitoring_active = true
		  AND status = $1
		  AND (last_checked_at IS NULL OR last_checked_at + (check_interval_seconds || ' seconds')::interval <= $2)
		ORDER BY end_time ASC`

	rows, err := r.db.Query(query, models.ItemStatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MonitoredItem
	for rows.Next() {
		m, err := scanMonitoredItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

// GetPurgeEligible возвращает лоты, завершённые и делистнутые более 7 дней назад.
func (r *MonitoredItemRepository) GetPurgeEligible(before time.Time) ([]*models.MonitoredItem, error) {
	query := `
		SELECT ` + monitoredItemColumns + `
		FROM monitored_items
		WHERE status != $1
		  AND amazon_listing_status = $2
		  AND updated_at < $3`

	rows, err := r.db.Query(query, models.ItemStatusActive, models.AmazonListingStatusDelisted, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MonitoredItem
	for rows.Next() {
		m, err := scanMonitoredItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

// GetListedOnMarketplace возвращает лоты с активным или неактивным
// листингом на маркетплейсе — вход периодической сверки листингов.
func (r *MonitoredItemRepository) GetListedOnMarketplace() ([]*models.MonitoredItem, error) {
	query := `
		SELECT ` + monitoredItemColumns + `
		FROM monitored_items
		WHERE amazon_sku != '' AND amazon_listing_status IN ($1, $2)
		ORDER BY id ASC`

	rows, err := r.db.Query(query, models.AmazonListingStatusActive, models.AmazonListingStatusInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MonitoredItem
	for rows.Next() {
		m, err := scanMonitoredItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

// UpdateAuctionState обновляет снимок данных лота после очередной проверки.
func (r *MonitoredItemRepository) UpdateAuctionState(id, currentPrice, bidCount int, status string) error {
	query := `
		UPDATE monitored_items
		SET current_price = $1, bid_count = $2, status = $3, last_checked_at = $4, updated_at = $4
		WHERE id = $5`

	result, err := r.db.Exec(query, currentPrice, bidCount, status, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// SetMonitoringActive включает/выключает периодическую проверку лота.
func (r *MonitoredItemRepository) SetMonitoringActive(id int, active bool) error {
	query := `UPDATE monitored_items SET is_monitoring_active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, active, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// SetCheckInterval перенастраивает период проверки (адаптивный таймер).
func (r *MonitoredItemRepository) SetCheckInterval(id, seconds int) error {
	query := `UPDATE monitored_items SET check_interval_seconds = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, seconds, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// AttachListing записывает результат создания листинга на маркетплейсе.
func (r *MonitoredItemRepository) AttachListing(id int, asin, sku, condition, conditionNote, shippingPattern string, leadTimeDays int) error {
	query := `
		UPDATE monitored_items
		SET amazon_asin = $1, amazon_sku = $2, amazon_condition = $3, amazon_condition_note = $4,
		    amazon_shipping_pattern = $5, amazon_lead_time_days = $6,
		    amazon_listing_status = $7, amazon_last_synced_at = $8, updated_at = $8
		WHERE id = $9`

	result, err := r.db.Exec(
		query, asin, sku, condition, conditionNote, shippingPattern, leadTimeDays,
		models.AmazonListingStatusActive, time.Now(), id,
	)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// UpdateListingEconomics обновляет посчитанные экономические поля листинга.
func (r *MonitoredItemRepository) UpdateListingEconomics(id, amazonPrice, estimatedWinPrice, shippingCost, forwardingCost int, feePct, marginPct float64) error {
	query := `
		UPDATE monitored_items
		SET amazon_price = $1, estimated_win_price = $2, shipping_cost = $3, forwarding_cost = $4,
		    amazon_fee_pct = $5, amazon_margin_pct = $6, updated_at = $7
		WHERE id = $8`

	result, err := r.db.Exec(query, amazonPrice, estimatedWinPrice, shippingCost, forwardingCost, feePct, marginPct, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// SetListingStatus обновляет статус листинга (delisted/error/inactive).
func (r *MonitoredItemRepository) SetListingStatus(id int, status string) error {
	query := `UPDATE monitored_items SET amazon_listing_status = $1, amazon_last_synced_at = $2, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// ClearListingOnDelist снимает SKU листинга после подтверждённого удаления
// с маркетплейса — обнуляет amazon_sku и amazon_last_synced_at, переводит
// статус в delisted.
func (r *MonitoredItemRepository) ClearListingOnDelist(id int) error {
	query := `
		UPDATE monitored_items
		SET amazon_sku = '', amazon_listing_status = $1, amazon_last_synced_at = NULL, updated_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(query, models.AmazonListingStatusDelisted, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// Delete удаляет лот (применяется после purge-окна).
func (r *MonitoredItemRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM monitored_items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrMonitoredItemNotFound)
}

// Count возвращает общее число отслеживаемых лотов.
func (r *MonitoredItemRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM monitored_items`).Scan(&count)
	return count, err
}

// isMonitoredItemUniqueViolation проверяет нарушение уникальности auction_id.
func isMonitoredItemUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "23505")
}
