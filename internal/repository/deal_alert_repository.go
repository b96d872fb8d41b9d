package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"arbitrage/internal/models"
)

// Ошибки репозитория алертов
var (
	ErrDealAlertNotFound = errors.New("deal alert not found")
	ErrDealAlertExists    = errors.New("deal alert already exists for this auction/asin pair")
)

// DealAlertRepository - работа с таблицей deal_alerts
type DealAlertRepository struct {
	db *sql.DB
}

// NewDealAlertRepository создает новый экземпляр репозитория
func NewDealAlertRepository(db *sql.DB) *DealAlertRepository {
	return &DealAlertRepository{db: db}
}

// Create создает новый алерт по найденной паре лот/товар
func (r *DealAlertRepository) Create(d *models.DealAlert) error {
	query := `
		INSERT INTO deal_alerts (
			keyword_id, yahoo_auction_id, amazon_asin, yahoo_title, amazon_title,
			yahoo_url, amazon_url, yahoo_price, yahoo_shipping, sell_price,
			amazon_fee_pct, forwarding_cost, gross_profit, gross_margin_pct,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = models.DealStatusActive
	}

	err := r.db.QueryRow(
		query,
		d.KeywordID,
		d.YahooAuctionID,
		d.AmazonASIN,
		d.YahooTitle,
		d.AmazonTitle,
		d.YahooURL,
		d.AmazonURL,
		d.YahooPrice,
		d.YahooShipping,
		d.SellPrice,
		d.AmazonFeePct,
		d.ForwardingCost,
		d.GrossProfit,
		d.GrossMarginPct,
		d.Status,
		d.CreatedAt,
		d.UpdatedAt,
	).Scan(&d.ID)

	if err != nil {
		if isDealAlertUniqueViolation(err) {
			return ErrDealAlertExists
		}
		return err
	}

	return nil
}

const dealAlertColumns = `
		id, keyword_id, yahoo_auction_id, amazon_asin, yahoo_title, amazon_title,
		yahoo_url, amazon_url, yahoo_price, yahoo_shipping, sell_price,
		amazon_fee_pct, forwarding_cost, gross_profit, gross_margin_pct,
		status, rejection_reason, rejection_note, rejected_at, notified_at,
		created_at, updated_at`

func scanDealAlert(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.DealAlert, error) {
	d := &models.DealAlert{}
	err := scanner.Scan(
		&d.ID,
		&d.KeywordID,
		&d.YahooAuctionID,
		&d.AmazonASIN,
		&d.YahooTitle,
		&d.AmazonTitle,
		&d.YahooURL,
		&d.AmazonURL,
		&d.YahooPrice,
		&d.YahooShipping,
		&d.SellPrice,
		&d.AmazonFeePct,
		&d.ForwardingCost,
		&d.GrossProfit,
		&d.GrossMarginPct,
		&d.Status,
		&d.RejectionReason,
		&d.RejectionNote,
		&d.RejectedAt,
		&d.NotifiedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetByID возвращает алерт по ID
func (r *DealAlertRepository) GetByID(id int) (*models.DealAlert, error) {
	query := `SELECT ` + dealAlertColumns + ` FROM deal_alerts WHERE id = $1`

	d, err := scanDealAlert(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDealAlertNotFound
		}
		return nil, err
	}

	return d, nil
}

// GetActive возвращает все активные (необработанные оператором) алерты,
// от новых к старым.
func (r *DealAlertRepository) GetActive(limit, offset int) ([]*models.DealAlert, error) {
	query := `
		SELECT ` + dealAlertColumns + `
		FROM deal_alerts
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, models.DealStatusActive, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DealAlert
	for rows.Next() {
		d, err := scanDealAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

// GetByAuctionAndASIN проверяет, существует ли уже алерт для этой пары.
func (r *DealAlertRepository) GetByAuctionAndASIN(auctionID, asin string) (*models.DealAlert, error) {
	query := `SELECT ` + dealAlertColumns + ` FROM deal_alerts WHERE yahoo_auction_id = $1 AND amazon_asin = $2`

	d, err := scanDealAlert(r.db.QueryRow(query, auctionID, asin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDealAlertNotFound
		}
		return nil, err
	}

	return d, nil
}

// MarkRejected переводит алерт в отклонённые оператором/движком отклонений.
func (r *DealAlertRepository) MarkRejected(id int, reason, note string) error {
	query := `
		UPDATE deal_alerts
		SET status = $1, rejection_reason = $2, rejection_note = $3, rejected_at = $4, updated_at = $4
		WHERE id = $5`

	now := time.Now()
	result, err := r.db.Exec(query, models.DealStatusRejected, reason, note, now, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrDealAlertNotFound)
}

// MarkListed переводит алерт в статус "листинг создан".
func (r *DealAlertRepository) MarkListed(id int) error {
	query := `UPDATE deal_alerts SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, models.DealStatusListed, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrDealAlertNotFound)
}

// MarkNotified фиксирует момент отправки уведомления по алерту.
func (r *DealAlertRepository) MarkNotified(id int) error {
	query := `UPDATE deal_alerts SET notified_at = $1, updated_at = $1 WHERE id = $2`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrDealAlertNotFound)
}

// ExpireStale переводит в expired все активные алерты старше before.
func (r *DealAlertRepository) ExpireStale(before time.Time) (int64, error) {
	query := `
		UPDATE deal_alerts
		SET status = $1, updated_at = $2
		WHERE status = $3 AND created_at < $2`

	result, err := r.db.Exec(query, models.DealStatusExpired, before, models.DealStatusActive)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// ExpireByAuction переводит в expired все активные алерты по указанному
// лоту аукциона — вызывается, когда монитор лотов видит, что аукцион
// больше не active.
func (r *DealAlertRepository) ExpireByAuction(auctionID string) (int64, error) {
	query := `
		UPDATE deal_alerts
		SET status = $1, updated_at = $2
		WHERE yahoo_auction_id = $3 AND status = $4`

	result, err := r.db.Exec(query, models.DealStatusExpired, time.Now(), auctionID, models.DealStatusActive)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// CountByKeyword возвращает общее число алертов и общий валовой профит,
// накопленные по ключевому слову (для обновления WatchedKeyword).
func (r *DealAlertRepository) CountByKeyword(keywordID int) (count int, grossProfit int, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(gross_profit), 0)
		FROM deal_alerts
		WHERE keyword_id = $1`

	err = r.db.QueryRow(query, keywordID).Scan(&count, &grossProfit)
	return count, grossProfit, err
}

// CountByStatus возвращает число алертов в заданном статусе — используется
// движком обучения отклонений для доли ложных срабатываний.
func (r *DealAlertRepository) CountByStatus(status string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM deal_alerts WHERE status = $1`, status).Scan(&count)
	return count, err
}

// CountAll возвращает общее число алертов независимо от статуса.
func (r *DealAlertRepository) CountAll() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM deal_alerts`).Scan(&count)
	return count, err
}

// Delete удаляет алерт по ID.
func (r *DealAlertRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM deal_alerts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrDealAlertNotFound)
}

// isDealAlertUniqueViolation проверяет, является ли ошибка нарушением
// уникальности пары (yahoo_auction_id, amazon_asin).
func isDealAlertUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "23505")
}
