package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"arbitrage/internal/models"
)

// Ошибки репозитория ключевых слов
var (
	ErrWatchedKeywordNotFound = errors.New("watched keyword not found")
	ErrWatchedKeywordExists   = errors.New("keyword already watched")
)

// WatchedKeywordRepository - работа с таблицей watched_keywords
type WatchedKeywordRepository struct {
	db *sql.DB
}

// NewWatchedKeywordRepository создает новый экземпляр репозитория
func NewWatchedKeywordRepository(db *sql.DB) *WatchedKeywordRepository {
	return &WatchedKeywordRepository{db: db}
}

const watchedKeywordColumns = `
		id, keyword, is_active, last_scanned_at, notes, source, parent_keyword_id,
		performance_score, total_scans, total_deals_found, total_gross_profit,
		scans_since_last_deal, confidence, auto_deactivated_at, created_at, updated_at`

func scanWatchedKeyword(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.WatchedKeyword, error) {
	k := &models.WatchedKeyword{}
	err := scanner.Scan(
		&k.ID,
		&k.Keyword,
		&k.IsActive,
		&k.LastScannedAt,
		&k.Notes,
		&k.Source,
		&k.ParentKeywordID,
		&k.PerformanceScore,
		&k.TotalScans,
		&k.TotalDealsFound,
		&k.TotalGrossProfit,
		&k.ScansSinceLastDeal,
		&k.Confidence,
		&k.AutoDeactivatedAt,
		&k.CreatedAt,
		&k.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// Create добавляет новое слово под наблюдение
func (r *WatchedKeywordRepository) Create(k *models.WatchedKeyword) error {
	query := `
		INSERT INTO watched_keywords (
			keyword, is_active, notes, source, parent_keyword_id,
			performance_score, confidence, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id`

	now := time.Now()
	k.CreatedAt = now
	k.UpdatedAt = now
	if k.Confidence == 0 {
		k.Confidence = 0.5
	}

	err := r.db.QueryRow(
		query,
		strings.TrimSpace(k.Keyword),
		k.IsActive,
		k.Notes,
		k.Source,
		k.ParentKeywordID,
		k.PerformanceScore,
		k.Confidence,
		now,
	).Scan(&k.ID)

	if err != nil {
		if isWatchedKeywordUniqueViolation(err) {
			return ErrWatchedKeywordExists
		}
		return err
	}

	return nil
}

// GetAll возвращает все слова, активные первыми
func (r *WatchedKeywordRepository) GetAll() ([]*models.WatchedKeyword, error) {
	query := `SELECT ` + watchedKeywordColumns + ` FROM watched_keywords ORDER BY is_active DESC, keyword ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WatchedKeyword
	for rows.Next() {
		k, err := scanWatchedKeyword(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}

	return out, rows.Err()
}

// GetActive возвращает только активные слова — вход сканера.
func (r *WatchedKeywordRepository) GetActive() ([]*models.WatchedKeyword, error) {
	query := `SELECT ` + watchedKeywordColumns + ` FROM watched_keywords WHERE is_active = true ORDER BY scans_since_last_deal ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WatchedKeyword
	for rows.Next() {
		k, err := scanWatchedKeyword(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}

	return out, rows.Err()
}

// GetByID возвращает слово по ID
func (r *WatchedKeywordRepository) GetByID(id int) (*models.WatchedKeyword, error) {
	query := `SELECT ` + watchedKeywordColumns + ` FROM watched_keywords WHERE id = $1`

	k, err := scanWatchedKeyword(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWatchedKeywordNotFound
		}
		return nil, err
	}

	return k, nil
}

// GetByKeyword возвращает запись по точному тексту слова
func (r *WatchedKeywordRepository) GetByKeyword(keyword string) (*models.WatchedKeyword, error) {
	query := `SELECT ` + watchedKeywordColumns + ` FROM watched_keywords WHERE keyword = $1`

	k, err := scanWatchedKeyword(r.db.QueryRow(query, strings.TrimSpace(keyword)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWatchedKeywordNotFound
		}
		return nil, err
	}

	return k, nil
}

// RecordScan обновляет счетчики после прохода сканера по слову.
func (r *WatchedKeywordRepository) RecordScan(id int, dealsFound, grossProfit int) error {
	query := `
		UPDATE watched_keywords
		SET total_scans = total_scans + 1,
		    last_scanned_at = $1,
		    total_deals_found = total_deals_found + $2,
		    total_gross_profit = total_gross_profit + $3,
		    scans_since_last_deal = CASE WHEN $2 > 0 THEN 0 ELSE scans_since_last_deal + 1 END,
		    updated_at = $1
		WHERE id = $4`

	result, err := r.db.Exec(query, time.Now(), dealsFound, grossProfit, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrWatchedKeywordNotFound)
}

// UpdatePerformance записывает пересчитанные performance_score/confidence.
func (r *WatchedKeywordRepository) UpdatePerformance(id int, score, confidence float64) error {
	query := `UPDATE watched_keywords SET performance_score = $1, confidence = $2, updated_at = $3 WHERE id = $4`

	result, err := r.db.Exec(query, score, confidence, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrWatchedKeywordNotFound)
}

// Deactivate отключает слово (ручное или автоматическое отключение).
func (r *WatchedKeywordRepository) Deactivate(id int, auto bool) error {
	now := time.Now()
	var query string
	if auto {
		query = `UPDATE watched_keywords SET is_active = false, auto_deactivated_at = $1, updated_at = $1 WHERE id = $2`
	} else {
		query = `UPDATE watched_keywords SET is_active = false, updated_at = $1 WHERE id = $2`
	}

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrWatchedKeywordNotFound)
}

// Reactivate включает слово обратно (ручная операция оператора).
func (r *WatchedKeywordRepository) Reactivate(id int) error {
	query := `UPDATE watched_keywords SET is_active = true, auto_deactivated_at = NULL, scans_since_last_deal = 0, updated_at = $1 WHERE id = $2`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrWatchedKeywordNotFound)
}

// Delete удаляет слово по ID.
func (r *WatchedKeywordRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM watched_keywords WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrWatchedKeywordNotFound)
}

// Count возвращает число слов под наблюдением.
func (r *WatchedKeywordRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM watched_keywords`).Scan(&count)
	return count, err
}

// isWatchedKeywordUniqueViolation проверяет нарушение уникальности текста слова.
func isWatchedKeywordUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "23505")
}
