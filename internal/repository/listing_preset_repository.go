package repository

import (
	"database/sql"
	"errors"
	"time"

	"arbitrage/internal/models"
)

// ErrListingPresetNotFound - пресет не найден
var ErrListingPresetNotFound = errors.New("listing preset not found")

// ListingPresetRepository - работа с таблицей listing_presets
type ListingPresetRepository struct {
	db *sql.DB
}

// NewListingPresetRepository создает новый экземпляр репозитория
func NewListingPresetRepository(db *sql.DB) *ListingPresetRepository {
	return &ListingPresetRepository{db: db}
}

const listingPresetColumns = `id, asin, condition, condition_note, shipping_pattern, created_at`

func scanListingPreset(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ListingPreset, error) {
	p := &models.ListingPreset{}
	err := scanner.Scan(&p.ID, &p.ASIN, &p.Condition, &p.ConditionNote, &p.ShippingPattern, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create сохраняет новый операторский пресет листинга для ASIN.
func (r *ListingPresetRepository) Create(p *models.ListingPreset) error {
	query := `
		INSERT INTO listing_presets (asin, condition, condition_note, shipping_pattern, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	p.CreatedAt = time.Now()

	return r.db.QueryRow(query, p.ASIN, p.Condition, p.ConditionNote, p.ShippingPattern, p.CreatedAt).Scan(&p.ID)
}

// GetLatestByASIN возвращает самый последний пресет, сохранённый для ASIN.
func (r *ListingPresetRepository) GetLatestByASIN(asin string) (*models.ListingPreset, error) {
	query := `SELECT ` + listingPresetColumns + ` FROM listing_presets WHERE asin = $1 ORDER BY created_at DESC LIMIT 1`

	p, err := scanListingPreset(r.db.QueryRow(query, asin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrListingPresetNotFound
		}
		return nil, err
	}

	return p, nil
}

// GetHistoryByASIN возвращает всю историю пресетов для ASIN, от новых к старым.
func (r *ListingPresetRepository) GetHistoryByASIN(asin string) ([]*models.ListingPreset, error) {
	query := `SELECT ` + listingPresetColumns + ` FROM listing_presets WHERE asin = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, asin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ListingPreset
	for rows.Next() {
		p, err := scanListingPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// Delete удаляет пресет по ID.
func (r *ListingPresetRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM listing_presets WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrListingPresetNotFound)
}
