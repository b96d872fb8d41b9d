package repository

import (
	"database/sql"
	"errors"

	"arbitrage/internal/models"
)

// ErrRejectionPatternNotFound - паттерн не найден
var ErrRejectionPatternNotFound = errors.New("rejection pattern not found")

// RejectionPatternRepository - работа с таблицей rejection_patterns
type RejectionPatternRepository struct {
	db *sql.DB
}

// NewRejectionPatternRepository создает новый экземпляр репозитория
func NewRejectionPatternRepository(db *sql.DB) *RejectionPatternRepository {
	return &RejectionPatternRepository{db: db}
}

const rejectionPatternColumns = `id, pattern_type, pattern_key, pattern_data, hit_count, confidence, is_active`

func scanRejectionPattern(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.RejectionPattern, error) {
	p := &models.RejectionPattern{}
	err := scanner.Scan(&p.ID, &p.PatternType, &p.PatternKey, &p.PatternData, &p.HitCount, &p.Confidence, &p.IsActive)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByTypeAndKey возвращает паттерн по составному ключу (type, key).
func (r *RejectionPatternRepository) GetByTypeAndKey(patternType, patternKey string) (*models.RejectionPattern, error) {
	query := `SELECT ` + rejectionPatternColumns + ` FROM rejection_patterns WHERE pattern_type = $1 AND pattern_key = $2`

	p, err := scanRejectionPattern(r.db.QueryRow(query, patternType, patternKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRejectionPatternNotFound
		}
		return nil, err
	}

	return p, nil
}

// GetActiveByType возвращает все активные паттерны заданного типа — вход matcher'а.
func (r *RejectionPatternRepository) GetActiveByType(patternType string) ([]*models.RejectionPattern, error) {
	query := `SELECT ` + rejectionPatternColumns + ` FROM rejection_patterns WHERE pattern_type = $1 AND is_active = true`

	rows, err := r.db.Query(query, patternType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.RejectionPattern
	for rows.Next() {
		p, err := scanRejectionPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// Upsert вставляет новый паттерн или, если (type, key) уже существует,
// инкрементирует hit_count и поднимает confidence — см. RejectionPattern.RecordHit.
func (r *RejectionPatternRepository) Upsert(p *models.RejectionPattern) error {
	query := `
		INSERT INTO rejection_patterns (pattern_type, pattern_key, pattern_data, hit_count, confidence, is_active)
		VALUES ($1, $2, $3, 1, $4, true)
		ON CONFLICT (pattern_type, pattern_key) DO UPDATE
		SET hit_count = rejection_patterns.hit_count + 1,
		    confidence = LEAST(rejection_patterns.confidence + 0.1, 1.0),
		    pattern_data = COALESCE(EXCLUDED.pattern_data, rejection_patterns.pattern_data)
		RETURNING id, hit_count, confidence`

	return r.db.QueryRow(query, p.PatternType, p.PatternKey, p.PatternData, p.Confidence).
		Scan(&p.ID, &p.HitCount, &p.Confidence)
}

// Deactivate выключает паттерн без удаления истории попаданий.
func (r *RejectionPatternRepository) Deactivate(id int) error {
	result, err := r.db.Exec(`UPDATE rejection_patterns SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrRejectionPatternNotFound)
}

// Delete удаляет паттерн по ID.
func (r *RejectionPatternRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM rejection_patterns WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrRejectionPatternNotFound)
}
