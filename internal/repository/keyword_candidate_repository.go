package repository

import (
	"database/sql"
	"errors"
	"time"

	"arbitrage/internal/models"
)

// ErrKeywordCandidateNotFound - кандидат не найден
var ErrKeywordCandidateNotFound = errors.New("keyword candidate not found")

// KeywordCandidateRepository - работа с таблицей keyword_candidates
type KeywordCandidateRepository struct {
	db *sql.DB
}

// NewKeywordCandidateRepository создает новый экземпляр репозитория
func NewKeywordCandidateRepository(db *sql.DB) *KeywordCandidateRepository {
	return &KeywordCandidateRepository{db: db}
}

const keywordCandidateColumns = `
		id, keyword, strategy, confidence, parent_keyword_id, reasoning,
		status, validation_result, created_at, resolved_at`

func scanKeywordCandidate(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.KeywordCandidate, error) {
	c := &models.KeywordCandidate{}
	err := scanner.Scan(
		&c.ID, &c.Keyword, &c.Strategy, &c.Confidence, &c.ParentKeywordID, &c.Reasoning,
		&c.Status, &c.ValidationResult, &c.CreatedAt, &c.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create сохраняет новый кандидат, предложенный движком обнаружения.
func (r *KeywordCandidateRepository) Create(c *models.KeywordCandidate) error {
	query := `
		INSERT INTO keyword_candidates (keyword, strategy, confidence, parent_keyword_id, reasoning, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = models.CandidateStatusPending
	}

	return r.db.QueryRow(
		query, c.Keyword, c.Strategy, c.Confidence, c.ParentKeywordID, c.Reasoning, c.Status, c.CreatedAt,
	).Scan(&c.ID)
}

// GetPending возвращает кандидатов, ещё не прошедших валидацию.
func (r *KeywordCandidateRepository) GetPending() ([]*models.KeywordCandidate, error) {
	query := `SELECT ` + keywordCandidateColumns + ` FROM keyword_candidates WHERE status = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(query, models.CandidateStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.KeywordCandidate
	for rows.Next() {
		c, err := scanKeywordCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

// GetByID возвращает кандидата по ID.
func (r *KeywordCandidateRepository) GetByID(id int) (*models.KeywordCandidate, error) {
	query := `SELECT ` + keywordCandidateColumns + ` FROM keyword_candidates WHERE id = $1`

	c, err := scanKeywordCandidate(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeywordCandidateNotFound
		}
		return nil, err
	}

	return c, nil
}

// SetValidationResult записывает итог автоматической валидации кандидата.
func (r *KeywordCandidateRepository) SetValidationResult(id int, status string, result []byte) error {
	query := `UPDATE keyword_candidates SET status = $1, validation_result = $2 WHERE id = $3`

	res, err := r.db.Exec(query, status, result, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(res, ErrKeywordCandidateNotFound)
}

// Resolve фиксирует финальное решение (auto_added/approved/rejected) и
// время его принятия.
func (r *KeywordCandidateRepository) Resolve(id int, status string) error {
	query := `UPDATE keyword_candidates SET status = $1, resolved_at = $2 WHERE id = $3`

	res, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return err
	}

	return checkRowsAffected(res, ErrKeywordCandidateNotFound)
}

// ExistsPendingOrApproved сообщает, есть ли уже активный (не отклонённый)
// кандидат с этим текстом — защита от дублей между циклами обнаружения.
// Таблица наблюдаемых слов здесь не проверяется.
func (r *KeywordCandidateRepository) ExistsPendingOrApproved(keyword string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM keyword_candidates
			WHERE keyword = $1 AND status != $2
		)`

	var exists bool
	err := r.db.QueryRow(query, keyword, models.CandidateStatusRejected).Scan(&exists)
	return exists, err
}
