package repository

import (
	"database/sql"
	"errors"
	"time"

	"arbitrage/internal/models"
)

// ErrConditionTemplateNotFound - шаблон состояния не найден
var ErrConditionTemplateNotFound = errors.New("condition template not found")

// ConditionTemplateRepository - работа с таблицей condition_templates
type ConditionTemplateRepository struct {
	db *sql.DB
}

// NewConditionTemplateRepository создает новый экземпляр репозитория
func NewConditionTemplateRepository(db *sql.DB) *ConditionTemplateRepository {
	return &ConditionTemplateRepository{db: db}
}

const conditionTemplateColumns = `id, condition_type, title, body, updated_at`

func scanConditionTemplate(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ConditionTemplate, error) {
	t := &models.ConditionTemplate{}
	err := scanner.Scan(&t.ID, &t.ConditionType, &t.Title, &t.Body, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetAll возвращает все справочные шаблоны состояний товара.
func (r *ConditionTemplateRepository) GetAll() ([]*models.ConditionTemplate, error) {
	query := `SELECT ` + conditionTemplateColumns + ` FROM condition_templates ORDER BY condition_type`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ConditionTemplate
	for rows.Next() {
		t, err := scanConditionTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// GetByConditionType возвращает шаблон по типу состояния.
func (r *ConditionTemplateRepository) GetByConditionType(conditionType string) (*models.ConditionTemplate, error) {
	query := `SELECT ` + conditionTemplateColumns + ` FROM condition_templates WHERE condition_type = $1`

	t, err := scanConditionTemplate(r.db.QueryRow(query, conditionType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConditionTemplateNotFound
		}
		return nil, err
	}

	return t, nil
}

// Upsert вставляет шаблон по умолчанию (при сиде) либо обновляет его
// текст, если условие уже существует.
func (r *ConditionTemplateRepository) Upsert(t *models.ConditionTemplate) error {
	query := `
		INSERT INTO condition_templates (condition_type, title, body, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (condition_type) DO UPDATE
		SET title = EXCLUDED.title, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
		RETURNING id`

	t.UpdatedAt = time.Now()

	return r.db.QueryRow(query, t.ConditionType, t.Title, t.Body, t.UpdatedAt).Scan(&t.ID)
}

// UpdateBody обновляет текст шаблона, редактируемый оператором через HTTP-поверхность.
func (r *ConditionTemplateRepository) UpdateBody(conditionType, title, body string) error {
	query := `UPDATE condition_templates SET title = $1, body = $2, updated_at = $3 WHERE condition_type = $4`

	result, err := r.db.Exec(query, title, body, time.Now(), conditionType)
	if err != nil {
		return err
	}

	return checkRowsAffected(result, ErrConditionTemplateNotFound)
}
