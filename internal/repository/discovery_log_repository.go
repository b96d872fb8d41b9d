package repository

import (
	"database/sql"
	"errors"
	"time"

	"arbitrage/internal/models"
)

// ErrDiscoveryLogNotFound - запись журнала не найдена
var ErrDiscoveryLogNotFound = errors.New("discovery log not found")

// DiscoveryLogRepository - работа с таблицей discovery_logs
type DiscoveryLogRepository struct {
	db *sql.DB
}

// NewDiscoveryLogRepository создает новый экземпляр репозитория
func NewDiscoveryLogRepository(db *sql.DB) *DiscoveryLogRepository {
	return &DiscoveryLogRepository{db: db}
}

const discoveryLogColumns = `
		id, started_at, finished_at, status, candidates_generated, candidates_validated,
		keywords_added, strategy_breakdown, error_message`

func scanDiscoveryLog(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.DiscoveryLog, error) {
	l := &models.DiscoveryLog{}
	err := scanner.Scan(
		&l.ID, &l.StartedAt, &l.FinishedAt, &l.Status, &l.CandidatesGenerated,
		&l.CandidatesValidated, &l.KeywordsAdded, &l.StrategyBreakdown, &l.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Start открывает новую запись журнала в начале цикла обнаружения.
func (r *DiscoveryLogRepository) Start() (*models.DiscoveryLog, error) {
	query := `
		INSERT INTO discovery_logs (started_at, status)
		VALUES ($1, $2)
		RETURNING id`

	l := &models.DiscoveryLog{StartedAt: time.Now(), Status: models.DiscoveryStatusRunning}
	err := r.db.QueryRow(query, l.StartedAt, l.Status).Scan(&l.ID)
	if err != nil {
		return nil, err
	}

	return l, nil
}

// Finish закрывает цикл, записывая его итоги.
func (r *DiscoveryLogRepository) Finish(id, candidatesGenerated, candidatesValidated, keywordsAdded int, strategyBreakdown []byte) error {
	query := `
		UPDATE discovery_logs
		SET finished_at = $1, status = $2, candidates_generated = $3,
		    candidates_validated = $4, keywords_added = $5, strategy_breakdown = $6
		WHERE id = $7`

	res, err := r.db.Exec(query, time.Now(), models.DiscoveryStatusCompleted, candidatesGenerated, candidatesValidated, keywordsAdded, strategyBreakdown, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(res, ErrDiscoveryLogNotFound)
}

// FinishWithError закрывает цикл, отметив, что он завершился ошибкой.
func (r *DiscoveryLogRepository) FinishWithError(id int, errMsg string) error {
	query := `UPDATE discovery_logs SET finished_at = $1, status = $2, error_message = $3 WHERE id = $4`

	res, err := r.db.Exec(query, time.Now(), models.DiscoveryStatusError, errMsg, id)
	if err != nil {
		return err
	}

	return checkRowsAffected(res, ErrDiscoveryLogNotFound)
}

// GetRecent возвращает последние N записей журнала, от новых к старым.
func (r *DiscoveryLogRepository) GetRecent(limit int) ([]*models.DiscoveryLog, error) {
	query := `SELECT ` + discoveryLogColumns + ` FROM discovery_logs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.DiscoveryLog
	for rows.Next() {
		l, err := scanDiscoveryLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}
