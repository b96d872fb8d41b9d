package handlers

import (
	"database/sql"
	"net/http"
)

// JobHealth — последний известный статус одной задачи планировщика,
// предоставляется внешним репортёром (см. internal/notifier) и
// выставляется тем же /health, что и ежедневный heartbeat-вебхук.
type JobHealth struct {
	Name                string `json:"name"`
	LastRunAt           string `json:"last_run_at,omitempty"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
}

// JobHealthReporter — узкий интерфейс, реализуемый тем, кто ведёт учёт
// последних запусков задач планировщика (сейчас: internal/notifier).
type JobHealthReporter interface {
	JobHealth() []JobHealth
}

// HealthHandler отдаёт состояние процесса: доступность БД и, если
// репортёр подключен, сводку по задачам планировщика.
//
// Endpoints:
// - GET /health - статус процесса
type HealthHandler struct {
	db       *sql.DB
	reporter JobHealthReporter
}

func NewHealthHandler(db *sql.DB, reporter JobHealthReporter) *HealthHandler {
	return &HealthHandler{db: db, reporter: reporter}
}

type healthResponse struct {
	Status string      `json:"status"`
	Jobs    []JobHealth `json:"jobs,omitempty"`
}

func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			status = "degraded"
		}
	}

	resp := healthResponse{Status: status}
	if h.reporter != nil {
		resp.Jobs = h.reporter.JobHealth()
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, resp)
}
