package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"arbitrage/internal/api/handlers"
	"arbitrage/internal/scheduler"
)

// HeartbeatSink is the narrow subset of webhook.Sender the daily
// heartbeat needs — a single text message, no domain payload.
type HeartbeatSink interface {
	NotifyText(ctx context.Context, title, text string) error
}

// jobHealth is the tracker's internal bookkeeping for one named job.
type jobHealth struct {
	lastRunAt           time.Time
	consecutiveFailures int
}

// HealthTracker wraps scheduler.JobFunc values to record each job's
// last tick (successful or not) and its current run of consecutive failures,
// and posts a daily heartbeat summarizing them (§6, supplementing the
// original implementation's startup-notification notifier with a
// periodic one since this system runs as a long-lived process rather
// than a request-scoped script).
type HealthTracker struct {
	mu   sync.Mutex
	jobs map[string]*jobHealth

	sink HeartbeatSink
	log  *zap.Logger
}

// NewHealthTracker builds a tracker. sink may be nil — the daily
// heartbeat becomes a no-op but /health keeps reporting job status.
func NewHealthTracker(sink HeartbeatSink, log *zap.Logger) *HealthTracker {
	return &HealthTracker{jobs: make(map[string]*jobHealth), sink: sink, log: log}
}

// Wrap instruments a scheduler.JobFunc so every tick updates this
// job's health record before returning control to the scheduler.
func (t *HealthTracker) Wrap(name string, fn scheduler.JobFunc) scheduler.JobFunc {
	t.mu.Lock()
	if _, exists := t.jobs[name]; !exists {
		t.jobs[name] = &jobHealth{}
	}
	t.mu.Unlock()

	return func(ctx context.Context) error {
		err := fn(ctx)

		t.mu.Lock()
		h := t.jobs[name]
		h.lastRunAt = time.Now()
		if err != nil {
			h.consecutiveFailures++
		} else {
			h.consecutiveFailures = 0
		}
		t.mu.Unlock()

		return err
	}
}

// JobHealth implements internal/api/handlers.JobHealthReporter.
func (t *HealthTracker) JobHealth() []handlers.JobHealth {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]handlers.JobHealth, 0, len(t.jobs))
	for name, h := range t.jobs {
		entry := handlers.JobHealth{Name: name, ConsecutiveFailures: h.consecutiveFailures}
		if !h.lastRunAt.IsZero() {
			entry.LastRunAt = h.lastRunAt.Format(time.RFC3339)
		}
		out = append(out, entry)
	}
	return out
}

// Heartbeat posts a single summary message covering every tracked
// job's last run time and failure streak — registered as its own
// scheduler job, once per day (§6).
func (t *HealthTracker) Heartbeat(ctx context.Context) error {
	if t.sink == nil {
		return nil
	}

	jobs := t.JobHealth()
	text := formatHeartbeat(jobs)
	if err := t.sink.NotifyText(ctx, "Ежедневный отчёт о работе планировщика", text); err != nil {
		t.log.Warn("heartbeat webhook failed", zap.Error(err))
		return err
	}
	return nil
}

func formatHeartbeat(jobs []handlers.JobHealth) string {
	if len(jobs) == 0 {
		return "Нет зарегистрированных задач."
	}

	text := ""
	for _, j := range jobs {
		lastRun := j.LastRunAt
		if lastRun == "" {
			lastRun = "ещё не запускалась"
		}
		status := "ok"
		if j.ConsecutiveFailures > 0 {
			status = "failing"
		}
		text += j.Name + ": последний запуск " + lastRun + ", статус " + status
		if j.ConsecutiveFailures > 0 {
			text += " (подряд неудач: " + itoa(j.ConsecutiveFailures) + ")"
		}
		text += "\n"
	}
	return text
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := [20]byte{}
	pos := len(digits)
	for i > 0 {
		pos--
		digits[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(digits[pos:])
}
