// Package scheduler runs every periodic job of the system cooperatively
// in a single process: register a named job with a fixed interval,
// start it, pause or resume it, and shut every job down together. Two
// ticks of the same job never run concurrently; distinct jobs may
// overlap freely (§4.J/§5).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc is one tick of a registered job. It receives the scheduler's
// root context, cancelled on Shutdown.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
	entryID  cron.EntryID
	paused   bool
}

// Scheduler owns the cron driver and the registry of named jobs.
type Scheduler struct {
	mu   sync.Mutex
	cron *cron.Cron
	jobs map[string]*job

	rootCtx    context.Context
	rootCancel context.CancelFunc

	log *zap.Logger
}

// New создает новый планировщик. Контекст, передаваемый задачам, живет
// до вызова Shutdown.
func New(log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log}))),
		jobs:       map[string]*job{},
		rootCtx:    ctx,
		rootCancel: cancel,
		log:        log,
	}
}

// Register добавляет именованную задачу с фиксированным интервалом.
// Повторная регистрация того же имени возвращает ошибку. Снять
// зарегистрированную задачу нельзя; Pause лишь убирает её из расписания.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", name)
	}
	if interval <= 0 {
		return fmt.Errorf("scheduler: job %q needs a positive interval", name)
	}

	j := &job{name: name, interval: interval, fn: fn}
	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("scheduler: registering job %q: %w", name, err)
	}
	j.entryID = entryID
	s.jobs[name] = j

	s.log.Info("job registered", zap.String("job", name), zap.Duration("interval", interval))
	return nil
}

func (s *Scheduler) run(j *job) {
	start := time.Now()
	if err := j.fn(s.rootCtx); err != nil {
		s.log.Error("job failed", zap.String("job", j.name), zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}
	s.log.Debug("job completed", zap.String("job", j.name), zap.Duration("took", time.Since(start)))
}

// Start запускает цикл планировщика в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Pause снимает задачу с расписания, не забывая её регистрацию — Resume
// возвращает её с тем же интервалом.
func (s *Scheduler) Pause(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("scheduler: job %q not registered", name)
	}
	if j.paused {
		return nil
	}
	s.cron.Remove(j.entryID)
	j.paused = true
	s.log.Info("job paused", zap.String("job", name))
	return nil
}

// Resume возвращает ранее приостановленную задачу в расписание.
func (s *Scheduler) Resume(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("scheduler: job %q not registered", name)
	}
	if !j.paused {
		return nil
	}
	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("scheduler: resuming job %q: %w", name, err)
	}
	j.entryID = entryID
	j.paused = false
	s.log.Info("job resumed", zap.String("job", name))
	return nil
}

// RunNow executes a registered job immediately, outside its schedule —
// used by the HTTP surface's manual-trigger endpoints.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: job %q not registered", name)
	}
	return j.fn(s.rootCtx)
}

// Shutdown stops scheduling new ticks, waits for in-flight ticks up to
// ctx's deadline, then cancels the root context handed to every job.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler shutdown deadline exceeded, jobs may still be in flight")
	}
	s.rootCancel()
	s.log.Info("scheduler stopped")
	return nil
}

// cronLogger adapts *zap.Logger to cron's minimal key/value-style Logger
// interface, used by the Recover and SkipIfStillRunning middlewares.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
