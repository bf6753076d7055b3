package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"c2ms/internal/platform/metrics"
	"c2ms/internal/requestctx"
)

const (
	JobInvoiceOverdue = "invoice_overdue"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type RunFunc func(context.Context) (any, error)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type schedule struct {
	jobType  string
	interval time.Duration
	run      RunFunc
}

// Service runs queued jobs on a single worker and records each run in
// job_runs when a database is attached.
type Service struct {
	DB        *pgxpool.Pool
	Metrics   *metrics.Collector
	queue     chan job
	schedules []schedule
}

type job struct {
	Type string
	Run  RunFunc
}

func New(db *pgxpool.Pool, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Metrics: collector,
		queue:   make(chan job, 128),
	}
}

// Every registers a periodic job. Call before Start; non-positive intervals
// disable the schedule.
func (s *Service) Every(jobType string, interval time.Duration, run RunFunc) {
	if interval <= 0 {
		return
	}
	s.schedules = append(s.schedules, schedule{jobType: jobType, interval: interval, run: run})
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	for _, sch := range s.schedules {
		go s.tick(ctx, sch)
	}
}

func (s *Service) Enqueue(jobType string, run RunFunc) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			jobCtx := requestctx.WithActor(ctx, "job:"+j.Type)
			if _, err := s.runJob(jobCtx, j); err != nil {
				requestctx.Logger(jobCtx).Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) tick(ctx context.Context, sch schedule) {
	ticker := time.NewTicker(sch.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sch.jobType, sch.run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id
    `, j.Type, StatusRunning).Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	if s.Metrics != nil {
		s.Metrics.JobRun(j.Type, err != nil)
	}
	requestctx.Logger(ctx).Info("job run finished", "jobType", j.Type, "status", status)

	if runID == "" {
		return details, err
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if _, updErr := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, detailsJSON, runID); updErr != nil {
		slog.Warn("job run update failed", "err", updErr)
	}
	return details, err
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.DB == nil {
		return []Run{}, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, job_type, status, details_json, started_at, completed_at
    FROM job_runs
    ORDER BY started_at DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
