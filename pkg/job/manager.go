package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// Enqueuer is the producer side of the Manager.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error
}

// Manager runs River workers and periodic jobs on top of Postgres.
// Jobs may be enqueued before Start.
type Manager struct {
	client   *river.Client[pgx.Tx]
	pool     *pgxpool.Pool
	handlers map[string]handler
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager builds the River client. Tasks must be registered through options.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := &config{
		handlers:   make(map[string]handler),
		queues:     make(map[string]int),
		logger:     slog.New(slog.DiscardHandler),
		maxWorkers: 20,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: cfg.maxWorkers},
	}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	periodic := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, t := range cfg.schedules {
		schedule, err := parseSchedule(t.Schedule())
		if err != nil {
			return nil, err
		}
		name := t.Name()
		periodic = append(periodic, river.NewPeriodicJob(schedule, func() (river.JobArgs, *river.InsertOpts) {
			return taskArgs{Task: name}, nil
		}, nil))
	}

	m := &Manager{pool: pool, handlers: cfg.handlers, logger: cfg.logger}

	workers := river.NewWorkers()
	river.AddWorker(workers, &worker{m: m})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}
	m.client = client

	return m, nil
}

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, o, err := m.prepare(name, payload, opts)
	if err != nil {
		return err
	}
	if _, err := m.client.Insert(ctx, args, o); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

func (m *Manager) prepare(name string, payload any, opts []EnqueueOption) (taskArgs, *river.InsertOpts, error) {
	if _, ok := m.handlers[name]; !ok {
		return taskArgs{}, nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	args, err := newArgs(name, payload)
	if err != nil {
		return args, nil, err
	}
	return args, insertOpts(&args, opts), nil
}

// Start begins processing jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start: %w", err)
	}
	m.started = true
	m.logger.InfoContext(ctx, "job manager started", slog.Int("tasks", len(m.handlers)))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop: %w", err)
	}
	m.started = false
	return nil
}

// Healthcheck fails until the manager is started or when Postgres is unreachable.
func (m *Manager) Healthcheck(ctx context.Context) error {
	if m == nil {
		return ErrHealthcheckFailed
	}

	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if !started {
		return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
	}
	if err := m.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// Migrate installs or upgrades River's own tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("job: migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("job: migrate: %w", err)
	}
	return nil
}

type worker struct {
	river.WorkerDefaults[taskArgs]
	m *Manager
}

func (w *worker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	h, ok := w.m.handlers[j.Args.Task]
	if !ok {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrUnknownTask, j.Args.Task))
	}

	if err := h(ctx, j.Args.Payload); err != nil {
		w.m.logger.ErrorContext(ctx, "task failed",
			slog.String("task", j.Args.Task),
			slog.Int64("job_id", j.ID),
			slog.Int("attempt", j.Attempt),
			slog.Any("error", err),
		)
		if errors.Is(err, ErrInvalidPayload) {
			return river.JobCancel(err)
		}
		return err
	}
	return nil
}

var _ Enqueuer = (*Manager)(nil)
