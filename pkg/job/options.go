package job

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
)

type config struct {
	handlers   map[string]handler
	schedules  []ScheduledTask
	queues     map[string]int
	logger     *slog.Logger
	maxWorkers int
}

// Option configures the Manager.
type Option func(*config)

// WithTask registers a task. The payload type is inferred from Handle.
func WithTask[P any](t Task[P]) Option {
	return func(c *config) {
		c.handlers[t.Name()] = typed(t)
	}
}

// WithScheduledTask registers a periodic task.
//
//	func (cleanupSessions) Schedule() string { return "0 * * * *" } // hourly
func WithScheduledTask(t ScheduledTask) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, t)
		c.handlers[t.Name()] = func(ctx context.Context, _ json.RawMessage) error {
			return t.Handle(ctx)
		}
	}
}

// WithQueue adds a named queue with its own worker limit.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithMaxWorkers sets the worker limit of the default queue. Default: 20.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithLogger sets the logger used by the manager and River.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// EnqueueOption tunes a single insert.
type EnqueueOption func(*river.InsertOpts, *taskArgs)

// InQueue routes the job to a named queue.
func InQueue(name string) EnqueueOption {
	return func(o *river.InsertOpts, _ *taskArgs) { o.Queue = name }
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(o *river.InsertOpts, _ *taskArgs) { o.ScheduledAt = time.Now().Add(d) }
}

// MaxAttempts caps retries. River's default is 25.
func MaxAttempts(n int) EnqueueOption {
	return func(o *river.InsertOpts, _ *taskArgs) {
		if n > 0 {
			o.MaxAttempts = n
		}
	}
}

// UniqueFor skips the insert when a job with the same task and key was
// inserted within d.
//
//	job.UniqueFor(time.Minute, email) // one verification email per minute
func UniqueFor(d time.Duration, key string) EnqueueOption {
	return func(o *river.InsertOpts, a *taskArgs) {
		a.UniqueKey = key
		o.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: d}
	}
}

func insertOpts(args *taskArgs, opts []EnqueueOption) *river.InsertOpts {
	o := &river.InsertOpts{}
	for _, opt := range opts {
		opt(o, args)
	}
	return o
}
