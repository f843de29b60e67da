package job

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
)

type greetPayload struct {
	Email string `json:"email"`
}

type greetTask struct {
	got []greetPayload
}

func (*greetTask) Name() string { return "greet" }

func (t *greetTask) Handle(_ context.Context, p greetPayload) error {
	t.got = append(t.got, p)
	return nil
}

type cleanupTask struct{ runs int }

func (*cleanupTask) Name() string     { return "cleanup" }
func (*cleanupTask) Schedule() string { return "0 * * * *" }
func (t *cleanupTask) Handle(context.Context) error {
	t.runs++
	return nil
}

func TestOptions_RegisterHandlers(t *testing.T) {
	t.Parallel()

	greet, cleanup := &greetTask{}, &cleanupTask{}
	cfg := &config{handlers: map[string]handler{}, queues: map[string]int{}}
	WithTask[greetPayload](greet)(cfg)
	WithScheduledTask(cleanup)(cfg)
	WithQueue("email", 5)(cfg)
	WithQueue("ignored", 0)(cfg)

	require.Len(t, cfg.handlers, 2)
	require.Equal(t, map[string]int{"email": 5}, cfg.queues)

	ctx := context.Background()
	require.NoError(t, cfg.handlers["greet"](ctx, json.RawMessage(`{"email":"jane@example.com"}`)))
	require.Equal(t, []greetPayload{{Email: "jane@example.com"}}, greet.got)

	require.ErrorIs(t, cfg.handlers["greet"](ctx, json.RawMessage(`{`)), ErrInvalidPayload)

	require.NoError(t, cfg.handlers["cleanup"](ctx, nil))
	require.Equal(t, 1, cleanup.runs)
}

func TestNewArgs(t *testing.T) {
	t.Parallel()

	args, err := newArgs("greet", greetPayload{Email: "a@b.c"})
	require.NoError(t, err)
	require.Equal(t, "greet", args.Task)
	require.JSONEq(t, `{"email":"a@b.c"}`, string(args.Payload))
	require.Equal(t, "upresume:task", args.Kind())

	empty, err := newArgs("cleanup", nil)
	require.NoError(t, err)
	require.Nil(t, empty.Payload)

	_, err = newArgs("bad", make(chan int))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestInsertOpts(t *testing.T) {
	t.Parallel()

	args := taskArgs{Task: "greet"}
	before := time.Now()
	o := insertOpts(&args, []EnqueueOption{
		InQueue("email"),
		MaxAttempts(3),
		MaxAttempts(0),
		ScheduledIn(time.Minute),
		UniqueFor(time.Hour, "jane@example.com"),
	})

	require.Equal(t, "email", o.Queue)
	require.Equal(t, 3, o.MaxAttempts)
	require.True(t, o.ScheduledAt.After(before.Add(59*time.Second)))
	require.Equal(t, river.UniqueOpts{ByArgs: true, ByPeriod: time.Hour}, o.UniqueOpts)
	require.Equal(t, "jane@example.com", args.UniqueKey)
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	s, err := parseSchedule("0 * * * *")
	require.NoError(t, err)
	from := time.Date(2026, 1, 1, 10, 15, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC), s.Next(from))

	_, err = parseSchedule("every hour")
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestNewManager_RequiresPool(t *testing.T) {
	t.Parallel()
	_, err := NewManager(nil)
	require.ErrorIs(t, err, ErrPoolRequired)
}

func TestHealthcheck_NotStarted(t *testing.T) {
	t.Parallel()

	var nilManager *Manager
	require.ErrorIs(t, nilManager.Healthcheck(context.Background()), ErrHealthcheckFailed)

	m := &Manager{handlers: map[string]handler{}}
	err := m.Healthcheck(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
	require.ErrorIs(t, err, ErrNotStarted)
}
