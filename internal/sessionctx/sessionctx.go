// Package sessionctx holds the session state of one protected request.
//
// A Provider moves through INIT, LOADING and one of three resolved states:
// authenticated, anonymous or errored. Fetches run in goroutines. Only the
// most recently started fetch may commit, and nothing commits after Close.
package sessionctx

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/upresume/internal/auth"
	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/logger"
	"github.com/dmitrymomot/upresume/pkg/result"
	"github.com/dmitrymomot/upresume/pkg/session"
)

// Fetcher resolves the current session. A nil SessionData is anonymous.
type Fetcher func(ctx context.Context) result.Result[*auth.SessionData]

// State is an immutable snapshot.
type State struct {
	User      *repository.User
	Session   *session.Session
	Err       error
	IsLoading bool
}

// Authenticated reports a resolved state with a user.
func (s State) Authenticated() bool {
	return !s.IsLoading && s.Err == nil && s.User != nil
}

// Provider owns a State and the fetches that update it.
type Provider struct {
	mu         sync.Mutex
	state      State
	generation uint64
	started    bool
	live       bool
	changed    chan struct{}
	subs       map[int]chan struct{}
	nextSub    int

	fetch  Fetcher
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Provider.
type Option func(*Provider)

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Provider in the loading state. Fetches inherit ctx and are
// cancelled by Close or by ctx itself.
func New(ctx context.Context, fetch Fetcher, opts ...Option) *Provider {
	ctx, cancel := context.WithCancel(ctx)
	p := &Provider{
		state:   State{IsLoading: true},
		live:    true,
		changed: make(chan struct{}),
		subs:    make(map[int]chan struct{}),
		fetch:   fetch,
		logger:  logger.NewNope(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start issues the initial fetch. Later calls do nothing.
func (p *Provider) Start() {
	p.mu.Lock()
	if p.started || !p.live {
		p.mu.Unlock()
		return
	}
	p.started = true
	gen := p.beginLocked()
	p.mu.Unlock()

	p.run(gen)
}

// Refetch re-enters loading and starts a new fetch. Concurrent calls each
// fetch; the last one started wins.
func (p *Provider) Refetch() {
	p.mu.Lock()
	if !p.live {
		p.mu.Unlock()
		return
	}
	p.started = true
	gen := p.beginLocked()
	p.mu.Unlock()

	p.run(gen)
}

// beginLocked registers the fetch goroutine while live is known to be true,
// so Close never waits concurrently with an Add.
func (p *Provider) beginLocked() uint64 {
	p.wg.Add(1)
	p.generation++
	if !p.state.IsLoading || p.state.Err != nil {
		p.state = State{User: p.state.User, Session: p.state.Session, IsLoading: true}
		p.notifyLocked()
	}
	return p.generation
}

func (p *Provider) run(gen uint64) {
	go func() {
		defer p.wg.Done()

		res := p.fetch(p.ctx)
		next := result.Match(res,
			func(data *auth.SessionData) State {
				if data == nil || data.User == nil {
					return State{}
				}
				return State{User: data.User, Session: data.Session}
			},
			func(err error) State {
				return State{Err: err}
			},
		)
		if next.Err != nil && p.ctx.Err() == nil {
			p.logger.ErrorContext(p.ctx, "session fetch failed",
				logger.Scope("auth:session-fetch"),
				logger.Error(next.Err),
			)
		}
		p.commit(gen, next)
	}()
}

// commit drops results from closed providers and superseded generations.
func (p *Provider) commit(gen uint64, next State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.live || gen != p.generation {
		return false
	}
	p.state = next
	p.notifyLocked()
	return true
}

func (p *Provider) notifyLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
	for _, ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// State returns the current snapshot.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Wait blocks until the state is resolved or ctx is done. On ctx expiry it
// returns the latest snapshot with ctx's error.
func (p *Provider) Wait(ctx context.Context) (State, error) {
	for {
		p.mu.Lock()
		st, changed, live := p.state, p.changed, p.live
		p.mu.Unlock()

		if !st.IsLoading || !live {
			return st, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Subscribe returns a channel notified after every committed change, and a
// function that ends the subscription. Notifications coalesce when the
// subscriber is slow.
func (p *Provider) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Close stops accepting results, cancels in-flight fetches and waits for
// their goroutines. The state is left as it was.
func (p *Provider) Close() {
	p.mu.Lock()
	wasLive := p.live
	p.live = false
	if wasLive {
		// Wake waiters so they observe the closed provider.
		close(p.changed)
		p.changed = make(chan struct{})
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
