package auth

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/internal/repository"
	"github.com/dmitrymomot/upresume/pkg/cache"
	"github.com/dmitrymomot/upresume/pkg/job"
	"github.com/dmitrymomot/upresume/pkg/session"
)

const testSecret = "test-auth-secret-0123456789abcdef"

// memRepo is an in-memory Repo.
type memRepo struct {
	mu            sync.Mutex
	users         map[string]repository.User
	accounts      []repository.Account
	verifications map[string]repository.Verification
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:         make(map[string]repository.User),
		verifications: make(map[string]repository.Verification),
	}
}

func (m *memRepo) CreateUser(_ context.Context, u repository.User) (repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.User{}, repository.ErrDuplicate
		}
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	m.users[u.ID] = u
	return u, nil
}

func (m *memRepo) GetUserByID(_ context.Context, id string) (repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (m *memRepo) MarkEmailVerified(ctx context.Context, email string) (repository.User, error) {
	u, err := m.GetUserByEmail(ctx, email)
	if err != nil {
		return u, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u.EmailVerified = true
	m.users[u.ID] = u
	return u, nil
}

func (m *memRepo) ListUsers(_ context.Context, limit, offset int) ([]repository.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]repository.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	slices.SortFunc(all, func(a, b repository.User) int { return strings.Compare(a.ID, b.ID) })
	if offset >= len(all) {
		return nil, len(all), nil
	}
	return all[offset:min(offset+limit, len(all))], len(all), nil
}

func (m *memRepo) CreateAccount(_ context.Context, a repository.Account) (repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.ProviderID == a.ProviderID && existing.AccountID == a.AccountID {
			return repository.Account{}, repository.ErrDuplicate
		}
	}
	m.accounts = append(m.accounts, a)
	return a, nil
}

func (m *memRepo) GetAccount(_ context.Context, userID, providerID string) (repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			return a, nil
		}
	}
	return repository.Account{}, repository.ErrNotFound
}

func (m *memRepo) GetAccountByProvider(_ context.Context, providerID, accountID string) (repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.ProviderID == providerID && a.AccountID == accountID {
			return a, nil
		}
	}
	return repository.Account{}, repository.ErrNotFound
}

func (m *memRepo) UpdatePassword(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.accounts {
		if a.UserID == userID && a.ProviderID == repository.ProviderCredential {
			m.accounts[i].PasswordHash = &hash
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memRepo) CreateVerification(_ context.Context, v repository.Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications[v.Value] = v
	return nil
}

func (m *memRepo) ConsumeVerification(_ context.Context, value string) (repository.Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[value]
	delete(m.verifications, value)
	if !ok || !time.Now().Before(v.ExpiresAt) {
		return repository.Verification{}, repository.ErrNotFound
	}
	return v, nil
}

func (m *memRepo) DeleteExpiredVerifications(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, v := range m.verifications {
		if !now.Before(v.ExpiresAt) {
			delete(m.verifications, k)
			n++
		}
	}
	return n, nil
}

func (m *memRepo) setRole(id, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.Role = role
	m.users[id] = u
}

func (m *memRepo) ban(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.Banned = true
	m.users[id] = u
}

func (m *memRepo) deleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// memSessions is an in-memory SessionDB.
type memSessions struct {
	mu       sync.Mutex
	sessions map[string]session.Session
	gets     int
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]session.Session)}
}

func (m *memSessions) Create(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = *s
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	s, ok := m.sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	if s.IsExpired() {
		return &s, session.ErrExpired
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memSessions) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := m.TokensDeletedFor(ctx, userID)
	return err
}

func (m *memSessions) TokensDeletedFor(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokens []string
	for t, s := range m.sessions {
		if s.UserID == userID {
			tokens = append(tokens, t)
			delete(m.sessions, t)
		}
	}
	return tokens, nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for t, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, t)
			n++
		}
	}
	return n, nil
}

func (m *memSessions) dbGets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

func (m *memSessions) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type enqueued struct {
	name    string
	payload EmailPayload
}

// recorder captures enqueued jobs.
type recorder struct {
	mu   sync.Mutex
	jobs []enqueued
}

func (r *recorder) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _ := payload.(EmailPayload)
	r.jobs = append(r.jobs, enqueued{name: name, payload: p})
	return nil
}

func (r *recorder) last(t *testing.T, name string) EmailPayload {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.jobs) - 1; i >= 0; i-- {
		if r.jobs[i].name == name {
			return r.jobs[i].payload
		}
	}
	t.Fatalf("no %s job enqueued", name)
	return EmailPayload{}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

type fixture struct {
	svc   *Service
	repo  *memRepo
	db    *memSessions
	cache *cache.Memory[session.Session]
	jobs  *recorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		repo:  newMemRepo(),
		db:    newMemSessions(),
		cache: cache.NewMemory[session.Session](),
		jobs:  &recorder{},
	}
	t.Cleanup(func() { _ = f.cache.Close() })

	svc, err := New(Config{
		Secret:  testSecret,
		BaseURL: "http://localhost:5173",
	}, f.repo, NewCachedStore(f.db, f.cache, nil), f.jobs, opts...)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// verifiedUser signs up and verifies a user with the given password.
func (f *fixture) verifiedUser(t *testing.T, email, password string) *repository.User {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, SignUpInput{Name: "Ada", Email: email, Password: password})
	require.NoError(t, err)
	user, err := f.svc.VerifyEmail(ctx, tokenFromURL(t, f.jobs.last(t, TaskSendVerificationEmail).URL))
	require.NoError(t, err)
	return user
}

func tokenFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token, "no token in %s", raw)
	return token
}
