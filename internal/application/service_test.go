package application_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/workflo/identity/internal/application"
	"github.com/workflo/identity/internal/domain/entity"
	"github.com/workflo/identity/internal/domain/repository"
	"github.com/workflo/identity/internal/oauth"
	"github.com/workflo/identity/internal/token"
	"github.com/workflo/identity/pkg/hashing"
)

type memRepo struct {
	mu           sync.Mutex
	users        map[string]*entity.User
	getByIDCalls int32
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*entity.User{}}
}

func (r *memRepo) Add(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.EmailHash == u.EmailHash {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	atomic.AddInt32(&r.getByIDCalls, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetByEmailHash(_ context.Context, emailHash string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailHash == emailHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeRefresh struct {
	uid     string
	expired bool
	revoked bool
}

// fakeTokens implements application.TokenService with deterministic token
// strings and a map-backed revocation list.
type fakeTokens struct {
	mu     sync.Mutex
	seq    int
	issued map[string]*fakeRefresh
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{issued: map[string]*fakeRefresh{}}
}

func (f *fakeTokens) GenerateAccessToken(userID, emailHash string) (string, error) {
	return "access:" + userID + ":" + emailHash, nil
}

func (f *fakeTokens) GenerateRefreshToken(userID string, _ bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	tok := fmt.Sprintf("refresh:%s:%d", userID, f.seq)
	f.issued[tok] = &fakeRefresh{uid: userID}
	return tok, nil
}

func (f *fakeTokens) mintExpired(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	tok := fmt.Sprintf("refresh:%s:%d", userID, f.seq)
	f.issued[tok] = &fakeRefresh{uid: userID, expired: true}
	return tok
}

func (f *fakeTokens) GetTokenExpiryTime(rememberMe bool) time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if rememberMe {
		return base.Add(30 * 24 * time.Hour)
	}
	return base.Add(7 * 24 * time.Hour)
}

func (f *fakeTokens) GetUserIDFromToken(tok string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.issued[tok]
	if !ok {
		return "", false
	}
	return entry.uid, true
}

func (f *fakeTokens) ValidateRefreshToken(_ context.Context, tok, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.issued[tok]
	return ok && entry.uid == userID && !entry.expired && !entry.revoked, nil
}

func (f *fakeTokens) RevokeRefreshToken(_ context.Context, tok string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.issued[tok]; ok {
		entry.revoked = true
	}
	return nil
}

func (f *fakeTokens) ConsumeRefreshToken(_ context.Context, tok string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.issued[tok]
	if !ok || entry.revoked {
		return false, nil
	}
	entry.revoked = true
	return true, nil
}

type breachStub struct {
	breached bool
	err      error
	calls    int32
}

func (b *breachStub) IsBreached(_ context.Context, _ string) (bool, error) {
	atomic.AddInt32(&b.calls, 1)
	return b.breached, b.err
}

type sentEmail struct {
	to    string
	token string
}

type emailStub struct {
	mu   sync.Mutex
	sent []sentEmail
	fail error
}

func (e *emailStub) SendVerificationEmail(_ context.Context, to, tok, _ string) error {
	if e.fail != nil {
		return e.fail
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, sentEmail{to: to, token: tok})
	return nil
}

func (e *emailStub) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sent)
}

func (e *emailStub) lastToken() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.sent) == 0 {
		return ""
	}
	return e.sent[len(e.sent)-1].token
}

type stubProvider struct {
	name string
	info *oauth.UserInfo
	err  error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Authenticate(_ context.Context, _, _ string) (*oauth.UserInfo, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.info, nil
}

type fixture struct {
	repo   *memRepo
	tokens *fakeTokens
	breach *breachStub
	email  *emailStub
	hasher *hashing.Hasher
	svc    *application.Service
}

func newFixture(providers ...oauth.Provider) *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		repo:   newMemRepo(),
		tokens: newFakeTokens(),
		breach: &breachStub{},
		email:  &emailStub{},
		hasher: hashing.New("test-pepper"),
	}
	verify := token.NewVerificationService(token.NewMemoryVerificationStore(), 24*time.Hour)
	f.svc = application.NewService(
		f.repo, f.hasher, f.breach, f.tokens, verify, f.email,
		oauth.NewRegistry(providers...), logger,
	)
	return f
}

// register is a helper that runs a successful registration and returns the
// new user id and the emailed verification token.
func (f *fixture) register(t *testing.T, email, password string) (userID, verifyToken string) {
	t.Helper()
	res, err := f.svc.Register(context.Background(), application.RegisterCommand{
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
	})
	if err != nil {
		t.Fatalf("Register(%q): %v", email, err)
	}
	return res.UserID, f.email.lastToken()
}

// verifyUser flips a registered user through the verification gate.
func (f *fixture) verifyUser(t *testing.T, verifyToken string) {
	t.Helper()
	if err := f.svc.VerifyEmail(context.Background(), application.VerifyEmailCommand{Token: verifyToken}); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
}
