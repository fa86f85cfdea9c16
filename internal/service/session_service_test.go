package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/infrastructure"
	"github.com/codeladder/dashboard/internal/ledger"
)

func testJWTConfig() *infrastructure.JWTConfig {
	return &infrastructure.JWTConfig{
		SecretKey:          "test-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "dashboard-test",
	}
}

func newSessionService(t *testing.T, repo *fakeSessionRepo, ledgerStatus int) *SessionService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ledgerStatus != http.StatusOK {
			w.WriteHeader(ledgerStatus)
			return
		}
		w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	client := ledger.New(srv.URL, time.Second)
	return NewSessionService(repo, client, testJWTConfig(), testTracer(), zap.NewNop())
}

func TestSessionLoginAndResolve(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionService(t, repo, http.StatusOK)

	pair, err := svc.Login(context.Background(), "alice", "tok-123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair has empty tokens")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}
	if !pair.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", pair.ExpiresAt)
	}

	session, err := svc.ResolveAccessToken(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("ResolveAccessToken returned error: %v", err)
	}
	if session.Username != "alice" || session.UpstreamToken != "tok-123" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestSessionLoginEmptyCredentials(t *testing.T) {
	svc := newSessionService(t, newFakeSessionRepo(), http.StatusOK)

	if _, err := svc.Login(context.Background(), "", "tok"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionLoginRejectedByLedger(t *testing.T) {
	svc := newSessionService(t, newFakeSessionRepo(), http.StatusUnauthorized)

	if _, err := svc.Login(context.Background(), "alice", "bad-token"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionLoginLedgerDown(t *testing.T) {
	repo := newFakeSessionRepo()
	client := ledger.New("http://127.0.0.1:1", time.Second)
	svc := NewSessionService(repo, client, testJWTConfig(), testTracer(), zap.NewNop())

	if _, err := svc.Login(context.Background(), "alice", "tok"); !errors.Is(err, domain.ErrLedgerUnavailable) {
		t.Fatalf("expected ErrLedgerUnavailable, got %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Fatal("no session row should be created on a failed login")
	}
}

func TestSessionRefreshToken(t *testing.T) {
	svc := newSessionService(t, newFakeSessionRepo(), http.StatusOK)

	pair, err := svc.Login(context.Background(), "alice", "tok-123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	renewed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	if _, err := svc.ResolveAccessToken(context.Background(), renewed.AccessToken); err != nil {
		t.Fatalf("renewed access token rejected: %v", err)
	}
}

func TestSessionTokenTypeEnforced(t *testing.T) {
	svc := newSessionService(t, newFakeSessionRepo(), http.StatusOK)

	pair, err := svc.Login(context.Background(), "alice", "tok-123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// A refresh token must not pass as an access token, and vice versa.
	if _, err := svc.ResolveAccessToken(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.RefreshToken(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionResolveGarbageToken(t *testing.T) {
	svc := newSessionService(t, newFakeSessionRepo(), http.StatusOK)

	if _, err := svc.ResolveAccessToken(context.Background(), "not-a-jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessionLogout(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionService(t, repo, http.StatusOK)

	pair, err := svc.Login(context.Background(), "alice", "tok-123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := svc.Logout(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := svc.ResolveAccessToken(context.Background(), pair.AccessToken); err == nil {
		t.Fatal("access token should be dead after logout")
	}

	// Logging out an already-removed session succeeds.
	if err := svc.Logout(context.Background(), pair.AccessToken); err != nil {
		t.Fatalf("repeat Logout returned error: %v", err)
	}
}
