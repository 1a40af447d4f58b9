package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskmanager/task-api/internal/core/domain"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	f := newFixture(t)
	user, token := f.register(t, "Alice", "alice@example.com")

	got, err := f.tokens.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("token resolved to %s, want %s", got.ID, user.ID)
	}

	claims := &sessionClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}); err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != user.ID || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("zero ttl must not set exp")
	}
}

func TestTokenService_Verify_Rejects(t *testing.T) {
	f := newFixture(t)
	user, _ := f.register(t, "Bob", "bob@example.com")

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{UserID: user.ID}).SignedString([]byte("other-secret"))
	unlisted, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{UserID: user.ID}).SignedString([]byte(testSecret))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{UserID: user.ID}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  forged,
		"not on record": unlisted,
		"alg none":      none,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.tokens.Verify(context.Background(), token); err != domain.ErrUnauthenticated {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestTokenService_Expiry(t *testing.T) {
	f := newFixture(t)
	user, _ := f.register(t, "Carol", "carol@example.com")

	short := NewTokenService(f.users, testSecret, time.Millisecond)
	token, err := short.Issue(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	time.Sleep(1100 * time.Millisecond)

	if _, err := short.Verify(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestTokenService_Revoke(t *testing.T) {
	f := newFixture(t)
	user, first := f.register(t, "Dave", "dave@example.com")
	_, second, err := f.auth.Login(context.Background(), "dave@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.tokens.Revoke(context.Background(), user.ID, first); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, err := f.tokens.Verify(context.Background(), first); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("revoked token still valid: %v", err)
	}
	if _, err := f.tokens.Verify(context.Background(), second); err != nil {
		t.Fatalf("other session must survive: %v", err)
	}

	if err := f.tokens.RevokeAll(context.Background(), user.ID); err != nil {
		t.Fatalf("RevokeAll returned error: %v", err)
	}
	if _, err := f.tokens.Verify(context.Background(), second); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("token survived RevokeAll: %v", err)
	}
}

func TestTokenService_ConcurrentIssueKeepsEveryToken(t *testing.T) {
	f := newFixture(t)
	user, _ := f.register(t, "Erin", "erin@example.com")

	const n = 20
	var wg sync.WaitGroup
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := f.tokens.Issue(context.Background(), user.ID)
			if err != nil {
				t.Errorf("Issue: %v", err)
				return
			}
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	stored, _ := f.users.FindByID(context.Background(), user.ID)
	if len(stored.Tokens) != n+1 {
		t.Fatalf("expected %d tokens, got %d", n+1, len(stored.Tokens))
	}
	for _, tok := range tokens {
		if !stored.HasToken(tok) {
			t.Fatalf("token lost under concurrency")
		}
	}
}

func TestTokenService_StoreFailureIsWrapped(t *testing.T) {
	f := newFixture(t)
	_, token := f.register(t, "Frank", "frank@example.com")

	broken := NewTokenService(failingUsers{f.users}, testSecret, 0)
	_, err := broken.Verify(context.Background(), token)
	if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
