package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("secret", time.Hour, func() time.Time { return now })
	id := uuid.New()

	token, session, err := issuer.Issue(id, "alva@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", session.ExpiresAt)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UserID != id || got.Email != "alva@example.com" {
		t.Errorf("Verify = %+v", got)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("secret", time.Hour, func() time.Time { return now })
	token, _, err := issuer.Issue(uuid.New(), "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	later := NewIssuer("secret", time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
	if _, err := later.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: err = %v", err)
	}

	other := NewIssuer("other", time.Hour, func() time.Time { return now })
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign token: err = %v", err)
	}

	if _, err := issuer.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: err = %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("CheckPassword accepted the wrong password")
	}
}
