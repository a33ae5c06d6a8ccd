package impl

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestRandomCodeRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := randomCode(rand.Reader)
		if err != nil {
			t.Fatalf("randomCode: %v", err)
		}
		n, err := strconv.Atoi(code)
		if err != nil || len(code) != 6 || n < 100000 || n > 999999 {
			t.Fatalf("code %q out of range", code)
		}
	}
}

func TestRandomCodeLowestValueHasNoLeadingZero(t *testing.T) {
	code, err := randomCode(bytes.NewReader(make([]byte, 64)))
	if err != nil {
		t.Fatalf("randomCode: %v", err)
	}
	if code != "100000" {
		t.Fatalf("expected 100000 for zero entropy, got %q", code)
	}
}

func TestGenerateVerificationToken(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := &TokenGeneratorImpl{Store: repo, Now: func() time.Time { return now }}

	tok, err := gen.GenerateVerificationToken(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(tok.Token, "verify_") {
		t.Fatalf("unexpected token format %q", tok.Token)
	}
	if !tok.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expires_at = %v", tok.ExpiresAt)
	}

	again, err := gen.GenerateVerificationToken(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(repo.verification) != 1 || repo.verificationToken("a@x.com").Token != again.Token {
		t.Fatalf("expected only the newest token to survive")
	}
}

func TestGenerateTwoFactorToken(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	gen := &TokenGeneratorImpl{Store: repo, Now: func() time.Time { return now }}

	tok, err := gen.GenerateTwoFactorToken(context.Background(), "b@x.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !tok.ExpiresAt.Equal(now.Add(5 * time.Minute)) {
		t.Fatalf("expires_at = %v", tok.ExpiresAt)
	}
	if stored := repo.twoFactorToken("b@x.com"); stored == nil || stored.Token != tok.Token {
		t.Fatalf("token not stored")
	}

	if _, err := gen.GenerateTwoFactorToken(context.Background(), "b@x.com"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(repo.twoFactor) != 1 {
		t.Fatalf("expected one two factor token, got %d", len(repo.twoFactor))
	}
}

func TestGenerateTokenStoreFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failures["twoFactor.Replace"] = errors.New("db down")
	gen := &TokenGeneratorImpl{Store: repo}

	if _, err := gen.GenerateTwoFactorToken(context.Background(), "b@x.com"); err == nil {
		t.Fatalf("expected error")
	}
}
