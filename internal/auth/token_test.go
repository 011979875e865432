package auth

import (
	"testing"
	"time"
)

var tokenTestSecret = []byte("test-token-secret")

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(tokenTestSecret, time.Hour)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	username, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if username != "alice" {
		t.Fatalf("unexpected username: %s", username)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	issuer := NewTokenIssuer(tokenTestSecret, time.Hour)
	issuer.now = func() time.Time { return issuedAt }

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	// 発行から3600秒ちょうどまでは有効
	issuer.now = func() time.Time { return issuedAt.Add(3600 * time.Second) }
	if _, err := issuer.Verify(token); err != nil {
		t.Fatalf("token must be valid at exactly TTL: %v", err)
	}

	// 3601秒で失効
	issuer.now = func() time.Time { return issuedAt.Add(3601 * time.Second) }
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("token must be rejected one second past TTL")
	}
}

func TestTokenTampered(t *testing.T) {
	issuer := NewTokenIssuer(tokenTestSecret, time.Hour)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := issuer.Verify(token + "x"); err == nil {
		t.Fatal("tampered token must be rejected")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer(tokenTestSecret, time.Hour)
	other := NewTokenIssuer([]byte("another-secret"), time.Hour)

	token, err := other.Issue("alice")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}
