package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret-key-0123456789"

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, "exitprep")
	id := uuid.New()

	token, exp, err := m.Issue(id, "alice@example.com", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SubjectID != id || claims.Email != "alice@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(exp.Truncate(time.Second)) {
		t.Fatalf("expiry mismatch: got %s want %s", claims.ExpiresAt, exp)
	}
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager(testSecret, "exitprep").WithClock(func() time.Time { return now })

	token, _, err := m.Issue(uuid.New(), "alice@example.com", 10*time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(9 * time.Minute)
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	now = now.Add(2 * time.Minute)
	_, err = m.Verify(token)
	if !errors.Is(err, app_errors.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, app_errors.ErrUnauthorized) {
		t.Fatalf("expired token error must be an unauthorized error")
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	issuer := NewJWTManager("another-secret-key-abcdef", "exitprep")
	verifier := NewJWTManager(testSecret, "exitprep")

	token, _, err := issuer.Issue(uuid.New(), "alice@example.com", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = verifier.Verify(token)
	if !errors.Is(err, app_errors.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	m := NewJWTManager(testSecret, "exitprep")
	token, _, _ := m.Issue(uuid.New(), "alice@example.com", time.Minute)
	other, _, _ := m.Issue(uuid.New(), "mallory@example.com", time.Minute)

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := m.Verify(forged); !errors.Is(err, app_errors.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for swapped payload, got %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	m := NewJWTManager(testSecret, "exitprep")
	claims := accessTokenClaims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, app_errors.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature for HS512 token, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := m.Verify(none); !errors.Is(err, app_errors.ErrUnauthorized) {
		t.Fatalf("alg=none token accepted: %v", err)
	}
}

func TestVerifyRejectsMissingClaims(t *testing.T) {
	m := NewJWTManager(testSecret, "exitprep")
	exp := jwt.NewNumericDate(time.Now().Add(time.Minute))

	cases := map[string]accessTokenClaims{
		"missing email":   {RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: exp}},
		"missing subject": {Email: "alice@example.com", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}},
		"bad subject":     {Email: "alice@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "42", ExpiresAt: exp}},
		"missing expiry":  {Email: "alice@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(signingMethod, c).SignedString([]byte(testSecret))
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if _, err := m.Verify(token); !errors.Is(err, app_errors.ErrMalformedToken) {
				t.Fatalf("want ErrMalformedToken, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewJWTManager(testSecret, "exitprep")
	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, app_errors.ErrMalformedToken) {
			t.Fatalf("Verify(%q): want ErrMalformedToken, got %v", token, err)
		}
	}
}

func TestIssueRejectsBadInput(t *testing.T) {
	m := NewJWTManager(testSecret, "exitprep")
	if _, _, err := m.Issue(uuid.Nil, "a@b.c", time.Minute); err == nil {
		t.Fatalf("issue with nil subject succeeded")
	}
	if _, _, err := m.Issue(uuid.New(), "a@b.c", 0); err == nil {
		t.Fatalf("issue with zero ttl succeeded")
	}
}
