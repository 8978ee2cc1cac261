package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = jwt.SigningMethodHS256

type JWTManager struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

func NewJWTManager(secretKey, issuer string) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (j *JWTManager) WithClock(now func() time.Time) *JWTManager {
	j.now = now
	return j
}

type accessTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (j *JWTManager) Issue(subjectID uuid.UUID, email string, ttl time.Duration) (string, time.Time, error) {
	if subjectID == uuid.Nil || email == "" {
		return "", time.Time{}, fmt.Errorf("issue token: subject and email are required")
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("issue token: ttl must be positive, got %s", ttl)
	}
	now := j.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(signingMethod, accessTokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			Issuer:    j.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("access token signing failed: %w", err)
	}
	return signed, expiresAt, nil
}

func (j *JWTManager) Verify(tokenStr string) (*models.Claims, error) {
	claims := &accessTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, app_errors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %v", app_errors.ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", app_errors.ErrMalformedToken, err)
		}
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", app_errors.ErrMalformedToken)
	}
	subjectID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a uuid", app_errors.ErrMalformedToken)
	}

	return &models.Claims{
		SubjectID: subjectID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
