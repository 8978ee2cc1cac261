package models

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the identity carried inside an access token.
type Claims struct {
	SubjectID uuid.UUID
	Email     string
	ExpiresAt time.Time
}

type AccessToken struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
