package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/google/uuid"
)

const (
	TokenTypeBearer   = "bearer"
	minPasswordLength = 8
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserByIDAndEmail(ctx context.Context, id uuid.UUID, email string) (*models.User, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type AuthService struct {
	log        logger.Log
	hasher     passwordHasher
	dummyHash  string
	jwtManager *JWTManager
	accessTTL  time.Duration
	userRepo   UserRepo
}

func NewAuthService(l logger.Log, hasher *Hasher, manager *JWTManager, accessTTL time.Duration, repo UserRepo) *AuthService {
	return newAuthService(l, hasher, manager, accessTTL, repo)
}

func newAuthService(l logger.Log, hasher passwordHasher, manager *JWTManager, accessTTL time.Duration, repo UserRepo) *AuthService {
	log := l.With("service", "auth")
	// Login verifies unknown emails against this hash so both failure paths cost one bcrypt compare.
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		log.Error("failed to hash dummy password", "error", err)
	}
	return &AuthService{
		log:        log,
		hasher:     hasher,
		dummyHash:  dummy,
		jwtManager: manager,
		accessTTL:  accessTTL,
		userRepo:   repo,
	}
}

func (s *AuthService) Register(ctx context.Context, email, username, password string) (*models.AccessToken, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" {
		return nil, app_errors.Invalid("email", "is required")
	}
	if username == "" {
		return nil, app_errors.Invalid("username", "is required")
	}
	if len(password) < minPasswordLength {
		return nil, app_errors.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID)

	return s.issueFor(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AccessToken, error) {
	user, err := s.userRepo.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, app_errors.ErrIncorrectCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, app_errors.ErrIncorrectCredentials
	}
	return s.issueFor(user)
}

// Authenticate resolves a bearer token to the user it was issued for. The id
// and the email in the token must both still match the stored user. Every
// failure is reported as app_errors.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtManager.Verify(token)
	if err != nil {
		s.log.Debug("token rejected", logger.Err(err))
		return nil, app_errors.ErrUnauthorized
	}
	user, err := s.userRepo.UserByIDAndEmail(ctx, claims.SubjectID, claims.Email)
	if err != nil {
		if !errors.Is(err, app_errors.ErrUserNotFound) {
			s.log.ErrorErr("identity lookup failed", err, "user_id", claims.SubjectID)
		} else {
			s.log.Debug("token subject not found", "user_id", claims.SubjectID)
		}
		return nil, app_errors.ErrUnauthorized
	}
	return user, nil
}

func (s *AuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.UserByID(ctx, id)
}

func (s *AuthService) issueFor(user *models.User) (*models.AccessToken, error) {
	token, expiresAt, err := s.jwtManager.Issue(user.ID, user.Email, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &models.AccessToken{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
