package postgres

import (
	"context"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

const userColumns = `id, email, username, password_hash, created_at`

func (r *UserPostgres) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, user.Email, user.Username, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return app_errors.ErrUserExists
		}
		return app_errors.Persistence("insert user", err)
	}
	return nil
}

func (r *UserPostgres) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, "select user by id", query, id)
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, "select user by email", query, email)
}

func (r *UserPostgres) UserByIDAndEmail(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND email = $2`
	return r.scanUser(ctx, "select user by id and email", query, id, email)
}

func (r *UserPostgres) scanUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, query, args...).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, mapRowErr(op, err, app_errors.ErrUserNotFound)
	}
	return &user, nil
}
