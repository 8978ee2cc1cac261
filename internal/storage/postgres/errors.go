package postgres

import (
	"errors"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func UnwrapPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pgErr, ok := UnwrapPgError(err)
	return ok && pgErr.Code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := UnwrapPgError(err)
	return ok && pgErr.Code == codeForeignKeyViolation
}

func violatedConstraint(err error) string {
	if pgErr, ok := UnwrapPgError(err); ok {
		return pgErr.ConstraintName
	}
	return ""
}

// mapRowErr turns a no-rows result into notFound and wraps anything else.
func mapRowErr(op string, err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return app_errors.Persistence(op, err)
}
