package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

// SQLSTATE codes with a domain meaning.
const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

var sqlStateErrors = map[string]error{
	codeNotNullViolation:    domain.ErrValidation,
	codeForeignKeyViolation: domain.ErrNotFound,
	codeUniqueViolation:     domain.ErrConflict,
	codeCheckViolation:      domain.ErrValidation,
}

// MapError prefixes err with op and translates driver errors into domain
// sentinels. The original error stays in the chain. Context errors are
// only prefixed; connection and timeout failures become
// domain.ErrBackendUnavailable.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if target, ok := sqlStateErrors[pgErr.Code]; ok {
			return fmt.Errorf("%s: %w: %w", op, target, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
