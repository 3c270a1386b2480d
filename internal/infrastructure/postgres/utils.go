package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isCheckViolation verifica si un error es una violación de CHECK (23514),
// p. ej. current_quantity >= 0 en stocked_items.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" // check_violation
	}
	return strings.Contains(err.Error(), "23514")
}
