package postgres

import (
	"database/sql"

	"github.com/cockroachdb/errors"
)

// isNotFound also matches wrapped sql.ErrNoRows from sqlx Get paths.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
