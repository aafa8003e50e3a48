package pgstore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE Postgres raises for a unique-index
// conflict; see https://www.postgresql.org/docs/current/errcodes-appendix.html
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a *pgconn.PgError carrying
// the unique_violation SQLSTATE, the case a concurrent writer hits when
// two transactions race to insert the same (stream_id, version) row.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
