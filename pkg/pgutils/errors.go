package pgutils

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	CodeUniqueViolation  = "23505"
	CodeNotNullViolation = "23502"
	CodeCheckViolation   = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation (23505).
func IsUniqueViolation(err error) bool {
	return hasCode(err, CodeUniqueViolation)
}

// IsNotNullViolation reports whether err is a not-null constraint violation (23502).
func IsNotNullViolation(err error) bool {
	return hasCode(err, CodeNotNullViolation)
}

// ConstraintName returns the violated constraint, or "" when err carries none.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// hasCode prefers the typed pgx error and falls back to the message text, which is
// all that survives when the error has been flattened by an intermediate layer.
func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE "+code) || strings.Contains(msg, "("+code+")")
}
