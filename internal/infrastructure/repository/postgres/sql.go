package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// isSerializationFailure detects row-level contention the caller should
// retry: serialization_failure (40001), deadlock_detected (40P01) and
// lock_not_available (55P03).
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01", "55P03":
		return true
	default:
		return false
	}
}
