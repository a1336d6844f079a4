package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate signals a unique-constraint violation, typically a creation
// race lost against a concurrent insert. Services translate it into the
// user-facing duplicate error.
var ErrDuplicate = errors.New("duplicate row")

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}
