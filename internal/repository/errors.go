package repository

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation  = "23505"
	invalidTextInput = "22P02"
)

// IsUniqueViolation reports whether err is a postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// IsInvalidID reports whether postgres rejected a key that does not parse as
// the column type, such as a malformed uuid.
func IsInvalidID(err error) bool {
	return hasCode(err, invalidTextInput)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
