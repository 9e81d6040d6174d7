package db

import (
	"strings"

	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// IsUniqueViolation reports whether err is a unique constraint violation. When
// constraintName is provided the constraint must match as well.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	dump := pkgerrors.Dump(err)
	if dump.PGCode != "" {
		if dump.PGCode != pgUniqueViolation {
			return false
		}
		return constraintName == "" || dump.PGConstraint == constraintName
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsSerializationFailure reports whether err means a concurrent transaction won
// and this one may be retried.
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	switch pkgerrors.Dump(err).PGCode {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "could not serialize access") || strings.Contains(msg, "database is locked")
}
