package errors

import (
	"errors"
	"fmt"
)

var (
	ErrBallotNotFound  = errors.New("ballot not found")
	ErrDraftNotFound   = errors.New("ranked draft not found")
	ErrSchemaNotFound  = errors.New("polling schema not found")
	ErrResultsNotFound = errors.New("polling results not found")
	ErrUnknownHandler  = errors.New("unknown polling schema handler")
	ErrConflict        = errors.New("conflict")
)

// RuleError is a voting-rule violation carrying a user-facing reason.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

func Rule(format string, args ...any) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}

func IsRule(err error) bool {
	var rule *RuleError
	return errors.As(err, &rule)
}
