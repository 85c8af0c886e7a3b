package errors

import (
	"errors"
	"fmt"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrFileNotFound        = errors.New("file not found")
	ErrMemberNotFound      = errors.New("member is not registered in competition")
	// ErrStageConflict means a concurrent caller advanced the competition
	// first; the losing transition must not be retried blindly.
	ErrStageConflict  = errors.New("competition stage changed concurrently")
	ErrInvalidInput   = errors.New("invalid competition input")
	ErrSchemaNotFound = errors.New("polling schema not found")
)

// RuleError is a business-rule violation. The reason is user-facing and the
// competition is left in its prior stage.
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

// RuleReason extracts the user-facing reason, or the plain error text for
// anything that is not a rule violation.
func RuleReason(err error) string {
	var rule *RuleError
	if errors.As(err, &rule) {
		return rule.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
