package schedule

import (
	"errors"
	"fmt"
)

var ErrTemplateNotFound = errors.New("availability template not found")

// ValidationError reports which template field failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
