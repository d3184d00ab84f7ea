package intake

import (
	"errors"
	"fmt"
)

var ErrEmptyBody = errors.New("empty request body")

// ValidationError is a rejected report. Message is safe to show the employee.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func missingField(key string) *ValidationError {
	return &ValidationError{Field: key, Message: "Отсутствует поле: " + key}
}
