// ABOUTME: Client-side presence checks for record fields
// ABOUTME: Rejects empty name/type before any request reaches the store

package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every ValidationError via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports a missing or empty required field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets callers test with errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validate checks that both fields are present
func (in RecordInput) Validate() error {
	if err := requireField("name", in.Name); err != nil {
		return err
	}
	return requireField("type", in.Type)
}

// Validate checks that the patch carries at least one field and that every
// provided field is non-empty
func (p RecordPatch) Validate() error {
	if p.Empty() {
		return &ValidationError{Field: "name/type", Reason: "at least one field is required"}
	}
	if p.Name != nil {
		if err := requireField("name", *p.Name); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := requireField("type", *p.Type); err != nil {
			return err
		}
	}
	return nil
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "cannot be empty"}
	}
	return nil
}

// SanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func SanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
