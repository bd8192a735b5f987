// ABOUTME: Error taxonomy for the record store client
// ABOUTME: Distinguishes not-found responses from generic transport failures

package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/markalston/dragon-catalog/internal/models"
)

// ErrNotFound is matched by every NotFoundError via errors.Is
var ErrNotFound = errors.New("record not found")

// NotFoundError is returned when get, update, or delete targets an id the
// store does not know
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %q not found", models.SanitizeForLog(e.ID))
}

// Is lets callers test with errors.Is(err, ErrNotFound)
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportError covers network failures, undecodable bodies, and non-2xx
// responses that are not classified as NotFound.
type TransportError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode != 0 && e.Err == nil {
		return fmt.Sprintf("%s: store returned status %d%s", e.Op, e.StatusCode, bodyMessage(e.Body))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// bodyMessage extracts a short description from an error body. JSON bodies
// with an "error" field are preferred; other bodies are truncated.
func bodyMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return ": " + errResp.Error
	}
	const maxLen = 200
	s := models.SanitizeForLog(string(body))
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return ": " + s
}
