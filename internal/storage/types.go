package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// maxDocumentBytes caps a single encoded payload.
const maxDocumentBytes = 1 << 20

// ValidateInsert checks the arguments of an InsertNamed call.
func ValidateInsert(name, docType string, body []byte) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: document name is required", ErrInvalidInput)
	}
	if docType == "" {
		return fmt.Errorf("%w: document type is required", ErrInvalidInput)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: document body is required", ErrInvalidInput)
	}
	if len(body) > maxDocumentBytes {
		return fmt.Errorf("%w: document exceeds maximum allowed size of %d bytes (got %d bytes)",
			ErrInvalidInput, maxDocumentBytes, len(body))
	}
	return nil
}
