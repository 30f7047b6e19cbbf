package kbi

import (
	"errors"
	"fmt"

	"github.com/scrypster/kbbridge/internal/knowledge"
	"github.com/scrypster/kbbridge/internal/storage"
)

var (
	// ErrNotFound matches every lookup miss reported as an error.
	ErrNotFound = storage.ErrNotFound

	// ErrUnknownType is returned by GetInstance when no payload type is
	// registered for the instance type and none was supplied. Such errors
	// also match ErrNotFound.
	ErrUnknownType = errors.New("unknown instance type")

	// ErrUpdateRejected is returned when the knowledge base refuses an update.
	ErrUpdateRejected = knowledge.ErrUpdateRejected
)

// PartialWriteError reports a dual write where the first step succeeded and
// a later one failed. Nothing is rolled back.
type PartialWriteError struct {
	Op        string // e.g. "add instance"
	Key       string // document key, "<type>__<name>"
	Completed string // the step that succeeded
	Failed    string // the step that failed
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("kbi: %s %s: %s succeeded but %s failed: %v", e.Op, e.Key, e.Completed, e.Failed, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
