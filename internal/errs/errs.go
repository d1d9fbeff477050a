// internal/errs/errs.go
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Asset workflow
	ErrValidationFailed  = errors.New("validation failed")
	ErrUploadFailed      = errors.New("upload failed")
	ErrRecordWriteFailed = errors.New("record write failed")
	ErrBatchAborted      = errors.New("batch aborted")

	// Repository / storage
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrObjectExists = errors.New("object already exists")

	// Returned together with a usable timestamp-suffixed slug.
	ErrSlugResolutionDegraded = errors.New("slug uniqueness check failed, timestamp fallback used")
)

// AssetError describes the failure of a single asset inside a reconciliation call.
type AssetError struct {
	Kind     error
	Position int
	Filename string
	Err      error
}

func (e *AssetError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Position > 0 {
		fmt.Fprintf(&b, " (position %d", e.Position)
		if e.Filename != "" {
			fmt.Fprintf(&b, ", %s", e.Filename)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AssetError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// BatchError is returned when an asset fails after earlier assets of the same call
// were applied. RollbackErrs is non-empty when some of those earlier assets could not
// be undone and therefore remain persisted.
type BatchError struct {
	Cause        error
	Applied      int
	RolledBack   int
	RollbackErrs []error
}

func (e *BatchError) Error() string {
	msg := fmt.Sprintf("%s after %d applied asset(s), %d rolled back: %v",
		ErrBatchAborted, e.Applied, e.RolledBack, e.Cause)
	if len(e.RollbackErrs) > 0 {
		msg += fmt.Sprintf("; rollback failures: %v", errors.Join(e.RollbackErrs...))
	}
	return msg
}

func (e *BatchError) Unwrap() []error {
	out := []error{ErrBatchAborted, e.Cause}
	return append(out, e.RollbackErrs...)
}

// Consistent reports whether the rollback removed every asset applied before the failure.
func (e *BatchError) Consistent() bool {
	return len(e.RollbackErrs) == 0
}

// RepositoryError is an opaque pass-through of a backend failure.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}
