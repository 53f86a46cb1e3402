package service

import (
	"errors"
	"fmt"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

var (
	ErrProgramNotFound    = errors.New("program not found")
	ErrInvalidProgram     = errors.New("invalid program")
	ErrForbidden          = errors.New("forbidden")
	ErrValidationFailed   = errors.New("requirements failed validation")
	ErrNoDraft            = errors.New("program has no draft")
	ErrDraftConflict      = errors.New("draft is based on an older published version")
	ErrStaleDraft         = errors.New("draft was changed by another edit")
	ErrCatalogUnavailable = errors.New("course catalog is not configured")
	ErrCourseNotInCatalog = errors.New("course not found in catalog")
	ErrArchiveUnavailable = errors.New("snapshot archive is not configured")
)

// ValidationError carries the issues that blocked a publish
type ValidationError struct {
	Result requirements.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d error(s)", ErrValidationFailed, len(e.Result.Errors))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
