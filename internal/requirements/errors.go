package requirements

import "errors"

var (
	ErrMalformedRequirement = errors.New("malformed requirement")
	ErrUnknownVariant       = errors.New("unknown requirement type")
	ErrNotCourseBearing     = errors.New("requirement type has no course list")
	ErrNotStepBearing       = errors.New("requirement type has no steps")
	ErrRequirementNotFound  = errors.New("requirement not found")
	ErrCourseIndex          = errors.New("course index out of range")
	ErrStepIndex            = errors.New("step index out of range")
	ErrInvalidInput         = errors.New("invalid requirements input")
	ErrUnknownEdit          = errors.New("unknown edit operation")
)
