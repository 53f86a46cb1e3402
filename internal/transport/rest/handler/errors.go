package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/repository"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/service"
)

// writeServiceError maps service and engine errors to a status code
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      err.Error(),
			"validation": verr.Result,
		})
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrCourseNotInCatalog),
		errors.Is(err, requirements.ErrRequirementNotFound),
		errors.Is(err, repository.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoDraft),
		errors.Is(err, service.ErrDraftConflict),
		errors.Is(err, service.ErrStaleDraft):
		return http.StatusConflict
	case errors.Is(err, service.ErrCatalogUnavailable),
		errors.Is(err, service.ErrArchiveUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidProgram),
		errors.Is(err, requirements.ErrInvalidInput),
		errors.Is(err, requirements.ErrUnknownEdit),
		errors.Is(err, requirements.ErrUnknownVariant):
		return http.StatusBadRequest
	case errors.Is(err, requirements.ErrMalformedRequirement),
		errors.Is(err, requirements.ErrNotCourseBearing),
		errors.Is(err, requirements.ErrNotStepBearing),
		errors.Is(err, requirements.ErrCourseIndex),
		errors.Is(err, requirements.ErrStepIndex):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
