package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/service"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/transport/rest/middleware"
)

// ProgramHandler handles program authoring endpoints
type ProgramHandler struct {
	programSvc *service.ProgramService
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(programSvc *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programSvc: programSvc}
}

// CreateProgramRequest is the request body for creating a program. Requirements
// may be any accepted requirements document, including a JSON string.
type CreateProgramRequest struct {
	Name         string            `json:"name"`
	Kind         model.ProgramKind `json:"kind"`
	Requirements json.RawMessage   `json:"requirements"`
}

// EditsRequest is the request body for applying a batch of edits
type EditsRequest struct {
	Edits    []json.RawMessage `json:"edits"`
	Revision *int              `json:"revision,omitempty"`
}

// CatalogCourseRequest adds a catalog course to a requirement
type CatalogCourseRequest struct {
	RequirementID model.RequirementID `json:"requirementId"`
	Code          string              `json:"code"`
}

// List handles GET /v1/programs
func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.programSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"programs": programs})
}

// Create handles POST /v1/programs
func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	program, err := h.programSvc.Create(r.Context(), req.Name, req.Kind, req.Requirements)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

// Get handles GET /v1/programs/{id}
func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	program, err := h.programSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// Delete handles DELETE /v1/programs/{id}
func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.programSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Draft handles GET /v1/programs/{id}/draft
func (h *ProgramHandler) Draft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.programSvc.Draft(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// ApplyEdits handles POST /v1/programs/{id}/edits
func (h *ProgramHandler) ApplyEdits(w http.ResponseWriter, r *http.Request) {
	var req EditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Edits) == 0 {
		writeError(w, http.StatusBadRequest, "no edits given")
		return
	}

	edits := make([]requirements.Edit, 0, len(req.Edits))
	for i, raw := range req.Edits {
		e, err := requirements.DecodeEdit(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "edit "+strconv.Itoa(i)+": "+err.Error())
			return
		}
		edits = append(edits, e)
	}

	advisorID := middleware.GetAdvisorID(r.Context())
	id := mux.Vars(r)["id"]
	var draft *model.Draft
	var err error
	if req.Revision != nil {
		draft, err = h.programSvc.ApplyEditsAt(r.Context(), id, advisorID, *req.Revision, edits)
	} else {
		draft, err = h.programSvc.ApplyEdits(r.Context(), id, advisorID, edits)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// AddCatalogCourse handles POST /v1/programs/{id}/catalog-courses
func (h *ProgramHandler) AddCatalogCourse(w http.ResponseWriter, r *http.Request) {
	var req CatalogCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	advisorID := middleware.GetAdvisorID(r.Context())
	draft, err := h.programSvc.AddCourseFromCatalog(r.Context(), mux.Vars(r)["id"], advisorID, req.RequirementID, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Publish handles POST /v1/programs/{id}/publish
func (h *ProgramHandler) Publish(w http.ResponseWriter, r *http.Request) {
	program, err := h.programSvc.Publish(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// DiscardDraft handles DELETE /v1/programs/{id}/draft
func (h *ProgramHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.programSvc.DiscardDraft(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validation handles GET /v1/programs/{id}/validation
func (h *ProgramHandler) Validation(w http.ResponseWriter, r *http.Request) {
	result, err := h.programSvc.Validate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CourseSlots handles GET /v1/programs/{id}/course-slots
func (h *ProgramHandler) CourseSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.programSvc.CourseSlots(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

// Snapshots handles GET /v1/programs/{id}/snapshots
func (h *ProgramHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	keys, err := h.programSvc.Snapshots(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": keys})
}

// SearchCatalog handles GET /v1/catalog/courses?code=
func (h *ProgramHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	courses, err := h.programSvc.SearchCatalog(r.Context(), code, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}
