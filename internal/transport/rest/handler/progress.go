package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/service"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/transport/rest/middleware"
)

// ProgressHandler handles evaluation and audit endpoints
type ProgressHandler struct {
	progressSvc *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressSvc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// PreviewRequest evaluates a structure that is not stored
type PreviewRequest struct {
	Requirements     json.RawMessage `json:"requirements"`
	CompletedCourses []string        `json:"completedCourses"`
}

// TranscriptRequest replaces a student's completed courses
type TranscriptRequest struct {
	CompletedCourses []string `json:"completedCourses"`
}

// MyProgress handles GET /v1/programs/{id}/progress for the student in the token
func (h *ProgressHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetStudentID(r.Context())
	if studentID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	progress, err := h.progressSvc.StudentProgress(r.Context(), mux.Vars(r)["id"], studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// MyAudit handles GET /v1/programs/{id}/audit?wildcards=&subjectOnly=
func (h *ProgressHandler) MyAudit(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetStudentID(r.Context())
	if studentID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	opts := requirements.AuditOptions{
		Wildcards:   queryBool(q.Get("wildcards")),
		SubjectOnly: queryBool(q.Get("subjectOnly")),
	}
	audit, err := h.progressSvc.Audit(r.Context(), mux.Vars(r)["id"], studentID, opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

// Preview handles POST /v1/preview/evaluate
func (h *ProgressHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	structure, err := requirements.Parse(req.Requirements)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.progressSvc.Preview(structure, req.CompletedCourses))
}

// GetTranscript handles GET /v1/students/{studentId}/transcript
func (h *ProgressHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	t, err := h.progressSvc.Transcript(r.Context(), mux.Vars(r)["studentId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// PutTranscript handles PUT /v1/students/{studentId}/transcript
func (h *ProgressHandler) PutTranscript(w http.ResponseWriter, r *http.Request) {
	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.progressSvc.SaveTranscript(r.Context(), mux.Vars(r)["studentId"], req.CompletedCourses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// StudentProgress handles GET /v1/students/{studentId}/programs/{id}/progress for advisors
func (h *ProgressHandler) StudentProgress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	progress, err := h.progressSvc.StudentProgress(r.Context(), vars["id"], vars["studentId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
