package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/cache"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/metrics"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/repository"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

// ProgressService evaluates published programs against what a student has completed
type ProgressService struct {
	programs       *ProgramService
	transcriptRepo repository.TranscriptRepo
	progressCache  cache.ProgressCache
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(
	programs *ProgramService,
	transcriptRepo repository.TranscriptRepo,
	progressCache cache.ProgressCache,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{
		programs:       programs,
		transcriptRepo: transcriptRepo,
		progressCache:  progressCache,
		metrics:        m,
		logger:         logger.With("component", "progress"),
	}
}

// Evaluate scores a program's saved structure against completed course codes
func (s *ProgressService) Evaluate(ctx context.Context, programID string, completed []string) (*model.ProgramProgress, error) {
	program, err := s.programs.Get(ctx, programID)
	if err != nil {
		return nil, err
	}
	progress := s.Preview(program.Requirements, completed)
	progress.ProgramID = program.ID
	return progress, nil
}

// Preview scores a structure that need not be stored, e.g. an open draft
func (s *ProgressService) Preview(structure *model.ProgramRequirementsStructure, completed []string) *model.ProgramProgress {
	set := requirements.NewCompletedSet(completed...)
	results := requirements.EvaluateProgram(structure, set)
	for _, r := range results {
		s.metrics.ObserveEvaluation(string(r.Type), r.Progress.IsComplete)
	}

	var reqs []model.Requirement
	if structure != nil {
		reqs = structure.Requirements
	}
	return &model.ProgramProgress{
		Requirements: results,
		Overall:      requirements.RollUp(reqs, set),
	}
}

// StudentProgress evaluates a program against the student's stored transcript
func (s *ProgressService) StudentProgress(ctx context.Context, programID, studentID string) (*model.ProgramProgress, error) {
	cached, err := s.progressCache.Get(ctx, programID, studentID)
	if err != nil {
		s.logger.Warn("progress cache read failed", "program_id", programID, "student_id", studentID, "error", err)
	}
	s.metrics.ObserveCache("progress", cached != nil)
	if cached != nil {
		return cached, nil
	}

	completed, err := s.completedCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	progress, err := s.Evaluate(ctx, programID, completed)
	if err != nil {
		return nil, err
	}
	progress.StudentID = studentID

	if err := s.progressCache.Set(ctx, progress); err != nil {
		s.logger.Warn("progress cache write failed", "program_id", programID, "student_id", studentID, "error", err)
	}
	return progress, nil
}

// Audit runs a degree audit of a program for a student
func (s *ProgressService) Audit(ctx context.Context, programID, studentID string, opts requirements.AuditOptions) (*model.ProgramAudit, error) {
	program, err := s.programs.Get(ctx, programID)
	if err != nil {
		return nil, err
	}
	completed, err := s.completedCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}

	audit := requirements.Audit(program.Requirements, completed, opts)
	audit.ProgramID = program.ID
	audit.StudentID = studentID
	return &audit, nil
}

// Transcript returns the student's completed courses, empty when none are recorded
func (s *ProgressService) Transcript(ctx context.Context, studentID string) (*model.Transcript, error) {
	t, err := s.transcriptRepo.Get(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	if t == nil {
		t = &model.Transcript{StudentID: studentID, CompletedCourses: []string{}}
	}
	return t, nil
}

// SaveTranscript replaces a student's completed courses
func (s *ProgressService) SaveTranscript(ctx context.Context, studentID string, completed []string) (*model.Transcript, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidProgram)
	}

	codes := make([]string, 0, len(completed))
	seen := map[string]bool{}
	for _, c := range completed {
		c = strings.TrimSpace(c)
		key := requirements.NormalizeCode(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		codes = append(codes, c)
	}

	t := &model.Transcript{StudentID: studentID, CompletedCourses: codes, UpdatedAt: time.Now().UTC()}
	if err := s.transcriptRepo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save transcript: %w", err)
	}
	if err := s.progressCache.InvalidateStudent(ctx, studentID); err != nil {
		s.logger.Warn("failed to invalidate progress", "student_id", studentID, "error", err)
	}
	s.logger.Info("transcript saved", "student_id", studentID, "courses", len(codes))
	return t, nil
}

func (s *ProgressService) completedCourses(ctx context.Context, studentID string) ([]string, error) {
	t, err := s.Transcript(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return t.CompletedCourses, nil
}
