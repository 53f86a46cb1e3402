package service

import (
	"context"
	"encoding/json"
	"errors"
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

// ProgramService handles the authoring workflow: drafts, edits and publishing
type ProgramService struct {
	programRepo   repository.ProgramRepo
	draftCache    cache.DraftCache
	progressCache cache.ProgressCache
	programs      *cache.ProgramLRU
	catalog       repository.CatalogRepo
	archive       repository.ArchiveStore
	broadcaster   Broadcaster
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewProgramService creates a new program service
func NewProgramService(
	programRepo repository.ProgramRepo,
	draftCache cache.DraftCache,
	progressCache cache.ProgressCache,
	programs *cache.ProgramLRU,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ProgramService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgramService{
		programRepo:   programRepo,
		draftCache:    draftCache,
		progressCache: progressCache,
		programs:      programs,
		metrics:       m,
		logger:        logger.With("component", "programs"),
		now:           time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ProgramService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetCatalog enables adding courses by catalog code
func (s *ProgramService) SetCatalog(c repository.CatalogRepo) {
	s.catalog = c
}

// SetArchive enables snapshots of published structures
func (s *ProgramService) SetArchive(a repository.ArchiveStore) {
	s.archive = a
}

// Create stores a new program. input is anything requirements.Parse accepts.
func (s *ProgramService) Create(ctx context.Context, name string, kind model.ProgramKind, input any) (*model.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProgram)
	}
	if kind == "" {
		kind = model.ProgramKindMajor
	}

	structure, err := requirements.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgram, err)
	}

	program := &model.Program{
		Name:         name,
		Kind:         kind,
		Requirements: requirements.RecomputeMetadata(structure, s.now()),
	}
	if _, err := s.programRepo.Create(ctx, program); err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	s.logger.Info("program created", "program_id", program.ID, "name", name, "requirements", len(program.Requirements.Requirements))
	return program, nil
}

// Get returns the saved program, from memory when possible
func (s *ProgramService) Get(ctx context.Context, id string) (*model.Program, error) {
	if s.programs != nil {
		if p, ok := s.programs.Get(id); ok {
			s.metrics.ObserveCache("program", true)
			return p, nil
		}
		s.metrics.ObserveCache("program", false)
	}

	p, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get program: %w", err)
	}
	if p == nil {
		return nil, ErrProgramNotFound
	}
	if s.programs != nil {
		s.programs.Add(p)
	}
	return p, nil
}

// List returns a summary of every program
func (s *ProgramService) List(ctx context.Context) ([]model.ProgramSummary, error) {
	programs, err := s.programRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	out := make([]model.ProgramSummary, 0, len(programs))
	for _, p := range programs {
		count := 0
		if p.Requirements != nil {
			count = len(p.Requirements.Requirements)
		}
		out = append(out, model.ProgramSummary{
			ID:               p.ID,
			Name:             p.Name,
			Kind:             p.Kind,
			PublishedVersion: p.PublishedVersion,
			RequirementCount: count,
			UpdatedAt:        p.UpdatedAt,
		})
	}
	return out, nil
}

// Delete removes a program with its draft and cached state
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.programRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete program: %w", err)
	}
	s.forget(ctx, id)
	if err := s.draftCache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete draft", "program_id", id, "error", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToProgram(id, MsgProgramDeleted, map[string]string{"programId": id})
		s.broadcaster.DisconnectProgram(id)
	}
	s.logger.Info("program deleted", "program_id", id)
	return nil
}

// Draft returns the working copy: the stored draft, else the saved structure
func (s *ProgramService) Draft(ctx context.Context, id string) (*model.Draft, error) {
	draft, err := s.draftCache.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	s.metrics.ObserveCache("draft", draft != nil)

	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return draft, nil
	}

	return &model.Draft{
		ProgramID:    program.ID,
		BaseVersion:  program.PublishedVersion,
		Requirements: program.Requirements,
		UpdatedAt:    program.UpdatedAt,
	}, nil
}

// ApplyEdits reduces edits over the current draft and stores the result. The
// batch is all or nothing: a failing edit leaves the stored draft untouched.
// A draft changed by a concurrent batch fails with ErrStaleDraft.
func (s *ProgramService) ApplyEdits(ctx context.Context, id, authorID string, edits []requirements.Edit) (*model.Draft, error) {
	return s.applyEdits(ctx, id, authorID, nil, edits)
}

// ApplyEditsAt is ApplyEdits for a client that last saw the draft at revision.
// It fails with ErrStaleDraft when the draft has moved on since.
func (s *ProgramService) ApplyEditsAt(ctx context.Context, id, authorID string, revision int, edits []requirements.Edit) (*model.Draft, error) {
	return s.applyEdits(ctx, id, authorID, &revision, edits)
}

func (s *ProgramService) applyEdits(ctx context.Context, id, authorID string, revision *int, edits []requirements.Edit) (*model.Draft, error) {
	draft, err := s.Draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if revision != nil && *revision != draft.Revision {
		return nil, fmt.Errorf("%w: at revision %d, not %d", ErrStaleDraft, draft.Revision, *revision)
	}

	cur := draft.Requirements
	for i, e := range edits {
		next, err := requirements.Apply(cur, e)
		if e != nil {
			s.metrics.ObserveEdit(string(e.Op()), err)
		}
		if err != nil {
			s.logger.Debug("edit rejected", "program_id", id, "index", i, "error", err)
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		cur = next
	}

	now := s.now()
	cur = requirements.RecomputeMetadata(cur, now)
	if authorID != "" {
		cur.Metadata.AuthorID = authorID
	}

	updated := &model.Draft{
		ProgramID:    id,
		BaseVersion:  draft.BaseVersion,
		Revision:     draft.Revision + 1,
		Requirements: cur,
		AuthorID:     authorID,
		UpdatedAt:    now.UTC(),
	}
	if err := s.draftCache.SetIfRevision(ctx, updated, draft.Revision); err != nil {
		if errors.Is(err, cache.ErrRevisionMismatch) {
			return nil, fmt.Errorf("%w: at revision %d", ErrStaleDraft, draft.Revision)
		}
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToProgram(id, MsgDraftUpdated, map[string]interface{}{
			"programId":    id,
			"authorId":     authorID,
			"requirements": cur,
		})
	}
	s.logger.Info("draft updated", "program_id", id, "edits", len(edits), "author_id", authorID)
	return updated, nil
}

// AddCourseFromCatalog looks code up in the catalog and adds it to a requirement
func (s *ProgramService) AddCourseFromCatalog(ctx context.Context, id, authorID string, requirementID model.RequirementID, code string) (*model.Draft, error) {
	course, err := s.LookupCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.ApplyEdits(ctx, id, authorID, []requirements.Edit{
		requirements.AddCourseEdit{ID: requirementID, Course: *course},
	})
}

// LookupCourse returns the catalog entry for code
func (s *ProgramService) LookupCourse(ctx context.Context, code string) (*model.Course, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	course, err := s.catalog.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotInCatalog, code)
	}
	return course, nil
}

// SearchCatalog lists catalog courses whose code starts with prefix
func (s *ProgramService) SearchCatalog(ctx context.Context, prefix string, limit int) ([]model.Course, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.catalog.Search(ctx, prefix, limit)
}

// Publish validates the draft and makes it the program's saved structure
func (s *ProgramService) Publish(ctx context.Context, id string) (*model.Program, error) {
	program, err := s.publish(ctx, id)
	s.metrics.ObservePublish(err)
	return program, err
}

func (s *ProgramService) publish(ctx context.Context, id string) (*model.Program, error) {
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	draft, err := s.draftCache.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if draft == nil {
		return nil, ErrNoDraft
	}
	if draft.BaseVersion != program.PublishedVersion {
		return nil, ErrDraftConflict
	}

	result := requirements.Validate(draft.Requirements)
	if !result.Valid {
		return nil, &ValidationError{Result: result}
	}

	now := s.now().UTC()
	program.Requirements = draft.Requirements
	program.PublishedVersion++
	program.PublishedAt = &now
	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, fmt.Errorf("failed to publish program: %w", err)
	}

	s.archiveSnapshot(ctx, program)
	if err := s.draftCache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete published draft", "program_id", id, "error", err)
	}
	s.forget(ctx, id)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToProgram(id, MsgPublished, map[string]interface{}{
			"programId": id,
			"version":   program.PublishedVersion,
			"warnings":  result.Warnings,
		})
	}
	s.logger.Info("program published", "program_id", id, "version", program.PublishedVersion, "warnings", len(result.Warnings))
	return program, nil
}

// archiveSnapshot is best effort; a failed upload does not undo the publish
func (s *ProgramService) archiveSnapshot(ctx context.Context, program *model.Program) {
	if s.archive == nil {
		return
	}
	data, err := json.Marshal(program.Requirements)
	if err != nil {
		s.logger.Error("failed to encode snapshot", "program_id", program.ID, "error", err)
		return
	}
	key, err := s.archive.PutSnapshot(ctx, program.ID, program.PublishedVersion, data)
	if err != nil {
		s.logger.Error("failed to archive snapshot", "program_id", program.ID, "version", program.PublishedVersion, "error", err)
		return
	}
	s.logger.Debug("snapshot archived", "program_id", program.ID, "key", key)
}

// forget drops every cached view of a program after it changed
func (s *ProgramService) forget(ctx context.Context, id string) {
	if s.programs != nil {
		s.programs.Remove(id)
	}
	if err := s.progressCache.InvalidateProgram(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate progress", "program_id", id, "error", err)
	}
}

// Snapshots lists the archived published versions of a program
func (s *ProgramService) Snapshots(ctx context.Context, id string) ([]string, error) {
	if s.archive == nil {
		return nil, ErrArchiveUnavailable
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.archive.ListSnapshots(ctx, id)
}

// DiscardDraft throws away unpublished edits
func (s *ProgramService) DiscardDraft(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.draftCache.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToProgram(id, MsgDraftDiscarded, map[string]string{"programId": id})
	}
	return nil
}

// Validate checks the current draft
func (s *ProgramService) Validate(ctx context.Context, id string) (requirements.ValidationResult, error) {
	draft, err := s.Draft(ctx, id)
	if err != nil {
		return requirements.ValidationResult{}, err
	}
	return requirements.Validate(draft.Requirements), nil
}

// CourseSlots lists every course of the current draft with its requirement path
func (s *ProgramService) CourseSlots(ctx context.Context, id string) ([]requirements.CourseSlot, error) {
	draft, err := s.Draft(ctx, id)
	if err != nil {
		return nil, err
	}
	return requirements.CourseSlots(draft.Requirements), nil
}
