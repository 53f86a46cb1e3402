package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

func TestEvaluate(t *testing.T) {
	f := newFixture(t)
	f.createMajor(t)

	got, err := f.progress.Evaluate(context.Background(), "p1", []string{"CS 142", " cs 312 "})
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ProgramID)
	require.Len(t, got.Requirements, 2)

	core := got.Requirements[0]
	assert.Equal(t, model.TypeCompleteAll, core.Type)
	assert.Equal(t, 1, core.Progress.Completed)
	assert.Equal(t, 2, core.Progress.Total)
	assert.False(t, core.Progress.IsComplete)

	electives := got.Requirements[1]
	assert.True(t, electives.Progress.IsComplete)
	assert.Equal(t, model.RollUp{Total: 2, Completed: 1, Percentage: 50}, got.Overall)

	_, err = f.progress.Evaluate(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrProgramNotFound)
}

func TestPreviewEmpty(t *testing.T) {
	f := newFixture(t)
	got := f.progress.Preview(nil, []string{"CS 142"})
	assert.Empty(t, got.Requirements)
	assert.Equal(t, model.RollUp{}, got.Overall)
}

func TestStudentProgressIsCached(t *testing.T) {
	f := newFixture(t)
	f.createMajor(t)
	ctx := context.Background()

	_, err := f.progress.SaveTranscript(ctx, "s1", []string{"CS 142", "CS 235"})
	require.NoError(t, err)

	first, err := f.progress.StudentProgress(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", first.StudentID)
	assert.True(t, first.Requirements[0].Progress.IsComplete)
	assert.Equal(t, 1, first.Overall.Completed)

	// a write that bypasses the service is not seen until the cache is invalidated
	f.transcripts.Transcripts["s1"] = &model.Transcript{StudentID: "s1", CompletedCourses: []string{"CS 142", "CS 235", "CS 324"}}
	cached, err := f.progress.StudentProgress(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Overall.Completed)

	_, err = f.progress.SaveTranscript(ctx, "s1", []string{"CS 142", "CS 235", "CS 324"})
	require.NoError(t, err)
	fresh, err := f.progress.StudentProgress(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Overall.Completed)
	assert.Equal(t, []string{"s1", "s1"}, f.cache.InvalidatedStudents)
}

func TestStudentProgressWithoutTranscript(t *testing.T) {
	f := newFixture(t)
	f.createMajor(t)

	got, err := f.progress.StudentProgress(context.Background(), "p1", "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Overall.Completed)
	assert.Equal(t, 0, got.Requirements[0].Progress.Completed)
}

func TestPublishInvalidatesStudentProgress(t *testing.T) {
	f := newFixture(t)
	f.createMajor(t)
	ctx := context.Background()

	_, err := f.progress.SaveTranscript(ctx, "s1", []string{"CS 142", "CS 235"})
	require.NoError(t, err)
	before, err := f.progress.StudentProgress(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, before.Overall.Completed)

	_, err = f.programs.ApplyEdits(ctx, "p1", "", []requirements.Edit{
		requirements.DeleteRequirementEdit{ID: model.NumericID(2)},
	})
	require.NoError(t, err)
	_, err = f.programs.Publish(ctx, "p1")
	require.NoError(t, err)

	after, err := f.progress.StudentProgress(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, model.RollUp{Total: 1, Completed: 1, Percentage: 100}, after.Overall)
}

func TestAudit(t *testing.T) {
	f := newFixture(t)
	f.createMajor(t)
	ctx := context.Background()

	_, err := f.progress.SaveTranscript(ctx, "s1", []string{"CS142", "CS 312", "HIST 201"})
	require.NoError(t, err)

	audit, err := f.progress.Audit(ctx, "p1", "s1", requirements.AuditOptions{})
	require.NoError(t, err)
	assert.Equal(t, "p1", audit.ProgramID)
	assert.Equal(t, "s1", audit.StudentID)
	assert.Equal(t, []string{"HIST 201"}, audit.UnmatchedCourses)
	require.Len(t, audit.Results, 2)
	assert.Equal(t, model.StatusInProgress, audit.Results[0].Status)
	assert.Equal(t, model.StatusCompleted, audit.Results[1].Status)
}

func TestSaveTranscriptDedupes(t *testing.T) {
	f := newFixture(t)

	tr, err := f.progress.SaveTranscript(context.Background(), "s1", []string{"CS 142", "cs 142", " ", "CS 235"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CS 142", "CS 235"}, tr.CompletedCourses)

	_, err = f.progress.SaveTranscript(context.Background(), " ", nil)
	assert.Error(t, err)

	empty, err := f.progress.Transcript(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, []string{}, empty.CompletedCourses)
}
