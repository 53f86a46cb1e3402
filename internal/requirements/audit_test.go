package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

func TestCourseMatches(t *testing.T) {
	tests := []struct {
		completed string
		listed    string
		opts      AuditOptions
		want      bool
	}{
		{"CS 142", "CS 142", AuditOptions{}, true},
		{"cs-142", "CS 142", AuditOptions{}, true},
		{"M COM 320", "MCOM 320", AuditOptions{}, true},
		{"CS 142", "CS 1XX", AuditOptions{}, false},
		{"CS 142", "CS 1XX", AuditOptions{Wildcards: true}, true},
		{"CS 242", "CS 1XX", AuditOptions{Wildcards: true}, false},
		{"CS 142", "CS", AuditOptions{Wildcards: true}, true},
		{"CS 499", "CS 101", AuditOptions{SubjectOnly: true}, true},
		{"MATH 112", "CS 101", AuditOptions{SubjectOnly: true}, false},
		{"", "CS 101", AuditOptions{Wildcards: true, SubjectOnly: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.completed+" vs "+tt.listed, func(t *testing.T) {
			assert.Equal(t, tt.want, CourseMatches(tt.completed, tt.listed, tt.opts))
		})
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "MCOM", Subject("M COM 320"))
	assert.Equal(t, "CS", Subject("cs142"))
	assert.Equal(t, "", Subject("101"))
}

func auditFixture() *model.ProgramRequirementsStructure {
	core := completeAll(1, "CS 142", "CS 235")
	core.Description = "Core"
	core.SubRequirements = model.RequirementList{completeAll(1, "MATH 112")}

	electives := chooseN(2, model.IntPtr(2), "CS 142", "CS 312", "CS 3XX")
	electives.Description = "Electives"
	electives.Constraints.NoDoubleCount = true

	gate := &model.NoteOnly{Base: model.Base{ID: model.NumericID(3), Description: "Apply", Constraints: &model.Constraints{AdmissionsGate: true}}}
	admission := completeAll(4, "CS 111")
	admission.Description = "Pre-major"
	admission.Constraints = &model.Constraints{AdmissionsGate: true}

	tracks := &model.OptionGroup{
		Base: model.Base{ID: model.NumericID(5), Description: "Emphasis"},
		Options: []model.OptionTrack{
			{TrackID: "bio", TrackName: "Bioinformatics", Requirements: model.RequirementList{completeAll(1, "BIO 130")}},
		},
	}
	return &model.ProgramRequirementsStructure{Requirements: model.RequirementList{core, electives, gate, admission, tracks}}
}

func TestAudit(t *testing.T) {
	got := Audit(auditFixture(), []string{"cs 142", "CS-235", "HIST 201", "CS 142", "BIO 130"}, AuditOptions{})

	require.Len(t, got.Results, 5)
	assert.Equal(t, model.RollUp{Total: 5, Completed: 2, Percentage: 40}, got.Overall)

	core := got.Results[0]
	assert.Equal(t, model.StatusCompleted, core.Status)
	assert.Equal(t, []string{"CS 142", "CS-235"}, core.AppliedCourses)
	assert.Empty(t, core.RemainingCourses)
	require.Len(t, core.Children, 1)
	assert.Equal(t, "1.1", core.Children[0].Path)
	assert.Equal(t, model.StatusNotStarted, core.Children[0].Status)
	assert.Equal(t, "MATH 112", core.Children[0].RemainingCourses[0].Code)

	electives := got.Results[1]
	assert.Equal(t, model.StatusInProgress, electives.Status)
	assert.Equal(t, 1, electives.Progress.Completed)
	assert.Len(t, electives.RemainingCourses, 2)

	assert.Equal(t, model.StatusCompleted, got.Results[2].Status)

	tracks := got.Results[4]
	assert.Equal(t, model.StatusNotStarted, tracks.Status)
	assert.NotEmpty(t, tracks.Message)
	require.Len(t, tracks.Children, 1)
	assert.Equal(t, "5.bio.1", tracks.Children[0].Path)
	assert.Equal(t, model.StatusCompleted, tracks.Children[0].Status)

	assert.Equal(t, []string{"1", "2"}, got.CourseMap["CS 142"])
	assert.Equal(t, []string{"HIST 201"}, got.UnmatchedCourses)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "CS 142")
	require.Len(t, got.Blockers, 1)
	assert.Contains(t, got.Blockers[0], "Pre-major")
}

func TestAuditWildcards(t *testing.T) {
	s := auditFixture()

	plain := Audit(s, []string{"CS 142", "CS 330"}, AuditOptions{})
	assert.Equal(t, 1, plain.Results[1].Progress.Completed)
	assert.Contains(t, plain.UnmatchedCourses, "CS 330")

	wild := Audit(s, []string{"CS 142", "CS 330"}, AuditOptions{Wildcards: true})
	electives := wild.Results[1]
	assert.Equal(t, 2, electives.Progress.Completed)
	assert.True(t, electives.Progress.IsComplete)
	assert.Equal(t, model.StatusCompleted, electives.Status)
	assert.Empty(t, wild.UnmatchedCourses)
}

func TestAuditAgreesWithEvaluate(t *testing.T) {
	s := auditFixture()
	taken := []string{"CS 142", "CS 312", "CS 111"}

	got := Audit(s, taken, AuditOptions{})
	set := NewCompletedSet(taken...)
	for i, r := range s.Requirements {
		assert.Equal(t, Evaluate(r, set).IsComplete, got.Results[i].Progress.IsComplete, r.Meta().ID.String())
	}
	assert.Empty(t, got.Blockers)
}

func TestAuditNil(t *testing.T) {
	got := Audit(nil, []string{"CS 142"}, AuditOptions{})
	assert.Empty(t, got.Results)
	assert.NotNil(t, got.CourseMap)
	assert.NotNil(t, got.Warnings)
}
