package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Path + ": " + is.Message
	}
	return out
}

func TestValidateValidStructure(t *testing.T) {
	s := &model.ProgramRequirementsStructure{Requirements: model.RequirementList{
		completeAll(1, "A"),
		chooseN(2, model.IntPtr(1), "B", "C"),
		creditBucket(3, 6, courses("D", "E")...),
		&model.NoteOnly{Base: model.Base{ID: model.NumericID(4), Description: "Apply"}},
	}}
	got := Validate(s)

	assert.True(t, got.Valid)
	assert.Empty(t, got.Errors)
	assert.Empty(t, got.Warnings)
}

func TestValidateErrors(t *testing.T) {
	noDesc := completeAll(2, "A")
	noDesc.Description = " "

	badN := chooseN(3, model.IntPtr(0), "A")
	noMin := &model.CreditThreshold{Base: model.Base{ID: model.NumericID(4), Description: "Credits"}}
	badCredits := creditBucket(5, -1, model.Course{Code: "", Credits: model.FixedCredits(-2)})
	badCredits.Constraints.MaxTotalCredits = model.FloatPtr(-5)

	sub := completeAll(1, "Z")
	sub.Description = ""
	parent := completeAll(6, "Y")
	parent.SubRequirements = model.RequirementList{sub}

	s := &model.ProgramRequirementsStructure{Requirements: model.RequirementList{
		completeAll(1, "A"),
		completeAll(1, "B"),
		noDesc,
		badN,
		noMin,
		badCredits,
		parent,
		malformed(t),
	}}
	got := Validate(s)
	msgs := messages(got.Errors)

	assert.False(t, got.Valid)
	assert.Contains(t, msgs, "1: duplicate requirement id 1")
	assert.Contains(t, msgs, "2: description is required")
	assert.Contains(t, msgs, "3: must choose at least 1 item")
	assert.Contains(t, msgs, "4: minimum total credits is required")
	assert.Contains(t, msgs, "5: minimum credits cannot be negative")
	assert.Contains(t, msgs, "5: maximum credits must be greater than or equal to minimum credits")
	assert.Contains(t, msgs, "5: course 1 has no code")
	assert.Contains(t, msgs, "5: course  has negative credits")
	assert.Contains(t, msgs, "6.1: description is required")
	assert.Contains(t, msgs, "5: duplicate requirement id 5")
	require.Len(t, got.Errors, 11)
	assert.Equal(t, "5", got.Errors[10].Path)
	assert.Contains(t, got.Errors[10].Message, "unrecognized requirement")
}

func TestValidateWarnings(t *testing.T) {
	s := &model.ProgramRequirementsStructure{Requirements: model.RequirementList{
		chooseN(1, model.IntPtr(3), "A"),
		completeAll(2),
		&model.Sequence{Base: model.Base{ID: model.NumericID(3), Description: "Cohort"}},
		&model.OptionGroup{Base: model.Base{ID: model.NumericID(4), Description: "Tracks"}},
	}}
	got := Validate(s)

	assert.True(t, got.Valid)
	assert.Equal(t, []string{
		"1: requires 3 of only 1 courses",
		"2: no courses listed",
		"3: sequence progress is not evaluated",
		"4: track selection is not evaluated",
		"4: no tracks defined",
	}, messages(got.Warnings))
}

func TestValidateNil(t *testing.T) {
	got := Validate(nil)
	assert.True(t, got.Valid)
	assert.NotNil(t, got.Errors)
}
