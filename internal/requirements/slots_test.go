package requirements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

func TestCourseSlots(t *testing.T) {
	top := completeAll(1, "A")
	top.SubRequirements = model.RequirementList{&model.ChooseN{
		Base:        model.Base{ID: model.StringID("1.1")},
		CourseGroup: model.CourseGroup{Courses: courses("B")},
	}}
	seq := &model.Sequence{
		Base:   model.Base{ID: model.NumericID(2), Description: "Cohort"},
		Blocks: []model.SequenceBlock{{SequenceID: 1, Courses: courses("C")}, {SequenceID: 2, Courses: courses("D")}},
	}
	opt := &model.OptionGroup{
		Base:    model.Base{ID: model.NumericID(3), Description: "Tracks"},
		Options: []model.OptionTrack{{TrackID: "x", Requirements: model.RequirementList{completeAll(1, "E")}}},
	}
	s := &model.ProgramRequirementsStructure{Requirements: model.RequirementList{top, seq, opt, &model.NoteOnly{}}}

	slots := CourseSlots(s)
	require.Len(t, slots, 5)

	paths := make([]string, len(slots))
	for i, sl := range slots {
		paths[i] = sl.Course.Code + "@" + sl.Path
	}
	assert.Equal(t, []string{"A@1", "B@1.1.1", "C@2.1", "D@2.2", "E@3.x.1"}, paths)
	assert.Equal(t, "Requirement 1.1.1", slots[1].Description)
	assert.Equal(t, model.TypeChooseN, slots[1].RequirementType)
	assert.Equal(t, "Cohort", slots[2].Description)

	assert.Empty(t, CourseSlots(nil))
}

func TestRequirementOptions(t *testing.T) {
	top := completeAll(1, "A")
	top.SubRequirements = model.RequirementList{completeAll(1, "B"), completeAll(1, "C")}
	s := &model.ProgramRequirementsStructure{Requirements: model.RequirementList{
		top,
		&model.OptionGroup{
			Base:    model.Base{ID: model.NumericID(2), Description: "Tracks"},
			Options: []model.OptionTrack{{TrackID: "a", Requirements: model.RequirementList{completeAll(7)}}},
		},
	}}

	opts := RequirementOptions(s)
	got := make([]string, len(opts))
	for i, o := range opts {
		got[i] = o.Path
	}
	assert.Equal(t, []string{"1", "1.1", "2", "2.a.7"}, got)
}
