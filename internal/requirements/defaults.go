package requirements

import "github.com/StudentTechUsher/stuV1.0-sub000/internal/model"

// DefaultMinTotalCredits is the credit threshold given to a new CreditThreshold
const DefaultMinTotalCredits = 12

// New returns a blank requirement of type t with its type-specific defaults
func New(t model.RequirementType, id model.RequirementID, displayOrder int) (model.Requirement, error) {
	return build(t, model.Base{ID: id, DisplayOrder: model.IntPtr(displayOrder)}, model.CourseGroup{})
}

// build assembles a variant from shared fields and an optional course payload,
// filling the defaults each variant starts with.
func build(t model.RequirementType, base model.Base, group model.CourseGroup) (model.Requirement, error) {
	if t.CourseBearing() && group.Courses == nil {
		group.Courses = []model.Course{}
	}
	switch t {
	case model.TypeCompleteAll:
		base.Constraints = withoutThresholds(base.Constraints)
		return &model.CompleteAll{Base: base, CourseGroup: group}, nil
	case model.TypeChooseN:
		c := ensure(withoutThresholds(base.Constraints))
		c.N = model.IntPtr(1)
		base.Constraints = c
		return &model.ChooseN{Base: base, CourseGroup: group}, nil
	case model.TypeCreditThreshold:
		c := ensure(withoutThresholds(base.Constraints))
		c.MinTotalCredits = model.FloatPtr(DefaultMinTotalCredits)
		base.Constraints = c
		return &model.CreditThreshold{Base: base, CourseGroup: group}, nil
	case model.TypeSequence:
		base.Constraints = withoutThresholds(base.Constraints)
		return &model.Sequence{Base: base, Blocks: []model.SequenceBlock{}}, nil
	case model.TypeOptionGroup:
		base.Constraints = withoutThresholds(base.Constraints)
		return &model.OptionGroup{Base: base, Options: []model.OptionTrack{}}, nil
	case model.TypeNoteOnly:
		base.Constraints = withoutThresholds(base.Constraints)
		return &model.NoteOnly{Base: base, Steps: []string{}}, nil
	default:
		return nil, ErrUnknownVariant
	}
}

func ensure(c *model.Constraints) *model.Constraints {
	if c == nil {
		return &model.Constraints{}
	}
	return c
}

// withoutThresholds keeps the flag rules of c and drops n and the credit totals;
// it returns nil when nothing is left.
func withoutThresholds(c *model.Constraints) *model.Constraints {
	if c == nil {
		return nil
	}
	out := c.Clone()
	out.N = nil
	out.MinTotalCredits = nil
	out.MaxTotalCredits = nil
	if isEmpty(out) {
		return nil
	}
	return out
}

func isEmpty(c *model.Constraints) bool {
	return c.N == nil && c.MinTotalCredits == nil && c.MaxTotalCredits == nil &&
		!c.AdmissionsGate && !c.NoDoubleCount && !c.TrackExclusive &&
		c.MinGrade == "" && c.MinGPA == nil && len(c.GroupCaps) == 0 && len(c.CourseCaps) == 0
}
