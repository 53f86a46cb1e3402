package requirements

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// Authoring operations never modify their inputs. Requirement edits return a
// new requirement; list edits return a new top-level slice.

// NextID is one more than the largest numeric requirement ID, and at least 1
func NextID(reqs []model.Requirement) int {
	highest := 0
	for _, r := range reqs {
		if r == nil {
			continue
		}
		if n, ok := r.Meta().ID.Numeric(); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// AddRequirement appends a blank requirement of type t
func AddRequirement(reqs []model.Requirement, t model.RequirementType) (model.RequirementList, error) {
	r, err := New(t, model.NumericID(NextID(reqs)), len(reqs))
	if err != nil {
		return nil, err
	}
	out := make(model.RequirementList, 0, len(reqs)+1)
	out = append(out, reqs...)
	return append(out, r), nil
}

// ChangeVariant switches r to type t. The ID, description, notes, display
// order and constraint flags are kept; courses and sub-requirements carry over
// between course-bearing types; the variant defaults of t are applied. A
// switch to the current type returns an unchanged copy.
func ChangeVariant(r model.Requirement, t model.RequirementType) (model.Requirement, error) {
	if err := checkEditable(r); err != nil {
		return nil, err
	}
	if !t.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, t)
	}
	if r.Type() == t {
		return r.Clone(), nil
	}

	src := r.Clone()
	m := src.Meta()
	base := model.Base{
		ID:               m.ID,
		Description:      m.Description,
		Notes:            m.Notes,
		SequencingNotes:  m.SequencingNotes,
		OtherRequirement: m.OtherRequirement,
		DisplayOrder:     m.DisplayOrder,
		IsCollapsible:    m.IsCollapsible,
		ColorTag:         m.ColorTag,
		Constraints:      m.Constraints,
	}
	var group model.CourseGroup
	if cb, ok := src.(model.CourseBearing); ok && t.CourseBearing() {
		group = *cb.Group()
	}
	return build(t, base, group)
}

// Duplicate deep-copies r under a new ID with " (Copy)" appended to its
// description. Sub-requirement IDs derived from the old ID are moved under the
// new one.
func Duplicate(r model.Requirement, nextID int) (model.Requirement, error) {
	if err := checkEditable(r); err != nil {
		return nil, err
	}
	out := r.Clone()
	out.Meta().ID = model.NumericID(nextID)
	out.Meta().Description = r.Meta().Description + " (Copy)"
	reparent(out, r.Meta().ID.String(), out.Meta().ID.String())
	return out, nil
}

// reparent rewrites sub-requirement IDs of the form "<from>.<rest>" to
// "<to>.<rest>" at every depth.
func reparent(r model.Requirement, from, to string) {
	cb, ok := r.(model.CourseBearing)
	if !ok {
		return
	}
	for _, sub := range cb.Group().SubRequirements {
		if sub == nil {
			continue
		}
		m := sub.Meta()
		old := m.ID.String()
		if rest, found := strings.CutPrefix(old, from+"."); found {
			m.ID = model.StringID(to + "." + rest)
		}
		reparent(sub, old, m.ID.String())
	}
}

// AddCourse appends c to a course-bearing requirement
func AddCourse(r model.Requirement, c model.Course) (model.Requirement, error) {
	out, err := courseBearing(r)
	if err != nil {
		return nil, err
	}
	g := out.Group()
	g.Courses = append(g.Courses, c.Clamped())
	return out, nil
}

// UpdateCourse replaces the course at index
func UpdateCourse(r model.Requirement, index int, c model.Course) (model.Requirement, error) {
	out, err := courseBearing(r)
	if err != nil {
		return nil, err
	}
	g := out.Group()
	if index < 0 || index >= len(g.Courses) {
		return nil, fmt.Errorf("%w: %d", ErrCourseIndex, index)
	}
	g.Courses[index] = c.Clamped()
	return out, nil
}

// RemoveCourse deletes the course at index
func RemoveCourse(r model.Requirement, index int) (model.Requirement, error) {
	out, err := courseBearing(r)
	if err != nil {
		return nil, err
	}
	g := out.Group()
	if index < 0 || index >= len(g.Courses) {
		return nil, fmt.Errorf("%w: %d", ErrCourseIndex, index)
	}
	g.Courses = append(g.Courses[:index], g.Courses[index+1:]...)
	return out, nil
}

// AddSubRequirement appends a blank CompleteAll sub-requirement with ID "<parent>.<k>"
func AddSubRequirement(r model.Requirement) (model.Requirement, error) {
	out, err := courseBearing(r)
	if err != nil {
		return nil, err
	}
	g := out.Group()
	id := model.StringID(out.Meta().ID.String() + "." + strconv.Itoa(len(g.SubRequirements)+1))
	sub := &model.CompleteAll{
		Base:        model.Base{ID: id, Description: "New Sub-Requirement"},
		CourseGroup: model.CourseGroup{Courses: []model.Course{}},
	}
	g.SubRequirements = append(g.SubRequirements, sub)
	return out, nil
}

// AddStep appends an informational step to a NoteOnly requirement
func AddStep(r model.Requirement, step string) (model.Requirement, error) {
	out, err := noteOnly(r)
	if err != nil {
		return nil, err
	}
	out.Steps = append(out.Steps, step)
	return out, nil
}

// UpdateStep replaces the step at index
func UpdateStep(r model.Requirement, index int, step string) (model.Requirement, error) {
	out, err := noteOnly(r)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(out.Steps) {
		return nil, fmt.Errorf("%w: %d", ErrStepIndex, index)
	}
	out.Steps[index] = step
	return out, nil
}

// RemoveStep deletes the step at index
func RemoveStep(r model.Requirement, index int) (model.Requirement, error) {
	out, err := noteOnly(r)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(out.Steps) {
		return nil, fmt.Errorf("%w: %d", ErrStepIndex, index)
	}
	out.Steps = append(out.Steps[:index], out.Steps[index+1:]...)
	return out, nil
}

// SetConstraints replaces the constraints of r, clamping out-of-range values
func SetConstraints(r model.Requirement, c *model.Constraints) (model.Requirement, error) {
	if err := checkEditable(r); err != nil {
		return nil, err
	}
	out := r.Clone()
	out.Meta().Constraints = c.Clamped()
	if err := checkThresholds(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Details are the free-text fields of a requirement; nil leaves a field unchanged
type Details struct {
	Description      *string `json:"description,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	SequencingNotes  *string `json:"sequencingNotes,omitempty"`
	OtherRequirement *string `json:"otherRequirement,omitempty"`
}

// SetDetails updates the free-text fields of r
func SetDetails(r model.Requirement, d Details) (model.Requirement, error) {
	if err := checkEditable(r); err != nil {
		return nil, err
	}
	out := r.Clone()
	m := out.Meta()
	if d.Description != nil {
		m.Description = *d.Description
	}
	if d.Notes != nil {
		m.Notes = *d.Notes
	}
	if d.SequencingNotes != nil {
		m.SequencingNotes = *d.SequencingNotes
	}
	if d.OtherRequirement != nil {
		m.OtherRequirement = *d.OtherRequirement
	}
	return out, nil
}

// Find returns the index of the top-level requirement with the given ID
func Find(reqs []model.Requirement, id model.RequirementID) (int, error) {
	for i, r := range reqs {
		if r != nil && r.Meta().ID.Equal(id) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrRequirementNotFound, id)
}

// Replace swaps the requirement with the given ID for r. The ID is kept.
func Replace(reqs []model.Requirement, id model.RequirementID, r model.Requirement) (model.RequirementList, error) {
	if err := checkEditable(r); err != nil {
		return nil, err
	}
	i, err := Find(reqs, id)
	if err != nil {
		return nil, err
	}
	next := r.Clone()
	next.Meta().ID = reqs[i].Meta().ID
	if c := next.Meta().Constraints; c != nil {
		next.Meta().Constraints = c.Clamped()
	}
	if cb, ok := next.(model.CourseBearing); ok {
		g := cb.Group()
		for j := range g.Courses {
			g.Courses[j] = g.Courses[j].Clamped()
		}
	}
	return replaceAt(reqs, i, next), nil
}

// Delete removes the requirement with the given ID
func Delete(reqs []model.Requirement, id model.RequirementID) (model.RequirementList, error) {
	i, err := Find(reqs, id)
	if err != nil {
		return nil, err
	}
	out := make(model.RequirementList, 0, len(reqs)-1)
	out = append(out, reqs[:i]...)
	return append(out, reqs[i+1:]...), nil
}

// Move places the requirement with the given ID at position to and rewrites
// every display order to match the new positions.
func Move(reqs []model.Requirement, id model.RequirementID, to int) (model.RequirementList, error) {
	i, err := Find(reqs, id)
	if err != nil {
		return nil, err
	}
	if to < 0 {
		to = 0
	}
	if to >= len(reqs) {
		to = len(reqs) - 1
	}
	rest := make([]model.Requirement, 0, len(reqs)-1)
	rest = append(rest, reqs[:i]...)
	rest = append(rest, reqs[i+1:]...)

	out := make(model.RequirementList, 0, len(reqs))
	out = append(out, rest[:to]...)
	out = append(out, reqs[i])
	out = append(out, rest[to:]...)
	for k, r := range out {
		if r.Meta().DisplayOrder != nil && *r.Meta().DisplayOrder == k {
			continue
		}
		c := r.Clone()
		c.Meta().DisplayOrder = model.IntPtr(k)
		out[k] = c
	}
	return out, nil
}

func replaceAt(reqs []model.Requirement, i int, r model.Requirement) model.RequirementList {
	out := make(model.RequirementList, len(reqs))
	copy(out, reqs)
	out[i] = r
	return out
}

func checkEditable(r model.Requirement) error {
	if r == nil {
		return fmt.Errorf("%w: nil requirement", ErrMalformedRequirement)
	}
	if m, ok := r.(*model.Malformed); ok {
		return fmt.Errorf("%w: %s", ErrMalformedRequirement, m.Reason)
	}
	return checkThresholds(r)
}

// checkThresholds rejects a ChooseN without n and a CreditThreshold without a
// minimum. Validate reports both as errors.
func checkThresholds(r model.Requirement) error {
	c := r.Meta().Constraints
	switch r.(type) {
	case *model.ChooseN:
		if c == nil || c.N == nil {
			return fmt.Errorf("%w: %s %s has no n", ErrMalformedRequirement, r.Type(), r.Meta().ID)
		}
	case *model.CreditThreshold:
		if c == nil || c.MinTotalCredits == nil {
			return fmt.Errorf("%w: %s %s has no minTotalCredits", ErrMalformedRequirement, r.Type(), r.Meta().ID)
		}
	}
	return nil
}

func courseBearing(r model.Requirement) (model.CourseBearing, error) {
	if err := checkEditable(r); err != nil {
		return nil, err
	}
	if _, ok := r.(model.CourseBearing); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCourseBearing, r.Type())
	}
	return r.Clone().(model.CourseBearing), nil
}

func noteOnly(r model.Requirement) (*model.NoteOnly, error) {
	if err := checkEditable(r); err != nil {
		return nil, err
	}
	if _, ok := r.(*model.NoteOnly); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotStepBearing, r.Type())
	}
	return r.Clone().(*model.NoteOnly), nil
}
