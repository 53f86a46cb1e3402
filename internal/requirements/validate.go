package requirements

import (
	"fmt"
	"strings"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// Issue is one validation finding, located by requirement path
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationResult collects blocking errors and advisory warnings
type ValidationResult struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Validate checks a structure before it is published
func Validate(s *model.ProgramRequirementsStructure) ValidationResult {
	v := &validator{seen: map[string]bool{}}
	if s != nil {
		for _, r := range s.Requirements {
			v.top(r)
		}
	}
	return ValidationResult{
		Valid:    len(v.errors) == 0,
		Errors:   nonNilIssues(v.errors),
		Warnings: nonNilIssues(v.warnings),
	}
}

type validator struct {
	seen     map[string]bool
	errors   []Issue
	warnings []Issue
}

func (v *validator) errorf(path, format string, args ...any) {
	v.errors = append(v.errors, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) warnf(path, format string, args ...any) {
	v.warnings = append(v.warnings, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) top(r model.Requirement) {
	if r == nil {
		v.errorf("", "empty requirement entry")
		return
	}
	id := r.Meta().ID.String()
	if v.seen[id] {
		v.errorf(id, "duplicate requirement id %s", id)
	}
	v.seen[id] = true
	v.check(r, id)
}

func (v *validator) check(r model.Requirement, path string) {
	m := r.Meta()
	if strings.TrimSpace(m.Description) == "" {
		v.errorf(path, "description is required")
	}
	if c := m.Constraints; c != nil {
		if c.MinTotalCredits != nil && *c.MinTotalCredits < 0 {
			v.errorf(path, "minimum credits cannot be negative")
		}
		if c.MaxTotalCredits != nil && c.MinTotalCredits != nil && *c.MaxTotalCredits < *c.MinTotalCredits {
			v.errorf(path, "maximum credits must be greater than or equal to minimum credits")
		}
	}

	switch x := r.(type) {
	case *model.Malformed:
		v.errorf(path, "unrecognized requirement: %s", x.Reason)
	case *model.ChooseN:
		if x.Constraints == nil || x.Constraints.N == nil || *x.Constraints.N < 1 {
			v.errorf(path, "must choose at least 1 item")
		} else if *x.Constraints.N > len(x.Courses) && len(x.SubRequirements) == 0 {
			v.warnf(path, "requires %d of only %d courses", *x.Constraints.N, len(x.Courses))
		}
		v.courses(x.Courses, path)
		v.subs(x.SubRequirements, path)
	case *model.CreditThreshold:
		if x.Constraints == nil || x.Constraints.MinTotalCredits == nil {
			v.errorf(path, "minimum total credits is required")
		}
		v.courses(x.Courses, path)
		v.subs(x.SubRequirements, path)
	case *model.CompleteAll:
		if len(x.Courses) == 0 && len(x.SubRequirements) == 0 {
			v.warnf(path, "no courses listed")
		}
		v.courses(x.Courses, path)
		v.subs(x.SubRequirements, path)
	case *model.Sequence:
		v.warnf(path, "sequence progress is not evaluated")
		for _, b := range x.Blocks {
			v.courses(b.Courses, fmt.Sprintf("%s.%d", path, b.SequenceID))
		}
	case *model.OptionGroup:
		v.warnf(path, "track selection is not evaluated")
		if len(x.Options) == 0 {
			v.warnf(path, "no tracks defined")
		}
		for _, o := range x.Options {
			for _, sub := range o.Requirements {
				v.check(sub, path+"."+o.TrackID+"."+sub.Meta().ID.String())
			}
		}
	}
}

func (v *validator) courses(cs []model.Course, path string) {
	for i, c := range cs {
		if strings.TrimSpace(c.Code) == "" {
			v.errorf(path, "course %d has no code", i+1)
		}
		if c.Credits.Value < 0 || (c.Credits.Min != nil && *c.Credits.Min < 0) || (c.MinCredits != nil && *c.MinCredits < 0) {
			v.errorf(path, "course %s has negative credits", c.Code)
		}
		if (c.Credits.Min != nil && c.Credits.Max != nil && *c.Credits.Max < *c.Credits.Min) ||
			(c.MinCredits != nil && c.MaxCredits != nil && *c.MaxCredits < *c.MinCredits) {
			v.errorf(path, "course %s has maximum credits below minimum", c.Code)
		}
	}
}

func (v *validator) subs(subs model.RequirementList, path string) {
	for _, sub := range subs {
		v.check(sub, path+"."+sub.Meta().ID.String())
	}
}

func nonNilIssues(in []Issue) []Issue {
	if in == nil {
		return []Issue{}
	}
	return in
}
