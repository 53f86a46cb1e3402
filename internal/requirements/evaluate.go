package requirements

import (
	"math"
	"sort"
	"strings"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// NormalizeCode trims surrounding whitespace and upper-cases a course code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CompletedSet is a set of normalized completed course codes
type CompletedSet struct {
	codes map[string]struct{}
}

// NewCompletedSet builds a set from raw codes, normalizing each one
func NewCompletedSet(codes ...string) CompletedSet {
	s := CompletedSet{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		if n := NormalizeCode(c); n != "" {
			s.codes[n] = struct{}{}
		}
	}
	return s
}

// Has reports whether code, once normalized, is in the set
func (s CompletedSet) Has(code string) bool {
	_, ok := s.codes[NormalizeCode(code)]
	return ok
}

// Len returns the number of distinct codes
func (s CompletedSet) Len() int {
	return len(s.codes)
}

// Codes returns the normalized codes in sorted order
func (s CompletedSet) Codes() []string {
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Evaluate computes the progress of one requirement. It never fails: reserved
// variants, unknown types and malformed records evaluate to a zeroed,
// incomplete result.
func Evaluate(r model.Requirement, completed CompletedSet) model.Progress {
	return evaluateWith(r, func(c model.Course) bool { return completed.Has(c.Code) })
}

func evaluateWith(r model.Requirement, done func(model.Course) bool) model.Progress {
	switch v := r.(type) {
	case *model.NoteOnly:
		return model.Progress{Percentage: 100, IsComplete: true}
	case *model.CompleteAll:
		n, total := countDone(v.Courses, done)
		return model.Progress{
			Completed:  n,
			Total:      total,
			Percentage: percent(float64(n), float64(total)),
			IsComplete: n == total,
		}
	case *model.ChooseN:
		if v.Constraints == nil {
			return model.Progress{}
		}
		n, total := countDone(v.Courses, done)
		return model.Progress{
			Completed:  n,
			Total:      total,
			Percentage: percent(float64(n), float64(total)),
			IsComplete: n >= RequiredCount(v),
		}
	case *model.CreditThreshold:
		if v.Constraints == nil {
			return model.Progress{}
		}
		n, total := countDone(v.Courses, done)
		var earned float64
		for _, c := range v.Courses {
			if done(c) {
				earned += c.EarnedCredits()
			}
		}
		required := RequiredCredits(v)
		return model.Progress{
			Completed:       n,
			Total:           total,
			Percentage:      math.Min(percent(earned, required), 100),
			IsComplete:      earned >= required,
			EarnedCredits:   earned,
			RequiredCredits: required,
		}
	default:
		return model.Progress{}
	}
}

// RequiredCount is the n a ChooseN must reach; unset or non-positive n means 1
func RequiredCount(r *model.ChooseN) int {
	if r.Constraints == nil || r.Constraints.N == nil || *r.Constraints.N < 1 {
		return 1
	}
	return *r.Constraints.N
}

// RequiredCredits is the minimum a CreditThreshold must reach; unset means 0
func RequiredCredits(r *model.CreditThreshold) float64 {
	if r.Constraints == nil || r.Constraints.MinTotalCredits == nil {
		return 0
	}
	return *r.Constraints.MinTotalCredits
}

func countDone(courses []model.Course, done func(model.Course) bool) (int, int) {
	n := 0
	for _, c := range courses {
		if done(c) {
			n++
		}
	}
	return n, len(courses)
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// RollUp counts how many requirements in reqs are complete
func RollUp(reqs []model.Requirement, completed CompletedSet) model.RollUp {
	out := model.RollUp{Total: len(reqs)}
	for _, r := range reqs {
		if r != nil && Evaluate(r, completed).IsComplete {
			out.Completed++
		}
	}
	out.Percentage = percent(float64(out.Completed), float64(out.Total))
	return out
}

// EvaluateProgram evaluates every top-level requirement of s in order
func EvaluateProgram(s *model.ProgramRequirementsStructure, completed CompletedSet) []model.RequirementProgress {
	if s == nil {
		return []model.RequirementProgress{}
	}
	out := make([]model.RequirementProgress, 0, len(s.Requirements))
	for _, r := range s.Requirements {
		if r == nil {
			continue
		}
		out = append(out, model.RequirementProgress{
			RequirementID: r.Meta().ID,
			Description:   r.Meta().Description,
			Type:          r.Type(),
			Progress:      Evaluate(r, completed),
		})
	}
	return out
}
