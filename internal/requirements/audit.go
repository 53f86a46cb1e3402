package requirements

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// AuditOptions control how completed codes are matched to listed courses
type AuditOptions struct {
	// Wildcards lets "CS 1XX" (or a bare prefix such as "CS 1") match "CS 142"
	Wildcards bool `json:"wildcards"`
	// SubjectOnly lets any course of the same subject match
	SubjectOnly bool `json:"subjectOnly"`
}

var (
	separators     = regexp.MustCompile(`[\s-]`)
	subjectPattern = regexp.MustCompile(`^([A-Za-z]+)`)
	trailingX      = regexp.MustCompile(`X+$`)
)

// CanonicalCode removes whitespace and hyphens and upper-cases a course code
func CanonicalCode(code string) string {
	return strings.ToUpper(separators.ReplaceAllString(code, ""))
}

// Subject returns the leading letters of a course code, e.g. "MCOM" for "M COM 320"
func Subject(code string) string {
	m := subjectPattern.FindStringSubmatch(separators.ReplaceAllString(code, ""))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// CourseMatches reports whether a completed code satisfies a listed course code
func CourseMatches(completed, listed string, opts AuditOptions) bool {
	c := CanonicalCode(completed)
	l := CanonicalCode(listed)
	if c == "" || l == "" {
		return false
	}
	if c == l {
		return true
	}
	if opts.Wildcards {
		if prefix := trailingX.ReplaceAllString(l, ""); prefix != "" && strings.HasPrefix(c, prefix) {
			return true
		}
	}
	if opts.SubjectOnly {
		if cs, ls := Subject(completed), Subject(listed); cs != "" && cs == ls {
			return true
		}
	}
	return false
}

type auditor struct {
	opts      AuditOptions
	completed []string
	courseMap map[string][]string
	noDouble  map[string]bool
}

// Audit produces a detailed degree audit of s. Completion follows Evaluate;
// course matching follows opts.
func Audit(s *model.ProgramRequirementsStructure, completed []string, opts AuditOptions) model.ProgramAudit {
	a := &auditor{
		opts:      opts,
		completed: dedupe(completed),
		courseMap: map[string][]string{},
		noDouble:  map[string]bool{},
	}
	out := model.ProgramAudit{
		Results:          []model.AuditResult{},
		CourseMap:        a.courseMap,
		UnmatchedCourses: []string{},
		Warnings:         []string{},
		Blockers:         []string{},
	}
	if s == nil {
		return out
	}

	for _, r := range s.Requirements {
		if r == nil {
			continue
		}
		res := a.requirement(r, "")
		out.Results = append(out.Results, res)
		out.Overall.Total++
		if res.Progress.IsComplete {
			out.Overall.Completed++
		}
		if c := r.Meta().Constraints; c != nil && c.AdmissionsGate && !res.Progress.IsComplete {
			out.Blockers = append(out.Blockers, fmt.Sprintf("admission requirement %s (%s) is not complete", res.Path, res.Description))
		}
	}
	out.Overall.Percentage = percent(float64(out.Overall.Completed), float64(out.Overall.Total))

	for _, code := range a.completed {
		paths := a.courseMap[code]
		if len(paths) == 0 {
			out.UnmatchedCourses = append(out.UnmatchedCourses, code)
			continue
		}
		if len(paths) > 1 && a.anyNoDouble(paths) {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s counts toward %s but double counting is not allowed", code, strings.Join(paths, ", ")))
		}
	}
	return out
}

func (a *auditor) requirement(r model.Requirement, prefix string) model.AuditResult {
	path := joinPath(prefix, r.Meta().ID.String())
	if c := r.Meta().Constraints; c != nil && c.NoDoubleCount {
		a.noDouble[path] = true
	}
	res := model.AuditResult{
		RequirementID:    r.Meta().ID,
		Path:             path,
		Description:      describe(r, path),
		Type:             r.Type(),
		AppliedCourses:   []string{},
		RemainingCourses: []model.Course{},
	}

	res.Progress = evaluateWith(r, func(c model.Course) bool {
		return a.match(c.Code) != ""
	})

	switch v := r.(type) {
	case model.CourseBearing:
		a.apply(&res, v.Group().Courses)
		for _, sub := range v.Group().SubRequirements {
			res.Children = append(res.Children, a.requirement(sub, path))
		}
		if v.Meta().Constraints == nil && r.Type() != model.TypeCompleteAll {
			res.Message = "constraints are missing"
		}
	case *model.Sequence:
		for _, b := range v.Blocks {
			a.apply(&res, b.Courses)
		}
		res.Message = "sequence progress is not tracked"
	case *model.OptionGroup:
		for _, o := range v.Options {
			for _, sub := range o.Requirements {
				res.Children = append(res.Children, a.requirement(sub, path+"."+o.TrackID))
			}
		}
		res.Message = "track selection is not tracked"
	case *model.Malformed:
		res.Message = "unrecognized requirement"
	}

	switch {
	case res.Progress.IsComplete:
		res.Status = model.StatusCompleted
	case len(res.AppliedCourses) > 0 || res.Progress.EarnedCredits > 0:
		res.Status = model.StatusInProgress
	default:
		res.Status = model.StatusNotStarted
	}
	return res
}

func (a *auditor) apply(res *model.AuditResult, courses []model.Course) {
	for _, c := range courses {
		code := a.match(c.Code)
		if code == "" {
			res.RemainingCourses = append(res.RemainingCourses, c)
			continue
		}
		res.AppliedCourses = append(res.AppliedCourses, code)
		if !contains(a.courseMap[code], res.Path) {
			a.courseMap[code] = append(a.courseMap[code], res.Path)
		}
	}
}

// match returns the first completed code that satisfies listed, or ""
func (a *auditor) match(listed string) string {
	for _, code := range a.completed {
		if CourseMatches(code, listed, a.opts) {
			return code
		}
	}
	return ""
}

func (a *auditor) anyNoDouble(paths []string) bool {
	for _, p := range paths {
		if a.noDouble[p] {
			return true
		}
	}
	return false
}

func dedupe(codes []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		n := NormalizeCode(c)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
