package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	creditHoursPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hours?|credits?|credit hours?)`)
	nOfMPattern        = regexp.MustCompile(`(?i)(\d+)\s+of\s+(\d+)`)
)

// shape captures the keys decoding needs before picking a variant
type shape struct {
	Type            *string         `json:"type"`
	Description     string          `json:"description"`
	Courses         json.RawMessage `json:"courses"`
	Steps           []string        `json:"steps"`
	SubRequirements json.RawMessage `json:"subRequirements"`
	Subrequirements json.RawMessage `json:"subrequirements"`
	Blocks          json.RawMessage `json:"blocks"`
	Constraints     *Constraints    `json:"constraints"`
}

// DecodeRequirement decodes one requirement. A missing type is inferred from the
// shape of the record; a type that names no known variant yields *Malformed.
func DecodeRequirement(raw json.RawMessage) Requirement {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return &Malformed{Reason: "requirement is not an object", Raw: append(json.RawMessage(nil), raw...)}
	}

	var s shape
	if err := json.Unmarshal(raw, &s); err != nil {
		return malformedFrom(raw, "", err.Error())
	}

	var t RequirementType
	if s.Type == nil || strings.TrimSpace(*s.Type) == "" {
		t = inferType(&s)
	} else {
		t = RequirementType(strings.TrimSpace(*s.Type))
	}

	switch t {
	case TypeCompleteAll, TypeChooseN, TypeCreditThreshold:
		return decodeCourseBearing(raw, t, &s)
	case TypeSequence:
		r := &Sequence{}
		if err := json.Unmarshal(raw, r); err != nil {
			return malformedFrom(raw, string(t), err.Error())
		}
		return r
	case TypeOptionGroup:
		r := &OptionGroup{}
		if err := json.Unmarshal(raw, r); err != nil {
			return malformedFrom(raw, string(t), err.Error())
		}
		return r
	case TypeNoteOnly:
		r := &NoteOnly{}
		if err := json.Unmarshal(raw, r); err != nil {
			return malformedFrom(raw, string(t), err.Error())
		}
		return r
	default:
		return malformedFrom(raw, string(t), fmt.Sprintf("unknown requirement type %q", t))
	}
}

func decodeCourseBearing(raw json.RawMessage, t RequirementType, s *shape) Requirement {
	var base Base
	if err := json.Unmarshal(raw, &base); err != nil {
		return malformedFrom(raw, string(t), err.Error())
	}

	var group CourseGroup
	if len(s.Courses) > 0 {
		if err := json.Unmarshal(s.Courses, &group.Courses); err != nil {
			return malformedFrom(raw, string(t), err.Error())
		}
	} else if len(s.Blocks) > 0 {
		courses, err := coursesFromBlocks(s.Blocks)
		if err != nil {
			return malformedFrom(raw, string(t), err.Error())
		}
		group.Courses = courses
	}
	if group.Courses == nil {
		group.Courses = []Course{}
	}

	subs := s.SubRequirements
	if len(subs) == 0 {
		subs = s.Subrequirements
	}
	if len(subs) > 0 {
		if err := json.Unmarshal(subs, &group.SubRequirements); err != nil {
			return malformedFrom(raw, string(t), err.Error())
		}
	}

	if s.Type == nil || strings.TrimSpace(*s.Type) == "" {
		applyInferredConstraints(&base, t, s)
	}

	switch t {
	case TypeChooseN:
		return &ChooseN{Base: base, CourseGroup: group}
	case TypeCreditThreshold:
		return &CreditThreshold{Base: base, CourseGroup: group}
	default:
		return &CompleteAll{Base: base, CourseGroup: group}
	}
}

func malformedFrom(raw json.RawMessage, kind, reason string) *Malformed {
	m := &Malformed{Kind: kind, Reason: reason, Raw: append(json.RawMessage(nil), raw...)}
	// best effort so the record can still be listed
	var partial struct {
		ID          json.RawMessage `json:"requirementId"`
		Description string          `json:"description"`
		Notes       string          `json:"notes"`
	}
	if json.Unmarshal(raw, &partial) == nil {
		m.Description = partial.Description
		m.Notes = partial.Notes
		if len(partial.ID) > 0 {
			_ = m.ID.UnmarshalJSON(partial.ID)
		}
	}
	return m
}

// inferType classifies legacy records that carry no type
func inferType(s *shape) RequirementType {
	hasCourses := len(bytes.TrimSpace(s.Courses)) > 2 || len(bytes.TrimSpace(s.Blocks)) > 2
	hasSubs := len(bytes.TrimSpace(s.SubRequirements)) > 2 || len(bytes.TrimSpace(s.Subrequirements)) > 2

	if len(s.Steps) > 0 && !hasCourses {
		return TypeNoteOnly
	}
	if creditHoursPattern.MatchString(s.Description) {
		return TypeCreditThreshold
	}
	if s.Constraints != nil && s.Constraints.MinTotalCredits != nil {
		return TypeCreditThreshold
	}
	if hasCourses && nOfMPattern.MatchString(s.Description) {
		return TypeChooseN
	}
	if hasCourses || hasSubs {
		return TypeCompleteAll
	}
	return TypeNoteOnly
}

func applyInferredConstraints(base *Base, t RequirementType, s *shape) {
	switch t {
	case TypeChooseN:
		if base.Constraints == nil {
			base.Constraints = &Constraints{}
		}
		if base.Constraints.N == nil {
			if m := nOfMPattern.FindStringSubmatch(s.Description); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					base.Constraints.N = IntPtr(n)
				}
			}
		}
	case TypeCreditThreshold:
		if base.Constraints == nil {
			base.Constraints = &Constraints{}
		}
		if base.Constraints.MinTotalCredits == nil {
			if m := creditHoursPattern.FindStringSubmatch(s.Description); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					base.Constraints.MinTotalCredits = FloatPtr(v)
				}
			}
		}
	}
}

// block is a gen-ed content block: a course, an option list, or a nested requirement
type block struct {
	Type    string          `json:"type"`
	Code    string          `json:"code"`
	Title   string          `json:"title"`
	Credits Credits         `json:"credits"`
	Prereqs string          `json:"prerequisite"`
	Blocks  json.RawMessage `json:"blocks"`
	Options json.RawMessage `json:"options"`
	Courses []Course        `json:"courses"`
}

// coursesFromBlocks flattens the courses of nested gen-ed blocks in order
func coursesFromBlocks(raw json.RawMessage) ([]Course, error) {
	var blocks []block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	var out []Course
	for _, b := range blocks {
		switch {
		case b.Code != "":
			out = append(out, Course{Code: b.Code, Title: b.Title, Credits: b.Credits, Prerequisite: b.Prereqs})
		case len(b.Courses) > 0:
			out = append(out, b.Courses...)
		}
		for _, nested := range []json.RawMessage{b.Blocks, b.Options} {
			if len(bytes.TrimSpace(nested)) == 0 {
				continue
			}
			inner, err := coursesFromBlocks(nested)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		}
	}
	return out, nil
}
