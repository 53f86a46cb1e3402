package requirements

import (
	"fmt"
	"strconv"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// CourseSlot is one course listed somewhere in a program, with the dotted path
// of the requirement that lists it.
type CourseSlot struct {
	Course          model.Course          `json:"course"`
	Path            string                `json:"path"`
	Description     string                `json:"description"`
	RequirementType model.RequirementType `json:"requirementType"`
}

// RequirementOption is a requirement a course could be applied to
type RequirementOption struct {
	Path            string                `json:"path"`
	Description     string                `json:"description"`
	RequirementType model.RequirementType `json:"requirementType"`
}

// CourseSlots flattens every course in s. Sub-requirements extend the parent
// path with their ID, option tracks with the track ID, sequence blocks with
// the block's sequence ID.
func CourseSlots(s *model.ProgramRequirementsStructure) []CourseSlot {
	out := []CourseSlot{}
	if s == nil {
		return out
	}
	for _, r := range s.Requirements {
		out = appendSlots(out, r, "")
	}
	return out
}

func appendSlots(out []CourseSlot, r model.Requirement, prefix string) []CourseSlot {
	if r == nil {
		return out
	}
	path := joinPath(prefix, r.Meta().ID.String())
	desc := describe(r, path)

	switch v := r.(type) {
	case model.CourseBearing:
		for _, c := range v.Group().Courses {
			out = append(out, CourseSlot{Course: c, Path: path, Description: desc, RequirementType: r.Type()})
		}
		for _, sub := range v.Group().SubRequirements {
			out = appendSlots(out, sub, path)
		}
	case *model.OptionGroup:
		for _, o := range v.Options {
			for _, sub := range o.Requirements {
				out = appendSlots(out, sub, path+"."+o.TrackID)
			}
		}
	case *model.Sequence:
		for _, b := range v.Blocks {
			blockPath := path + "." + strconv.Itoa(b.SequenceID)
			for _, c := range b.Courses {
				out = append(out, CourseSlot{Course: c, Path: blockPath, Description: desc, RequirementType: r.Type()})
			}
		}
	}
	return out
}

// RequirementOptions lists every requirement and nested requirement of s once, by path
func RequirementOptions(s *model.ProgramRequirementsStructure) []RequirementOption {
	out := []RequirementOption{}
	if s == nil {
		return out
	}
	seen := map[string]bool{}
	for _, r := range s.Requirements {
		out = appendOptions(out, r, "", seen)
	}
	return out
}

func appendOptions(out []RequirementOption, r model.Requirement, prefix string, seen map[string]bool) []RequirementOption {
	if r == nil {
		return out
	}
	path := joinPath(prefix, r.Meta().ID.String())
	if !seen[path] {
		seen[path] = true
		out = append(out, RequirementOption{Path: path, Description: describe(r, path), RequirementType: r.Type()})
	}
	switch v := r.(type) {
	case model.CourseBearing:
		for _, sub := range v.Group().SubRequirements {
			out = appendOptions(out, sub, path, seen)
		}
	case *model.OptionGroup:
		for _, o := range v.Options {
			for _, sub := range o.Requirements {
				out = appendOptions(out, sub, path+"."+o.TrackID, seen)
			}
		}
	}
	return out
}

func joinPath(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "." + id
}

func describe(r model.Requirement, path string) string {
	if d := r.Meta().Description; d != "" {
		return d
	}
	return fmt.Sprintf("Requirement %s", path)
}
