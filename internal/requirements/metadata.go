package requirements

import (
	"time"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// TotalMinCredits sums the minimum credits of every course listed directly on a
// course-bearing requirement.
func TotalMinCredits(reqs []model.Requirement) float64 {
	var total float64
	for _, r := range reqs {
		cb, ok := r.(model.CourseBearing)
		if !ok {
			continue
		}
		for _, c := range cb.Group().Courses {
			total += c.MinimumCredits()
		}
	}
	return total
}

// RecomputeMetadata returns a copy of s with fresh version, timestamp and credit total.
// Fields the engine does not derive, such as authorId, are kept.
func RecomputeMetadata(s *model.ProgramRequirementsStructure, now time.Time) *model.ProgramRequirementsStructure {
	out := s.Clone()
	if out == nil {
		out = &model.ProgramRequirementsStructure{}
	}
	if out.Requirements == nil {
		out.Requirements = model.RequirementList{}
	}
	meta := model.Metadata{}
	if out.Metadata != nil {
		meta = *out.Metadata
	}
	meta.Version = model.MetadataVersion
	meta.LastModified = now.UTC().Format(time.RFC3339)
	meta.TotalMinCredits = TotalMinCredits(out.Requirements)
	out.Metadata = &meta
	return out
}
