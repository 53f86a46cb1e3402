package model

import "time"

// MetadataVersion is written on every recompute
const MetadataVersion = "1.0"

// Metadata is recomputed after every authoring edit
type Metadata struct {
	Version                  string  `json:"version"`
	LastModified             string  `json:"lastModified"`
	AuthorID                 string  `json:"authorId,omitempty"`
	TotalMinCredits          float64 `json:"totalMinCredits"`
	EstimatedCompletionTerms *int    `json:"estimatedCompletionTerms,omitempty"`
}

// ProgramRequirementsStructure is the requirement document of one program
type ProgramRequirementsStructure struct {
	Requirements RequirementList `json:"programRequirements"`
	Metadata     *Metadata       `json:"metadata,omitempty"`
}

// Clone deep-copies the structure
func (s *ProgramRequirementsStructure) Clone() *ProgramRequirementsStructure {
	if s == nil {
		return nil
	}
	out := *s
	out.Requirements = s.Requirements.Clone()
	if s.Metadata != nil {
		m := *s.Metadata
		if m.EstimatedCompletionTerms != nil {
			m.EstimatedCompletionTerms = IntPtr(*m.EstimatedCompletionTerms)
		}
		out.Metadata = &m
	}
	return &out
}

// ProgramKind distinguishes majors, minors and general education blocks
type ProgramKind string

const (
	ProgramKindMajor  ProgramKind = "major"
	ProgramKindMinor  ProgramKind = "minor"
	ProgramKindGenEd  ProgramKind = "gen_ed"
	ProgramKindHonors ProgramKind = "honors"
)

// Program is a stored program with its published requirement structure
type Program struct {
	ID               string                        `json:"id"`
	Name             string                        `json:"name"`
	Kind             ProgramKind                   `json:"kind"`
	Requirements     *ProgramRequirementsStructure `json:"requirements"`
	PublishedVersion int                           `json:"publishedVersion"`
	PublishedAt      *time.Time                    `json:"publishedAt,omitempty"`
	CreatedAt        time.Time                     `json:"createdAt"`
	UpdatedAt        time.Time                     `json:"updatedAt"`
}

// ProgramSummary is the list view of a program
type ProgramSummary struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Kind             ProgramKind `json:"kind"`
	PublishedVersion int         `json:"publishedVersion"`
	RequirementCount int         `json:"requirementCount"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// Draft is an unpublished edit of a program's requirements
type Draft struct {
	ProgramID    string                        `json:"programId"`
	BaseVersion  int                           `json:"baseVersion"`
	Revision     int                           `json:"revision"`
	Requirements *ProgramRequirementsStructure `json:"requirements"`
	AuthorID     string                        `json:"authorId,omitempty"`
	UpdatedAt    time.Time                     `json:"updatedAt"`
}
