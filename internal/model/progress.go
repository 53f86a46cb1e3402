package model

// Progress is the evaluation of one requirement against a completed-course set
type Progress struct {
	Completed       int     `json:"completed"`
	Total           int     `json:"total"`
	Percentage      float64 `json:"percentage"`
	IsComplete      bool    `json:"isComplete"`
	EarnedCredits   float64 `json:"earnedCredits"`
	RequiredCredits float64 `json:"requiredCredits"`
}

// RollUp summarizes a list of requirements
type RollUp struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// RequirementProgress pairs a requirement with its progress
type RequirementProgress struct {
	RequirementID RequirementID   `json:"requirementId"`
	Description   string          `json:"description"`
	Type          RequirementType `json:"type"`
	Progress      Progress        `json:"progress"`
}

// ProgramProgress is a learner's progress through a whole program
type ProgramProgress struct {
	ProgramID    string                `json:"programId"`
	StudentID    string                `json:"studentId,omitempty"`
	Requirements []RequirementProgress `json:"requirements"`
	Overall      RollUp                `json:"overall"`
}

// RequirementStatus is the coarse state shown for an audited requirement
type RequirementStatus string

const (
	StatusNotStarted RequirementStatus = "not_started"
	StatusInProgress RequirementStatus = "in_progress"
	StatusCompleted  RequirementStatus = "completed"
)

// AuditResult is the detailed audit of one requirement
type AuditResult struct {
	RequirementID    RequirementID     `json:"requirementId"`
	Path             string            `json:"path"`
	Description      string            `json:"description"`
	Type             RequirementType   `json:"type"`
	Status           RequirementStatus `json:"status"`
	Progress         Progress          `json:"progress"`
	AppliedCourses   []string          `json:"appliedCourses"`
	RemainingCourses []Course          `json:"remainingCourses"`
	Children         []AuditResult     `json:"children,omitempty"`
	Message          string            `json:"message,omitempty"`
}

// ProgramAudit is the degree audit of a program for one learner
type ProgramAudit struct {
	ProgramID        string              `json:"programId"`
	StudentID        string              `json:"studentId,omitempty"`
	Results          []AuditResult       `json:"results"`
	Overall          RollUp              `json:"overall"`
	CourseMap        map[string][]string `json:"courseMap"`
	UnmatchedCourses []string            `json:"unmatchedCourses"`
	Warnings         []string            `json:"warnings"`
	Blockers         []string            `json:"blockers"`
}
