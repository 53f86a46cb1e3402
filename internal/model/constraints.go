package model

// GroupCap limits how much of a requirement may come from one group of courses
type GroupCap struct {
	GroupID           string   `json:"groupId"`
	GroupLabel        string   `json:"groupLabel"`
	MaxCourses        *int     `json:"maxCourses,omitempty"`
	MaxCredits        *float64 `json:"maxCredits,omitempty"`
	CourseCodePattern string   `json:"courseCodePattern,omitempty"`
}

// CourseCap limits how many times one course may count
type CourseCap struct {
	CourseCode string `json:"courseCode"`
	MaxCount   int    `json:"maxCount"`
}

// Constraints carries the numeric and flag rules of a requirement.
// N applies to ChooseN, the credit totals to CreditThreshold; the rest is informational.
type Constraints struct {
	N               *int        `json:"n,omitempty"`
	MinTotalCredits *float64    `json:"minTotalCredits,omitempty"`
	MaxTotalCredits *float64    `json:"maxTotalCredits,omitempty"`
	AdmissionsGate  bool        `json:"admissionsGate,omitempty"`
	NoDoubleCount   bool        `json:"noDoubleCount,omitempty"`
	TrackExclusive  bool        `json:"trackExclusive,omitempty"`
	MinGrade        string      `json:"minGrade,omitempty"`
	MinGPA          *float64    `json:"minGPA,omitempty"`
	GroupCaps       []GroupCap  `json:"groupCaps,omitempty"`
	CourseCaps      []CourseCap `json:"courseCaps,omitempty"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 { return &v }

// Clone returns a deep copy; nil stays nil
func (c *Constraints) Clone() *Constraints {
	if c == nil {
		return nil
	}
	out := *c
	if c.N != nil {
		out.N = IntPtr(*c.N)
	}
	if c.MinTotalCredits != nil {
		out.MinTotalCredits = FloatPtr(*c.MinTotalCredits)
	}
	if c.MaxTotalCredits != nil {
		out.MaxTotalCredits = FloatPtr(*c.MaxTotalCredits)
	}
	if c.MinGPA != nil {
		out.MinGPA = FloatPtr(*c.MinGPA)
	}
	if c.GroupCaps != nil {
		out.GroupCaps = make([]GroupCap, len(c.GroupCaps))
		for i, g := range c.GroupCaps {
			out.GroupCaps[i] = g
			if g.MaxCredits != nil {
				out.GroupCaps[i].MaxCredits = FloatPtr(*g.MaxCredits)
			}
			if g.MaxCourses != nil {
				out.GroupCaps[i].MaxCourses = IntPtr(*g.MaxCourses)
			}
		}
	}
	if c.CourseCaps != nil {
		out.CourseCaps = append([]CourseCap(nil), c.CourseCaps...)
	}
	return &out
}

// Clamped returns a copy with n raised to at least 1, credit totals raised to at
// least 0 and the maximum raised to the minimum when it falls below it.
func (c *Constraints) Clamped() *Constraints {
	out := c.Clone()
	if out == nil {
		return nil
	}
	if out.N != nil && *out.N < 1 {
		out.N = IntPtr(1)
	}
	if out.MinTotalCredits != nil && *out.MinTotalCredits < 0 {
		out.MinTotalCredits = FloatPtr(0)
	}
	if out.MaxTotalCredits != nil {
		if *out.MaxTotalCredits < 0 {
			out.MaxTotalCredits = FloatPtr(0)
		}
		if out.MinTotalCredits != nil && *out.MaxTotalCredits < *out.MinTotalCredits {
			out.MaxTotalCredits = FloatPtr(*out.MinTotalCredits)
		}
	}
	return out
}
