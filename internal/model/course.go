package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Credits is either a fixed credit value or a variable {min,max} range
type Credits struct {
	Value float64
	Min   *float64
	Max   *float64
}

// FixedCredits returns a fixed credit value
func FixedCredits(v float64) Credits {
	return Credits{Value: v}
}

// RangeCredits returns a variable credit range
func RangeCredits(min, max float64) Credits {
	return Credits{Value: min, Min: &min, Max: &max}
}

// IsVariable reports whether the credits are a range
func (c Credits) IsVariable() bool {
	return c.Min != nil || c.Max != nil
}

// Nominal is the value used for sums: the minimum of a range, else the fixed value
func (c Credits) Nominal() float64 {
	if c.Min != nil {
		return *c.Min
	}
	if c.Value == 0 && c.Max != nil {
		return *c.Max
	}
	return c.Value
}

func (c Credits) clamped() Credits {
	out := Credits{Value: nonNegative(c.Value)}
	if c.Min != nil {
		v := nonNegative(*c.Min)
		out.Min = &v
	}
	if c.Max != nil {
		v := nonNegative(*c.Max)
		if out.Min != nil && v < *out.Min {
			v = *out.Min
		}
		out.Max = &v
	}
	return out
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// MarshalJSON writes a number for fixed credits and {min,max} for ranges
func (c Credits) MarshalJSON() ([]byte, error) {
	if !c.IsVariable() {
		return json.Marshal(c.Value)
	}
	out := struct {
		Min *float64 `json:"min,omitempty"`
		Max *float64 `json:"max,omitempty"`
	}{c.Min, c.Max}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a number, {min,max}, {fixed} or {variable,min,max}
func (c *Credits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Credits{}
		return nil
	}
	if data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("credits: %w", err)
		}
		*c = Credits{Value: v}
		return nil
	}

	var obj struct {
		Fixed    *float64 `json:"fixed"`
		Variable bool     `json:"variable"`
		Min      *float64 `json:"min"`
		Max      *float64 `json:"max"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("credits: %w", err)
	}
	if obj.Fixed != nil && !obj.Variable {
		*c = Credits{Value: *obj.Fixed}
		return nil
	}
	out := Credits{Min: obj.Min, Max: obj.Max}
	switch {
	case obj.Min != nil:
		out.Value = *obj.Min
	case obj.Max != nil:
		out.Value = *obj.Max
	}
	*c = out
	return nil
}

// Course is a catalog course referenced by a requirement
type Course struct {
	Code          string   `json:"code"`
	Title         string   `json:"title"`
	Credits       Credits  `json:"credits"`
	MinCredits    *float64 `json:"minCredits,omitempty"`
	MaxCredits    *float64 `json:"maxCredits,omitempty"`
	Prerequisite  string   `json:"prerequisite,omitempty"`
	Terms         []string `json:"terms,omitempty"`
	MaxRepeats    *int     `json:"maxRepeats,omitempty"`
	SequenceGroup string   `json:"sequenceGroup,omitempty"`
	SequenceOrder *int     `json:"sequenceOrder,omitempty"`
}

// UnmarshalJSON also accepts the legacy termsOffered alias
func (c *Course) UnmarshalJSON(data []byte) error {
	type alias Course
	aux := struct {
		*alias
		TermsOffered []string `json:"termsOffered"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(c.Terms) == 0 && len(aux.TermsOffered) > 0 {
		c.Terms = aux.TermsOffered
	}
	return nil
}

// EarnedCredits is what completing the course counts toward a credit threshold
func (c Course) EarnedCredits() float64 {
	return c.Credits.Nominal()
}

// MinimumCredits is the course's contribution to a program's minimum credit
// total: minCredits when set, else the credits value.
func (c Course) MinimumCredits() float64 {
	if c.MinCredits != nil {
		return *c.MinCredits
	}
	return c.Credits.Nominal()
}

// Clamped returns the course with negative credit values raised to zero and
// maxCredits raised to minCredits
func (c Course) Clamped() Course {
	c.Credits = c.Credits.clamped()
	if c.MinCredits != nil {
		v := nonNegative(*c.MinCredits)
		c.MinCredits = &v
	}
	if c.MaxCredits != nil {
		v := nonNegative(*c.MaxCredits)
		if c.MinCredits != nil && v < *c.MinCredits {
			v = *c.MinCredits
		}
		c.MaxCredits = &v
	}
	return c
}

// Clone returns a deep copy of the course
func (c Course) Clone() Course {
	out := c
	if c.Credits.Min != nil {
		v := *c.Credits.Min
		out.Credits.Min = &v
	}
	if c.Credits.Max != nil {
		v := *c.Credits.Max
		out.Credits.Max = &v
	}
	if c.MinCredits != nil {
		out.MinCredits = FloatPtr(*c.MinCredits)
	}
	if c.MaxCredits != nil {
		out.MaxCredits = FloatPtr(*c.MaxCredits)
	}
	if c.Terms != nil {
		out.Terms = append([]string(nil), c.Terms...)
	}
	if c.MaxRepeats != nil {
		v := *c.MaxRepeats
		out.MaxRepeats = &v
	}
	if c.SequenceOrder != nil {
		v := *c.SequenceOrder
		out.SequenceOrder = &v
	}
	return out
}

func cloneCourses(in []Course) []Course {
	if in == nil {
		return nil
	}
	out := make([]Course, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
