package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RequirementType is the wire discriminator of a requirement variant
type RequirementType string

const (
	TypeCompleteAll     RequirementType = "allOf"
	TypeChooseN         RequirementType = "chooseNOf"
	TypeCreditThreshold RequirementType = "creditBucket"
	TypeSequence        RequirementType = "sequence"
	TypeOptionGroup     RequirementType = "optionGroup"
	TypeNoteOnly        RequirementType = "noteOnly"
)

// RequirementTypes lists every known variant in authoring order
var RequirementTypes = []RequirementType{
	TypeCompleteAll,
	TypeChooseN,
	TypeCreditThreshold,
	TypeSequence,
	TypeOptionGroup,
	TypeNoteOnly,
}

// Known reports whether t names a known variant
func (t RequirementType) Known() bool {
	for _, k := range RequirementTypes {
		if k == t {
			return true
		}
	}
	return false
}

// CourseBearing reports whether the variant carries a flat course list
func (t RequirementType) CourseBearing() bool {
	return t == TypeCompleteAll || t == TypeChooseN || t == TypeCreditThreshold
}

// RequirementID is a numeric or string requirement identifier
type RequirementID struct {
	num   int
	str   string
	isStr bool
}

// NumericID returns a numeric requirement ID
func NumericID(n int) RequirementID {
	return RequirementID{num: n}
}

// StringID returns a string requirement ID such as "3.1"
func StringID(s string) RequirementID {
	return RequirementID{str: s, isStr: true}
}

// ParseRequirementID reads an ID from a path segment; integers become numeric IDs
func ParseRequirementID(s string) RequirementID {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return NumericID(n)
	}
	return StringID(s)
}

// Numeric returns the numeric value and whether the ID is numeric
func (id RequirementID) Numeric() (int, bool) {
	return id.num, !id.isStr
}

func (id RequirementID) String() string {
	if id.isStr {
		return id.str
	}
	return strconv.Itoa(id.num)
}

// Equal compares IDs by their textual form, so 3 and "3" are the same requirement
func (id RequirementID) Equal(other RequirementID) bool {
	return id.String() == other.String()
}

func (id RequirementID) MarshalJSON() ([]byte, error) {
	if id.isStr {
		return json.Marshal(id.str)
	}
	return []byte(strconv.Itoa(id.num)), nil
}

func (id *RequirementID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = RequirementID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("requirement id: %w", err)
	}
	if f == float64(int(f)) {
		*id = NumericID(int(f))
		return nil
	}
	*id = StringID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Base holds the fields every requirement variant shares
type Base struct {
	ID               RequirementID `json:"requirementId"`
	Description      string        `json:"description"`
	Notes            string        `json:"notes,omitempty"`
	SequencingNotes  string        `json:"sequencingNotes,omitempty"`
	OtherRequirement string        `json:"otherRequirement,omitempty"`
	DisplayOrder     *int          `json:"displayOrder,omitempty"`
	IsCollapsible    bool          `json:"isCollapsible,omitempty"`
	ColorTag         string        `json:"colorTag,omitempty"`
	Constraints      *Constraints  `json:"constraints,omitempty"`
}

// Meta returns the shared fields
func (b *Base) Meta() *Base { return b }

func (b *Base) isRequirement() {}

func (b Base) clone() Base {
	out := b
	if b.DisplayOrder != nil {
		out.DisplayOrder = IntPtr(*b.DisplayOrder)
	}
	out.Constraints = b.Constraints.Clone()
	return out
}

// Requirement is one of CompleteAll, ChooseN, CreditThreshold, Sequence,
// OptionGroup, NoteOnly, or Malformed for input that could not be decoded.
type Requirement interface {
	Type() RequirementType
	Meta() *Base
	Clone() Requirement
	isRequirement()
}

// CourseGroup is the payload shared by the course-bearing variants
type CourseGroup struct {
	Courses         []Course        `json:"courses"`
	SubRequirements RequirementList `json:"subRequirements,omitempty"`
}

// Group returns the course payload
func (g *CourseGroup) Group() *CourseGroup { return g }

func (g CourseGroup) clone() CourseGroup {
	return CourseGroup{
		Courses:         cloneCourses(g.Courses),
		SubRequirements: g.SubRequirements.Clone(),
	}
}

func (g CourseGroup) forWire() CourseGroup {
	if g.Courses == nil {
		g.Courses = []Course{}
	}
	return g
}

// CourseBearing is implemented by CompleteAll, ChooseN and CreditThreshold
type CourseBearing interface {
	Requirement
	Group() *CourseGroup
}

// CompleteAll requires every listed course
type CompleteAll struct {
	Base
	CourseGroup
}

// ChooseN requires at least constraints.n of the listed courses
type ChooseN struct {
	Base
	CourseGroup
}

// CreditThreshold requires constraints.minTotalCredits earned from the listed courses
type CreditThreshold struct {
	Base
	CourseGroup
}

// SequenceBlock is one ordered block of courses in a cohort sequence
type SequenceBlock struct {
	SequenceID int      `json:"sequenceId"`
	Term       string   `json:"term,omitempty"`
	Cohort     string   `json:"cohort,omitempty"`
	Courses    []Course `json:"courses"`
}

// Sequence holds ordered blocks; reserved for evaluation
type Sequence struct {
	Base
	Blocks []SequenceBlock `json:"sequence"`
}

// OptionTrack is one alternative branch of an OptionGroup
type OptionTrack struct {
	TrackID      string          `json:"trackId"`
	TrackName    string          `json:"trackName"`
	Requirements RequirementList `json:"requirements"`
}

// OptionGroup holds alternative tracks; reserved for evaluation
type OptionGroup struct {
	Base
	Options []OptionTrack `json:"options"`
}

// NoteOnly is informational and always counts as complete
type NoteOnly struct {
	Base
	Steps []string `json:"steps,omitempty"`
}

// Malformed holds a requirement whose type is unknown; it re-encodes verbatim
type Malformed struct {
	Base
	Kind   string
	Reason string
	Raw    json.RawMessage
}

func (r *CompleteAll) Type() RequirementType     { return TypeCompleteAll }
func (r *ChooseN) Type() RequirementType         { return TypeChooseN }
func (r *CreditThreshold) Type() RequirementType { return TypeCreditThreshold }
func (r *Sequence) Type() RequirementType        { return TypeSequence }
func (r *OptionGroup) Type() RequirementType     { return TypeOptionGroup }
func (r *NoteOnly) Type() RequirementType        { return TypeNoteOnly }
func (r *Malformed) Type() RequirementType       { return RequirementType(r.Kind) }

func (r *CompleteAll) Clone() Requirement {
	return &CompleteAll{Base: r.Base.clone(), CourseGroup: r.CourseGroup.clone()}
}

func (r *ChooseN) Clone() Requirement {
	return &ChooseN{Base: r.Base.clone(), CourseGroup: r.CourseGroup.clone()}
}

func (r *CreditThreshold) Clone() Requirement {
	return &CreditThreshold{Base: r.Base.clone(), CourseGroup: r.CourseGroup.clone()}
}

func (r *Sequence) Clone() Requirement {
	out := &Sequence{Base: r.Base.clone()}
	if r.Blocks != nil {
		out.Blocks = make([]SequenceBlock, len(r.Blocks))
		for i, b := range r.Blocks {
			b.Courses = cloneCourses(b.Courses)
			out.Blocks[i] = b
		}
	}
	return out
}

func (r *OptionGroup) Clone() Requirement {
	out := &OptionGroup{Base: r.Base.clone()}
	if r.Options != nil {
		out.Options = make([]OptionTrack, len(r.Options))
		for i, o := range r.Options {
			o.Requirements = o.Requirements.Clone()
			out.Options[i] = o
		}
	}
	return out
}

func (r *NoteOnly) Clone() Requirement {
	out := &NoteOnly{Base: r.Base.clone()}
	if r.Steps != nil {
		out.Steps = append([]string(nil), r.Steps...)
	}
	return out
}

func (r *Malformed) Clone() Requirement {
	return &Malformed{
		Base:   r.Base.clone(),
		Kind:   r.Kind,
		Reason: r.Reason,
		Raw:    append(json.RawMessage(nil), r.Raw...),
	}
}

func (r *CompleteAll) MarshalJSON() ([]byte, error) {
	type alias CompleteAll
	a := alias{Base: r.Base, CourseGroup: r.CourseGroup.forWire()}
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{TypeCompleteAll, a})
}

func (r *ChooseN) MarshalJSON() ([]byte, error) {
	type alias ChooseN
	a := alias{Base: r.Base, CourseGroup: r.CourseGroup.forWire()}
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{TypeChooseN, a})
}

func (r *CreditThreshold) MarshalJSON() ([]byte, error) {
	type alias CreditThreshold
	a := alias{Base: r.Base, CourseGroup: r.CourseGroup.forWire()}
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{TypeCreditThreshold, a})
}

func (r *Sequence) MarshalJSON() ([]byte, error) {
	type alias Sequence
	a := alias(*r)
	if a.Blocks == nil {
		a.Blocks = []SequenceBlock{}
	}
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{TypeSequence, a})
}

func (r *OptionGroup) MarshalJSON() ([]byte, error) {
	type alias OptionGroup
	a := alias(*r)
	if a.Options == nil {
		a.Options = []OptionTrack{}
	}
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{TypeOptionGroup, a})
}

func (r *NoteOnly) MarshalJSON() ([]byte, error) {
	type alias NoteOnly
	return json.Marshal(struct {
		Type RequirementType `json:"type"`
		alias
	}{TypeNoteOnly, alias(*r)})
}

func (r *Malformed) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// RequirementList is an ordered list of requirements with polymorphic JSON
type RequirementList []Requirement

// Clone deep-copies every requirement
func (l RequirementList) Clone() RequirementList {
	if l == nil {
		return nil
	}
	out := make(RequirementList, len(l))
	for i, r := range l {
		out[i] = r.Clone()
	}
	return out
}

func (l RequirementList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Requirement(l))
}

func (l *RequirementList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var raws []json.RawMessage
	if data[0] == '{' {
		// numeric-key object form: {"0": {...}, "1": {...}}
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(data, &keyed); err != nil {
			return err
		}
		raws = orderedValues(keyed)
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(RequirementList, 0, len(raws))
	for _, raw := range raws {
		out = append(out, DecodeRequirement(raw))
	}
	*l = out
	return nil
}

func orderedValues(keyed map[string]json.RawMessage) []json.RawMessage {
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case (aErr == nil) != (bErr == nil):
			return aErr == nil
		default:
			return keys[i] < keys[j]
		}
	})
	out := make([]json.RawMessage, len(keys))
	for i, k := range keys {
		out[i] = keyed[k]
	}
	return out
}
