package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditsShapes(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		nominal  float64
		variable bool
		out      string
	}{
		{"number", `3`, 3, false, `3`},
		{"range", `{"min":1,"max":4}`, 1, true, `{"min":1,"max":4}`},
		{"gen-ed fixed", `{"fixed":3}`, 3, false, `3`},
		{"gen-ed variable", `{"variable":true,"min":2,"max":6}`, 2, true, `{"min":2,"max":6}`},
		{"null", `null`, 0, false, `0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Credits
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.nominal, c.Nominal())
			assert.Equal(t, tt.variable, c.IsVariable())

			data, err := json.Marshal(c)
			require.NoError(t, err)
			assert.JSONEq(t, tt.out, string(data))
		})
	}
}

func TestCourseLegacyFields(t *testing.T) {
	var c Course
	require.NoError(t, json.Unmarshal([]byte(`{"code":"MUS 160","title":"Ensemble","credits":1,"minCredits":0.5,"maxCredits":2,"termsOffered":["Fall"]}`), &c))

	assert.Equal(t, []string{"Fall"}, c.Terms)
	assert.False(t, c.Credits.IsVariable())
	assert.Equal(t, 1.0, c.EarnedCredits())
	assert.Equal(t, 0.5, c.MinimumCredits())
}

func TestCourseCreditBoundsRoundTrip(t *testing.T) {
	in := `{"code":"A","title":"","credits":3,"minCredits":1,"maxCredits":4}`
	var c Course
	require.NoError(t, json.Unmarshal([]byte(in), &c))

	assert.Equal(t, 3.0, c.Credits.Value)
	require.NotNil(t, c.MinCredits)
	assert.Equal(t, 1.0, *c.MinCredits)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(data))

	clone := c.Clone()
	*clone.MinCredits = 2
	assert.Equal(t, 1.0, *c.MinCredits)
}

func TestMinimumCreditsFallsBackToCredits(t *testing.T) {
	assert.Equal(t, 3.0, Course{Credits: FixedCredits(3)}.MinimumCredits())
	assert.Equal(t, 2.0, Course{Credits: RangeCredits(2, 4)}.MinimumCredits())
	assert.Equal(t, 1.0, Course{Credits: FixedCredits(3), MinCredits: FloatPtr(1)}.MinimumCredits())
}

func TestCourseClamped(t *testing.T) {
	c := Course{Code: "X", Credits: RangeCredits(-2, -1)}.Clamped()
	assert.Equal(t, 0.0, *c.Credits.Min)
	assert.Equal(t, 0.0, *c.Credits.Max)

	c = Course{Code: "X", Credits: FixedCredits(-3)}.Clamped()
	assert.Equal(t, 0.0, c.Credits.Value)

	c = Course{Code: "X", Credits: FixedCredits(3), MinCredits: FloatPtr(-1), MaxCredits: FloatPtr(-2)}.Clamped()
	assert.Equal(t, 0.0, *c.MinCredits)
	assert.Equal(t, 0.0, *c.MaxCredits)

	c = Course{Code: "X", Credits: FixedCredits(3), MinCredits: FloatPtr(2), MaxCredits: FloatPtr(1)}.Clamped()
	assert.Equal(t, 2.0, *c.MaxCredits)
}

func TestRequirementIDJSON(t *testing.T) {
	tests := []struct {
		in      string
		text    string
		numeric bool
	}{
		{`7`, "7", true},
		{`"3.1"`, "3.1", false},
		{`"core"`, "core", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id RequirementID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.text, id.String())
			_, numeric := id.Numeric()
			assert.Equal(t, tt.numeric, numeric)

			data, err := json.Marshal(id)
			require.NoError(t, err)
			assert.Equal(t, tt.in, string(data))
		})
	}

	assert.True(t, NumericID(3).Equal(StringID("3")))
	assert.True(t, ParseRequirementID("12").Equal(NumericID(12)))
}

func TestDecodeRequirementVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RequirementType
	}{
		{"allOf", `{"requirementId":1,"description":"Core","type":"allOf","courses":[]}`, TypeCompleteAll},
		{"chooseNOf", `{"requirementId":2,"description":"Pick","type":"chooseNOf","courses":[],"constraints":{"n":2}}`, TypeChooseN},
		{"creditBucket", `{"requirementId":3,"description":"Electives","type":"creditBucket","courses":[],"constraints":{"minTotalCredits":9}}`, TypeCreditThreshold},
		{"sequence", `{"requirementId":4,"description":"Cohort","type":"sequence","sequence":[{"sequenceId":1,"courses":[]}]}`, TypeSequence},
		{"optionGroup", `{"requirementId":5,"description":"Tracks","type":"optionGroup","options":[{"trackId":"a","trackName":"A","requirements":[]}]}`, TypeOptionGroup},
		{"noteOnly", `{"requirementId":6,"description":"Apply","type":"noteOnly","steps":["Submit form"]}`, TypeNoteOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DecodeRequirement(json.RawMessage(tt.in))
			assert.Equal(t, tt.want, r.Type())
			_, malformed := r.(*Malformed)
			assert.False(t, malformed)
		})
	}
}

func TestDecodeUnknownTypeKeepsRawJSON(t *testing.T) {
	in := `{"requirementId":9,"description":"Future","type":"labRotation","weeks":4}`
	r := DecodeRequirement(json.RawMessage(in))

	m, ok := r.(*Malformed)
	require.True(t, ok)
	assert.Equal(t, "labRotation", m.Kind)
	assert.Equal(t, "Future", m.Description)
	assert.True(t, m.ID.Equal(NumericID(9)))

	data, err := json.Marshal(RequirementList{r})
	require.NoError(t, err)
	assert.JSONEq(t, "["+in+"]", string(data))
}

func TestDecodeSubrequirementsAlias(t *testing.T) {
	r := DecodeRequirement(json.RawMessage(`{
		"requirementId": 3,
		"description": "Emphasis",
		"type": "allOf",
		"courses": [],
		"subrequirements": [{"requirementId": "3.1", "description": "Area A", "type": "allOf", "courses": [{"code": "ART 101", "title": "Drawing", "credits": 3}]}]
	}`))

	all, ok := r.(*CompleteAll)
	require.True(t, ok)
	require.Len(t, all.SubRequirements, 1)
	assert.Equal(t, "3.1", all.SubRequirements[0].Meta().ID.String())

	data, err := json.Marshal(all)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subRequirements"`)
}

func TestDecodeInfersMissingType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RequirementType
	}{
		{"steps only", `{"requirementId":1,"description":"Apply","steps":["Meet advisor"]}`, TypeNoteOnly},
		{"credit hours in description", `{"requirementId":2,"description":"Complete 12 hours of electives","courses":[{"code":"A 1","title":"A","credits":3}]}`, TypeCreditThreshold},
		{"min credits constraint", `{"requirementId":3,"description":"Electives","constraints":{"minTotalCredits":6}}`, TypeCreditThreshold},
		{"n of m", `{"requirementId":4,"description":"Complete 2 of 3 courses","courses":[{"code":"A 1","title":"A","credits":3}]}`, TypeChooseN},
		{"courses", `{"requirementId":5,"description":"Core","courses":[{"code":"A 1","title":"A","credits":3}]}`, TypeCompleteAll},
		{"nothing", `{"requirementId":6,"description":"Misc"}`, TypeNoteOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeRequirement(json.RawMessage(tt.in)).Type())
		})
	}

	r := DecodeRequirement(json.RawMessage(`{"requirementId":4,"description":"Complete 2 of 3 courses","courses":[{"code":"A 1","title":"A","credits":3}]}`))
	require.NotNil(t, r.Meta().Constraints)
	assert.Equal(t, 2, *r.Meta().Constraints.N)

	r = DecodeRequirement(json.RawMessage(`{"requirementId":2,"description":"Complete 12 hours of electives","courses":[]}`))
	require.NotNil(t, r.Meta().Constraints)
	assert.Equal(t, 12.0, *r.Meta().Constraints.MinTotalCredits)
}

func TestDecodeGenEdBlocks(t *testing.T) {
	r := DecodeRequirement(json.RawMessage(`{
		"requirementId": 1,
		"description": "Arts",
		"type": "allOf",
		"blocks": [
			{"type": "course", "code": "ART 101", "title": "Drawing", "credits": {"fixed": 3}},
			{"type": "option", "label": "Choose one", "blocks": [
				{"type": "course", "code": "MUS 101", "title": "Theory", "credits": {"variable": true, "min": 1, "max": 3}}
			]}
		]
	}`))

	all, ok := r.(*CompleteAll)
	require.True(t, ok)
	require.Len(t, all.Courses, 2)
	assert.Equal(t, "ART 101", all.Courses[0].Code)
	assert.Equal(t, 3.0, all.Courses[0].Credits.Nominal())
	assert.Equal(t, 1.0, all.Courses[1].Credits.Nominal())
}

func TestRequirementListNumericKeys(t *testing.T) {
	var list RequirementList
	require.NoError(t, json.Unmarshal([]byte(`{
		"10": {"requirementId": 11, "description": "Last", "type": "noteOnly"},
		"2": {"requirementId": 3, "description": "Second", "type": "noteOnly"},
		"0": {"requirementId": 1, "description": "First", "type": "noteOnly"}
	}`), &list))

	require.Len(t, list, 3)
	assert.Equal(t, "First", list[0].Meta().Description)
	assert.Equal(t, "Second", list[1].Meta().Description)
	assert.Equal(t, "Last", list[2].Meta().Description)
}

func TestCloneIsDeep(t *testing.T) {
	orig := &ChooseN{
		Base:        Base{ID: NumericID(1), Description: "Pick", Constraints: &Constraints{N: IntPtr(2)}},
		CourseGroup: CourseGroup{Courses: []Course{{Code: "A 1", Credits: FixedCredits(3)}}},
	}
	c := orig.Clone().(*ChooseN)
	*c.Constraints.N = 5
	c.Courses[0].Code = "B 2"

	assert.Equal(t, 2, *orig.Constraints.N)
	assert.Equal(t, "A 1", orig.Courses[0].Code)
}

func TestStructureRoundTrip(t *testing.T) {
	in := `{
		"programRequirements": [
			{"type":"allOf","requirementId":1,"description":"Core","displayOrder":0,"courses":[{"code":"CS 142","title":"Intro","credits":3}]},
			{"type":"chooseNOf","requirementId":"2","description":"Pick","constraints":{"n":1,"noDoubleCount":true},"courses":[]},
			{"type":"noteOnly","requirementId":3,"description":"Apply","steps":["Submit"]}
		],
		"metadata": {"version":"1.0","lastModified":"2026-01-02T03:04:05Z","totalMinCredits":3}
	}`
	var s ProgramRequirementsStructure
	require.NoError(t, json.Unmarshal([]byte(in), &s))
	data, err := json.Marshal(&s)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(data))
}
