package requirements

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

const standardDoc = `{
	"programRequirements": [
		{"type": "allOf", "requirementId": 1, "description": "Core", "courses": [{"code": "CS 142", "title": "Intro", "credits": 3}]},
		{"type": "chooseNOf", "requirementId": 2, "description": "Pick one", "constraints": {"n": 1}, "courses": [{"code": "CS 312", "title": "Algorithms", "credits": 3}]}
	],
	"metadata": {"version": "1.0", "lastModified": "2026-01-01T00:00:00Z", "totalMinCredits": 6}
}`

func TestParseInputs(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(standardDoc), &decoded))

	tests := []struct {
		name  string
		input any
	}{
		{"string", standardDoc},
		{"bytes", []byte(standardDoc)},
		{"raw message", json.RawMessage(standardDoc)},
		{"decoded map", decoded},
		{"json string in a string", mustQuote(t, standardDoc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, s.Requirements, 2)
			assert.Equal(t, model.TypeCompleteAll, s.Requirements[0].Type())
			assert.Equal(t, model.TypeChooseN, s.Requirements[1].Type())
			require.NotNil(t, s.Metadata)
			assert.Equal(t, 6.0, s.Metadata.TotalMinCredits)
		})
	}
}

func mustQuote(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []any{nil, "", "   ", "null", []byte{}, `{}`} {
		s, err := Parse(in)
		require.NoError(t, err)
		assert.NotNil(t, s.Requirements)
		assert.Empty(t, s.Requirements)
	}
}

func TestParseStructureIsCopied(t *testing.T) {
	orig := &model.ProgramRequirementsStructure{Requirements: model.RequirementList{completeAll(1, "A")}}
	s, err := Parse(orig)
	require.NoError(t, err)

	s.Requirements[0].Meta().Description = "changed"
	assert.Equal(t, "All", orig.Requirements[0].Meta().Description)
}

func TestParseBareList(t *testing.T) {
	s, err := Parse(`[{"type": "noteOnly", "requirementId": 1, "description": "Apply", "steps": ["Submit"]}]`)
	require.NoError(t, err)
	require.Len(t, s.Requirements, 1)
	assert.Equal(t, model.TypeNoteOnly, s.Requirements[0].Type())
	assert.Nil(t, s.Metadata)
}

func TestParseNumericKeys(t *testing.T) {
	s, err := Parse(`{
		"1": {"type": "allOf", "requirementId": 2, "description": "Second", "courses": []},
		"0": {"type": "allOf", "requirementId": 1, "description": "First", "courses": []}
	}`)
	require.NoError(t, err)
	require.Len(t, s.Requirements, 2)
	assert.Equal(t, "First", s.Requirements[0].Meta().Description)
	assert.Equal(t, "Second", s.Requirements[1].Meta().Description)
}

func TestParseGenEd(t *testing.T) {
	s, err := Parse(`[
		{
			"subtitle": "American Heritage",
			"requirement": {"index": 4},
			"blocks": [
				{"type": "course", "code": "A HTG 100", "title": "American Heritage", "credits": {"fixed": 3}},
				{"type": "option", "blocks": [{"type": "course", "code": "HIST 220", "title": "US History", "credits": {"fixed": 3}}]}
			]
		},
		{
			"subtitle": "",
			"requirement": {},
			"blocks": [{"type": "course", "code": "WRTG 150", "title": "Writing", "credits": {"variable": true, "min": 3, "max": 4}}]
		}
	]`)
	require.NoError(t, err)
	require.Len(t, s.Requirements, 2)

	first, ok := s.Requirements[0].(*model.CompleteAll)
	require.True(t, ok)
	assert.Equal(t, "4", first.ID.String())
	assert.Equal(t, "American Heritage", first.Description)
	assert.Equal(t, []string{"A HTG 100", "HIST 220"}, codes(first.Courses))

	second := s.Requirements[1]
	assert.Equal(t, "2", second.Meta().ID.String())
	assert.Equal(t, "Requirement 2", second.Meta().Description)
	assert.Equal(t, 3.0, TotalMinCredits(model.RequirementList{second}))
}

func TestParseInfersLegacyRecords(t *testing.T) {
	s, err := Parse(`{"programRequirements": [
		{"requirementId": 1, "description": "Complete 2 of 4 courses", "courses": [{"code": "A", "title": "A", "credits": 3}]},
		{"requirementId": 2, "description": "Complete 9 credit hours", "courses": [{"code": "B", "title": "B", "credits": 3}]},
		{"requirementId": 3, "description": "Orientation", "steps": ["Attend"]}
	]}`)
	require.NoError(t, err)
	require.Len(t, s.Requirements, 3)

	assert.Equal(t, model.TypeChooseN, s.Requirements[0].Type())
	assert.Equal(t, 2, RequiredCount(s.Requirements[0].(*model.ChooseN)))
	assert.Equal(t, model.TypeCreditThreshold, s.Requirements[1].Type())
	assert.Equal(t, 9.0, RequiredCredits(s.Requirements[1].(*model.CreditThreshold)))
	assert.Equal(t, model.TypeNoteOnly, s.Requirements[2].Type())
}

func TestParseKeepsUnknownTypes(t *testing.T) {
	in := `{"programRequirements": [{"type": "portfolio", "requirementId": 1, "description": "Portfolio", "pieces": 5}]}`
	s, err := Parse(in)
	require.NoError(t, err)
	require.Len(t, s.Requirements, 1)
	assert.IsType(t, &model.Malformed{}, s.Requirements[0])

	p := Evaluate(s.Requirements[0], NewCompletedSet())
	assert.False(t, p.IsComplete)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(data))
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{`42`, `{"programRequirements": 5}`, `[1,`} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}
