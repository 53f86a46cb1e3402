package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

const storedMajor = `{"programRequirements":[
	{"requirementId":1,"description":"Core","type":"allOf","courses":[
		{"code":"CS 142","title":"Intro","credits":3,"terms":["Fall"]}]},
	{"requirementId":"lab","description":"Lab science","type":"creditBucket","constraints":{"minTotalCredits":4.5},"courses":[
		{"code":"CHEM 105","credits":{"min":1.5,"max":4}}]},
	{"requirementId":3,"description":"Orientation","type":"noteOnly","steps":["Attend"]}
]}`

func assertSameStructure(t *testing.T, want, got *model.ProgramRequirementsStructure) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(w), string(g))
}

func TestStructureBSONRoundTrip(t *testing.T) {
	s, err := requirements.ParseJSON([]byte(storedMajor))
	require.NoError(t, err)
	s = requirements.RecomputeMetadata(s, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	raw, err := structureToBSON(s)
	require.NoError(t, err)
	back, err := structureFromBSON(raw)
	require.NoError(t, err)

	assertSameStructure(t, s, back)
}

func TestStructureFromEmptyBSON(t *testing.T) {
	s, err := structureFromBSON(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Requirements)
}

func TestDocumentRoundTrip(t *testing.T) {
	s, err := requirements.ParseJSON([]byte(storedMajor))
	require.NoError(t, err)

	published := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := &model.Program{
		ID:               primitive.NewObjectID().Hex(),
		Name:             "Chemistry",
		Kind:             model.ProgramKindMinor,
		Requirements:     s,
		PublishedVersion: 2,
		PublishedAt:      &published,
	}

	doc, err := toDocument(p)
	require.NoError(t, err)
	back, err := fromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, p.ID, back.ID)
	assert.Equal(t, p.Kind, back.Kind)
	assert.Equal(t, 2, back.PublishedVersion)
	assertSameStructure(t, s, back.Requirements)
}

func TestToDocumentRejectsBadID(t *testing.T) {
	_, err := toDocument(&model.Program{ID: "not-hex"})
	assert.Error(t, err)
}
