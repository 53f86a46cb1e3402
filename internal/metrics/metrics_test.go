package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveEvaluation("allOf", true)
	m.ObserveEvaluation("allOf", true)
	m.ObserveEvaluation("chooseNOf", false)
	m.ObserveEdit("addCourse", nil)
	m.ObserveEdit("addStep", errors.New("boom"))
	m.ObserveCache("program", false)
	m.ObservePublish(nil)

	out := scrape(t, m)
	assert.Contains(t, out, `requirements_evaluations_total{outcome="complete",type="allOf"} 2`)
	assert.Contains(t, out, `requirements_evaluations_total{outcome="incomplete",type="chooseNOf"} 1`)
	assert.Contains(t, out, `requirements_edits_total{op="addCourse",result="ok"} 1`)
	assert.Contains(t, out, `requirements_edits_total{op="addStep",result="error"} 1`)
	assert.Contains(t, out, `requirements_cache_lookups_total{cache="program",result="miss"} 1`)
	assert.Contains(t, out, `requirements_publishes_total{result="ok"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveEvaluation("allOf", true)
		m.ObserveEdit("addCourse", nil)
		m.ObserveCache("draft", true)
		m.ObservePublish(nil)
	})
}
