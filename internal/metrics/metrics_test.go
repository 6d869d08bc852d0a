package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PreinitializesSeries(t *testing.T) {
	t.Parallel()

	m := New([]string{"NumericValue", "Identity"}, []string{"timeout"})
	assert.Equal(t, 4, testutil.CollectAndCount(m.solves))
	assert.Equal(t, 2, testutil.CollectAndCount(m.solveErrors))
	assert.Zero(t, testutil.ToFloat64(m.solves.WithLabelValues("solve", "Identity")))
}

func TestRecord(t *testing.T) {
	t.Parallel()

	m := New(nil, nil)
	m.RecordSolve("solve", "NumericValue", time.Millisecond)
	m.RecordSolve("solve", "NumericValue", time.Millisecond)
	m.RecordSolveError("solve_system", "input", time.Millisecond)
	m.RecordHTTPRequest("POST", "/solve", "200", time.Millisecond)
	m.IncrementInFlight()
	m.IncrementInFlight()
	m.DecrementInFlight()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.solves.WithLabelValues("solve", "NumericValue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.solveErrors.WithLabelValues("solve_system", "input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/solve", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New([]string{"NumericValue"}, nil)
	m.RecordSolve("solve", "NumericValue", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gosolve_solver_results_total{path="solve",shape="NumericValue"} 1`)
}
