package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDecision_Increments(t *testing.T) {
	before := testutil.ToFloat64(decisionsTotal.WithLabelValues("sighting", "ignore"))
	RecordDecision("sighting", "ignore")
	RecordDecision("sighting", "ignore")
	after := testutil.ToFloat64(decisionsTotal.WithLabelValues("sighting", "ignore"))
	assert.Equal(t, before+2, after)
}

func TestObserveStore_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(storeErrorsTotal.WithLabelValues("insert"))
	ObserveStore("insert", time.Now(), nil)
	ObserveStore("insert", time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(storeErrorsTotal.WithLabelValues("insert")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	RecordPublishFailure()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "attendance_event_publish_failures_total"))
}
