package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSignup(t *testing.T) {
	before := testutil.ToFloat64(Signups.WithLabelValues("guest"))
	ObserveSignup(true)
	assert.Equal(t, before+1, testutil.ToFloat64(Signups.WithLabelValues("guest")))

	before = testutil.ToFloat64(Signups.WithLabelValues("pending"))
	ObserveSignup(false)
	assert.Equal(t, before+1, testutil.ToFloat64(Signups.WithLabelValues("pending")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/hint", "402"))
	ObserveRequest("/api/hint", 402, 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues("/api/hint", "402")))
}
