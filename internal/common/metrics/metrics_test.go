package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveJob(t *testing.T) {
	completedBefore := testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test"))
	failedBefore := testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "TICKET_NOT_FOUND"))

	ObserveJob("metrics-test", "", 0.2)
	ObserveJob("metrics-test", "TICKET_NOT_FOUND", 0.1)

	assert.Equal(t, completedBefore+1, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues("metrics-test")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues("metrics-test", "TICKET_NOT_FOUND")))
}
