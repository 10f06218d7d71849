package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("fake", "POST", "/api", 200, 12*time.Millisecond)
	RecordRPCRequest("addcolonymsg", OutcomeOK, 4*time.Millisecond)
	RecordPubSubSession("subscribeprocessesmsg", "closed")
	RecordPubSubBatch("subscribeprocessesmsg")
	RecordExecutorProcess("echo", true)
}

func TestRecordRPCRequestCounts(t *testing.T) {
	before := testutil.ToFloat64(rpcRequests.WithLabelValues("getcolonymsg", OutcomeApplication))
	RecordRPCRequest("getcolonymsg", OutcomeApplication, time.Millisecond)
	RecordRPCRequest("getcolonymsg", OutcomeApplication, time.Millisecond)
	after := testutil.ToFloat64(rpcRequests.WithLabelValues("getcolonymsg", OutcomeApplication))
	if after-before != 2 {
		t.Fatalf("counter delta=%v want 2", after-before)
	}
}

func TestRecordExecutorProcessLabels(t *testing.T) {
	before := testutil.ToFloat64(executorProcesses.WithLabelValues("add", "failed"))
	RecordExecutorProcess("add", false)
	after := testutil.ToFloat64(executorProcesses.WithLabelValues("add", "failed"))
	if after-before != 1 {
		t.Fatalf("counter delta=%v want 1", after-before)
	}
}
