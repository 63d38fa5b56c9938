package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetIndexedChunks(t *testing.T) {
	m := NewWorkerMetrics("worker")

	m.SetIndexedChunks("worker", "hr_documents", 42)

	got := testutil.ToFloat64(m.indexedChunks.WithLabelValues("worker", "hr_documents"))
	if got != 42 {
		t.Errorf("indexed_chunks = %v, want 42", got)
	}

	m.SetIndexedChunks("worker", "hr_documents", 7)
	if got := testutil.ToFloat64(m.indexedChunks.WithLabelValues("worker", "hr_documents")); got != 7 {
		t.Errorf("indexed_chunks after rebuild = %v, want 7", got)
	}
}

func TestObserveQueueLagDropsNegative(t *testing.T) {
	m := NewWorkerMetrics("worker")

	m.ObserveQueueLag("worker", -time.Second)
	if n := testutil.CollectAndCount(m.queueLag); n != 0 {
		t.Errorf("negative lag recorded, series = %d", n)
	}

	m.ObserveQueueLag("worker", 3*time.Second)
	if n := testutil.CollectAndCount(m.queueLag); n != 1 {
		t.Errorf("queue lag series = %d, want 1", n)
	}
}
