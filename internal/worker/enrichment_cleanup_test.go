package worker

import (
	"testing"
	"time"
)

func TestNewEnrichmentCleanupWorkerClampsDurations(t *testing.T) {
	w := NewEnrichmentCleanupWorker(nil, 5*time.Second, 10*time.Second)
	if w.interval != 1*time.Minute {
		t.Errorf("Interval quá ngắn phải được nâng về 1 phút, nhận được %s", w.interval)
	}
	if w.staleTimeout != 15*time.Minute {
		t.Errorf("Stale timeout quá ngắn phải được nâng về 15 phút, nhận được %s", w.staleTimeout)
	}

	w = NewEnrichmentCleanupWorker(nil, 2*time.Minute, 30*time.Minute)
	if w.interval != 2*time.Minute {
		t.Errorf("Interval hợp lệ phải được giữ nguyên, nhận được %s", w.interval)
	}
	if w.staleTimeout != 30*time.Minute {
		t.Errorf("Stale timeout hợp lệ phải được giữ nguyên, nhận được %s", w.staleTimeout)
	}
}
