package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LJTian/BlogHub/internal/logging"
	"github.com/LJTian/BlogHub/internal/processor"
)

type countingSyncer struct {
	calls int32
}

func (c *countingSyncer) SyncFromFeed(ctx context.Context) []processor.Post {
	atomic.AddInt32(&c.calls, 1)
	return []processor.Post{{ID: "a"}}
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("not a cron spec", &countingSyncer{}, logging.Discard()); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestRunOnceCallsSyncer(t *testing.T) {
	syncer := &countingSyncer{}
	s, err := New("*/30 * * * *", syncer, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.RunOnce()
	if got := atomic.LoadInt32(&syncer.calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestStartupDelayTriggersFirstSync(t *testing.T) {
	syncer := &countingSyncer{}
	s, err := New("@every 1h", syncer, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.StartupDelay = 10 * time.Millisecond
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&syncer.calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first sync not triggered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStopPreventsFurtherRuns(t *testing.T) {
	syncer := &countingSyncer{}
	s, err := New("@every 1h", syncer, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	s.Stop()
	s.RunOnce()
	if got := atomic.LoadInt32(&syncer.calls); got != 0 {
		t.Fatalf("calls after stop = %d, want 0", got)
	}
}
