package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunTickCallsAllAgentsInOrder(t *testing.T) {
	var order []string
	var floodCalled, scoutCalled, hazardCalled int32

	s := New(Config{TickInterval: time.Hour, TickDeadline: time.Second},
		func(ctx context.Context) error { atomic.AddInt32(&floodCalled, 1); order = append(order, "flood"); return nil },
		func(ctx context.Context) error { atomic.AddInt32(&scoutCalled, 1); order = append(order, "scout"); return nil },
		func(ctx context.Context) error { atomic.AddInt32(&hazardCalled, 1); order = append(order, "hazard"); return nil },
		func() int { return 0 },
		nil,
	)

	s.runTick()

	if floodCalled != 1 || scoutCalled != 1 || hazardCalled != 1 {
		t.Fatalf("expected each agent ticked once, got flood=%d scout=%d hazard=%d", floodCalled, scoutCalled, hazardCalled)
	}
	if len(order) != 3 || order[0] != "flood" || order[1] != "scout" || order[2] != "hazard" {
		t.Fatalf("expected collection-before-fusion ordering, got %v", order)
	}
}

func TestBackpressurePausesAndResumes(t *testing.T) {
	pending := int32(600)
	s := New(Config{TickInterval: time.Hour, TickDeadline: time.Second, HighWaterMark: 500, LowWaterMark: 100},
		nil, nil, nil,
		func() int { return int(atomic.LoadInt32(&pending)) },
		nil,
	)

	s.runTick()
	if !s.IsPaused() {
		t.Fatal("expected scheduler to pause above high-water mark")
	}

	atomic.StoreInt32(&pending, 50)
	s.runTick()
	if s.IsPaused() {
		t.Fatal("expected scheduler to resume below low-water mark")
	}
}

func TestStopEndsRunLoop(t *testing.T) {
	s := New(Config{TickInterval: 5 * time.Millisecond, TickDeadline: time.Second},
		nil, nil, nil, nil, nil,
	)

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after Stop")
	}
	if s.TickCount() == 0 {
		t.Fatal("expected at least one tick to have run")
	}
}
