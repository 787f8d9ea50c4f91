package statuspub

import "testing"

func TestRecorderLatestBeforeAnyRecordIsEmpty(t *testing.T) {
	r := NewRecorder()
	if _, ok := r.Latest(); ok {
		t.Fatal("expected no status before any Record call")
	}
}

func TestRecorderLatestReturnsMostRecent(t *testing.T) {
	r := NewRecorder()
	r.Record(Status{Tick: 1, EdgesUpdated: 10})
	r.Record(Status{Tick: 2, EdgesUpdated: 20})

	got, ok := r.Latest()
	if !ok {
		t.Fatal("expected a recorded status")
	}
	if got.Tick != 2 || got.EdgesUpdated != 20 {
		t.Fatalf("expected the second recorded status, got %+v", got)
	}
}
