package audit

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// countingPersister records how many times Save ran and keeps the last
// snapshot.
type countingPersister struct {
	saves  int
	last   []Event
	loaded []Event
	err    error
}

func (p *countingPersister) Save(events []Event) error {
	p.saves++
	p.last = events
	return p.err
}

func (p *countingPersister) Load() ([]Event, error) {
	return p.loaded, p.err
}

func verification(name string, success bool) Event {
	return Event{Kind: KindVerification, Name: name, Success: success}
}

func TestRecordFillsDefaults(t *testing.T) {
	l := NewLog(nil, 10, 10)
	l.Record(verification("alice", true))

	events := l.Recent(1, "")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Error("expected generated event ID")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestRetentionAppliesToSnapshotsOnly(t *testing.T) {
	p := &countingPersister{}
	l := NewLog(p, 5, 10)
	for i := 0; i < 10; i++ {
		l.Record(Event{Kind: KindVerification, Name: fmt.Sprintf("p%d", i), Success: true})
	}

	if l.Len() != 10 {
		t.Fatalf("in-memory log must keep all 10 events, got %d", l.Len())
	}

	events := l.Recent(10, "")
	if events[0].Name != "p9" || events[9].Name != "p0" {
		t.Errorf("expected every event newest first, got %q..%q", events[0].Name, events[9].Name)
	}

	if p.saves != 1 {
		t.Fatalf("expected snapshot on 10th append, got %d", p.saves)
	}
	if len(p.last) != 5 {
		t.Fatalf("expected snapshot capped at 5 events, got %d", len(p.last))
	}
	if p.last[0].Name != "p5" || p.last[4].Name != "p9" {
		t.Errorf("expected snapshot to hold the newest 5, got %q..%q", p.last[0].Name, p.last[4].Name)
	}
}

func TestFlushCapsAtRetention(t *testing.T) {
	p := &countingPersister{}
	l := NewLog(p, 3, 100)
	for i := 0; i < 7; i++ {
		l.Record(Event{Kind: KindVerification, Name: fmt.Sprintf("p%d", i), Success: true})
	}

	if err := l.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(p.last) != 3 || p.last[2].Name != "p6" {
		t.Errorf("expected flushed snapshot of the newest 3 events, got %+v", p.last)
	}
	if l.Len() != 7 {
		t.Errorf("Flush must not truncate the in-memory log, got %d", l.Len())
	}
}

func TestPersistenceInterval(t *testing.T) {
	p := &countingPersister{}
	l := NewLog(p, 100, 10)

	for i := 0; i < 9; i++ {
		l.Record(verification("alice", true))
	}
	if p.saves != 0 {
		t.Fatalf("expected no snapshot before the interval, got %d", p.saves)
	}

	l.Record(verification("alice", true))
	if p.saves != 1 {
		t.Fatalf("expected snapshot on 10th append, got %d", p.saves)
	}
	if len(p.last) != 10 {
		t.Errorf("expected 10 events in snapshot, got %d", len(p.last))
	}

	for i := 0; i < 10; i++ {
		l.Record(verification("bob", false))
	}
	if p.saves != 2 {
		t.Errorf("expected snapshot on 20th append, got %d", p.saves)
	}
}

func TestPersistFailureDoesNotAbort(t *testing.T) {
	p := &countingPersister{err: errors.New("disk full")}
	l := NewLog(p, 100, 1)

	l.Record(verification("alice", true))
	if l.Len() != 1 {
		t.Error("event must be retained despite persistence failure")
	}
}

func TestRecentFiltersByName(t *testing.T) {
	l := NewLog(nil, 100, 100)
	l.Record(verification("alice", true))
	l.Record(verification("bob", false))
	l.Record(verification("alice", false))

	events := l.Recent(10, "alice")
	if len(events) != 2 {
		t.Fatalf("expected 2 alice events, got %d", len(events))
	}
	if events[0].Success {
		t.Error("expected newest alice event (failure) first")
	}
}

func TestStats(t *testing.T) {
	l := NewLog(nil, 100, 100)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.Record(Event{Kind: KindVerification, Name: "alice", Success: true, Timestamp: base})
	l.Record(Event{Kind: KindVerification, Name: "alice", Success: false, Timestamp: base.Add(time.Minute)})
	l.Record(Event{Kind: KindVerification, Name: "alice", Success: true, Timestamp: base.Add(2 * time.Minute)})
	l.Record(Event{Kind: KindVerification, Name: "bob", Success: false, Timestamp: base.Add(3 * time.Minute)})
	l.Record(Event{Kind: KindEnrollment, Name: "alice", Success: true, Timestamp: base.Add(4 * time.Minute)})

	stats := l.Stats("alice")
	if stats.Total != 3 || stats.Successful != 2 || stats.Failed != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.SuccessRate < 66.6 || stats.SuccessRate > 66.7 {
		t.Errorf("expected success rate near 66.7%%, got %f", stats.SuccessRate)
	}
	if stats.LastSuccess == nil || !stats.LastSuccess.Equal(base.Add(2*time.Minute)) {
		t.Errorf("unexpected last success: %v", stats.LastSuccess)
	}
	if stats.LastFailure == nil || !stats.LastFailure.Equal(base.Add(time.Minute)) {
		t.Errorf("unexpected last failure: %v", stats.LastFailure)
	}

	empty := l.Stats("carol")
	if empty.Total != 0 || empty.SuccessRate != 0 {
		t.Errorf("expected zero stats for unknown name, got %+v", empty)
	}
}

func TestRestore(t *testing.T) {
	p := &countingPersister{loaded: []Event{
		verification("alice", true),
		verification("bob", false),
	}}

	l := NewLog(p, 100, 10)
	if err := l.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 restored events, got %d", l.Len())
	}
}

func TestFilePersisterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir)

	events := []Event{
		{ID: "a", Kind: KindVerification, Name: "alice", Success: true, Timestamp: time.Now().UTC()},
		{ID: "b", Kind: KindEnrollment, Name: "bob", Success: false, Timestamp: time.Now().UTC()},
	}
	if err := p.Save(events); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "a" || loaded[1].Name != "bob" {
		t.Errorf("unexpected round trip result: %+v", loaded)
	}
}

func TestFilePersisterMissingFile(t *testing.T) {
	p := NewFilePersister(t.TempDir())
	events, err := p.Load()
	if err != nil {
		t.Fatalf("expected missing snapshot to be fine, got %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestFlush(t *testing.T) {
	p := &countingPersister{}
	l := NewLog(p, 100, 50)
	l.Record(verification("alice", true))

	if err := l.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if p.saves != 1 || len(p.last) != 1 {
		t.Errorf("expected one flushed snapshot with one event, got %d saves", p.saves)
	}
}
