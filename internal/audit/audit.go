// Package audit records enrollment and verification outcomes. The
// in-memory log grows for the life of the session; retention applies
// to snapshots, which keep only the newest events and are persisted on
// a sampling interval rather than on every append.
package audit

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veriface/veriface/internal/constants"
)

// Kind classifies an audit event.
type Kind string

const (
	KindEnrollment     Kind = "enrollment"
	KindVerification   Kind = "verification"
	KindIdentification Kind = "identification"
)

// Event is one recorded outcome.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name,omitempty"`
	Success   bool      `json:"success"`
	Distance  float64   `json:"distance,omitempty"`
	Method    string    `json:"method,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Persister stores audit snapshots. Failures are logged as warnings
// and never abort the workflow that produced the event.
type Persister interface {
	Save(events []Event) error
	Load() ([]Event, error)
}

// Log is the in-memory audit trail. Events are held oldest first;
// readers get newest-first views.
type Log struct {
	mu           sync.RWMutex
	events       []Event
	persister    Persister
	retention    int
	saveInterval int
	appends      int
}

// NewLog creates a log whose snapshots keep the newest retention
// events, written every saveInterval-th append. A nil persister
// disables persistence.
func NewLog(persister Persister, retention, saveInterval int) *Log {
	if retention <= 0 {
		retention = constants.AuditRetention
	}
	if saveInterval <= 0 {
		saveInterval = constants.AuditSaveInterval
	}
	return &Log{
		persister:    persister,
		retention:    retention,
		saveInterval: saveInterval,
	}
}

// Restore loads the last snapshot. A missing snapshot is not an error.
func (l *Log) Restore() error {
	if l.persister == nil {
		return nil
	}
	events, err := l.persister.Load()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(events) > l.retention {
		events = events[len(events)-l.retention:]
	}
	l.events = events
	return nil
}

// Record appends an event, filling in ID and timestamp when unset.
// The in-memory log is not truncated; every saveInterval-th append the
// newest retention events are persisted, so a crash loses at most
// saveInterval-1 events.
func (l *Log) Record(event Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)

	l.appends++
	if l.persister != nil && l.appends%l.saveInterval == 0 {
		if err := l.persister.Save(l.snapshotLocked()); err != nil {
			log.Printf("Warning: failed to save audit snapshot: %v", err)
		}
	}
}

// snapshotLocked copies the newest retention events. Caller holds the
// lock.
func (l *Log) snapshotLocked() []Event {
	events := l.events
	if len(events) > l.retention {
		events = events[len(events)-l.retention:]
	}
	snapshot := make([]Event, len(events))
	copy(snapshot, events)
	return snapshot
}

// Flush persists the newest retention events regardless of the
// interval. Used on shutdown.
func (l *Log) Flush() error {
	if l.persister == nil {
		return nil
	}

	l.mu.RLock()
	snapshot := l.snapshotLocked()
	l.mu.RUnlock()

	return l.persister.Save(snapshot)
}

// Recent returns up to limit events, newest first. An empty name
// matches every event; otherwise only that identity's events return.
func (l *Log) Recent(limit int, name string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 {
		limit = len(l.events)
	}

	events := make([]Event, 0, limit)
	for i := len(l.events) - 1; i >= 0 && len(events) < limit; i-- {
		if name != "" && l.events[i].Name != name {
			continue
		}
		events = append(events, l.events[i])
	}
	return events
}

// Len returns the number of events recorded this session.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// IdentityStats summarizes verification outcomes for one identity.
// SuccessRate is a percentage in [0, 100].
type IdentityStats struct {
	Total       int        `json:"total"`
	Successful  int        `json:"successful"`
	Failed      int        `json:"failed"`
	SuccessRate float64    `json:"success_rate"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
}

// Stats scans the log newest first and summarizes the verification
// events for a name.
func (l *Log) Stats(name string) IdentityStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var stats IdentityStats
	for i := len(l.events) - 1; i >= 0; i-- {
		event := l.events[i]
		if event.Kind != KindVerification || event.Name != name {
			continue
		}

		stats.Total++
		if event.Success {
			stats.Successful++
			if stats.LastSuccess == nil {
				ts := event.Timestamp
				stats.LastSuccess = &ts
			}
		} else {
			stats.Failed++
			if stats.LastFailure == nil {
				ts := event.Timestamp
				stats.LastFailure = &ts
			}
		}
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.Total) * 100
	}
	return stats
}
