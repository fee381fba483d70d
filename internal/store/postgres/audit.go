package postgres

import (
	"context"
	"fmt"

	"github.com/veriface/veriface/internal/audit"
)

// AuditPersister implements audit.Persister on top of the audit_events
// table. Snapshots carry the retained window, so Save replaces the
// table content the same way the file persister replaces its file.
type AuditPersister struct {
	pool *Pool
}

// NewAuditPersister creates a persister backed by the pool.
func NewAuditPersister(pool *Pool) *AuditPersister {
	return &AuditPersister{pool: pool}
}

// Save replaces the stored audit window.
func (a *AuditPersister) Save(events []audit.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	tx, err := a.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM audit_events"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear audit events: %w", err)
	}

	const insert = `
		INSERT INTO audit_events (id, occurred, kind, name, success, distance, method, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, event := range events {
		_, err := tx.ExecContext(ctx, insert,
			event.ID,
			event.Timestamp,
			string(event.Kind),
			event.Name,
			event.Success,
			event.Distance,
			event.Method,
			event.Detail,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert audit event %s: %w", event.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit snapshot: %w", err)
	}
	return nil
}

// Load reads the stored audit window, oldest first.
func (a *AuditPersister) Load() ([]audit.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	rows, err := a.pool.Query(ctx, `
		SELECT id, occurred, kind, name, success, distance, method, detail
		FROM audit_events
		ORDER BY occurred ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var kind string

		err := rows.Scan(&event.ID, &event.Timestamp, &kind, &event.Name,
			&event.Success, &event.Distance, &event.Method, &event.Detail)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Kind = audit.Kind(kind)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
