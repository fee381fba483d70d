package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/veriface/veriface/internal/encoding"
	"github.com/veriface/veriface/internal/store"
)

const snapshotTimeout = 10 * time.Second

// IdentitySnapshotter implements store.Snapshotter on top of the
// identities table. Save replaces the full set transactionally so the
// table always mirrors the last consistent in-memory state.
type IdentitySnapshotter struct {
	pool *Pool
}

// NewIdentitySnapshotter creates a snapshotter backed by the pool.
func NewIdentitySnapshotter(pool *Pool) *IdentitySnapshotter {
	return &IdentitySnapshotter{pool: pool}
}

// Save replaces the stored identity set.
func (s *IdentitySnapshotter) Save(identities []store.Identity) error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	tx, err := s.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin identity snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM identities"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear identities: %w", err)
	}

	const insert = `
		INSERT INTO identities (name, encoding, method, sample_count, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, identity := range identities {
		_, err := tx.ExecContext(ctx, insert,
			identity.Name,
			pgvector.NewVector(identity.Encoding.Vector),
			string(identity.Encoding.Method),
			identity.SampleCount,
			identity.EnrolledAt,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert identity %q: %w", identity.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit identity snapshot: %w", err)
	}
	return nil
}

// Load reads the full identity set.
func (s *IdentitySnapshotter) Load() ([]store.Identity, error) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT name, encoding, method, sample_count, enrolled_at
		FROM identities
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []store.Identity
	for rows.Next() {
		var identity store.Identity
		var vec pgvector.Vector
		var method string

		if err := rows.Scan(&identity.Name, &vec, &method, &identity.SampleCount, &identity.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.Encoding = encoding.Encoding{
			Vector: vec.Slice(),
			Method: encoding.Method(method),
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}
