//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/veriface/veriface/internal/audit"
	"github.com/veriface/veriface/internal/config"
	"github.com/veriface/veriface/internal/encoding"
	"github.com/veriface/veriface/internal/store"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return pool, func() {
		pool.Close()
		container.Terminate(ctx)
	}
}

func TestIdentitySnapshotterRoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	snap := NewIdentitySnapshotter(pool)

	identities := []store.Identity{
		{
			Name:        "Alice",
			Encoding:    encoding.Encoding{Vector: []float32{0.1, 0.2, 0.3}, Method: encoding.MethodEmbedding},
			SampleCount: 3,
			EnrolledAt:  time.Now().UTC().Truncate(time.Microsecond),
		},
		{
			Name:        "Bob",
			Encoding:    encoding.Encoding{Vector: []float32{0.4, 0.5, 0.6}, Method: encoding.MethodFeature},
			SampleCount: 3,
			EnrolledAt:  time.Now().UTC().Truncate(time.Microsecond),
		},
	}

	if err := snap.Save(identities); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := snap.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(loaded))
	}
	if loaded[0].Name != "Alice" || loaded[0].Encoding.Method != encoding.MethodEmbedding {
		t.Errorf("unexpected first identity: %+v", loaded[0])
	}
	if len(loaded[0].Encoding.Vector) != 3 {
		t.Errorf("expected 3-dim vector, got %d", len(loaded[0].Encoding.Vector))
	}

	// Save replaces the previous set.
	if err := snap.Save(identities[:1]); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	loaded, err = snap.Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "Alice" {
		t.Errorf("expected only Alice after replace, got %+v", loaded)
	}
}

func TestAuditPersisterRoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	defer cleanup()

	persister := NewAuditPersister(pool)

	events := []audit.Event{
		{
			ID:        "11111111-1111-1111-1111-111111111111",
			Timestamp: time.Now().UTC().Truncate(time.Microsecond),
			Kind:      audit.KindVerification,
			Name:      "alice",
			Success:   true,
			Distance:  0.42,
			Method:    "embedding",
		},
		{
			ID:        "22222222-2222-2222-2222-222222222222",
			Timestamp: time.Now().UTC().Truncate(time.Microsecond).Add(time.Second),
			Kind:      audit.KindEnrollment,
			Name:      "bob",
			Success:   false,
			Detail:    "timed out",
		},
	}

	if err := persister.Save(events); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := persister.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loaded))
	}
	if loaded[0].Name != "alice" || !loaded[0].Success {
		t.Errorf("unexpected first event: %+v", loaded[0])
	}
	if loaded[1].Kind != audit.KindEnrollment || loaded[1].Detail != "timed out" {
		t.Errorf("unexpected second event: %+v", loaded[1])
	}
}
