package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/veriface/veriface/internal/audit"
	"github.com/veriface/veriface/internal/config"
	"github.com/veriface/veriface/internal/encoding"
	"github.com/veriface/veriface/internal/engine"
	"github.com/veriface/veriface/internal/store"
	"github.com/veriface/veriface/internal/store/postgres"
	"github.com/veriface/veriface/internal/vision"
)

// buildEngine assembles the engine from configuration: snapshot
// backend (Postgres when DATABASE_URL is set, files otherwise),
// camera, detector chain, and optional embedding service. The returned
// cleanup function flushes the audit log and closes the pool.
func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	var snapshotter store.Snapshotter
	var persister audit.Persister
	var pool *postgres.Pool

	if cfg.Database.URL != "" {
		var err error
		pool, err = postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		snapshotter = postgres.NewIdentitySnapshotter(pool)
		persister = postgres.NewAuditPersister(pool)
		log.Println("Using PostgreSQL snapshot backend")
	} else {
		snapshotter = store.NewFileSnapshotter(cfg.Storage.DataDir)
		persister = audit.NewFilePersister(cfg.Storage.DataDir)
		log.Printf("Using file snapshot backend in %s", cfg.Storage.DataDir)
	}

	identityStore := store.New(snapshotter)
	if err := identityStore.Restore(); err != nil {
		log.Printf("Warning: failed to restore identities: %v", err)
	}

	auditLog := audit.NewLog(persister, cfg.Tuning.AuditRetention, cfg.Tuning.AuditSaveInterval)
	if err := auditLog.Restore(); err != nil {
		log.Printf("Warning: failed to restore audit log: %v", err)
	}

	var embedder encoding.Embedder
	if cfg.Embedding.URL != "" {
		embedder = encoding.NewEmbeddingClient(cfg.Embedding.URL)
	}

	var source vision.FrameSource
	if cfg.Camera.URL != "" {
		source = vision.NewHTTPCamera(cfg.Camera.URL)
	}

	var locators []vision.Locator
	if cfg.Detector.URL != "" {
		locators = append(locators, vision.NewRemoteLocator(cfg.Detector.URL))
	}
	if cfg.Detector.FallbackURL != "" {
		locators = append(locators, vision.NewRemoteLocator(cfg.Detector.FallbackURL))
	}

	eng := engine.New(engine.Options{
		Store:           identityStore,
		AuditLog:        auditLog,
		Extractor:       encoding.NewExtractor(embedder),
		Camera:          vision.NewLease(source),
		Locator:         vision.NewChainLocator(locators...),
		Threshold:       cfg.Tuning.Threshold,
		RequiredSamples: cfg.Tuning.RequiredSamples,
		VerifyAttempts:  cfg.Tuning.VerifyAttempts,
		MinFaceSize:     cfg.Tuning.MinFaceSize,
		EnrollTimeout:   time.Duration(cfg.Tuning.EnrollTimeoutSeconds) * time.Second,
	})

	cleanup := func() {
		if err := auditLog.Flush(); err != nil {
			log.Printf("Warning: failed to flush audit log: %v", err)
		}
		if pool != nil {
			if err := pool.Close(); err != nil {
				log.Printf("Warning: failed to close database pool: %v", err)
			}
		}
	}
	return eng, cleanup, nil
}
