package store

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/veriface/veriface/internal/encoding"
)

// Snapshotter persists identity snapshots. A nil Snapshotter disables
// persistence entirely; failures are logged by the store as warnings.
type Snapshotter interface {
	Save(identities []Identity) error
	Load() ([]Identity, error)
}

// Store is the in-memory identity registry. All reads and writes go
// through the mutex; the create path is check-and-insert under a single
// lock so concurrent enrollments of the same name cannot both succeed.
type Store struct {
	mu          sync.RWMutex
	identities  map[string]Identity // keyed by normalized name
	index       *Index
	snapshotter Snapshotter
}

// New creates an empty store. Pass a nil snapshotter for purely
// in-memory operation (tests, ephemeral deployments).
func New(snapshotter Snapshotter) *Store {
	return &Store{
		identities:  make(map[string]Identity),
		index:       NewIndex(),
		snapshotter: snapshotter,
	}
}

// Restore loads the last snapshot into the store and rebuilds the
// search index. A missing snapshot is not an error.
func (s *Store) Restore() error {
	if s.snapshotter == nil {
		return nil
	}

	identities, err := s.snapshotter.Load()
	if err != nil {
		return fmt.Errorf("failed to load identity snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities = make(map[string]Identity, len(identities))
	s.index = NewIndex()
	for _, identity := range identities {
		key := NormalizeName(identity.Name)
		if key == "" || identity.Encoding.IsZero() {
			log.Printf("Warning: skipping invalid identity %q in snapshot", identity.Name)
			continue
		}
		s.identities[key] = identity
		s.index.Add(key, identity.Encoding)
	}
	return nil
}

// Create inserts a new identity. Returns ErrDuplicateIdentity when the
// normalized name is already enrolled.
func (s *Store) Create(identity Identity) error {
	key := NormalizeName(identity.Name)
	if key == "" {
		return fmt.Errorf("identity name must not be empty")
	}
	if identity.Encoding.IsZero() {
		return fmt.Errorf("identity %q has no encoding", identity.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.identities[key]; exists {
		return ErrDuplicateIdentity
	}
	s.identities[key] = identity
	s.index.Add(key, identity.Encoding)
	s.persistLocked()
	return nil
}

// Get returns the identity for a name, or ErrUnknownIdentity.
func (s *Store) Get(name string) (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[NormalizeName(name)]
	if !ok {
		return Identity{}, ErrUnknownIdentity
	}
	return identity, nil
}

// Has reports whether a name is enrolled.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.identities[NormalizeName(name)]
	return ok
}

// Delete removes an identity. A deleted name can be enrolled again.
func (s *Store) Delete(name string) error {
	key := NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[key]; !ok {
		return ErrUnknownIdentity
	}
	delete(s.identities, key)
	s.index.Remove(key)
	s.persistLocked()
	return nil
}

// List returns all identities sorted by name.
func (s *Store) List() []Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identities := make([]Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		identities = append(identities, identity)
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].Name < identities[j].Name
	})
	return identities
}

// Count returns the number of enrolled identities.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities)
}

// Nearest returns up to k enrolled identities closest to the probe
// encoding, best first. Only identities stored with the same encoding
// method are comparable; others are skipped.
func (s *Store) Nearest(probe encoding.Encoding, k int) []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.index.Search(probe, k)
	for i := range matches {
		if identity, ok := s.identities[matches[i].Name]; ok {
			matches[i].Name = identity.Name // restore original spelling
		}
	}
	return matches
}

// persistLocked snapshots the current identity set. Callers hold the
// write lock. Snapshot failures never propagate to the workflow.
func (s *Store) persistLocked() {
	if s.snapshotter == nil {
		return
	}

	identities := make([]Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		identities = append(identities, identity)
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].Name < identities[j].Name
	})

	if err := s.snapshotter.Save(identities); err != nil {
		log.Printf("Warning: failed to save identity snapshot: %v", err)
	}
}
