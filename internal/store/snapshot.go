package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const snapshotFile = "identities.json"

// FileSnapshotter saves identities as a JSON file under the data
// directory. The directory is created on first save.
type FileSnapshotter struct {
	dir string
}

// NewFileSnapshotter creates a snapshotter rooted at dir.
func NewFileSnapshotter(dir string) *FileSnapshotter {
	return &FileSnapshotter{dir: dir}
}

// Save writes the full identity set, replacing the previous snapshot.
func (f *FileSnapshotter) Save(identities []Identity) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(f.dir, snapshotFile)
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(identities); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode identities: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}

	// Rename so a crash mid-write never truncates the previous snapshot.
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the last snapshot. A missing file yields an empty set.
func (f *FileSnapshotter) Load() ([]Identity, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var identities []Identity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return identities, nil
}
