package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const snapshotFile = "audit.json"

// FilePersister stores the audit window as a JSON file under the data
// directory.
type FilePersister struct {
	dir string
}

// NewFilePersister creates a persister rooted at dir.
func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{dir: dir}
}

// Save replaces the previous snapshot with the given events.
func (f *FilePersister) Save(events []Event) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(f.dir, snapshotFile)
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create audit snapshot: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode audit events: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close audit snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace audit snapshot: %w", err)
	}
	return nil
}

// Load reads the last snapshot. A missing file yields an empty log.
func (f *FilePersister) Load() ([]Event, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit snapshot: %w", err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse audit snapshot: %w", err)
	}
	return events, nil
}
