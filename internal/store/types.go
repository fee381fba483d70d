// Package store keeps enrolled identities in memory and snapshots them
// to disk. The in-memory map is the source of truth; snapshot failures
// are logged and never abort a workflow.
package store

import (
	"time"

	"github.com/veriface/veriface/internal/encoding"
)

// Identity is a committed enrollment: one averaged encoding per person.
type Identity struct {
	Name        string            `json:"name"`
	Encoding    encoding.Encoding `json:"encoding"`
	SampleCount int               `json:"sample_count"`
	EnrolledAt  time.Time         `json:"enrolled_at"`
}

// Match pairs an identity with its distance to a probe encoding.
type Match struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}
