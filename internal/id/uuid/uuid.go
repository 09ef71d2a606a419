// Package uuid provides run identifier generation.
package uuid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunID identifies one scrape run. The value is a UUID v7, so ids sort by
// start time and the start time can be read back from the id itself.
type RunID struct {
	id uuid.UUID
}

// String returns the canonical UUID form.
func (r RunID) String() string {
	return r.id.String()
}

// Started returns the millisecond timestamp embedded in the id.
func (r RunID) Started() time.Time {
	sec, nsec := r.id.Time().UnixTime()
	return time.Unix(sec, nsec).UTC()
}

// Generator creates run ids.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewRunID returns a fresh run id.
func (Generator) NewRunID() (RunID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return RunID{}, fmt.Errorf("generate run id: %w", err)
	}
	return RunID{id: id}, nil
}
