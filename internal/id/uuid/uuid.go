// Package uuid provides run ID generation helpers.
package uuid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Generator creates UUID v7 strings. V7 IDs sort by creation time, so run IDs
// line up with artifact timestamps in logs.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUID7 string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}

// CreatedAt extracts the embedded timestamp of a UUID7 run ID.
func CreatedAt(id string) (time.Time, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run id: %w", err)
	}
	if parsed.Version() != 7 {
		return time.Time{}, fmt.Errorf("run id %s is version %d, want 7", id, parsed.Version())
	}
	sec, nsec := parsed.Time().UnixTime()
	return time.Unix(sec, nsec).UTC(), nil
}

// Static always returns the same ID.
type Static string

// NewID returns the fixed ID.
func (s Static) NewID() (string, error) {
	return string(s), nil
}
