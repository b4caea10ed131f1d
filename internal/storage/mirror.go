// Package storage fans artifact writes out to the configured blob stores.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JakeFAU/sealevel/internal/sealevel"
)

// Mirror writes every object to each of its stores in order. The first store is
// the primary; its URI is the one returned from PutObject.
type Mirror struct {
	stores []sealevel.BlobStore
}

var _ sealevel.BlobStore = (*Mirror)(nil)

// NewMirror builds a mirror over stores, skipping nil entries.
func NewMirror(stores ...sealevel.BlobStore) (*Mirror, error) {
	m := &Mirror{}
	for _, s := range stores {
		if s != nil {
			m.stores = append(m.stores, s)
		}
	}
	if len(m.stores) == 0 {
		return nil, fmt.Errorf("at least one blob store is required")
	}
	return m, nil
}

// Len reports how many stores receive each write.
func (m *Mirror) Len() int {
	return len(m.stores)
}

// PutObject buffers data once and replays it into every store. All stores are
// attempted even when one fails; the failures are joined.
func (m *Mirror) PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read object body: %w", err)
	}

	var (
		primary string
		errs    []error
	)
	for i, s := range m.stores {
		uri, err := s.PutObject(ctx, path, contentType, bytes.NewReader(body))
		if err != nil {
			errs = append(errs, fmt.Errorf("store %d: %w", i, err))
			continue
		}
		if i == 0 {
			primary = uri
		}
	}
	if len(errs) > 0 {
		return primary, errors.Join(errs...)
	}
	return primary, nil
}
