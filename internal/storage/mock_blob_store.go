package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockBlobStore is a testify mock of sealevel.BlobStore. The body is drained
// and passed to the expectation as a string.
type MockBlobStore struct {
	mock.Mock
}

// PutObject records the call.
func (m *MockBlobStore) PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	args := m.Called(ctx, path, contentType, string(body))
	return args.String(0), args.Error(1) //nolint:wrapcheck
}
