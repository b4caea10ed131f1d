package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/sealevel/internal/storage"
	"github.com/JakeFAU/sealevel/internal/storage/memory"
)

func TestNewMirrorRequiresStore(t *testing.T) {
	_, err := storage.NewMirror()
	require.Error(t, err)

	_, err = storage.NewMirror(nil)
	require.Error(t, err)
}

func TestMirrorWritesEveryStore(t *testing.T) {
	primary := memory.NewBlobStore()
	secondary := memory.NewBlobStore()
	m, err := storage.NewMirror(primary, nil, secondary)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	uri, err := m.PutObject(context.Background(), "report.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "memory://report.txt", uri)

	for _, s := range []*memory.BlobStore{primary, secondary} {
		got, ok := s.Object("report.txt")
		require.True(t, ok)
		assert.Equal(t, "hello", string(got))
	}
}

func TestMirrorContinuesAfterFailure(t *testing.T) {
	failing := new(storage.MockBlobStore)
	failing.On("PutObject", mock.Anything, "a.csv", "text/csv", "x").Return("", errors.New("bucket gone"))
	backup := memory.NewBlobStore()

	m, err := storage.NewMirror(backup, failing)
	require.NoError(t, err)

	uri, err := m.PutObject(context.Background(), "a.csv", "text/csv", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
	assert.Equal(t, "memory://a.csv", uri)

	_, ok := backup.Object("a.csv")
	assert.True(t, ok)
	failing.AssertExpectations(t)
}
