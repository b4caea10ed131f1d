package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("content")
	uri, err := store.PutObject(context.Background(), "path/report.txt", "text/plain", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "memory://path/report.txt", uri)

	payload[0] = 'C'
	stored, ok := store.Object("path/report.txt")
	require.True(t, ok)
	assert.Equal(t, "content", string(stored))
	assert.Equal(t, "text/plain", store.ContentType("path/report.txt"))
}

func TestBlobStoreObjectReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	_, err := store.PutObject(context.Background(), "a.csv", "text/csv", bytes.NewReader([]byte("abc")))
	require.NoError(t, err)

	got, _ := store.Object("a.csv")
	got[0] = 'X'
	again, _ := store.Object("a.csv")
	assert.Equal(t, "abc", string(again))

	_, ok := store.Object("missing")
	assert.False(t, ok)
}

func TestBlobStorePathsSorted(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	for _, p := range []string{"c", "a", "b"} {
		_, err := store.PutObject(context.Background(), p, "", bytes.NewReader(nil))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, store.Paths())
}
