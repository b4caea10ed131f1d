package sealevel

import (
	"context"
	"io"
	"net/http"
	"time"
)

// BlobStore writes artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	RunID   string
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Hasher produces a content digest for fetched payloads.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// DatasetSource loads the dataset commands and handlers should work on.
type DatasetSource interface {
	Latest(ctx context.Context) (Dataset, error)
}
