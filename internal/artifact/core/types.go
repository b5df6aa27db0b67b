package core

import (
	"context"
	"io"
	"time"
)

// Driver identifies a concrete artifact storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local output directories (default)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// Info describes a persisted artifact.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
	Location     string    `json:"location"` // driver-specific: file path or object URL
}

// Store persists pipeline output artifacts under caller-chosen keys.
// Unlike an immutable blob store, Put replaces existing content: re-running
// a pipeline with identical arguments rewrites the same output.
type Store interface {
	// Put stores the artifact at key, replacing any previous content.
	Put(ctx context.Context, key string, r io.Reader) (Info, error)
	// Get retrieves artifact content and metadata.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Stat returns metadata only.
	Stat(ctx context.Context, key string) (Info, error)
	// Delete removes an artifact. Returns (false, nil) if absent.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns artifacts whose key has the prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Driver returns the configured backend driver.
	Driver() Driver
}
