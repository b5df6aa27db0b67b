package artifact

import (
	"context"

	s3store "bioremcore/internal/infra/artifact/s3"
)

// OpenS3FromEnv constructs an S3-backed Store from the environment, with
// prefix scoping every key (S3-specific variables documented in the s3
// driver package).
func OpenS3FromEnv(ctx context.Context, prefix string) (Store, error) {
	return s3store.OpenFromEnv(ctx, prefix)
}

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return s3store.NewMockForTests("") }
