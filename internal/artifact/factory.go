package artifact

import (
	"context"
	"fmt"
	"os"
)

// Open selects a Store implementation using environment variables.
//
//	BIOREMCORE_ARTIFACT_DRIVER: fs|s3|memory (default fs)
//
// root anchors the store: the fs driver writes under it as a directory,
// the s3 driver uses it as the key prefix inside its bucket, and the
// memory driver ignores it. Pipelines open one store per output directory.
func Open(ctx context.Context, root string) (Store, error) {
	driver := os.Getenv("BIOREMCORE_ARTIFACT_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(root)
	case DriverS3:
		return OpenS3FromEnv(ctx, root)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown artifact driver %s", driver)
	}
}
