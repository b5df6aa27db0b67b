// Package artifact re-exports the artifact store abstractions for stable
// imports and hosts the environment-driven driver factory.
package artifact

import (
	"bioremcore/internal/artifact/core"
)

type (
	// Driver identifies an artifact backend driver.
	Driver = core.Driver
	// Info describes persisted artifact metadata.
	Info = core.Info
	// Store is the interface for artifact storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)
