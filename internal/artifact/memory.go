package artifact

import (
	memorystore "bioremcore/internal/infra/artifact/memory"
)

// NewMemory constructs an in-memory Store for tests.
func NewMemory() Store { return memorystore.New() }
