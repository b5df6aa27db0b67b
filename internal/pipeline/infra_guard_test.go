package pipeline

import (
	"testing"

	"bioremcore/testutil"
)

// TestNoDirectDriverImports keeps the pipeline driver-agnostic: artifact
// stores arrive through the StoreOpener hook, never as direct driver imports.
func TestNoDirectDriverImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InfraImportForbidden,
		"pipeline must reach storage through the artifact facade")
}
