package artifact

import (
	"bioremcore/internal/infra/artifact/fs"
)

// NewFilesystem constructs a filesystem-backed Store rooted at dir.
// Returns Store so call sites depend on the interface, not the driver.
func NewFilesystem(dir string) (Store, error) {
	return fs.New(dir)
}
