package refstore

import (
	"path/filepath"

	"bioremcore/pkg/table"
)

// Catalog resolves per-source reference locations under a base directory.
// The convention is one <source>.csv file per knowledge base.
type Catalog struct {
	DataDir   string
	Separator rune // zero value falls back to DefaultSeparator
}

// Path returns the default location of a source's reference table.
func (c Catalog) Path(source string) string {
	return filepath.Join(c.DataDir, source+".csv")
}

// Load reads the source's reference table from its default location.
func (c Catalog) Load(source string) (*table.Table, error) {
	return Load(c.Path(source), c.sep())
}

func (c Catalog) sep() rune {
	if c.Separator == 0 {
		return DefaultSeparator
	}
	return c.Separator
}
