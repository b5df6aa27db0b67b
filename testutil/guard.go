// Package testutil holds the import-boundary guards package tests use to
// keep the repository layering honest: public packages and processor plugins
// must not reach into internal/, and nothing above the artifact facade may
// touch the storage drivers.
package testutil

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// modulePath anchors the predicates so stdlib internal/ packages surfaced by
// `go list -deps` never trip a guard.
const modulePath = "bioremcore"

// InternalImportForbidden reports whether path reaches into this module's
// internal tree. Public packages and plugins build on pkg/ alone.
func InternalImportForbidden(path string) bool {
	return path == modulePath+"/internal" || strings.HasPrefix(path, modulePath+"/internal/")
}

// InfraImportForbidden reports whether path names a storage driver package.
// Only the artifact facade may import internal/infra.
func InfraImportForbidden(path string) bool {
	return path == modulePath+"/internal/infra" || strings.HasPrefix(path, modulePath+"/internal/infra/")
}

// violation records a forbidden import path and where it entered.
type violation struct {
	path string
	via  string
}

func (v violation) String() string { return v.path + " via " + v.via }

// AssertNoDirectImports parses the non-test .go files directly in dir and
// fails the test if any import satisfies forbidden. Subdirectories are
// separate packages and guard themselves.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := scanImports(dir, forbidden)
	if err != nil {
		t.Fatalf("scan imports in %s: %v", dir, err)
	}
	reportViolations(t, "import", reason, viols)
}

// AssertNoTransitiveDependency resolves the dependency closure of pattern via
// `go list -deps` and fails the test if any package in it satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	viols, err := scanDependencies(pattern, forbidden)
	if err != nil {
		t.Fatalf("resolve dependencies of %s: %v", pattern, err)
	}
	reportViolations(t, "dependency", reason, viols)
}

// listDeps is a hook so guard tests can run without the toolchain.
var listDeps = func(pattern string) ([]byte, error) {
	return exec.Command("go", "list", "-deps", pattern).CombinedOutput()
}

func scanDependencies(pattern string, forbidden func(string) bool) ([]violation, error) {
	out, err := listDeps(pattern)
	if err != nil {
		return nil, fmt.Errorf("go list -deps %s: %w\n%s", pattern, err, out)
	}
	var viols []violation
	for _, dep := range strings.Fields(string(out)) {
		if forbidden(dep) {
			viols = append(viols, violation{path: dep, via: pattern})
		}
	}
	return viols, nil
}

func scanImports(dir string, forbidden func(string) bool) ([]violation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []violation
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
			continue
		}
		parsed, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, spec := range parsed.Imports {
			path := strings.Trim(spec.Path.Value, `"`)
			if forbidden(path) {
				viols = append(viols, violation{path: path, via: name})
			}
		}
	}
	return viols, nil
}

type failer interface {
	Fatalf(format string, args ...any)
}

func reportViolations(t failer, kind, reason string, viols []violation) {
	if len(viols) == 0 {
		return
	}
	lines := make([]string, len(viols))
	for i, v := range viols {
		lines[i] = "  " + v.String()
	}
	t.Fatalf("forbidden %s (%s):\n%s", kind, reason, strings.Join(lines, "\n"))
}
