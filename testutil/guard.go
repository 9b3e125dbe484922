// Package testutil holds layering checks shared by package tests: the
// pedigree engine and the domain model must not reach for storage drivers,
// cloud SDKs or the service layer.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// ImportPredicate reports whether an import path is off limits.
type ImportPredicate func(importPath string) bool

// AssertNoDirectImports parses every non-test .go file in dir and fails when
// an import satisfies forbidden. Build tags are ignored.
func AssertNoDirectImports(t testing.TB, dir string, forbidden ImportPredicate, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	failIfViolations(t, reason, viols)
}

// ModuleInternal matches imports of module's internal/ tree.
func ModuleInternal(module string) ImportPredicate {
	prefix := strings.TrimSuffix(module, "/") + "/internal/"
	return func(path string) bool {
		return strings.HasPrefix(path, prefix)
	}
}

// StorageImport matches SQL, key-value and object-store clients.
func StorageImport(path string) bool {
	if path == "database/sql" || strings.HasPrefix(path, "database/sql/") {
		return true
	}
	for _, frag := range []string{"badger", "pgx", "modernc.org/sqlite", "aws-sdk-go"} {
		if strings.Contains(path, frag) {
			return true
		}
	}
	return false
}

// AnyOf combines predicates; the result matches when any of them does.
func AnyOf(preds ...ImportPredicate) ImportPredicate {
	return func(path string) bool {
		for _, p := range preds {
			if p(path) {
				return true
			}
		}
		return false
	}
}

func directImportViolations(dir string, forbidden ImportPredicate) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			ip := strings.Trim(imp.Path.Value, `"`)
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	sort.Strings(viols)
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden imports (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}
