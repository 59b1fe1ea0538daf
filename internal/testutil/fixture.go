// Package testutil holds fixture builders shared by package tests: UMD
// module sources, throwaway package trees and golden-file comparison.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/anachronize/internal/ir"
)

// UMDGuard is the closing line of the UMD wrapper the bundler rewrites.
const UMDGuard = "}(typeof define === 'function' && define.amd ? define : function(factory) { module.exports = factory(require); }));\n"

// UMD wraps a factory body in the standard UMD boilerplate.
func UMD(body string) string {
	return "(function(define) {\ndefine(function(require) {\n" + body + "\n});\n" + UMDGuard
}

// WritePackage creates dir/package.json with the given name and main, plus
// every file in files keyed by slash-separated path relative to dir.
func WritePackage(t *testing.T, dir, name, main string, files map[string]string) {
	t.Helper()
	desc := fmt.Sprintf(`{"name": %q, "main": %q}`, name, main)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(desc), 0644))
	WriteFiles(t, dir, files)
}

// WriteFiles writes files under dir, creating parent directories.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

// ModuleIDs lists the IDs of modules in order.
func ModuleIDs(modules []*ir.ModuleRecord) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = m.ID
	}
	return out
}
