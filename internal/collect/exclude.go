package collect

import (
	"fmt"
	"path/filepath"
)

// ExcludeFilter removes paths matching user patterns and the output path.
type ExcludeFilter struct {
	patterns []scopedPattern
	output   string // absolute; empty when writing to stdout
}

// NewExcludeFilter builds a filter from doublestar patterns.
//
// Relative patterns are resolved against baseDir. output is excluded even
// when patterns is empty; listing it in patterns as well is harmless.
func NewExcludeFilter(baseDir string, patterns []string, output string) (*ExcludeFilter, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}

	f := &ExcludeFilter{}
	for _, p := range patterns {
		sp, err := scope(base, p)
		if err != nil {
			return nil, err
		}
		f.patterns = append(f.patterns, sp)
	}

	if output != "" {
		f.output = absPath(base, output)
	}
	return f, nil
}

// Excluded reports whether an absolute path must be dropped.
func (f *ExcludeFilter) Excluded(path string) bool {
	path = filepath.Clean(path)
	if f.output != "" && path == f.output {
		return true
	}
	for _, p := range f.patterns {
		if p.match(path) {
			return true
		}
	}
	return false
}

// Apply returns the paths that are not excluded, in their original order.
func (f *ExcludeFilter) Apply(paths []string) []string {
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if !f.Excluded(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
