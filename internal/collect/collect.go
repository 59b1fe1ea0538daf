package collect

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// PatternError reports a glob pattern doublestar cannot parse.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Collect resolves every pattern to absolute file paths.
//
// Patterns are expanded concurrently but the result keeps pattern order,
// and within a pattern the lexical order doublestar walks in. A path matched
// by more than one pattern appears once, at its first position. A pattern
// that matches nothing contributes nothing.
func Collect(ctx context.Context, baseDir string, patterns []string) ([]string, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}

	results := make([][]string, len(patterns))
	g, ctx := errgroup.WithContext(ctx)
	for i, pattern := range patterns {
		i, pattern := i, pattern
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			matches, err := expand(base, pattern)
			if err != nil {
				return err
			}
			results[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dedupe(results), nil
}

// scopedPattern is a pattern split at its last static directory. Only glob
// is pattern syntax; dir is a plain path, so metacharacters in the base
// directory or in the pattern's literal prefix stay literal.
type scopedPattern struct {
	dir  string // absolute
	glob string // slash-separated, relative to dir
}

func scope(base, pattern string) (scopedPattern, error) {
	prefix, glob := doublestar.SplitPattern(path.Clean(filepath.ToSlash(pattern)))
	if !doublestar.ValidatePattern(glob) {
		return scopedPattern{}, &PatternError{Pattern: pattern, Err: doublestar.ErrBadPattern}
	}
	return scopedPattern{dir: absPath(base, filepath.FromSlash(prefix)), glob: glob}, nil
}

// match reports whether the absolute path p lies under dir and matches glob.
func (sp scopedPattern) match(p string) bool {
	rel, err := filepath.Rel(sp.dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	ok, _ := doublestar.Match(sp.glob, filepath.ToSlash(rel))
	return ok
}

// expand resolves one pattern to absolute, cleaned file paths.
func expand(base, pattern string) ([]string, error) {
	sp, err := scope(base, pattern)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.Glob(os.DirFS(sp.dir), sp.glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	for i, m := range matches {
		matches[i] = filepath.Join(sp.dir, filepath.FromSlash(m))
	}
	return matches, nil
}

// absPath makes p absolute against base without interpreting it as a pattern.
func absPath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func dedupe(sets [][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range sets {
		for _, p := range set {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
