package compiler

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/roach88/anachronize/internal/ir"
)

// LookupFunc is the dependency-lookup function name recognized in modules.
const LookupFunc = "require"

// lookupRx matches require('./x') and require("../x"). Only arguments that
// start with ./ or ../ count as relative references, so rewritten global
// names never match again.
var lookupRx = regexp.MustCompile(`\b` + LookupFunc + `\s*\(\s*(?:'(\.\.?/[^'"]*)'|"(\.\.?/[^'"]*)")\s*\)`)

// ExtractDependencies rewrites every relative lookup call site in m.Content
// to reference the dependency's global name and appends the dependency IDs
// to m.DepIDs in call-site order.
//
// Paths resolve against the directory of m.File. A path that leaves the
// package root is left as written and recorded in m.External.
//
// Rewriting is idempotent: running it on already-rewritten content changes
// nothing and records nothing.
func ExtractDependencies(m *ir.ModuleRecord, namer *ir.Namer) {
	matches := lookupRx.FindAllStringSubmatchIndex(m.Content, -1)
	if len(matches) == 0 {
		return
	}

	dir := filepath.Dir(m.File)
	var b strings.Builder
	b.Grow(len(m.Content))
	last := 0

	for _, loc := range matches {
		// loc[2:4] is the single-quoted argument, loc[4:6] the double-quoted one.
		start, end := loc[2], loc[3]
		if start < 0 {
			start, end = loc[4], loc[5]
		}
		rel := m.Content[start:end]

		id, err := namer.ID(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			m.External = append(m.External, rel)
			continue
		}
		m.DepIDs = append(m.DepIDs, id)

		b.WriteString(m.Content[last:start])
		b.WriteString(namer.Global(id))
		last = end
	}

	b.WriteString(m.Content[last:])
	m.Content = b.String()
}
