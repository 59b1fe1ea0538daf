package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/anachronize/internal/ir"
)

// Dangling is a dependency reference that did not resolve to a bundled module.
type Dangling struct {
	Module string `json:"module"` // ID of the referencing module
	File   string `json:"file"`
	Ref    string `json:"ref"` // dependency ID, or the raw path when External

	// External is set when the reference left the package root.
	External bool `json:"external,omitempty"`
}

// LinkDependencies resolves every module's DepIDs to records, filling Deps.
//
// IDs that are not in modules (excluded or missing files) and references
// outside the package root are returned as dangling. In lenient mode they are
// dropped; in strict mode the first one is returned as an ErrCodeDangling
// error. Two modules with the same ID are always an error.
func LinkDependencies(modules []*ir.ModuleRecord, strict bool) ([]Dangling, error) {
	byID := make(map[string]*ir.ModuleRecord, len(modules))
	for _, m := range modules {
		if prev, ok := byID[m.ID]; ok {
			return nil, &Error{
				Code:    ErrCodeDuplicateID,
				Message: fmt.Sprintf("module id %q is derived from both %s and %s", m.ID, prev.File, m.File),
				File:    m.File,
			}
		}
		byID[m.ID] = m
	}

	var dangling []Dangling
	for _, m := range modules {
		m.Deps = make([]*ir.ModuleRecord, 0, len(m.DepIDs))
		for _, id := range m.DepIDs {
			dep, ok := byID[id]
			if !ok {
				dangling = append(dangling, Dangling{Module: m.ID, File: m.File, Ref: id})
				continue
			}
			m.Deps = append(m.Deps, dep)
		}
		for _, ref := range m.External {
			dangling = append(dangling, Dangling{Module: m.ID, File: m.File, Ref: ref, External: true})
		}
	}

	if strict && len(dangling) > 0 {
		d := dangling[0]
		return dangling, &Error{
			Code:    ErrCodeDangling,
			Message: fmt.Sprintf("module %s references %q which is not part of the bundle (%d unresolved reference(s))", d.Module, d.Ref, len(dangling)),
			File:    d.File,
		}
	}
	return dangling, nil
}

// CheckGlobals verifies that distinct modules received distinct globals.
//
// Modules sharing the bare main alias are allowed; their IDs (all but the
// first) are returned so the caller can report them. Any other shared global
// is an ErrCodeCollision error.
//
// With a single namespace, a global equal to a level of the namespace object
// ("foo" for foo.util) would replace that object and every global under it,
// so it is an ErrCodeCollision error too.
func CheckGlobals(modules []*ir.ModuleRecord, namer *ir.Namer) ([]string, error) {
	owner := make(map[string]*ir.ModuleRecord, len(modules))
	var aliased []string

	var levels map[string]bool
	if namer.SingleNamespace() {
		levels = make(map[string]bool)
		for _, l := range namespaceLevels(strings.TrimSuffix(namer.Namespace(), ir.SepNested)) {
			levels[l] = true
		}
	}

	for _, m := range modules {
		if levels[m.Global] {
			return aliased, &Error{
				Code:    ErrCodeCollision,
				Message: fmt.Sprintf("module %q maps to global %q, which is the namespace object", m.ID, m.Global),
				File:    m.File,
			}
		}
		prev, ok := owner[m.Global]
		if !ok {
			owner[m.Global] = m
			continue
		}
		if namer.IsMainAlias(m.Global) {
			aliased = append(aliased, m.ID)
			continue
		}
		return aliased, &Error{
			Code:    ErrCodeCollision,
			Message: fmt.Sprintf("modules %q and %q both map to global %q", prev.ID, m.ID, m.Global),
			File:    m.File,
		}
	}
	return aliased, nil
}
