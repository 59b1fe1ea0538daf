package compiler

import (
	"regexp"

	"github.com/roach88/anachronize/internal/ir"
)

// defineGuardRx matches the UMD guard from "typeof define" up to the first
// closing brace, e.g.
//
//	typeof define === 'function' && define.amd ? define : function(factory) { module.exports = factory(require); }
var defineGuardRx = regexp.MustCompile(`typeof\s+define[^}]+\}`)

// InsertDefine replaces the first UMD define guard in m.Content with tmpl
// rendered for m. It reports whether a guard was found; a module without
// one is left unchanged and will not register a global.
func InsertDefine(m *ir.ModuleRecord, tmpl Template) bool {
	loc := defineGuardRx.FindStringIndex(m.Content)
	if loc == nil {
		return false
	}

	shim := tmpl.Render(map[string]string{
		"global": m.Global,
		"id":     m.ID,
	})
	m.Content = m.Content[:loc[0]] + shim + m.Content[loc[1]:]
	return true
}
