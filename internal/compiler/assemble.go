package compiler

import "strings"

// RootVar is the closure parameter bound to the global object.
const RootVar = "__anachronizeRoot"

// LookupShim stands in for require at load time. It walks RootVar one
// dot-separated segment at a time and returns whatever it finds, or
// undefined when a segment is missing.
const LookupShim = "function __anachronizeRequire(id){ var m = __anachronizeRoot;id = id.split('.');while(m && id.length>0) { m = m[id.shift()]; } return m; };"

// AssembleOptions configures Assemble.
type AssembleOptions struct {
	// Template wraps the final script. Defaults to OutputTemplate.
	Template Template

	// Namespace is the shared namespace object path ("foo" or "a.b") when
	// globals are nested; empty for flat globals.
	Namespace string
}

// Assemble produces the final script from concatenated module content.
//
// The template receives {{main}} and {{content}}, where content is the
// lookup shim, the namespace declarations (nested mode only) and the
// modules, in that order.
func Assemble(content, main string, opts AssembleOptions) string {
	tmpl := opts.Template
	if tmpl == "" {
		tmpl = OutputTemplate
	}

	var b strings.Builder
	b.WriteString(LookupShim)
	b.WriteString(namespaceDecls(opts.Namespace))
	b.WriteString(content)

	return tmpl.Render(map[string]string{
		"main":    main,
		"content": b.String(),
	})
}

// namespaceDecls declares each level of a nested namespace on RootVar so
// define shims can assign into it:
//
//	__anachronizeRoot.a = __anachronizeRoot.a || {};
//	__anachronizeRoot.a.b = __anachronizeRoot.a.b || {};
func namespaceDecls(ns string) string {
	var b strings.Builder
	for _, path := range namespaceLevels(ns) {
		ref := RootVar + "." + path
		b.WriteString("\n" + ref + " = " + ref + " || {};")
	}
	return b.String()
}

// namespaceLevels lists every object path a namespace declares, outermost
// first: "a.b" gives ["a", "a.b"].
func namespaceLevels(ns string) []string {
	ns = strings.Trim(ns, ".")
	if ns == "" {
		return nil
	}

	segs := strings.Split(ns, ".")
	levels := make([]string, len(segs))
	for i := range segs {
		levels[i] = strings.Join(segs[:i+1], ".")
	}
	return levels
}
