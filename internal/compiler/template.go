package compiler

import (
	"io"

	"github.com/valyala/fasttemplate"
)

// Template is a string with {{key}} placeholders.
type Template string

const (
	tagStart = "{{"
	tagEnd   = "}}"
)

// Built-in templates.
const (
	// DefineTemplate replaces a module's UMD define guard. It consumes {{global}}.
	DefineTemplate Template = "function(factory){__anachronizeRoot.{{global}}=factory(__anachronizeRequire);}"

	// OutputTemplate wraps the whole script. It consumes {{content}} and {{main}}.
	OutputTemplate Template = ";(function(__anachronizeRoot){\n{{content}}\n}(this));"

	// ModuleTemplate wraps each emitted module. It consumes {{id}} and {{content}}.
	ModuleTemplate Template = "\n//----------------------------------------------\n// Module: {{id}}\n{{content}}"
)

// Render substitutes every {{key}} with data[key]. Unknown keys render as
// the empty string. Tags that are not a plain word ({{ a }}, {{a-b}}) are
// left as written. Substituted values are not scanned again.
func (t Template) Render(data map[string]string) string {
	return t.execute(func(w io.Writer, key string) (int, error) {
		return io.WriteString(w, data[key])
	})
}

// Keys returns the placeholder names used by the template, in order of
// first appearance.
func (t Template) Keys() []string {
	var keys []string
	seen := make(map[string]bool)
	t.execute(func(w io.Writer, key string) (int, error) {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		return 0, nil
	})
	return keys
}

// execute runs fn for every well-formed placeholder and writes malformed
// ones back unchanged.
func (t Template) execute(fn fasttemplate.TagFunc) string {
	return fasttemplate.ExecuteFuncString(string(t), tagStart, tagEnd, func(w io.Writer, tag string) (int, error) {
		if !isKey(tag) {
			return io.WriteString(w, tagStart+tag+tagEnd)
		}
		return fn(w, tag)
	})
}

func isKey(tag string) bool {
	if tag == "" {
		return false
	}
	for _, r := range tag {
		if r != '_' && (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
