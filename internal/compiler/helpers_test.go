package compiler

import "github.com/roach88/anachronize/internal/ir"

// mod builds a linked record whose File is derived from its ID.
func mod(id string, deps ...*ir.ModuleRecord) *ir.ModuleRecord {
	m := &ir.ModuleRecord{
		File:    "/pkg/" + id + ".js",
		ID:      id,
		Global:  "pkg_" + id,
		Content: "/* " + id + " */",
		Deps:    deps,
	}
	for _, d := range deps {
		m.DepIDs = append(m.DepIDs, d.ID)
	}
	return m
}

func ids(modules []*ir.ModuleRecord) []string {
	out := make([]string, len(modules))
	for i, m := range modules {
		out[i] = m.ID
	}
	return out
}

// indexOf returns the position of id in order, or -1.
func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}
