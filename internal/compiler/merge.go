package compiler

import (
	"strings"

	"github.com/roach88/anachronize/internal/ir"
)

// visit states for Merge.
const (
	unvisited = iota
	visiting  // on the current DFS path
	emitted
)

type frame struct {
	m    *ir.ModuleRecord
	next int // index of the next dependency to descend into
}

// Merge returns modules in emission order: every module after all of its
// direct and transitive dependencies, each exactly once.
//
// Roots are taken in discovery order and dependencies in stored order, so the
// result is the post-order of a depth-first walk and does not depend on how
// modules were loaded. The walk is iterative. A module reached again while it
// is still on the current path is a cycle, reported as an ErrCodeCycle error.
func Merge(modules []*ir.ModuleRecord) ([]*ir.ModuleRecord, error) {
	state := make(map[string]int, len(modules))
	order := make([]*ir.ModuleRecord, 0, len(modules))

	for _, root := range modules {
		if state[root.ID] != unvisited {
			continue
		}

		state[root.ID] = visiting
		stack := []frame{{m: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]

			if top.next < len(top.m.Deps) {
				dep := top.m.Deps[top.next]
				top.next++

				switch state[dep.ID] {
				case emitted:
					continue
				case visiting:
					return nil, newCycleError(cyclePath(stack, dep), top.m.File)
				}

				state[dep.ID] = visiting
				stack = append(stack, frame{m: dep})
				continue
			}

			state[top.m.ID] = emitted
			order = append(order, top.m)
			stack = stack[:len(stack)-1]
		}
	}

	return order, nil
}

// cyclePath returns the IDs from dep's position on the stack to the top,
// closed by dep itself.
func cyclePath(stack []frame, dep *ir.ModuleRecord) []string {
	var path []string
	for i, f := range stack {
		if f.m.ID == dep.ID {
			for _, g := range stack[i:] {
				path = append(path, g.m.ID)
			}
			break
		}
	}
	return append(path, dep.ID)
}

// Concat renders every module through tmpl and joins the results in order.
func Concat(ordered []*ir.ModuleRecord, tmpl Template) string {
	var b strings.Builder
	for _, m := range ordered {
		b.WriteString(tmpl.Render(map[string]string{
			"id":      m.ID,
			"global":  m.Global,
			"file":    m.File,
			"content": m.Content,
		}))
	}
	return b.String()
}
