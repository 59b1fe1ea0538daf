package bundle

import (
	"context"

	"github.com/roach88/anachronize/internal/compiler"
	"github.com/roach88/anachronize/internal/ir"
)

// Graph describes a bundle without assembling it.
type Graph struct {
	Package *ir.Package `json:"package"`

	// Modules are in discovery order.
	Modules []*ir.ModuleRecord `json:"modules"`

	// Order is the emission order by ID; empty when the graph has cycles.
	Order []string `json:"order"`

	// Cycles lists every dependency cycle as a closed ID path.
	Cycles [][]string `json:"cycles"`

	Dangling []compiler.Dangling `json:"dangling,omitempty"`

	// Aliased lists modules sharing the bare main global with an earlier one.
	Aliased []string `json:"aliased,omitempty"`
}

// Plan runs the pipeline up to linking and reports the dependency graph.
//
// Unlike Run, a cycle is not an error here: it is reported in Cycles and
// Order is left empty. Every other failure aborts as in Run.
func Plan(ctx context.Context, opts Options) (*Graph, error) {
	st, err := prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Package:  st.pkg,
		Modules:  st.modules,
		Order:    []string{},
		Cycles:   compiler.FindCycles(st.modules),
		Dangling: st.dangling,
		Aliased:  st.aliased,
	}
	if len(g.Cycles) > 0 {
		return g, nil
	}

	order, err := compiler.Merge(st.modules)
	if err != nil {
		return nil, err
	}
	for _, m := range order {
		g.Order = append(g.Order, m.ID)
	}
	return g, nil
}
