package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/anachronize/internal/bundle"
	"github.com/roach88/anachronize/internal/ir"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph [globs...]",
		Short: "Show the module dependency graph",
		Long: `Resolve the modules matched by the given globs and print their global
names, dependencies and emission order without writing a bundle.

Every dependency cycle is listed. The command exits with status 1 when
cycles are found.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts, args)
		},
	}

	addBuildFlags(cmd, opts)
	return cmd
}

func runGraph(cmd *cobra.Command, opts *BuildOptions, globs []string) error {
	formatter := &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}

	bopts, err := resolveOptions(cmd, opts, globs)
	if err != nil {
		if outErr := formatter.Error(ErrCodeConfig, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	if len(bopts.Globs) == 0 {
		const msg = "no input globs: pass them as arguments or set globs in the config file"
		if outErr := formatter.Error(ErrCodeNoPatterns, msg, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, msg)
	}
	bopts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)

	graph, err := bundle.Plan(cmd.Context(), bopts)
	if err != nil {
		return reportError(formatter, "resolving graph failed", err)
	}

	if err := outputGraph(formatter, graph); err != nil {
		return err
	}
	if len(graph.Cycles) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d dependency cycle(s) found", len(graph.Cycles)))
	}
	return nil
}

func outputGraph(formatter *OutputFormatter, graph *bundle.Graph) error {
	if formatter.JSON() {
		return formatter.Success(graph)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Package %s (main: %s)\n\n", graph.Package.Name, ir.MainIdentifier(graph.Package.MainEntry()))

	byID := make(map[string]*ir.ModuleRecord, len(graph.Modules))
	for _, m := range graph.Modules {
		byID[m.ID] = m
	}

	if len(graph.Order) > 0 {
		fmt.Fprintln(w, "Emission order:")
		modules := make([]ModuleSummary, 0, len(graph.Order))
		for _, id := range graph.Order {
			m := byID[id]
			deps := make([]string, 0, len(m.Deps))
			for _, d := range m.Deps {
				deps = append(deps, d.ID)
			}
			modules = append(modules, ModuleSummary{ID: m.ID, Global: m.Global, Deps: deps})
		}
		writeModuleTable(w, modules)
	}

	if len(graph.Aliased) > 0 {
		fmt.Fprintf(w, "\n%s Modules sharing the main global: %s\n", warnMark, strings.Join(graph.Aliased, ", "))
	}
	if len(graph.Dangling) > 0 {
		fmt.Fprintln(w)
		writeDangling(w, graph.Dangling)
	}
	if len(graph.Cycles) > 0 {
		fmt.Fprintf(w, "\n%s Dependency cycles:\n", failMark)
		for _, c := range graph.Cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(c, " → "))
		}
	}
	return nil
}
