// Package bundle runs the whole pipeline: package descriptor, file
// collection, per-module transformation, graph linking, merging and
// assembly.
//
// Module files are read concurrently. Every later stage waits for all
// modules and is deterministic, so the output never depends on the order
// reads complete in. The first failure cancels the remaining reads and
// aborts the run; nothing is written.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/anachronize/internal/collect"
	"github.com/roach88/anachronize/internal/compiler"
	"github.com/roach88/anachronize/internal/ir"
)

// DefaultConcurrency bounds concurrent module reads.
const DefaultConcurrency = 16

// ErrNoModules is returned when the globs, after exclusion, match nothing.
var ErrNoModules = errors.New("no module files matched")

// Options configures a bundle run.
type Options struct {
	// Package is the package descriptor path (package.json).
	Package string

	// Globs select the input files. Relative patterns resolve against BaseDir.
	Globs []string

	// BaseDir is the directory relative patterns and paths resolve against.
	// Defaults to the working directory.
	BaseDir string

	// Output is the bundle destination. Run never writes it but always
	// excludes it from the inputs. Empty means stdout.
	Output string

	// Excludes are patterns removed from the input set.
	Excludes []string

	// SingleNamespace selects foo.util over foo_util globals.
	SingleNamespace bool

	// Strict fails on dependency references outside the bundle.
	Strict bool

	// Template wraps the final script. Defaults to compiler.OutputTemplate.
	Template compiler.Template

	// DefineTemplate replaces each module's define guard. Defaults to
	// compiler.DefineTemplate.
	DefineTemplate compiler.Template

	// Concurrency bounds concurrent reads. Defaults to DefaultConcurrency.
	Concurrency int

	// Logger receives progress and diagnostics. Nil discards them.
	Logger *log.Logger
}

// Result is a finished bundle.
type Result struct {
	BuildID  string              `json:"build_id"`
	Package  *ir.Package         `json:"package"`
	Modules  []*ir.ModuleRecord  `json:"modules"` // emission order
	Dangling []compiler.Dangling `json:"dangling,omitempty"`
	Script   []byte              `json:"-"`
	Digest   string              `json:"digest"`
}

// Run builds the bundle described by opts and returns the script without
// writing it.
func Run(ctx context.Context, opts Options) (*Result, error) {
	st, err := prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	order, err := compiler.Merge(st.modules)
	if err != nil {
		return nil, err
	}
	for i, m := range order {
		st.logger.Debug("emit", "pos", i, "id", m.ID, "global", m.Global)
	}

	ns := ""
	if st.namer.SingleNamespace() {
		ns = st.pkg.Name
	}
	script := compiler.Assemble(
		compiler.Concat(order, compiler.ModuleTemplate),
		st.namer.Main(),
		compiler.AssembleOptions{Template: opts.Template, Namespace: ns},
	)

	return &Result{
		BuildID:  uuid.NewString(),
		Package:  st.pkg,
		Modules:  order,
		Dangling: st.dangling,
		Script:   []byte(script),
		Digest:   ir.BundleDigest([]byte(script)),
	}, nil
}

// state is everything up to and including linking.
type state struct {
	pkg      *ir.Package
	namer    *ir.Namer
	modules  []*ir.ModuleRecord // discovery order
	dangling []compiler.Dangling
	aliased  []string
	logger   *log.Logger
}

func prepare(ctx context.Context, opts Options) (*state, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	pkg, err := LoadPackage(opts.Package)
	if err != nil {
		return nil, err
	}
	namer := ir.NewNamer(pkg.Root, pkg.Name, pkg.MainEntry(), opts.SingleNamespace)
	logger.Debug("package", "name", pkg.Name, "main", namer.Main(), "root", pkg.Root, "namespace", namer.Namespace())

	files, err := collectFiles(ctx, opts, logger)
	if err != nil {
		return nil, err
	}

	modules, err := loadModules(ctx, files, namer, opts, logger)
	if err != nil {
		return nil, err
	}

	aliased, err := compiler.CheckGlobals(modules, namer)
	if err != nil {
		return nil, err
	}
	for _, id := range aliased {
		logger.Warn("module shares the main alias", "id", id, "global", namer.Main())
	}

	dangling, err := compiler.LinkDependencies(modules, opts.Strict)
	if err != nil {
		return nil, err
	}
	for _, d := range dangling {
		logger.Warn("dropping unresolved dependency", "module", d.Module, "ref", d.Ref, "external", d.External)
	}

	return &state{
		pkg:      pkg,
		namer:    namer,
		modules:  modules,
		dangling: dangling,
		aliased:  aliased,
		logger:   logger,
	}, nil
}

func collectFiles(ctx context.Context, opts Options, logger *log.Logger) ([]string, error) {
	base := opts.BaseDir
	if base == "" {
		base = "."
	}

	files, err := collect.Collect(ctx, base, opts.Globs)
	if err != nil {
		return nil, fmt.Errorf("collecting module files: %w", err)
	}

	filter, err := collect.NewExcludeFilter(base, opts.Excludes, opts.Output)
	if err != nil {
		return nil, fmt.Errorf("building exclude list: %w", err)
	}
	kept := filter.Apply(files)
	logger.Debug("collected files", "matched", len(files), "excluded", len(files)-len(kept))

	if len(kept) == 0 {
		return nil, ErrNoModules
	}
	return kept, nil
}

// loadModules reads and transforms every file concurrently. The returned
// slice is in the order of files.
func loadModules(ctx context.Context, files []string, namer *ir.Namer, opts Options, logger *log.Logger) ([]*ir.ModuleRecord, error) {
	defineTmpl := opts.DefineTemplate
	if defineTmpl == "" {
		defineTmpl = compiler.DefineTemplate
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	modules := make([]*ir.ModuleRecord, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			m, guarded, err := transform(ctx, file, namer, defineTmpl)
			if err != nil {
				return err
			}
			if !guarded {
				logger.Warn("no define guard found, module registers no global", "file", file)
			}
			logger.Debug("module", "id", m.ID, "global", m.Global, "deps", m.DepIDs)
			modules[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return modules, nil
}

// transform takes one file from path to a rewritten record:
// read, ID, global name, dependency extraction, define shim. It reports
// whether a define guard was replaced.
func transform(ctx context.Context, file string, namer *ir.Namer, defineTmpl compiler.Template) (*ir.ModuleRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	m := ir.NewModuleRecord(file)

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false, fmt.Errorf("reading module %s: %w", file, err)
	}
	m.Content = string(data)

	if m.ID, err = namer.ID(file); err != nil {
		return nil, false, err
	}
	m.Global = namer.Global(m.ID)

	compiler.ExtractDependencies(m, namer)
	guarded := compiler.InsertDefine(m, defineTmpl)

	return m, guarded, nil
}
