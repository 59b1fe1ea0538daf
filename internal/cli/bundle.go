package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/anachronize/internal/bundle"
	"github.com/roach88/anachronize/internal/compiler"
	"github.com/roach88/anachronize/internal/ir"
)

// BundleSummary is the json payload of a successful bundle run.
type BundleSummary struct {
	Package  string              `json:"package"`
	Main     string              `json:"main"`
	Output   string              `json:"output,omitempty"`
	Digest   string              `json:"digest"`
	Modules  []ModuleSummary     `json:"modules"`
	Dangling []compiler.Dangling `json:"dangling,omitempty"`

	// Script is set only when no output path was given.
	Script string `json:"script,omitempty"`
}

// ModuleSummary describes one emitted module.
type ModuleSummary struct {
	ID     string   `json:"id"`
	Global string   `json:"global"`
	Deps   []string `json:"deps"`
}

// NewBundleCommand creates the bundle command.
func NewBundleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bundle [globs...]",
		Short: "Bundle modules into a single script",
		Long: `Bundle the modules matched by the given globs into one script.

Globs default to the config file's globs. The package descriptor supplies
the namespace and the main module. Without --output the script is written
to stdout; with --format json the script is then embedded in the response.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, opts, args)
		},
	}

	addBuildFlags(cmd, opts)
	return cmd
}

func runBundle(cmd *cobra.Command, opts *BuildOptions, globs []string) error {
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

	result, err := bundle.Run(cmd.Context(), bopts)
	if err != nil {
		return reportError(formatter, "bundling failed", err)
	}

	if bopts.Output != "" {
		if err := bundle.WriteOutput(bopts.Output, result.Script); err != nil {
			if outErr := formatter.Error(ErrCodeWriteFailed, err.Error(), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "writing bundle", err)
		}
		bopts.Logger.Info("bundle written", "path", bopts.Output, "digest", result.Digest)
	}

	return outputBundleSuccess(formatter, result, bopts.Output)
}

func summarize(result *bundle.Result, output string) *BundleSummary {
	s := &BundleSummary{
		Package:  result.Package.Name,
		Main:     ir.MainIdentifier(result.Package.MainEntry()),
		Output:   output,
		Digest:   result.Digest,
		Modules:  make([]ModuleSummary, 0, len(result.Modules)),
		Dangling: result.Dangling,
	}
	for _, m := range result.Modules {
		deps := make([]string, 0, len(m.Deps))
		for _, d := range m.Deps {
			deps = append(deps, d.ID)
		}
		s.Modules = append(s.Modules, ModuleSummary{ID: m.ID, Global: m.Global, Deps: deps})
	}
	if output == "" {
		s.Script = string(result.Script)
	}
	return s
}

func outputBundleSuccess(formatter *OutputFormatter, result *bundle.Result, output string) error {
	if formatter.JSON() {
		return formatter.SuccessWithBuild(result.BuildID, summarize(result, output))
	}

	// Without an output file stdout carries the script and nothing else.
	if output == "" {
		_, err := formatter.Writer.Write(result.Script)
		return err
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Bundled %d module(s) into %s\n\n", okMark, len(result.Modules), output)
	writeModuleTable(w, summarize(result, output).Modules)
	if len(result.Dangling) > 0 {
		fmt.Fprintln(w)
		writeDangling(w, result.Dangling)
	}
	return nil
}

func writeModuleTable(w io.Writer, modules []ModuleSummary) {
	width := 0
	for _, m := range modules {
		width = max(width, len(m.ID))
	}
	for i, m := range modules {
		fmt.Fprintf(w, "  %2d. %-*s → %s", i+1, width, m.ID, m.Global)
		if len(m.Deps) > 0 {
			fmt.Fprintf(w, "  (deps: %v)", m.Deps)
		}
		fmt.Fprintln(w)
	}
}

func writeDangling(w io.Writer, dangling []compiler.Dangling) {
	fmt.Fprintf(w, "%s Dangling references:\n", warnMark)
	for _, d := range dangling {
		where := "not bundled"
		if d.External {
			where = "outside package root"
		}
		fmt.Fprintf(w, "  %s → %s (%s)\n", d.Module, d.Ref, where)
	}
}
