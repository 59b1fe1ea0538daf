package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/anachronize/internal/bundle"
	"github.com/roach88/anachronize/internal/compiler"
	"github.com/roach88/anachronize/internal/config"
)

// BuildOptions holds the flags shared by bundle and graph.
type BuildOptions struct {
	*RootOptions
	Package         string
	Output          string
	Excludes        []string
	SingleNamespace bool
	Strict          bool
	TemplateFile    string
	DefineFile      string
	ConfigFile      string
}

func addBuildFlags(cmd *cobra.Command, opts *BuildOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.Package, "package", "p", "package.json", "package descriptor path")
	flags.StringVarP(&opts.Output, "output", "o", "", "bundle output path (default stdout)")
	flags.StringArrayVarP(&opts.Excludes, "exclude", "x", nil, "exclude files matching pattern (repeatable)")
	flags.BoolVarP(&opts.SingleNamespace, "single-namespace", "s", false, "nest globals under one namespace object (foo.util)")
	flags.BoolVar(&opts.Strict, "strict", false, "fail on dependencies that are not part of the bundle")
	flags.StringVar(&opts.TemplateFile, "template", "", "file holding the output template ({{main}}, {{content}})")
	flags.StringVar(&opts.DefineFile, "define-template", "", "file holding the define shim template ({{global}})")
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "project config file (default "+config.DefaultFileName+" if present)")
}

// resolveOptions merges explicitly set flags over the config file over
// flag defaults and returns the pipeline options.
func resolveOptions(cmd *cobra.Command, opts *BuildOptions, globs []string) (bundle.Options, error) {
	cfgPath, explicit := config.DefaultFileName, false
	if opts.ConfigFile != "" {
		cfgPath, explicit = opts.ConfigFile, true
	}
	cfg, err := config.Load(cfgPath, explicit)
	if err != nil {
		return bundle.Options{}, err
	}

	changed := cmd.Flags().Changed
	out := bundle.Options{
		Package:         opts.Package,
		Globs:           globs,
		Output:          opts.Output,
		Excludes:        opts.Excludes,
		SingleNamespace: opts.SingleNamespace,
		Strict:          opts.Strict,
		Template:        compiler.Template(cfg.Template),
		DefineTemplate:  compiler.Template(cfg.DefineTemplate),
	}

	if !changed("package") && cfg.Package != "" {
		out.Package = cfg.Package
	}
	if len(out.Globs) == 0 {
		out.Globs = cfg.Globs
	}
	if !changed("output") {
		out.Output = cfg.Output
	}
	if !changed("exclude") {
		out.Excludes = cfg.Excludes
	}
	if !changed("single-namespace") {
		out.SingleNamespace = cfg.SingleNamespace
	}
	if !changed("strict") {
		out.Strict = cfg.Strict
	}

	if opts.TemplateFile != "" {
		if out.Template, err = readTemplate(opts.TemplateFile); err != nil {
			return bundle.Options{}, err
		}
	}
	if opts.DefineFile != "" {
		if out.DefineTemplate, err = readTemplate(opts.DefineFile); err != nil {
			return bundle.Options{}, err
		}
	}
	return out, nil
}

func readTemplate(path string) (compiler.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return compiler.Template(data), nil
}
