// Package config loads the optional project file that supplies defaults for
// the bundle command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = "anachronize.yaml"

// File is the project configuration. Every field is optional; explicitly
// set CLI flags take precedence.
//
// Relative paths and patterns are resolved against the directory holding
// the file, not the working directory.
type File struct {
	// Package is the package descriptor path.
	Package string `yaml:"package,omitempty"`

	// Globs select the input module files.
	Globs []string `yaml:"globs,omitempty"`

	// Output is the bundle path. Empty writes to stdout.
	Output string `yaml:"output,omitempty"`

	// Excludes are patterns removed from the input set.
	Excludes []string `yaml:"excludes,omitempty"`

	// SingleNamespace nests globals under one object (foo.util) instead of
	// flat names (foo_util).
	SingleNamespace bool `yaml:"single_namespace,omitempty"`

	// Strict turns dangling dependency references into errors.
	Strict bool `yaml:"strict,omitempty"`

	// Template is an inline output template consuming {{main}} and {{content}}.
	Template string `yaml:"template,omitempty"`

	// DefineTemplate is an inline define shim consuming {{global}}.
	DefineTemplate string `yaml:"define_template,omitempty"`

	// Path is where the file was loaded from; empty when none was found.
	Path string `yaml:"-"`
}

// Load reads a config file.
//
// When explicit is false a missing file yields an empty config; when true
// (the user named the file) it is an error. Unknown keys are rejected.
func Load(path string, explicit bool) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return &File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Strict field validation catches typos like "exclude:" vs "excludes:"
	var cfg File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.Path = abs
	cfg.resolve(filepath.Dir(abs))

	return &cfg, nil
}

// resolve makes relative paths and patterns absolute against dir.
func (c *File) resolve(dir string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	c.Package = join(c.Package)
	c.Output = join(c.Output)
	for i := range c.Globs {
		c.Globs[i] = join(c.Globs[i])
	}
	for i := range c.Excludes {
		c.Excludes[i] = join(c.Excludes[i])
	}
}
