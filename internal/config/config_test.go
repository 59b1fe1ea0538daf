package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	content := `
package: package.json
globs:
  - "lib/**/*.js"
  - /abs/*.js
output: dist/foo.js
excludes:
  - "**/*-test.js"
single_namespace: true
strict: true
define_template: "function(f){window.{{global}}=f();}"
template: |
  (function(){
  {{content}}
  }());
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, filepath.Join(dir, "package.json"), cfg.Package)
	assert.Equal(t, []string{filepath.Join(dir, "lib/**/*.js"), "/abs/*.js"}, cfg.Globs)
	assert.Equal(t, filepath.Join(dir, "dist", "foo.js"), cfg.Output)
	assert.Equal(t, []string{filepath.Join(dir, "**/*-test.js")}, cfg.Excludes)
	assert.True(t, cfg.SingleNamespace)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "function(f){window.{{global}}=f();}", cfg.DefineTemplate)
	assert.Equal(t, "(function(){\n{{content}}\n}());\n", cfg.Template)
}

func TestLoadMissingImplicit(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFileName), false)
	require.NoError(t, err)
	assert.Equal(t, &File{}, cfg)
}

func TestLoadMissingExplicit(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Empty(t, cfg.Globs)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("exclude:\n  - x\n"), 0644))

	_, err := Load(path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
