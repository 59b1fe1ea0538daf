package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anachronize/internal/testutil"
)

// fooPackage is index.js depending on util.js.
func fooPackage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WritePackage(t, dir, "foo", "index", map[string]string{
		"index.js": testutil.UMD("\tvar util = require('./util');\n\treturn { util: util };"),
		"util.js":  testutil.UMD("\treturn { answer: 42 };"),
	})
	return dir
}

// execute runs the root command and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func decodeSummary(t *testing.T, resp CLIResponse) BundleSummary {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var s BundleSummary
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestBundle_WritesOutputFile(t *testing.T) {
	dir := fooPackage(t)
	out := filepath.Join(dir, "dist", "foo.js")

	stdout, _, err := execute(t, "bundle",
		"-p", filepath.Join(dir, "package.json"),
		"-o", out,
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Bundled 2 module(s)")
	assert.Contains(t, stdout, "foo_util")

	script, err := os.ReadFile(out)
	require.NoError(t, err)
	s := string(script)
	assert.Contains(t, s, "// Module: util")
	assert.Contains(t, s, "__anachronizeRoot.index=factory(__anachronizeRequire)")
	assert.Less(t, strings.Index(s, "// Module: util"), strings.Index(s, "// Module: index"))
	assert.Contains(t, s, "require('foo_util')")
}

func TestBundle_StdoutCarriesOnlyScript(t *testing.T) {
	dir := fooPackage(t)

	stdout, _, err := execute(t, "bundle",
		"-p", filepath.Join(dir, "package.json"),
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, ";(function(__anachronizeRoot){"), stdout)
	assert.NotContains(t, stdout, "Bundled")
}

func TestBundle_JSON(t *testing.T) {
	dir := fooPackage(t)
	out := filepath.Join(dir, "foo.bundle.js")

	stdout, _, err := execute(t, "--format", "json", "bundle",
		"-p", filepath.Join(dir, "package.json"),
		"-o", out,
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	resp := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.BuildID)

	s := decodeSummary(t, resp)
	assert.Equal(t, "foo", s.Package)
	assert.Equal(t, "index", s.Main)
	assert.Equal(t, out, s.Output)
	assert.Len(t, s.Digest, 64)
	assert.Empty(t, s.Script)

	require.Len(t, s.Modules, 2)
	assert.Equal(t, ModuleSummary{ID: "util", Global: "foo_util", Deps: []string{}}, s.Modules[0])
	assert.Equal(t, ModuleSummary{ID: "index", Global: "index", Deps: []string{"util"}}, s.Modules[1])
}

func TestBundle_JSONEmbedsScriptWithoutOutput(t *testing.T) {
	dir := fooPackage(t)

	stdout, _, err := execute(t, "--format", "json", "bundle",
		"-p", filepath.Join(dir, "package.json"),
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	s := decodeSummary(t, decodeResponse(t, stdout))
	assert.Contains(t, s.Script, "__anachronizeRequire")
}

func TestBundle_BundledOutputIsNotAnInput(t *testing.T) {
	dir := fooPackage(t)
	out := filepath.Join(dir, "foo.bundle.js")

	for i := 0; i < 2; i++ {
		_, _, err := execute(t, "bundle",
			"-p", filepath.Join(dir, "package.json"),
			"-o", out,
			filepath.Join(dir, "*.js"))
		require.NoError(t, err)
	}

	script, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(script), "// Module: foo.bundle")
}

func TestBundle_Exclude(t *testing.T) {
	dir := fooPackage(t)
	testutil.WriteFiles(t, dir, map[string]string{
		"index.test.js": testutil.UMD("\treturn {};"),
	})

	stdout, _, err := execute(t, "--format", "json", "bundle",
		"-p", filepath.Join(dir, "package.json"),
		"-x", filepath.Join(dir, "*.test.js"),
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	s := decodeSummary(t, decodeResponse(t, stdout))
	require.Len(t, s.Modules, 2)
	for _, m := range s.Modules {
		assert.NotEqual(t, "index.test", m.ID)
	}
}

func TestBundle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		extra    []string
		outside  bool
		wantCode string
		wantExit int
	}{
		{
			name: "cycle",
			files: map[string]string{
				"a.js": testutil.UMD("\treturn require('./b');"),
				"b.js": testutil.UMD("\treturn require('./a');"),
			},
			wantCode: ErrCodeCycle,
			wantExit: ExitFailure,
		},
		{
			name: "strict_dangling",
			files: map[string]string{
				"a.js": testutil.UMD("\treturn require('./missing');"),
			},
			extra:    []string{"--strict"},
			wantCode: ErrCodeDangling,
			wantExit: ExitFailure,
		},
		{
			name: "outside_root",
			files: map[string]string{
				"a.js": testutil.UMD("\treturn {};"),
			},
			outside:  true,
			wantCode: ErrCodeUnresolvable,
			wantExit: ExitCommandError,
		},
		{
			name: "bad_exclude",
			files: map[string]string{
				"a.js": testutil.UMD("\treturn {};"),
			},
			extra:    []string{"-x", "[unclosed"},
			wantCode: ErrCodeBadPattern,
			wantExit: ExitCommandError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, "pkg")
			testutil.WritePackage(t, dir, "foo", "index", tt.files)

			glob := filepath.Join(dir, "*.js")
			if tt.outside {
				other := filepath.Join(root, "other")
				require.NoError(t, os.MkdirAll(other, 0755))
				require.NoError(t, os.WriteFile(filepath.Join(other, "x.js"), []byte(testutil.UMD("")), 0644))
				glob = filepath.Join(other, "*.js")
			}
			out := filepath.Join(root, "out.js")

			args := []string{"--format", "json", "bundle", "-p", filepath.Join(dir, "package.json"), "-o", out}
			args = append(args, tt.extra...)
			args = append(args, glob)

			stdout, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			resp := decodeResponse(t, stdout)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)

			assert.NoFileExists(t, out)
		})
	}
}

func TestBundle_LenientDanglingReported(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePackage(t, dir, "foo", "index", map[string]string{
		"index.js": testutil.UMD("\treturn require('./missing');"),
	})
	out := filepath.Join(dir, "out.js")

	stdout, stderr, err := execute(t, "bundle",
		"-p", filepath.Join(dir, "package.json"),
		"-o", out,
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Dangling references")
	assert.Contains(t, stdout, "index → missing")
	assert.Contains(t, stderr, "dropping unresolved dependency")
}

func TestBundle_NoGlobs(t *testing.T) {
	dir := fooPackage(t)

	stdout, _, err := execute(t, "--format", "json", "bundle", "-p", filepath.Join(dir, "package.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeNoPatterns, decodeResponse(t, stdout).Error.Code)
}

func TestBundle_NoMatches(t *testing.T) {
	dir := fooPackage(t)

	stdout, _, err := execute(t, "--format", "json", "bundle",
		"-p", filepath.Join(dir, "package.json"),
		filepath.Join(dir, "*.ts"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeNoModules, decodeResponse(t, stdout).Error.Code)
}

func TestBundle_MissingDescriptor(t *testing.T) {
	dir := fooPackage(t)

	stdout, _, err := execute(t, "bundle",
		"-p", filepath.Join(dir, "nope.json"),
		filepath.Join(dir, "*.js"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeDescriptor+"]")
}

func TestBundle_ConfigFile(t *testing.T) {
	dir := fooPackage(t)
	cfg := filepath.Join(dir, "anachronize.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`package: package.json
globs:
  - "*.js"
output: dist/foo.js
single_namespace: true
`), 0644))

	_, _, err := execute(t, "bundle", "-c", cfg)
	require.NoError(t, err)

	script, err := os.ReadFile(filepath.Join(dir, "dist", "foo.js"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "__anachronizeRoot.foo = __anachronizeRoot.foo || {};")
	assert.Contains(t, string(script), "__anachronizeRoot.foo.util=factory")
}

func TestBundle_FlagsOverrideConfigFile(t *testing.T) {
	dir := fooPackage(t)
	cfg := filepath.Join(dir, "anachronize.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`package: package.json
globs: ["*.js"]
output: dist/foo.js
single_namespace: true
`), 0644))
	out := filepath.Join(dir, "elsewhere.js")

	_, _, err := execute(t, "bundle", "-c", cfg, "-o", out, "--single-namespace=false")
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, "dist", "foo.js"))
	script, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(script), "__anachronizeRoot.foo_util=factory")
}

func TestBundle_MissingExplicitConfig(t *testing.T) {
	dir := fooPackage(t)

	stdout, _, err := execute(t, "--format", "json", "bundle",
		"-c", filepath.Join(dir, "missing.yaml"),
		filepath.Join(dir, "*.js"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeConfig, decodeResponse(t, stdout).Error.Code)
}

func TestBundle_TemplateFiles(t *testing.T) {
	dir := fooPackage(t)
	tmpl := filepath.Join(dir, "wrap.tmpl")
	define := filepath.Join(dir, "define.tmpl")
	require.NoError(t, os.WriteFile(tmpl, []byte("/* main: {{main}} */\n{{content}}"), 0644))
	require.NoError(t, os.WriteFile(define, []byte("function(f){ register('{{global}}', f); }"), 0644))

	stdout, _, err := execute(t, "bundle",
		"-p", filepath.Join(dir, "package.json"),
		"--template", tmpl,
		"--define-template", define,
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "/* main: index */\n"), stdout)
	assert.Contains(t, stdout, "register('foo_util', f);")
}

func TestBundle_VerboseLogsToStderr(t *testing.T) {
	dir := fooPackage(t)

	stdout, stderr, err := execute(t, "--verbose", "--format", "json", "bundle",
		"-p", filepath.Join(dir, "package.json"),
		filepath.Join(dir, "*.js"))
	require.NoError(t, err)

	assert.Contains(t, stderr, "emit")
	assert.Equal(t, "ok", decodeResponse(t, stdout).Status)
}
