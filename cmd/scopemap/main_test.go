package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	goSource = "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"

	sampleGrammar = `name: Sample
scopeName: source.sample
parser: go
fileTypes: [sample]
scopes:
  source_file: source.sample
  'a > b': first
  'call_expression > identifier': entity.name.function
`

	sampleGrammarNext = `name: Sample
scopeName: source.sample
parser: go
scopes:
  source_file: source.sample
  'call_expression > identifier': support.function
`

	brokenGrammar = `name: Broken
scopeName: source.broken
parser: go
scopes:
  'a >': x
`
)

// workspace writes an empty config and the given files into a temporary directory.
func workspace(t *testing.T, files map[string]string) (dir, cfgPath string) {
	t.Helper()

	dir = t.TempDir()
	cfgPath = filepath.Join(dir, ".scopemap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: error\n"), 0o600))

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	return dir, cfgPath
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	rootCmd := newRootCmd()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := rootCmd.Execute()

	return buf.String(), err
}

func TestCLI_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantOut string
		args    []string
		wantErr bool
	}{
		{wantOut: "scopemap compiles grammar scope maps", args: []string{"--help"}},
		{wantOut: "Validate grammar files against the grammar schema", args: []string{"check", "--help"}},
		{wantOut: "Query the scope map of a grammar", args: []string{"match", "--help"}},
		{wantOut: "Annotate a file with two grammars", args: []string{"diff", "--help"}},
		{wantOut: "unknown command", args: []string{"unknown"}, wantErr: true},
	}

	for _, tt := range tests {
		rootCmd := newRootCmd()
		buf := new(bytes.Buffer)
		rootCmd.SetOut(buf)
		rootCmd.SetErr(buf)
		rootCmd.SetArgs(tt.args)

		err := rootCmd.Execute()
		if tt.wantErr {
			require.Error(t, err, "args %v", tt.args)
			assert.Contains(t, err.Error(), tt.wantOut)

			continue
		}

		require.NoError(t, err, "args %v", tt.args)
		assert.Contains(t, buf.String(), tt.wantOut)
	}
}

func TestCLI_Version(t *testing.T) {
	t.Parallel()

	_, cfgPath := workspace(t, nil)

	out, err := execute(t, cfgPath, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "scopemap ")
	assert.Contains(t, out, "commit:")
}

func TestCLI_Check(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{
		"sample.yaml": sampleGrammar,
		"broken.yaml": brokenGrammar,
	})

	out, err := execute(t, cfgPath, "check", filepath.Join(dir, "sample.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "ok   ")
	assert.Contains(t, out, "source.sample")

	out, err = execute(t, cfgPath, "check", filepath.Join(dir, "sample.yaml"), filepath.Join(dir, "broken.yaml"))
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, err.Error(), "1 of 2 files")
	assert.Contains(t, out, "FAIL ")
	assert.Contains(t, out, "Unsupported selector 'a >'")
}

func TestCLI_Match(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{"sample.yaml": sampleGrammar})

	tests := []struct {
		name string
		want string
		args []string
	}{
		{
			name: "builtin with positions and text",
			args: []string{"match", "source.go", "call_expression", "identifier", "--positions", "0,0", "--text", "len"},
			want: "scope: support.function.builtin",
		},
		{
			name: "builtin without text",
			args: []string{"match", "source.go", "call_expression", "identifier", "--positions", "0,0", "--text", "parse"},
			want: "scope: entity.name.function",
		},
		{
			name: "anonymous leaf",
			args: []string{"match", "source.go", "source_file", `"package"`, "--anonymous"},
			want: "scope: keyword.control.import",
		},
		{
			name: "grammar file",
			args: []string{"match", filepath.Join(dir, "sample.yaml"), "a", "b"},
			want: "scope: first",
		},
		{
			name: "no match",
			args: []string{"match", filepath.Join(dir, "sample.yaml"), "b"},
			want: "no match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, cfgPath, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCLI_MatchUnknownGrammar(t *testing.T) {
	t.Parallel()

	_, cfgPath := workspace(t, nil)

	_, err := execute(t, cfgPath, "match", "source.nothing", "a")
	require.ErrorIs(t, err, ErrUnknownGrammar)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = execute(t, cfgPath, "match", "source.og", "a")
	require.ErrorIs(t, err, ErrUnknownGrammar)
	assert.Contains(t, err.Error(), "did you mean source.go?")
}

func TestCLI_Inspect(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{"sample.yaml": sampleGrammar})

	out, err := execute(t, cfgPath, "inspect", filepath.Join(dir, "sample.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Sample (source.sample)")
	assert.Contains(t, out, "a > b")
	assert.Contains(t, out, "call_expression > identifier")
	assert.Contains(t, out, "entity.name.function")
	assert.Contains(t, out, "TOTAL: 3 ENTRIES")

	out, err = execute(t, cfgPath, "inspect", "--stats", filepath.Join(dir, "sample.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "declarations")
	assert.NotContains(t, out, "TOTAL:")
}

func TestCLI_Annotate(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{"main.go": goSource})

	out, err := execute(t, cfgPath, "annotate", filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, out, "4:2-4:9\tidentifier\tsupport.function.builtin\t\"println\"\n")

	out, err = execute(t, cfgPath, "annotate", "--format", "table", filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, out, "support.function.builtin")
	assert.Contains(t, out, "NODES SCOPED")

	_, err = execute(t, cfgPath, "annotate", "--format", "xml", filepath.Join(dir, "main.go"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.go"), []byte("\x00\x01"), 0o600))

	_, err = execute(t, cfgPath, "annotate", filepath.Join(dir, "blob.go"))
	require.ErrorIs(t, err, ErrBinaryFile)
}

func TestCLI_Diff(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{
		"main.go":     goSource,
		"before.yaml": sampleGrammar,
		"after.yaml":  sampleGrammarNext,
	})

	before, after, file := filepath.Join(dir, "before.yaml"), filepath.Join(dir, "after.yaml"), filepath.Join(dir, "main.go")

	out, err := execute(t, cfgPath, "diff", before, after, file)
	require.NoError(t, err)
	assert.Contains(t, out, "-4:2-4:9\tidentifier\tentity.name.function\t\"println\"\n")
	assert.Contains(t, out, "+4:2-4:9\tidentifier\tsupport.function\t\"println\"\n")
	assert.Contains(t, out, "1 added, 1 removed")

	_, err = execute(t, cfgPath, "diff", "--exit-code", before, after, file)
	require.ErrorIs(t, err, ErrAnnotationsDiffer)

	out, err = execute(t, cfgPath, "diff", "--exit-code", before, before, file)
	require.NoError(t, err)
	assert.Contains(t, out, "no changes")
}

func TestCLI_MetricsTextfile(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{"sample.yaml": sampleGrammar})
	textfile := filepath.Join(dir, "scopemap.prom")

	_, err := execute(t, cfgPath, "--metrics-textfile", textfile, "check", filepath.Join(dir, "sample.yaml"))
	require.NoError(t, err)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scopemap_builds")
}

func TestCLI_MetricsTextfileOnFailure(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{"broken.yaml": brokenGrammar})
	textfile := filepath.Join(dir, "scopemap.prom")

	_, err := execute(t, cfgPath, "--metrics-textfile", textfile, "check", filepath.Join(dir, "broken.yaml"))
	require.ErrorIs(t, err, ErrCheckFailed)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scopemap_builds")
}

func TestGrammarFor_DefaultGrammar(t *testing.T) {
	t.Parallel()

	dir, cfgPath := workspace(t, map[string]string{"notes.txt": "package x\n"})
	require.NoError(t, os.WriteFile(cfgPath, []byte("grammars:\n  default: source.go\n"), 0o600))

	state := &app{cfgFile: cfgPath}
	require.NoError(t, state.setup(t.Context()))

	t.Cleanup(func() { require.NoError(t, state.teardown(t.Context())) })

	g, err := state.grammarFor("", filepath.Join(dir, "notes.txt"), []byte("package x\n"))
	require.NoError(t, err)
	assert.Equal(t, "source.go", g.ScopeName)
}
