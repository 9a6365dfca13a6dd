package grammar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/scopemap/pkg/grammar"
	"github.com/Sumatoshi-tech/scopemap/pkg/grammar/builtin"
	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
	"github.com/Sumatoshi-tech/scopemap/pkg/scoperules"
)

const yamlGrammar = `
name: Sample
scopeName: source.sample
parser: go
fileTypes: [smp]
scopes:
  a > b: first
  identifier:
    - exact: self
      scopes: variable.language
    - variable
  a>b: second
`

const jsonGrammar = `{
  "name": "Sample",
  "scopeName": "source.sample",
  "parser": "go",
  "fileTypes": ["smp"],
  "scopes": {
    "a > b": "first",
    "identifier": [{"exact": "self", "scopes": "variable.language"}, "variable"],
    "a>b": "second"
  }
}`

const tomlGrammar = `
name = "Sample"
scopeName = "source.sample"
parser = "go"
fileTypes = ["smp"]

[scopes]
"a > b" = "first"
identifier = [{ exact = "self", scopes = "variable.language" }, "variable"]
"a>b" = "second"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func resolve(t *testing.T, g *grammar.Grammar, types []string, positions []int, text string) string {
	t.Helper()

	rules, ok := g.Scopes.Get(types, positions, true)
	require.True(t, ok)

	scope, ok := scoperules.Resolve(rules, text)
	require.True(t, ok)

	return scope
}

func TestLoadFile_AllFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml", file: "sample.yaml", content: yamlGrammar},
		{name: "json", file: "sample.json", content: jsonGrammar},
		{name: "toml", file: "sample.toml", content: tomlGrammar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			g, err := grammar.LoadFile(path)
			require.NoError(t, err)

			assert.Equal(t, "Sample", g.Name)
			assert.Equal(t, "source.sample", g.ScopeName)
			assert.Equal(t, "go", g.Parser)
			assert.Equal(t, path, g.Source)
			assert.Equal(t, []string{"smp"}, g.FileTypes)

			// The later spelling of a > b wins because document order is kept.
			assert.Equal(t, "second", resolve(t, g, []string{"a", "b"}, nil, "b"))
			assert.Equal(t, "variable.language", resolve(t, g, []string{"identifier"}, nil, "self"))
			assert.Equal(t, "variable", resolve(t, g, []string{"identifier"}, nil, "x"))
		})
	}
}

func TestDecode_KeepsScopeOrder(t *testing.T) {
	t.Parallel()

	def, err := grammar.Decode([]byte(tomlGrammar), grammar.FormatTOML)
	require.NoError(t, err)

	selectors := make([]string, 0, len(def.Scopes))
	for _, entry := range def.Scopes {
		selectors = append(selectors, entry.Selector)
	}

	assert.Equal(t, []string{"a > b", "identifier", "a>b"}, selectors)

	def, err = grammar.Decode([]byte(yamlGrammar), grammar.FormatYAML)
	require.NoError(t, err)
	require.Len(t, def.Scopes, 3)
	assert.Equal(t, "a>b", def.Scopes[2].Selector)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := grammar.Decode([]byte(""), grammar.FormatYAML)
	require.ErrorIs(t, err, grammar.ErrEmptyDocument)

	_, err = grammar.Decode([]byte("- a\n- b\n"), grammar.FormatYAML)
	require.ErrorIs(t, err, grammar.ErrNotMapping)

	_, err = grammar.Decode([]byte("name = \n"), grammar.FormatTOML)
	require.Error(t, err)

	_, err = grammar.Decode([]byte("{}"), grammar.Format(0))
	require.ErrorIs(t, err, grammar.ErrUnknownFormat)

	_, err = grammar.FormatOf("grammar.xml")
	require.ErrorIs(t, err, grammar.ErrUnknownFormat)
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "broken.yaml", `
name: Broken
scopeName: "not a scope"
scopes:
  identifier: 42
`)

	_, err := grammar.Load(path)
	require.Error(t, err)

	var schemaErr *grammar.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, path, schemaErr.Source)
	assert.NotEmpty(t, schemaErr.Problems)
	assert.Contains(t, err.Error(), "parser")
	assert.Contains(t, err.Error(), "scopeName")
}

func TestLoadFile_UnsupportedSelector(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.yaml", `
name: Bad
scopeName: source.bad
parser: go
scopes:
  "a > b >": x
`)

	_, err := grammar.LoadFile(path)
	require.ErrorIs(t, err, scopemap.ErrUnsupportedSelector)
	assert.Contains(t, err.Error(), "Unsupported selector 'a > b >'")
	assert.Contains(t, err.Error(), path)
}

func TestRegistry_Builtin(t *testing.T) {
	t.Parallel()

	reg := grammar.NewRegistry()

	added, err := reg.LoadFS(builtin.FS, builtin.Root)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	names := make([]string, 0, added)
	for _, g := range reg.Grammars() {
		names = append(names, g.ScopeName)
	}

	assert.Equal(t, []string{"source.go", "source.json", "source.python"}, names)

	goGrammar, ok := reg.ByScopeName("source.go")
	require.True(t, ok)
	callee := []string{"source_file", "call_expression", "identifier"}

	assert.Equal(t, "support.function.builtin", resolve(t, goGrammar, callee, []int{0, 0, 0}, "len"))
	assert.Equal(t, "entity.name.function", resolve(t, goGrammar, callee, []int{0, 0, 0}, "parse"))
	assert.Equal(t, "entity.name.function", resolve(t, goGrammar, callee, nil, "len"))
	assert.Equal(t, "variable.language.blank", resolve(t, goGrammar, []string{"identifier"}, nil, "_"))

	_, err = reg.LoadFS(builtin.FS, builtin.Root)
	require.ErrorIs(t, err, grammar.ErrDuplicateScopeName)
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	reg := grammar.NewRegistry()
	_, err := reg.LoadFS(builtin.FS, builtin.Root)
	require.NoError(t, err)

	tests := []struct {
		path    string
		content string
		want    string
	}{
		{path: "cmd/main.go", want: "source.go"},
		{path: "package.json", want: "source.json"},
		{path: "/home/u/.babelrc", want: "source.json"},
		{path: "lib/tool.pyw", want: "source.python"},
		{path: "bin/script", content: "#!/usr/bin/env python\nprint(1)\n", want: "source.python"},
	}

	for _, tt := range tests {
		g, forErr := reg.ForPath(tt.path, []byte(tt.content))
		require.NoError(t, forErr, tt.path)
		assert.Equal(t, tt.want, g.ScopeName, tt.path)
	}

	_, err = reg.ForPath("README.md", []byte("# title\n"))
	require.ErrorIs(t, err, grammar.ErrNoGrammar)
}

func TestRegistry_LoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "sample.toml", tomlGrammar)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	reg := grammar.NewRegistry()

	added, err := reg.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	g, ok := reg.ByScopeName("source.sample")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "sample.toml"), g.Source)

	_, err = reg.LoadDir(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestLanguageFor(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, grammar.LanguageFor("go"))
	assert.Same(t, grammar.LanguageFor("go"), grammar.LanguageFor("go"))
	assert.Nil(t, grammar.LanguageFor("definitely-not-a-language"))

	g := &grammar.Grammar{Parser: "definitely-not-a-language"}

	_, err := g.Language()
	require.ErrorIs(t, err, grammar.ErrLanguageUnavailable)
}
