// Package builtin embeds the grammars shipped with scopemap.
package builtin

import "embed"

// FS holds the built-in grammar files at its root.
//
//go:embed *.yaml *.toml *.json
var FS embed.FS

// Root is the directory of FS that holds the grammars.
const Root = "."
