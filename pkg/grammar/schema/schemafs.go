// Package schema provides the embedded grammar file JSON schema.
package schema

import "embed"

// FS contains grammar.schema.json.
//
//go:embed grammar.schema.json
var FS embed.FS

// FileName is the schema's name inside FS.
const FileName = "grammar.schema.json"
