package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for grammar loading.
var (
	ErrUnknownFormat       = errors.New("unknown grammar file format")
	ErrEmptyDocument       = errors.New("empty grammar document")
	ErrNotMapping          = errors.New("grammar document is not a mapping")
	ErrLanguageUnavailable = errors.New("tree-sitter language not available")
	ErrDuplicateScopeName  = errors.New("duplicate grammar scope name")
	ErrNoGrammar           = errors.New("no grammar matches")
)

// SchemaError lists the schema violations of a grammar document.
type SchemaError struct {
	Source   string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid grammar: %s", e.Source, strings.Join(e.Problems, "; "))
}
