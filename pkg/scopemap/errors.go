package scopemap

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSelector matches every CompileError.
var ErrUnsupportedSelector = errors.New("unsupported selector")

// CompileError reports the first selector that could not be compiled. Its message names the
// selector exactly as it was declared.
type CompileError struct {
	// Err is the reason reported by the selector parser.
	Err      error
	Selector string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("Unsupported selector '%s'", e.Selector)
}

// Unwrap returns the parser's reason.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnsupportedSelector.
func (e *CompileError) Is(target error) bool {
	return target == ErrUnsupportedSelector
}
