package selector

import (
	"errors"
	"fmt"
	"strconv"
)

// Rejection reasons. A parse failure wraps exactly one of these.
var (
	ErrEmptySelector         = errors.New("empty selector")
	ErrDanglingCombinator    = errors.New("combinator without a term on both sides")
	ErrMisplacedQualifier    = errors.New("qualifier not attached to a term")
	ErrDuplicateQualifier    = errors.New("more than one qualifier on a term")
	ErrUnsupportedPseudo     = errors.New("unsupported pseudo-class")
	ErrInvalidPosition       = errors.New("nth-child argument must be a non-negative integer")
	ErrUnsupportedCombinator = errors.New("only the child combinator is supported")
	ErrUnterminatedString    = errors.New("unterminated string")
	ErrUnexpectedToken       = errors.New("unexpected token")
)

const pseudoNthChild = "nth-child"

// parsePosition validates an nth-child argument.
func parsePosition(arg string) (int, bool) {
	if arg == "" {
		return 0, false
	}

	for idx := range len(arg) {
		if arg[idx] < '0' || arg[idx] > '9' {
			return 0, false
		}
	}

	position, err := strconv.Atoi(arg)
	if err != nil {
		return 0, false
	}

	return position, true
}

// diagnose explains why a token stream was rejected by the grammar.
//
//nolint:cyclop,gocognit // one state machine mirrors the grammar
func diagnose(tokens []token) error {
	if len(tokens) == 0 {
		return ErrEmptySelector
	}

	expectTerm := true
	qualified := false

	for _, tok := range tokens {
		switch tok.kind {
		case tokIdent, tokString, tokStar:
			if !expectTerm {
				return fmt.Errorf("%w at offset %d", ErrUnexpectedToken, tok.offset)
			}

			expectTerm, qualified = false, false
		case tokPseudo:
			switch {
			case tok.text != pseudoNthChild:
				return fmt.Errorf("%w :%s", ErrUnsupportedPseudo, tok.text)
			case expectTerm:
				return fmt.Errorf("%w at offset %d", ErrMisplacedQualifier, tok.offset)
			case qualified:
				return fmt.Errorf("%w at offset %d", ErrDuplicateQualifier, tok.offset)
			}

			if _, ok := parsePosition(tok.arg); !ok || !tok.hasArg {
				return fmt.Errorf("%w: %q", ErrInvalidPosition, tok.arg)
			}

			qualified = true
		case tokChild:
			if expectTerm {
				return fmt.Errorf("%w at offset %d", ErrDanglingCombinator, tok.offset)
			}

			expectTerm = true
		case tokComma:
			if expectTerm {
				return fmt.Errorf("%w in list at offset %d", ErrEmptySelector, tok.offset)
			}

			expectTerm = true
		case tokSpace:
			return fmt.Errorf("%w: descendant combinator at offset %d", ErrUnsupportedCombinator, tok.offset)
		case tokBadString:
			return fmt.Errorf("%w at offset %d", ErrUnterminatedString, tok.offset)
		case tokOther:
			if tok.text == "+" || tok.text == "~" {
				return fmt.Errorf("%w: %q at offset %d", ErrUnsupportedCombinator, tok.text, tok.offset)
			}

			return fmt.Errorf("%w %q at offset %d", ErrUnexpectedToken, tok.text, tok.offset)
		default:
			return fmt.Errorf("%w %q at offset %d", ErrUnexpectedToken, tok.text, tok.offset)
		}
	}

	if expectTerm {
		last := tokens[len(tokens)-1]
		if last.kind == tokChild {
			return fmt.Errorf("%w at offset %d", ErrDanglingCombinator, last.offset)
		}

		return ErrEmptySelector
	}

	return fmt.Errorf("%w at end of input", ErrUnexpectedToken)
}
