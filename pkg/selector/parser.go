package selector

import (
	"slices"

	pc "github.com/shibukawa/parsercombinator"
)

// Token type labels attached by the grammar.
const (
	labelStep     = "step"
	labelSelector = "selector"
)

var (
	termP     = kindOf(tokIdent, tokString, tokStar)
	nthChildP = nthChildQualifier()
	childP    = kindOf(tokChild)
	commaP    = kindOf(tokComma)

	// step := term nth-child?
	stepP = pc.Trans(pc.Seq(termP, pc.Optional(nthChildP)), buildStep)

	// selector := step ('>' step)*
	chainP = pc.Trans(pc.Seq(stepP, pc.ZeroOrMore("child step", pc.Seq(childP, stepP))), buildSelector)

	// list := selector (',' selector)* EOS
	listP = pc.Seq(chainP, pc.ZeroOrMore("selector", pc.Seq(commaP, chainP)), pc.EOS[token]())
)

// Parser is the default selector grammar. The zero value is ready to use.
type Parser struct{}

// Parse parses a selector or a comma-separated selector list.
func (Parser) Parse(src string) ([]Selector, error) {
	return ParseList(src)
}

// ParseList parses a selector or a comma-separated selector list.
func ParseList(src string) ([]Selector, error) {
	tokens := scan(src)
	if len(tokens) == 0 {
		return nil, ErrEmptySelector
	}

	input := make([]pc.Token[token], len(tokens))

	for idx, tok := range tokens {
		input[idx] = pc.Token[token]{
			Type: "raw",
			Pos:  &pc.Pos{Line: 1, Col: tok.offset + 1, Index: tok.offset},
			Val:  tok,
			Raw:  tok.text,
		}
	}

	pctx := pc.NewParseContext[token]()

	consumed, parsed, err := listP(pctx, input)
	if err != nil || consumed != len(input) {
		return nil, diagnose(tokens)
	}

	var selectors []Selector

	for _, tok := range parsed {
		if tok.Val.kind == tokSelector {
			selectors = append(selectors, tok.Val.selector)
		}
	}

	if len(selectors) == 0 {
		return nil, diagnose(tokens)
	}

	return selectors, nil
}

// Parse parses a single selector. A selector list is rejected.
func Parse(src string) (Selector, error) {
	selectors, err := ParseList(src)
	if err != nil {
		return nil, err
	}

	if len(selectors) != 1 {
		return nil, ErrUnexpectedToken
	}

	return selectors[0], nil
}

// MustParse is like Parse but panics on error. Use it only for hard-coded selectors.
func MustParse(src string) Selector {
	sel, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return sel
}

func kindOf(kinds ...tokenKind) pc.Parser[token] {
	return func(_ *pc.ParseContext[token], tokens []pc.Token[token]) (int, []pc.Token[token], error) {
		if len(tokens) > 0 && slices.Contains(kinds, tokens[0].Val.kind) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

func nthChildQualifier() pc.Parser[token] {
	return func(_ *pc.ParseContext[token], tokens []pc.Token[token]) (int, []pc.Token[token], error) {
		if len(tokens) == 0 {
			return 0, nil, pc.ErrNotMatch
		}

		tok := tokens[0].Val
		if tok.kind != tokPseudo || tok.text != pseudoNthChild || !tok.hasArg {
			return 0, nil, pc.ErrNotMatch
		}

		if _, ok := parsePosition(tok.arg); !ok {
			return 0, nil, pc.ErrNotMatch
		}

		return 1, tokens[:1], nil
	}
}

func buildStep(_ *pc.ParseContext[token], src []pc.Token[token]) ([]pc.Token[token], error) {
	head := src[0]

	var result Step

	switch head.Val.kind {
	case tokIdent:
		result.Term = NamedTerm(head.Val.text)
	case tokString:
		result.Term = LiteralTerm(head.Val.text)
	default:
		result.Term = Any
	}

	if len(src) > 1 {
		result.Position, _ = parsePosition(src[1].Val.arg)
		result.HasPosition = true
	}

	return []pc.Token[token]{{
		Type: labelStep,
		Pos:  head.Pos,
		Val:  token{kind: tokStep, step: result, offset: head.Val.offset},
		Raw:  head.Raw,
	}}, nil
}

func buildSelector(_ *pc.ParseContext[token], src []pc.Token[token]) ([]pc.Token[token], error) {
	var sel Selector

	for _, tok := range src {
		if tok.Val.kind == tokStep {
			sel = append(sel, tok.Val.step)
		}
	}

	return []pc.Token[token]{{
		Type: labelSelector,
		Pos:  src[0].Pos,
		Val:  token{kind: tokSelector, selector: sel, offset: src[0].Val.offset},
		Raw:  sel.String(),
	}}, nil
}
