package selector

import (
	"strings"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokIdent tokenKind = iota + 1
	tokString
	tokStar
	tokChild
	tokComma
	tokPseudo
	tokSpace
	tokOther
	tokBadString
	tokBadPseudo

	// Produced by the parser, never by the scanner.
	tokStep
	tokSelector
)

// token is the value carried through the combinator parser.
type token struct {
	text     string
	arg      string
	selector Selector
	step     Step
	offset   int
	kind     tokenKind
	hasArg   bool
}

// scan splits a selector source into tokens. Whitespace around '>' and ',' belongs to the
// combinator; any other whitespace between terms is reported as tokSpace (a descendant
// combinator, which the grammar rejects).
func scan(src string) []token {
	sc := scanner{src: src}

	sc.skipSpace()

	for sc.pos < len(sc.src) {
		sc.next()
	}

	sc.trimTrailingSpace()

	return sc.tokens
}

type scanner struct {
	src    string
	tokens []token
	pos    int
}

func (sc *scanner) emit(tok token) {
	sc.tokens = append(sc.tokens, tok)
}

func (sc *scanner) next() {
	start := sc.pos
	ch := sc.src[sc.pos]

	switch {
	case isSpace(ch):
		sc.skipSpace()

		if sc.pos < len(sc.src) && (sc.src[sc.pos] == '>' || sc.src[sc.pos] == ',') {
			return
		}

		sc.emit(token{kind: tokSpace, offset: start, text: sc.src[start:sc.pos]})
	case ch == '>':
		sc.pos++
		sc.dropSpaceToken()
		sc.skipSpace()
		sc.emit(token{kind: tokChild, offset: start, text: ">"})
	case ch == ',':
		sc.pos++
		sc.dropSpaceToken()
		sc.skipSpace()
		sc.emit(token{kind: tokComma, offset: start, text: ","})
	case ch == '*':
		sc.pos++
		sc.emit(token{kind: tokStar, offset: start, text: "*"})
	case ch == '"':
		sc.scanString()
	case ch == ':':
		sc.scanPseudo()
	case isIdentStart(ch):
		sc.emit(token{kind: tokIdent, offset: start, text: sc.ident()})
	default:
		_, size := utf8.DecodeRuneInString(sc.src[sc.pos:])
		sc.pos += size
		sc.emit(token{kind: tokOther, offset: start, text: sc.src[start:sc.pos]})
	}
}

func (sc *scanner) scanString() {
	start := sc.pos
	sc.pos++

	var sb strings.Builder

	for sc.pos < len(sc.src) {
		ch := sc.src[sc.pos]

		switch {
		case ch == '"':
			sc.pos++
			sc.emit(token{kind: tokString, offset: start, text: sb.String()})

			return
		case ch == '\\' && sc.pos+1 < len(sc.src):
			sb.WriteByte(sc.src[sc.pos+1])
			sc.pos += 2
		default:
			sb.WriteByte(ch)
			sc.pos++
		}
	}

	sc.emit(token{kind: tokBadString, offset: start, text: sc.src[start:]})
}

func (sc *scanner) scanPseudo() {
	start := sc.pos
	sc.pos++

	if sc.pos >= len(sc.src) || !isIdentStart(sc.src[sc.pos]) {
		sc.emit(token{kind: tokBadPseudo, offset: start, text: sc.src[start:sc.pos]})

		return
	}

	name := sc.ident()

	if sc.pos >= len(sc.src) || sc.src[sc.pos] != '(' {
		sc.emit(token{kind: tokPseudo, offset: start, text: name})

		return
	}

	closing := strings.IndexByte(sc.src[sc.pos:], ')')
	if closing < 0 {
		sc.pos = len(sc.src)
		sc.emit(token{kind: tokBadPseudo, offset: start, text: sc.src[start:]})

		return
	}

	arg := strings.TrimSpace(sc.src[sc.pos+1 : sc.pos+closing])
	sc.pos += closing + 1
	sc.emit(token{kind: tokPseudo, offset: start, text: name, arg: arg, hasArg: true})
}

func (sc *scanner) ident() string {
	start := sc.pos

	for sc.pos < len(sc.src) && isIdentPart(sc.src[sc.pos]) {
		sc.pos++
	}

	return sc.src[start:sc.pos]
}

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.src) && isSpace(sc.src[sc.pos]) {
		sc.pos++
	}
}

// dropSpaceToken removes a whitespace token emitted right before a combinator.
func (sc *scanner) dropSpaceToken() {
	if n := len(sc.tokens); n > 0 && sc.tokens[n-1].kind == tokSpace {
		sc.tokens = sc.tokens[:n-1]
	}
}

func (sc *scanner) trimTrailingSpace() {
	sc.dropSpaceToken()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '-' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch >= utf8.RuneSelf
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ('0' <= ch && ch <= '9')
}
