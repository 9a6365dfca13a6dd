// Package scoperules resolves the scope attached to a matched node from its leaf rules.
//
// A rule is one of:
//
//	"keyword.control"                            a scope name
//	[rule, rule, ...]                            the first alternative that applies
//	{exact: "func", scopes: rule}                applies when the node text equals exact
//	{match: "^[A-Z]", scopes: rule}              applies when the node text matches the pattern
package scoperules

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Rule.
type Kind int

// Rule kinds.
const (
	KindScope Kind = iota + 1
	KindList
	KindExact
	KindMatch
)

// Sentinel errors.
var (
	ErrInvalidRule   = errors.New("invalid scope rule")
	ErrEmptyScope    = errors.New("empty scope name")
	ErrMissingScopes = errors.New("conditional rule without scopes")
	ErrBadPattern    = errors.New("invalid match pattern")
)

// Rule is an immutable leaf rule.
type Rule struct {
	pattern      *regexp.Regexp
	then         *Rule
	scope        string
	text         string
	alternatives []Rule
	kind         Kind
}

// Scope returns a rule that always yields name.
func Scope(name string) Rule {
	return Rule{kind: KindScope, scope: name}
}

// List returns a rule yielding the first alternative that applies.
func List(alternatives ...Rule) Rule {
	return Rule{kind: KindList, alternatives: slices.Clone(alternatives)}
}

// Exact returns a rule that applies then when the node text equals text.
func Exact(text string, then Rule) Rule {
	return Rule{kind: KindExact, text: text, then: &then}
}

// Match returns a rule that applies then when the node text matches pattern.
func Match(pattern string, then Rule) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("%w %q: %w", ErrBadPattern, pattern, err)
	}

	return Rule{kind: KindMatch, pattern: re, text: pattern, then: &then}, nil
}

// MustMatch is Match that panics on an invalid pattern.
func MustMatch(pattern string, then Rule) Rule {
	rule, err := Match(pattern, then)
	if err != nil {
		panic(err)
	}

	return rule
}

// Kind returns the rule shape. The zero Rule has kind 0 and never applies.
func (r Rule) Kind() Kind {
	return r.kind
}

// Apply returns the scope the rule yields for a node with the given text.
func (r Rule) Apply(text string) (string, bool) {
	switch r.kind {
	case KindScope:
		return r.scope, r.scope != ""
	case KindList:
		for _, alt := range r.alternatives {
			if scope, ok := alt.Apply(text); ok {
				return scope, true
			}
		}
	case KindExact:
		if text == r.text {
			return r.then.Apply(text)
		}
	case KindMatch:
		if r.pattern.MatchString(text) {
			return r.then.Apply(text)
		}
	}

	return "", false
}

// NeedsText reports whether the outcome depends on the node text.
func (r Rule) NeedsText() bool {
	switch r.kind {
	case KindExact, KindMatch:
		return true
	case KindList:
		return slices.ContainsFunc(r.alternatives, Rule.NeedsText)
	default:
		return false
	}
}

// String renders the rule in a compact, YAML-like flow form.
func (r Rule) String() string {
	switch r.kind {
	case KindScope:
		return r.scope
	case KindList:
		parts := make([]string, len(r.alternatives))
		for idx, alt := range r.alternatives {
			parts[idx] = alt.String()
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case KindExact:
		return "{exact: " + strconv.Quote(r.text) + ", scopes: " + r.then.String() + "}"
	case KindMatch:
		return "{match: " + strconv.Quote(r.text) + ", scopes: " + r.then.String() + "}"
	default:
		return ""
	}
}

// Resolve picks the scope for a node from the rules returned by a scope map query, ordered
// least to most specific. The most specific rule that applies wins; when it yields nothing,
// less specific rules are tried in turn.
func Resolve(rules []Rule, text string) (string, bool) {
	for idx := len(rules) - 1; idx >= 0; idx-- {
		if scope, ok := rules[idx].Apply(text); ok {
			return scope, true
		}
	}

	return "", false
}

// NeedText reports whether resolving rules may need the node text.
func NeedText(rules []Rule) bool {
	return slices.ContainsFunc(rules, Rule.NeedsText)
}
