package scoperules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/scopemap/pkg/mapx"
)

const (
	keyExact  = "exact"
	keyMatch  = "match"
	keyScopes = "scopes"
)

// FromValue builds a Rule from a decoded document value: a string, a list of values, or a
// mapping with "scopes" and one of "exact" or "match". Mappings may use string or any keys,
// as produced by the YAML, JSON and TOML decoders.
func FromValue(value any) (Rule, error) {
	switch typed := value.(type) {
	case string:
		if strings.TrimSpace(typed) == "" {
			return Rule{}, ErrEmptyScope
		}

		return Scope(typed), nil
	case []any:
		alternatives := make([]Rule, 0, len(typed))

		for idx, item := range typed {
			rule, err := FromValue(item)
			if err != nil {
				return Rule{}, fmt.Errorf("alternative %d: %w", idx, err)
			}

			alternatives = append(alternatives, rule)
		}

		return List(alternatives...), nil
	case []map[string]any:
		items := make([]any, len(typed))
		for idx, item := range typed {
			items[idx] = item
		}

		return FromValue(items)
	case map[string]any:
		return fromMapping(typed)
	case map[any]any:
		converted := make(map[string]any, len(typed))

		for key, val := range typed {
			name, ok := key.(string)
			if !ok {
				return Rule{}, fmt.Errorf("%w: non-string key %v", ErrInvalidRule, key)
			}

			converted[name] = val
		}

		return fromMapping(converted)
	default:
		return Rule{}, fmt.Errorf("%w: unexpected %T", ErrInvalidRule, value)
	}
}

func fromMapping(mapping map[string]any) (Rule, error) {
	for _, key := range mapx.SortedKeys(mapping) {
		if key != keyExact && key != keyMatch && key != keyScopes {
			return Rule{}, fmt.Errorf("%w: unknown key %q", ErrInvalidRule, key)
		}
	}

	rawScopes, ok := mapping[keyScopes]
	if !ok {
		return Rule{}, ErrMissingScopes
	}

	then, err := FromValue(rawScopes)
	if err != nil {
		return Rule{}, fmt.Errorf("scopes: %w", err)
	}

	exact, hasExact := mapping[keyExact]
	match, hasMatch := mapping[keyMatch]

	switch {
	case hasExact && hasMatch:
		return Rule{}, fmt.Errorf("%w: both %q and %q given", ErrInvalidRule, keyExact, keyMatch)
	case hasExact:
		text, isString := exact.(string)
		if !isString || text == "" {
			return Rule{}, fmt.Errorf("%w: %q must be a non-empty string", ErrInvalidRule, keyExact)
		}

		return Exact(text, then), nil
	case hasMatch:
		pattern, isString := match.(string)
		if !isString || pattern == "" {
			return Rule{}, fmt.Errorf("%w: %q must be a non-empty string", ErrInvalidRule, keyMatch)
		}

		return Match(pattern, then)
	default:
		return Rule{}, fmt.Errorf("%w: mapping needs %q or %q", ErrInvalidRule, keyExact, keyMatch)
	}
}

// Scopes lists every scope name the rule can yield, sorted and without duplicates.
func (r Rule) Scopes() []string {
	var out []string

	var collect func(rule Rule)

	collect = func(rule Rule) {
		switch rule.kind {
		case KindScope:
			out = append(out, rule.scope)
		case KindList:
			for _, alt := range rule.alternatives {
				collect(alt)
			}
		case KindExact, KindMatch:
			collect(*rule.then)
		}
	}

	collect(r)
	slices.Sort(out)

	return slices.Compact(out)
}
