// Package scopeid interns scope names as integer tags for highlighters.
//
// Tags follow the TextMate convention: values below 256 are reserved, every scope gets an odd
// open tag and the even value above it closes the scope.
package scopeid

import (
	"strings"
	"sync"
)

// FirstID is the open tag assigned to the first interned scope.
const FirstID = 259

const (
	tagStep     = 2
	classPrefix = "syntax--"
)

// Registry provides bidirectional mapping between scope names and open tags.
type Registry struct {
	idByScope map[string]int
	scopes    []string
	lock      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		idByScope: make(map[string]int),
	}
}

// Intern returns the open tag for scope, assigning the next free one on first use.
func (reg *Registry) Intern(scope string) int {
	reg.lock.RLock()
	id, exists := reg.idByScope[scope]
	reg.lock.RUnlock()

	if exists {
		return id
	}

	reg.lock.Lock()
	defer reg.lock.Unlock()

	// Double check.
	if existing, found := reg.idByScope[scope]; found {
		return existing
	}

	id = FirstID + len(reg.scopes)*tagStep
	reg.scopes = append(reg.scopes, scope)
	reg.idByScope[scope] = id

	return id
}

// Scope returns the scope name of an open or close tag.
func (reg *Registry) Scope(id int) (string, bool) {
	if id < FirstID {
		return "", false
	}

	idx := (id - FirstID) / tagStep

	reg.lock.RLock()
	defer reg.lock.RUnlock()

	if idx >= len(reg.scopes) {
		return "", false
	}

	return reg.scopes[idx], true
}

// ClassName returns the CSS class list for a tag: every dotted segment of the scope prefixed
// with "syntax--". Unknown tags yield an empty string.
func (reg *Registry) ClassName(id int) string {
	scope, ok := reg.Scope(id)
	if !ok {
		return ""
	}

	parts := strings.Split(scope, ".")
	for idx, part := range parts {
		parts[idx] = classPrefix + part
	}

	return strings.Join(parts, " ")
}

// Len returns the number of interned scopes.
func (reg *Registry) Len() int {
	reg.lock.RLock()
	defer reg.lock.RUnlock()

	return len(reg.scopes)
}

// CloseTag returns the tag closing the scope opened by id.
func CloseTag(id int) int {
	return id + 1
}

// IsCloseTag reports whether tag closes a scope.
func IsCloseTag(tag int) bool {
	return tag >= FirstID && (tag-FirstID)%tagStep == 1
}
