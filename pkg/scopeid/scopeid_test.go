package scopeid_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/scopemap/pkg/scopeid"
)

func TestRegistry_Intern(t *testing.T) {
	t.Parallel()

	reg := scopeid.NewRegistry()

	fn := reg.Intern("entity.name.function")
	kw := reg.Intern("keyword")
	again := reg.Intern("entity.name.function")

	assert.Equal(t, scopeid.FirstID, fn)
	assert.Equal(t, scopeid.FirstID+2, kw)
	assert.Equal(t, fn, again)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_Scope(t *testing.T) {
	t.Parallel()

	reg := scopeid.NewRegistry()
	id := reg.Intern("string.quoted")

	scope, ok := reg.Scope(id)
	require.True(t, ok)
	assert.Equal(t, "string.quoted", scope)

	scope, ok = reg.Scope(scopeid.CloseTag(id))
	require.True(t, ok)
	assert.Equal(t, "string.quoted", scope)

	_, ok = reg.Scope(1)
	assert.False(t, ok)

	_, ok = reg.Scope(id + 10)
	assert.False(t, ok)
}

func TestRegistry_ClassName(t *testing.T) {
	t.Parallel()

	reg := scopeid.NewRegistry()
	id := reg.Intern("support.function.builtin")

	assert.Equal(t, "syntax--support syntax--function syntax--builtin", reg.ClassName(id))
	assert.Empty(t, reg.ClassName(0))
}

func TestIsCloseTag(t *testing.T) {
	t.Parallel()

	reg := scopeid.NewRegistry()
	id := reg.Intern("comment")

	assert.False(t, scopeid.IsCloseTag(id))
	assert.True(t, scopeid.IsCloseTag(scopeid.CloseTag(id)))
	assert.False(t, scopeid.IsCloseTag(42))
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	reg := scopeid.NewRegistry()

	var wg sync.WaitGroup

	for worker := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range 50 {
				reg.Intern(fmt.Sprintf("scope.%d", (idx+worker)%20))
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 20, reg.Len())

	seen := make(map[int]bool)

	for idx := range 20 {
		id := reg.Intern(fmt.Sprintf("scope.%d", idx))
		assert.False(t, seen[id])

		seen[id] = true
	}
}
