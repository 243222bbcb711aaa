package chathub_test

import (
	"fmt"
	"sync"
	"testing"

	"marketzone/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterLookupUnregister(t *testing.T) {
	reg := chathub.NewRegistry()
	clientA := newMockClient("user_A")

	assert.Nil(t, reg.Register("user_A", clientA))

	got, ok := reg.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, clientA, got)
	assert.Equal(t, 1, reg.Count())

	reg.Unregister("user_A")
	_, ok = reg.Lookup("user_A")
	assert.False(t, ok)

	// unknown user is a no-op
	reg.Unregister("user_B")
}

func TestRegistry_LatestJoinWins(t *testing.T) {
	reg := chathub.NewRegistry()
	first := newMockClient("user_A")
	second := newMockClient("user_A")

	reg.Register("user_A", first)
	prev := reg.Register("user_A", second)

	assert.Same(t, first, prev)
	got, _ := reg.Lookup("user_A")
	assert.Same(t, second, got)

	// the replaced socket disconnecting must not evict the new one
	assert.False(t, reg.UnregisterClient("user_A", first))
	got, ok := reg.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, second, got)

	assert.True(t, reg.UnregisterClient("user_A", second))
	assert.Equal(t, 0, reg.Count())
}

func TestRegistry_ReRegisterSameClient(t *testing.T) {
	reg := chathub.NewRegistry()
	c := newMockClient("user_A")

	reg.Register("user_A", c)
	assert.Nil(t, reg.Register("user_A", c))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := chathub.NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		id := fmt.Sprintf("user_%d", i)
		c := newMockClient(id)
		go func() { defer wg.Done(); reg.Register(id, c) }()
		go func() { defer wg.Done(); reg.Lookup(id) }()
		go func() { defer wg.Done(); reg.Count() }()
	}
	wg.Wait()

	assert.Equal(t, 50, reg.Count())
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := chathub.NewRegistry()
	a, b := newMockClient("a"), newMockClient("b")
	reg.Register("a", a)
	reg.Register("b", b)

	reg.CloseAll()

	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
	assert.Equal(t, 0, reg.Count())
}

func TestRegistry_CloseAllIncludesUnjoined(t *testing.T) {
	reg := chathub.NewRegistry()
	joined, pending := newMockClient("a"), newMockClient("b")
	reg.Track(joined)
	reg.Register("a", joined)
	reg.Track(pending)

	reg.CloseAll()

	assert.True(t, joined.IsClosed())
	assert.True(t, pending.IsClosed())
}

func TestRegistry_UntrackedIsNotClosed(t *testing.T) {
	reg := chathub.NewRegistry()
	c := newMockClient("a")
	reg.Track(c)
	reg.Untrack(c)

	reg.CloseAll()

	assert.False(t, c.IsClosed())
}
