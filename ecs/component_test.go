package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testVec3 struct {
	X, Y, Z float32
}

type testHandleLike struct {
	Name string // non-trivial: contains a string
}

func TestDescriptorForIsStableAndTrivialByDefault(t *testing.T) {
	d1 := descriptorFor[testVec3]()
	d2 := descriptorFor[testVec3]()
	require.Same(t, d1, d2, "descriptor lookup is idempotent per type")
	require.True(t, d1.trivial)
}

func TestDescriptorForDetectsNonTrivialStrings(t *testing.T) {
	d := descriptorFor[testHandleLike]()
	require.False(t, d.trivial)
}

type testCounted struct {
	N int
}

func TestRegisterLifetimeHooksFirstWins(t *testing.T) {
	var ctorCalls, dtorCalls int

	RegisterLifetimeHooks[testCounted](
		func(c *testCounted) { ctorCalls++; c.N = 1 },
		func(c *testCounted) { dtorCalls++ },
		nil,
	)
	// Second registration must not override the first hook.
	RegisterLifetimeHooks[testCounted](
		func(c *testCounted) { c.N = 99 },
		nil,
		nil,
	)

	hooks := hooksFor[testCounted]()
	require.NotNil(t, hooks)
	require.NotNil(t, hooks.ctor)

	var v testCounted
	hooks.ctor(&v)
	require.Equal(t, 1, v.N)
	require.Equal(t, 1, ctorCalls)

	hooks.dtor(&v)
	require.Equal(t, 1, dtorCalls)
}
