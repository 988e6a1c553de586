package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type storeTestPos struct {
	X, Y float64
}

func newTestStore[T any](t *testing.T, pageLenDense int) *genericStore[T] {
	t.Helper()
	desc := descriptorFor[T]()
	return newGenericStore[T](desc, DefaultPageLenSparse, pageLenDense)
}

func TestGenericStoreAddHasGetRoundTrip(t *testing.T) {
	s := newTestStore[storeTestPos](t, 4)
	e := makeEntity(0, 3)

	comp, err := s.Add(e)
	require.NoError(t, err)
	comp.X, comp.Y = 1, 2

	require.True(t, s.has(e))
	got := s.Get(e)
	require.NotNil(t, got)
	require.Equal(t, storeTestPos{1, 2}, *got)
	require.Equal(t, 1, s.length())
}

func TestGenericStoreAddTwiceIsPrecondition(t *testing.T) {
	s := newTestStore[storeTestPos](t, 4)
	e := makeEntity(0, 0)
	_, err := s.Add(e)
	require.NoError(t, err)
	_, err = s.Add(e)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestGenericStoreRemoveSwapsLastIntoHole(t *testing.T) {
	s := newTestStore[storeTestPos](t, 4)
	a := makeEntity(0, 0)
	b := makeEntity(0, 1)
	c := makeEntity(0, 2)

	ac, _ := s.Add(a)
	ac.X = 10
	bc, _ := s.Add(b)
	bc.X = 20
	cc, _ := s.Add(c)
	cc.X = 30

	require.NoError(t, s.remove(a))

	require.Equal(t, 2, s.length())
	require.False(t, s.has(a))
	require.True(t, s.has(b))
	require.True(t, s.has(c))

	// c was the last element and should have been swapped into a's slot.
	require.Equal(t, c, s.denseAt(0))
	require.Equal(t, float64(30), s.Get(c).X)
	require.Equal(t, float64(20), s.Get(b).X)
}

func TestGenericStoreRemoveAbsentIsPrecondition(t *testing.T) {
	s := newTestStore[storeTestPos](t, 4)
	e := makeEntity(0, 0)
	require.ErrorIs(t, s.remove(e), ErrPrecondition)
}

func TestGenericStoreGenerationMismatchIsNotFound(t *testing.T) {
	s := newTestStore[storeTestPos](t, 4)
	live := makeEntity(0, 0)
	_, err := s.Add(live)
	require.NoError(t, err)

	stale := makeEntity(1, 0)
	require.False(t, s.has(stale))
	require.Nil(t, s.Get(stale))
}

func TestGenericStorePagingBoundary(t *testing.T) {
	const pageLen = 4
	s := newTestStore[storeTestPos](t, pageLen)

	var entities []Entity
	for i := 0; i < pageLen*2+1; i++ {
		e := makeEntity(0, uint16(i))
		c, err := s.Add(e)
		require.NoError(t, err)
		c.X = float64(i)
		entities = append(entities, e)
	}

	require.Equal(t, pageLen*2+1, s.length())
	for i, e := range entities {
		got := s.Get(e)
		require.NotNil(t, got)
		require.Equal(t, float64(i), got.X)
	}

	// Remove an entity that sits exactly on a page boundary and verify the
	// swap still resolves correctly across the page split.
	boundary := entities[pageLen]
	require.NoError(t, s.remove(boundary))
	require.False(t, s.has(boundary))
	require.Equal(t, pageLen*2, s.length())
}

type storeTestHooked struct {
	Tag int
}

func TestGenericStoreLifetimeHooksRunOnAddRemove(t *testing.T) {
	var constructed, destructed, moved []int

	RegisterLifetimeHooks[storeTestHooked](
		func(c *storeTestHooked) { constructed = append(constructed, c.Tag) },
		func(c *storeTestHooked) { destructed = append(destructed, c.Tag) },
		func(src, dst *storeTestHooked) {
			moved = append(moved, src.Tag)
			*dst = *src
		},
	)

	s := newTestStore[storeTestHooked](t, 4)
	a := makeEntity(0, 0)
	b := makeEntity(0, 1)

	ac, _ := s.Add(a)
	ac.Tag = 1
	bc, _ := s.Add(b)
	bc.Tag = 2

	require.NoError(t, s.remove(a))
	require.Contains(t, moved, 2, "removing a non-last slot should move-construct the last element into the hole")
	require.Len(t, destructed, 0, "move-dtor hook handles the vacated last slot, no separate destruct call")

	require.NoError(t, s.remove(b))
	require.Contains(t, destructed, 2, "removing the only remaining element runs plain destruct")
}
