package ecs

import (
	"fmt"
	"unsafe"
)

// erasedStore is the type-erased face every genericStore[T] presents to a
// Registry and to Query. Generics are resolved at compile time in Go, so a
// registry that must hold stores of many different component types side by
// side (and dispatch into them by runtime ComponentID) needs a common
// interface rather than a generic container — this is that interface.
type erasedStore interface {
	id() ComponentID
	typeName() string
	isTrivial() bool

	length() int
	has(e Entity) bool
	remove(e Entity) error
	denseAt(i int) Entity
	sparseLookup(e Entity) (sparseElement, bool)

	saveDense(w ArchiveWriter) error
	saveComponents(w ArchiveWriter) error
	loadDense(r ArchiveReader) (int, error)
	loadComponents(r ArchiveReader, count int) error
	rebuildSparse()
}

// genericStore is a sparse-set component store for one component type T
// (spec.md §4.3): a paged sparse array mapping entity id to a packed
// (generation, dense index) word, a paged dense array of owning entities,
// and a paged dense array of component values kept in lockstep with it.
// Pages are plain slices sized to pageLenSparse/pageLenDense rather than
// one unbounded slice, mirroring the reference's fixed-size page blocks
// and keeping the binary blit fast path meaningful per page.
type genericStore[T any] struct {
	desc *componentDescriptor

	pageLenSparse int
	pageLenDense  int

	sparse   [][]sparseElement
	entities [][]Entity
	values   [][]T

	count int
}

func newGenericStore[T any](desc *componentDescriptor, pageLenSparse, pageLenDense int) *genericStore[T] {
	return &genericStore[T]{desc: desc, pageLenSparse: pageLenSparse, pageLenDense: pageLenDense}
}

func (s *genericStore[T]) id() ComponentID   { return s.desc.id }
func (s *genericStore[T]) typeName() string  { return s.desc.name }
func (s *genericStore[T]) isTrivial() bool   { return s.desc.trivial }
func (s *genericStore[T]) length() int       { return s.count }

func (s *genericStore[T]) ensureSparsePage(page int) {
	for len(s.sparse) <= page {
		p := make([]sparseElement, s.pageLenSparse)
		for i := range p {
			p[i] = sparseInvalid
		}
		s.sparse = append(s.sparse, p)
	}
}

func (s *genericStore[T]) sparseElemAt(id uint16) (*sparseElement, bool) {
	page, offset := pageOf(int(id), s.pageLenSparse)
	if page >= len(s.sparse) {
		return nil, false
	}
	return &s.sparse[page][offset], true
}

func (s *genericStore[T]) ensureDensePage(page int) {
	for len(s.entities) <= page {
		s.entities = append(s.entities, make([]Entity, s.pageLenDense))
		s.values = append(s.values, make([]T, s.pageLenDense))
	}
}

// Has reports whether e currently owns a live component in this store.
func (s *genericStore[T]) has(e Entity) bool {
	sp, ok := s.sparseElemAt(e.ID())
	return ok && *sp != sparseInvalid && sp.generation() == e.Generation()
}

// Add binds a new, hook-constructed component to e and returns a pointer
// to it. Adding twice to the same live entity is a precondition violation
// per spec.md §4.2, reported as an error rather than silently
// overwriting.
func (s *genericStore[T]) Add(e Entity) (*T, error) {
	if s.has(e) {
		return nil, fmt.Errorf("%w: entity %s already has component %s", ErrPrecondition, e, s.desc.name)
	}

	page, offset := pageOf(s.count, s.pageLenDense)
	s.ensureDensePage(page)
	comp := &s.values[page][offset]

	if hooks := hooksFor[T](); hooks != nil && hooks.ctor != nil {
		hooks.ctor(comp)
	} else {
		var zero T
		*comp = zero
	}
	s.entities[page][offset] = e

	sparsePage, sparseOffset := pageOf(int(e.ID()), s.pageLenSparse)
	s.ensureSparsePage(sparsePage)
	s.sparse[sparsePage][sparseOffset] = makeSparseElement(e.Generation(), uint16(s.count))

	s.count++
	return comp, nil
}

// Get returns a pointer to e's component, or nil if e does not currently
// own one.
func (s *genericStore[T]) Get(e Entity) *T {
	sp, ok := s.sparseElemAt(e.ID())
	if !ok || *sp == sparseInvalid || sp.generation() != e.Generation() {
		return nil
	}
	page, offset := pageOf(int(sp.denseIndex()), s.pageLenDense)
	return &s.values[page][offset]
}

// remove unbinds e's component, swapping the last dense slot into its
// place (spec.md §4.2's remove algorithm) via the first available of:
// move-and-destruct hook, destruct-then-copy, or plain copy.
func (s *genericStore[T]) remove(e Entity) error {
	sp, ok := s.sparseElemAt(e.ID())
	if !ok || *sp == sparseInvalid || sp.generation() != e.Generation() {
		return fmt.Errorf("%w: entity %s has no component %s to remove", ErrPrecondition, e, s.desc.name)
	}

	denseIdx := int(sp.denseIndex())
	page, offset := pageOf(denseIdx, s.pageLenDense)
	comp := &s.values[page][offset]

	lastIdx := s.count - 1
	hooks := hooksFor[T]()

	if denseIdx == lastIdx {
		if hooks != nil && hooks.dtor != nil {
			hooks.dtor(comp)
		}
	} else {
		lastPage, lastOffset := pageOf(lastIdx, s.pageLenDense)
		lastEntity := s.entities[lastPage][lastOffset]
		lastComp := &s.values[lastPage][lastOffset]

		switch {
		case hooks != nil && hooks.moveDtor != nil:
			hooks.moveDtor(lastComp, comp)
		case hooks != nil && hooks.dtor != nil:
			hooks.dtor(comp)
			*comp = *lastComp
		default:
			*comp = *lastComp
		}

		s.entities[page][offset] = lastEntity
		lastSp, _ := s.sparseElemAt(lastEntity.ID())
		*lastSp = makeSparseElement(lastSp.generation(), uint16(denseIdx))
	}

	*sp = sparseInvalid
	s.count--
	return nil
}

func (s *genericStore[T]) denseAt(i int) Entity {
	page, offset := pageOf(i, s.pageLenDense)
	return s.entities[page][offset]
}

func (s *genericStore[T]) componentAt(i int) *T {
	page, offset := pageOf(i, s.pageLenDense)
	return &s.values[page][offset]
}

// sparseLookup is the single sparse-array probe a query caches per
// argument per iteration step (spec.md §4.4), avoiding a second lookup
// when the caller already holds the matching dense index.
func (s *genericStore[T]) sparseLookup(e Entity) (sparseElement, bool) {
	sp, ok := s.sparseElemAt(e.ID())
	if !ok || *sp == sparseInvalid || sp.generation() != e.Generation() {
		return sparseInvalid, false
	}
	return *sp, true
}

// saveDense writes this store's dense entity array, blitting whole pages
// as raw little-endian bytes when the archive allows binary output.
func (s *genericStore[T]) saveDense(w ArchiveWriter) error {
	w.ListBegin(s.count)
	defer w.ListEnd()

	if w.AllowBinary() {
		return s.blitEntityPages(w, s.count)
	}
	buf := make([]byte, 4)
	for i := 0; i < s.count; i++ {
		entityBytes(s.denseAt(i), buf)
		if err := w.WriteBytes(buf); err != nil {
			return err
		}
	}
	return nil
}

// blitEntityPages writes count entities page by page as raw bytes,
// assuming a little-endian host — the same ephemeral, same-build
// assumption the reference's raw memcpy blit makes.
func (s *genericStore[T]) blitEntityPages(w ArchiveWriter, count int) error {
	remaining := count
	for page := 0; remaining > 0; page++ {
		n := s.pageLenDense
		if n > remaining {
			n = remaining
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&s.entities[page][0])), n*4)
		if err := w.WriteBytes(raw); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// saveComponents writes this store's dense component array. Trivial types
// are blitted page by page when the archive allows binary output;
// non-trivial types go through the registered serialize hook, one element
// at a time.
func (s *genericStore[T]) saveComponents(w ArchiveWriter) error {
	w.ListBegin(s.count)
	defer w.ListEnd()

	if s.desc.trivial && w.AllowBinary() {
		return s.blitComponentPages(w, s.count)
	}

	hooks := serializeHooksFor[T]()
	for i := 0; i < s.count; i++ {
		comp := s.componentAt(i)
		if hooks != nil && hooks.serialize != nil {
			if err := hooks.serialize(w, comp); err != nil {
				return err
			}
			continue
		}
		if err := s.writeTrivialValue(w, comp); err != nil {
			return err
		}
	}
	return nil
}

func (s *genericStore[T]) blitComponentPages(w ArchiveWriter, count int) error {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return nil
	}
	remaining := count
	for page := 0; remaining > 0; page++ {
		n := s.pageLenDense
		if n > remaining {
			n = remaining
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&s.values[page][0])), n*size)
		if err := w.WriteBytes(raw); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// writeTrivialValue is the non-blit fallback for a trivial type with no
// custom serialize hook: a single raw-byte write of the value, byte for
// byte identical to what the blit path would have produced for that slot.
func (s *genericStore[T]) writeTrivialValue(w ArchiveWriter, v *T) error {
	size := int(unsafe.Sizeof(*v))
	if size == 0 {
		return nil
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
	return w.WriteBytes(raw)
}

func (s *genericStore[T]) readTrivialValue(r ArchiveReader, v *T) error {
	size := int(unsafe.Sizeof(*v))
	if size == 0 {
		return nil
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
	return r.ReadBytes(raw)
}

// loadDense reads the dense entity array length and contents, reserving
// pages up front, and returns the count it read. It does not touch the
// sparse array — rebuildSparse does that once components are also loaded.
func (s *genericStore[T]) loadDense(r ArchiveReader) (int, error) {
	count := r.ListBegin()
	defer r.ListEnd()

	s.reserve(count)

	if r.AllowBinary() {
		if err := s.unblitEntityPages(r, count); err != nil {
			return 0, err
		}
	} else {
		buf := make([]byte, 4)
		for i := 0; i < count; i++ {
			if err := r.ReadBytes(buf); err != nil {
				return 0, err
			}
			page, offset := pageOf(i, s.pageLenDense)
			s.entities[page][offset] = entityFromBytes(buf)
		}
	}
	s.count = count
	return count, nil
}

func (s *genericStore[T]) reserve(count int) {
	if count == 0 {
		return
	}
	lastPage, _ := pageOf(count-1, s.pageLenDense)
	s.ensureDensePage(lastPage)
}

func (s *genericStore[T]) unblitEntityPages(r ArchiveReader, count int) error {
	remaining := count
	for page := 0; remaining > 0; page++ {
		n := s.pageLenDense
		if n > remaining {
			n = remaining
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&s.entities[page][0])), n*4)
		if err := r.ReadBytes(raw); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// loadComponents reads exactly count component values, mirroring
// saveComponents' blit-or-hook choice.
func (s *genericStore[T]) loadComponents(r ArchiveReader, count int) error {
	n := r.ListBegin()
	defer r.ListEnd()
	if n != count {
		return fmt.Errorf("%w: component list length %d does not match dense entity count %d for %s", ErrPrecondition, n, count, s.desc.name)
	}

	if s.desc.trivial && r.AllowBinary() {
		return s.unblitComponentPages(r, count)
	}

	hooks := serializeHooksFor[T]()
	for i := 0; i < count; i++ {
		comp := s.componentAt(i)
		if hooks != nil && hooks.deserialize != nil {
			if err := hooks.deserialize(r, comp); err != nil {
				return err
			}
			continue
		}
		if err := s.readTrivialValue(r, comp); err != nil {
			return err
		}
	}
	return nil
}

func (s *genericStore[T]) unblitComponentPages(r ArchiveReader, count int) error {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return nil
	}
	remaining := count
	for page := 0; remaining > 0; page++ {
		n := s.pageLenDense
		if n > remaining {
			n = remaining
		}
		raw := unsafe.Slice((*byte)(unsafe.Pointer(&s.values[page][0])), n*size)
		if err := r.ReadBytes(raw); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// rebuildSparse reconstructs the sparse array from the dense entity array
// after a load, since the wire format never carries sparse slots
// directly (spec.md §4.6).
func (s *genericStore[T]) rebuildSparse() {
	s.sparse = nil
	for i := 0; i < s.count; i++ {
		e := s.denseAt(i)
		page, offset := pageOf(int(e.ID()), s.pageLenSparse)
		s.ensureSparsePage(page)
		s.sparse[page][offset] = makeSparseElement(e.Generation(), uint16(i))
	}
}
