package ecs

import "fmt"

// Registry owns one entity table and the component stores bound to it
// (spec.md §4.5). Component descriptors are global and shared across
// registries; the stores that back them are per-registry.
type Registry struct {
	cfg      Config
	entities entityTable
	stores   []erasedStore // indexed by ComponentID; nil where unbound
	systems  *SystemManager
}

// NewRegistry constructs an empty registry, applying any Options over the
// package defaults.
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{cfg: cfg, entities: newEntityTable(), systems: NewSystemManager()}
}

// AddSystem registers s to run on every future Update call.
func (r *Registry) AddSystem(s System) {
	r.systems.Add(s)
}

// RemoveSystem drops the system named name.
func (r *Registry) RemoveSystem(name string) {
	r.systems.Remove(name)
}

// EnableSystem and DisableSystem toggle a registered system by name,
// no-op if no system has that name.
func (r *Registry) EnableSystem(name string)  { r.setSystemEnabled(name, true) }
func (r *Registry) DisableSystem(name string) { r.setSystemEnabled(name, false) }

func (r *Registry) setSystemEnabled(name string, v bool) {
	if s := r.systems.Get(name); s != nil {
		s.SetEnabled(v)
	}
}

// Update runs every enabled system against r in priority order.
func (r *Registry) Update(dt float64) {
	r.systems.Update(r, dt)
}

// Create allocates a single fresh entity, recycling a destroyed id when
// one is available.
func (r *Registry) Create() (Entity, error) {
	return r.entities.create()
}

// CreateMany allocates count fresh entities in one contiguous, never-
// recycled range — a bulk-spawn fast path (spec.md §4.1).
func (r *Registry) CreateMany(count int) ([]Entity, error) {
	return r.entities.createMany(count)
}

// Destroy removes e's components from every bound store and recycles its
// id. Destroying an already-destroyed or out-of-range handle is an error.
func (r *Registry) Destroy(e Entity) error {
	if r.entities.isDestroyed(e) {
		r.cfg.Logger.Printf("sparsecs: destroy called on already-destroyed entity %s", e)
		return fmt.Errorf("%w: %s", ErrInvalidHandle, e)
	}
	for _, s := range r.stores {
		if s == nil {
			continue
		}
		if s.has(e) {
			_ = s.remove(e)
		}
	}
	return r.entities.destroy(e)
}

// IsDestroyed reports whether e is stale relative to the registry's
// current generation for its id.
func (r *Registry) IsDestroyed(e Entity) bool {
	return r.entities.isDestroyed(e)
}

// EntityCount returns the number of entity table slots ever allocated
// (live and recycled), matching the reference's entity_table size.
func (r *Registry) EntityCount() int {
	return r.entities.len()
}

// Stats summarizes a registry's current footprint, useful for diagnostics
// and tests; it is not on any hot path.
type Stats struct {
	EntitySlots int
	Stores      int
}

// Stats reports the registry's current table sizes.
func (r *Registry) Stats() Stats {
	bound := 0
	for _, s := range r.stores {
		if s != nil {
			bound++
		}
	}
	return Stats{EntitySlots: r.entities.len(), Stores: bound}
}

func (r *Registry) ensureStoreSlot(id ComponentID) {
	for ComponentID(len(r.stores)) <= id {
		r.stores = append(r.stores, nil)
	}
}

// Register binds component type T to registry r, creating its store on
// first use. Calling Register again for the same type on the same
// registry is a no-op that returns the existing store's id.
func Register[T any](r *Registry) ComponentID {
	return mustStoreFor[T](r).id()
}

// storeFor returns r's store for T, creating it on first use. It returns
// ErrDuplicateRegistration if T's global component id is already bound,
// in this registry, to a store of some other type — a property of
// runtime state (a corrupted or maliciously constructed Registry), not a
// branch the type system can rule out, so it is reported rather than
// panicked.
func storeFor[T any](r *Registry) (*genericStore[T], error) {
	desc := descriptorFor[T]()
	r.ensureStoreSlot(desc.id)
	if r.stores[desc.id] == nil {
		r.stores[desc.id] = newGenericStore[T](desc, r.cfg.PageLenSparse, r.cfg.PageLenDense)
	}
	s, ok := r.stores[desc.id].(*genericStore[T])
	if !ok {
		return nil, fmt.Errorf("%w: id %d bound to %s, looked up as %s", ErrDuplicateRegistration, desc.id, r.stores[desc.id].typeName(), desc.name)
	}
	return s, nil
}

// mustStoreFor is storeFor for call sites with no room in their signature
// to propagate an error (Register and the query-builder chain). The panic it raises is
// unreachable under correct use of Register/AddComponent: the condition
// it guards against can only arise from runtime state corruption, never
// from calling code.
func mustStoreFor[T any](r *Registry) *genericStore[T] {
	s, err := storeFor[T](r)
	if err != nil {
		panic(err)
	}
	return s
}

// AddComponent binds a new T-component to e, constructing it via any
// registered lifetime hook, and returns a pointer to it.
func AddComponent[T any](r *Registry, e Entity) (*T, error) {
	if r.entities.isDestroyed(e) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandle, e)
	}
	s, err := storeFor[T](r)
	if err != nil {
		return nil, err
	}
	return s.Add(e)
}

// RemoveComponent unbinds e's T-component, if any.
func RemoveComponent[T any](r *Registry, e Entity) error {
	s, err := storeFor[T](r)
	if err != nil {
		return err
	}
	return s.remove(e)
}

// HasComponent reports whether e currently owns a T-component. A
// component id bound to a conflicting type is treated as "not present"
// since this signature has no way to report the underlying error.
func HasComponent[T any](r *Registry, e Entity) bool {
	s, err := storeFor[T](r)
	if err != nil {
		return false
	}
	return s.has(e)
}

// GetComponent returns a pointer to e's T-component, or nil if absent or
// if T's component id is bound to a conflicting type in r.
func GetComponent[T any](r *Registry, e Entity) *T {
	s, err := storeFor[T](r)
	if err != nil {
		return nil
	}
	return s.Get(e)
}
