package ecs

import "sort"

// System is one unit of per-frame logic a SystemManager drives. Update
// receives the registry and the elapsed time since the previous call.
type System interface {
	Name() string
	Priority() int
	Enabled() bool
	SetEnabled(bool)
	Update(r *Registry, dt float64)
}

// BaseSystem provides the bookkeeping fields most Systems need, following
// the reference examples' pattern of embedding a small base rather than
// reimplementing Name/Priority/Enabled on every system.
type BaseSystem struct {
	SystemName     string
	SystemPriority int
	SystemEnabled  bool
}

func NewBaseSystem(name string, priority int) BaseSystem {
	return BaseSystem{SystemName: name, SystemPriority: priority, SystemEnabled: true}
}

func (b *BaseSystem) Name() string       { return b.SystemName }
func (b *BaseSystem) Priority() int      { return b.SystemPriority }
func (b *BaseSystem) Enabled() bool      { return b.SystemEnabled }
func (b *BaseSystem) SetEnabled(v bool)  { b.SystemEnabled = v }

// SystemManager runs a set of Systems in ascending priority order each
// frame, skipping disabled ones.
type SystemManager struct {
	systems []System
	dirty   bool
}

func NewSystemManager() *SystemManager {
	return &SystemManager{}
}

// Add registers s with the manager. The priority order is recomputed
// lazily on the next Update.
func (m *SystemManager) Add(s System) {
	m.systems = append(m.systems, s)
	m.dirty = true
}

// Remove drops the first system named name, if any.
func (m *SystemManager) Remove(name string) {
	for i, s := range m.systems {
		if s.Name() == name {
			m.systems = append(m.systems[:i], m.systems[i+1:]...)
			return
		}
	}
}

// Get returns the system named name, or nil.
func (m *SystemManager) Get(name string) System {
	for _, s := range m.systems {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Update runs every enabled system in priority order against r.
func (m *SystemManager) Update(r *Registry, dt float64) {
	if m.dirty {
		sort.SliceStable(m.systems, func(i, j int) bool {
			return m.systems[i].Priority() < m.systems[j].Priority()
		})
		m.dirty = false
	}
	for _, s := range m.systems {
		if s.Enabled() {
			s.Update(r, dt)
		}
	}
}
