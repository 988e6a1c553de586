package ecs

import (
	"encoding/binary"
	"fmt"
)

// Save writes r's entire state — the entity table and every bound
// component store — to w (spec.md §4.6). Stores are written in ascending
// ComponentID order, each prefixed by its id; Load looks each store up by
// that id, so it does not depend on the order.
func Save(w ArchiveWriter, r *Registry) error {
	w.ObjectBegin()
	defer w.ObjectEnd()

	if err := saveEntityTable(w, &r.entities); err != nil {
		return err
	}

	bound := make([]ComponentID, 0, len(r.stores))
	for id, s := range r.stores {
		if s != nil {
			bound = append(bound, ComponentID(id))
		}
	}

	w.MapBegin(len(bound))
	for _, id := range bound {
		s := r.stores[id]
		var idBuf [4]byte
		binary.LittleEndian.PutUint32(idBuf[:], uint32(id))
		if err := w.WriteBytes(idBuf[:]); err != nil {
			return err
		}
		if err := s.saveDense(w); err != nil {
			return fmt.Errorf("sparsecs: save component %s: %w", s.typeName(), err)
		}
		if err := s.saveComponents(w); err != nil {
			return fmt.Errorf("sparsecs: save component %s: %w", s.typeName(), err)
		}
	}
	w.MapEnd()
	return nil
}

func saveEntityTable(w ArchiveWriter, t *entityTable) error {
	w.ObjectBegin()
	defer w.ObjectEnd()

	var head [2]byte
	binary.LittleEndian.PutUint16(head[:], t.freeHead)
	if err := w.WriteBytes(head[:]); err != nil {
		return err
	}

	w.ListBegin(len(t.slots))
	buf := make([]byte, 4)
	for _, slot := range t.slots {
		entityBytes(slot, buf)
		if err := w.WriteBytes(buf); err != nil {
			return err
		}
	}
	w.ListEnd()
	return nil
}

// Load replaces reg's entity table, and the contents of every store the
// archive carries, with what it reads from r. Every store referenced in
// the archive must already be Register'd on reg under the same
// ComponentID; a serialized id with no local store fails with
// ErrMissingComponentStore whether or not r.AllowOutOfOrder() is set, as
// no id remapping is done. Stores of reg that the archive does not carry
// are left unchanged.
func Load(r ArchiveReader, reg *Registry) error {
	r.ObjectBegin()
	defer r.ObjectEnd()

	if err := loadEntityTable(r, &reg.entities); err != nil {
		return err
	}

	count := r.MapBegin()
	for i := 0; i < count; i++ {
		var idBuf [4]byte
		if err := r.ReadBytes(idBuf[:]); err != nil {
			return err
		}
		id := ComponentID(binary.LittleEndian.Uint32(idBuf[:]))

		if int(id) >= len(reg.stores) || reg.stores[id] == nil {
			if !r.AllowOutOfOrder() {
				return fmt.Errorf("%w: component id %d", ErrMissingComponentStore, id)
			}
			// Out-of-order tolerance means the caller accepts that this
			// component's data cannot be placed anywhere local; nothing
			// further can be done with it than to refuse cleanly.
			return fmt.Errorf("%w: component id %d has no local store to remap to", ErrMissingComponentStore, id)
		}
		s := reg.stores[id]
		n, err := s.loadDense(r)
		if err != nil {
			return fmt.Errorf("sparsecs: load component %s: %w", s.typeName(), err)
		}
		if err := s.loadComponents(r, n); err != nil {
			return fmt.Errorf("sparsecs: load component %s: %w", s.typeName(), err)
		}
		s.rebuildSparse()
	}
	r.MapEnd()
	return nil
}

func loadEntityTable(r ArchiveReader, t *entityTable) error {
	r.ObjectBegin()
	defer r.ObjectEnd()

	var head [2]byte
	if err := r.ReadBytes(head[:]); err != nil {
		return err
	}
	t.freeHead = binary.LittleEndian.Uint16(head[:])

	n := r.ListBegin()
	if err := t.loadSlots(n); err != nil {
		return err
	}
	buf := make([]byte, 4)
	for i := 0; i < n; i++ {
		if err := r.ReadBytes(buf); err != nil {
			return err
		}
		t.slots[i] = entityFromBytes(buf)
	}
	r.ListEnd()
	return nil
}
