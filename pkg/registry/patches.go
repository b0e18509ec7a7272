package registry

import (
	"fmt"
	"sort"
)

// OpenPatch opens name from dir in instance id and returns its handle.
// Handles start at 1 and are never reused within an entry. A failed open
// consumes no handle.
func (r *Registry) OpenPatch(id int, name, dir string) (int, error) {
	handle := InvalidPatch
	err := r.with(id, func(e *entry) error {
		p, err := e.ctx.OpenPatch(name, dir)
		if err != nil {
			r.logger.Warn("open patch %q in instance %d: %v", name, id, err)
			return fmt.Errorf("registry: open patch %q: %w", name, err)
		}

		e.patchCount++
		handle = e.patchCount
		e.patches[handle] = p

		r.logger.Debug("instance %d opened %s/%s as patch %d ($0=%d)", id, dir, name, handle, p.DollarZero)
		return nil
	})
	if err != nil {
		return InvalidPatch, err
	}
	return handle, nil
}

// ClosePatch closes one patch of instance id.
func (r *Registry) ClosePatch(id, handle int) error {
	return r.with(id, func(e *entry) error {
		p, ok := e.patches[handle]
		if !ok {
			return fmt.Errorf("%w: %d in instance %d", ErrNoPatch, handle, id)
		}
		e.ctx.ClosePatch(p)
		delete(e.patches, handle)
		r.logger.Debug("instance %d closed patch %d", id, handle)
		return nil
	})
}

// CloseAllPatches closes every open patch of instance id.
func (r *Registry) CloseAllPatches(id int) error {
	return r.with(id, func(e *entry) error {
		e.closeAll()
		return nil
	})
}

// Patches returns the open patch handles of id in ascending order.
func (r *Registry) Patches(id int) ([]int, error) {
	var handles []int
	err := r.with(id, func(e *entry) error {
		handles = e.handles()
		return nil
	})
	return handles, err
}

func (e *entry) handles() []int {
	handles := make([]int, 0, len(e.patches))
	for h := range e.patches {
		handles = append(handles, h)
	}
	sort.Ints(handles)
	return handles
}

// closeAll closes patches in handle order. The patch counter is kept.
func (e *entry) closeAll() {
	for _, h := range e.handles() {
		e.ctx.ClosePatch(e.patches[h])
		delete(e.patches, h)
	}
}
