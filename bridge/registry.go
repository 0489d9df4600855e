package bridge

import "sync"

// InstanceStats is a point-in-time view of one connected instance.
type InstanceStats struct {
	Addr        string
	NumMessages uint64
	TotalBytes  uint64
}

// registry tracks connected instances. The newest connection sits at the
// front, which is also the order stats are reported in.
type registry struct {
	mu    sync.RWMutex
	insts []*instance
}

func (r *registry) add(in *instance) {
	r.mu.Lock()
	r.insts = append([]*instance{in}, r.insts...)
	r.mu.Unlock()
}

// remove deletes by identity. Removing an absent instance is a no-op.
func (r *registry) remove(in *instance) {
	r.mu.Lock()
	for i, cur := range r.insts {
		if cur == in {
			r.insts = append(r.insts[:i], r.insts[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.insts)
}

// snapshot copies the instance list so callers can act on it without
// holding the lock.
func (r *registry) snapshot() []*instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*instance, len(r.insts))
	copy(out, r.insts)
	return out
}

func (r *registry) stats() []InstanceStats {
	insts := r.snapshot()
	out := make([]InstanceStats, 0, len(insts))
	for _, in := range insts {
		out = append(out, in.stats())
	}
	return out
}
