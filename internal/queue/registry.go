package queue

import "sync"

// KeyRegistry tracks job keys currently being processed so duplicate
// deliveries of the same logical job collapse to one execution. It is
// held by the worker: the process that acquires a key is the process
// that releases it, so a key can never be stranded by a producer in a
// different process. Scope is one worker process; across replicas the
// handlers' idempotence covers duplicates.
type KeyRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{active: make(map[string]struct{})}
}

// TryAcquire claims the key. Returns false when the key is already held
// by an active job.
func (r *KeyRegistry) TryAcquire(key string) bool {
	if key == "" {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[key]; ok {
		return false
	}
	r.active[key] = struct{}{}
	return true
}

// Release frees the key after the job finished (completed or failed
// terminally).
func (r *KeyRegistry) Release(key string) {
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, key)
}

// IsActive reports whether the key currently has an in-flight job.
func (r *KeyRegistry) IsActive(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[key]
	return ok
}
