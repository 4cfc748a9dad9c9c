// Package pool implements the Connection Registry: the ordered list of
// configured upstream endpoints and the active index into it (spec.md §4.1).
package pool

import (
	"errors"
	"sync"

	"github.com/heliopool/poolmanager/internal/interfaces"
)

var (
	ErrInvalidURI      = errors.New("pool: invalid endpoint uri")
	ErrIndexOutOfRange = errors.New("pool: index out of range")
)

// ConnectionInfo is the JSON-facing shape of one registry entry
// (spec.md §6, get_connections_snapshot).
type ConnectionInfo struct {
	Index  int    `json:"index"`
	Active bool   `json:"active"`
	URI    string `json:"uri"`
}

// Registry is the ordered sequence of Endpoints plus the active index and
// the consecutive-failed-attempt counter against it. All three are
// protected by one non-reentrant mutex, never held across blocking I/O
// (spec.md §4.1, §5).
type Registry struct {
	mu          sync.Mutex
	endpoints   []interfaces.Endpoint
	activeIndex int
	attempt     int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends an endpoint to the sequence.
func (r *Registry) Add(e interfaces.Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = append(r.endpoints, e)
}

// Remove erases the endpoint at index, decrementing activeIndex if it
// pointed past the removed slot (spec.md §3 invariants).
func (r *Registry) Remove(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.endpoints) {
		return ErrIndexOutOfRange
	}
	r.endpoints = append(r.endpoints[:index], r.endpoints[index+1:]...)
	if r.activeIndex > index {
		r.activeIndex--
	}
	if r.activeIndex >= len(r.endpoints) && len(r.endpoints) > 0 {
		r.activeIndex = 0
	}
	return nil
}

// Clear drops every endpoint and resets the cursor. Whether to disconnect
// the pool client afterward is the caller's decision (spec.md §4.1: "if
// the pool client reports connected, request disconnect (outside the
// lock)") — that client interaction belongs to the manager, not the
// registry, so the registry lock is never held across it.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = nil
	r.activeIndex = 0
	r.attempt = 0
}

// Len returns the number of configured endpoints.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}

// ActiveIndex returns the current active index.
func (r *Registry) ActiveIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeIndex
}

// SetActive sets the active index to idx. It is a no-op (returns false) if
// idx already names the active endpoint. Otherwise it resets the attempt
// counter and reports true so the caller can bump connection_switches,
// disconnect the client, and suspend mining outside the lock
// (spec.md §4.1 set_active).
func (r *Registry) SetActive(idx int) (changed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.endpoints) {
		return false, ErrIndexOutOfRange
	}
	if idx == r.activeIndex {
		return false, nil
	}
	r.activeIndex = idx
	r.attempt = 0
	return true, nil
}

// SnapshotActive returns a copy of the active endpoint, or the zero-value
// Endpoint (printed as ":0" by URIOrEmpty) if the registry is empty
// (spec.md §4.1).
func (r *Registry) SnapshotActive() interfaces.Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.endpoints) == 0 || r.activeIndex >= len(r.endpoints) {
		return interfaces.Endpoint{}
	}
	return r.endpoints[r.activeIndex]
}

// List returns, in order, each endpoint's index, active flag and printable
// URI (spec.md §4.1, §6).
func (r *Registry) List() []ConnectionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ConnectionInfo, len(r.endpoints))
	for i, e := range r.endpoints {
		out[i] = ConnectionInfo{Index: i, Active: i == r.activeIndex, URI: URIOrEmpty(e)}
	}
	return out
}

// Guard acquires the registry lock and returns a handle for the
// multi-step decision the Supervisor Loop makes each tick (spec.md §4.2
// step 2): check unrecoverable, check attempt threshold, decide whether to
// bind and connect or to stop. The handle must be released with Unlock
// before any blocking I/O, mirroring the UniqueGuard idiom the loop is
// built around.
func (r *Registry) Guard() *Guard {
	r.mu.Lock()
	return &Guard{r: r}
}

// Guard is a held Registry lock plus the operations valid while holding it.
// It must be released via Unlock; calls after the first are no-ops.
type Guard struct {
	r        *Registry
	released bool
}

// Unlock releases the registry lock. Safe to call multiple times.
func (g *Guard) Unlock() {
	if g.released {
		return
	}
	g.released = true
	g.r.mu.Unlock()
}

// Empty reports whether the registry has no endpoints.
func (g *Guard) Empty() bool {
	return len(g.r.endpoints) == 0
}

// Index returns the current active index.
func (g *Guard) Index() int {
	return g.r.activeIndex
}

// Active returns a copy of the active endpoint and whether one exists.
func (g *Guard) Active() (interfaces.Endpoint, bool) {
	if len(g.r.endpoints) == 0 || g.r.activeIndex >= len(g.r.endpoints) {
		return interfaces.Endpoint{}, false
	}
	return g.r.endpoints[g.r.activeIndex], true
}

// Attempt returns the current consecutive-failed-attempt count.
func (g *Guard) Attempt() int {
	return g.r.attempt
}

// IncrementAttempt bumps the attempt counter and returns the new value.
func (g *Guard) IncrementAttempt() int {
	g.r.attempt++
	return g.r.attempt
}

// ResetAttempt zeroes the attempt counter.
func (g *Guard) ResetAttempt() {
	g.r.attempt = 0
}

// EraseActive removes the endpoint currently at activeIndex (used when the
// client marked it unrecoverable), wrapping activeIndex back to 0 if it
// would fall out of range, and resets the attempt counter
// (spec.md §4.2 step 2c).
func (g *Guard) EraseActive() {
	r := g.r
	if len(r.endpoints) == 0 {
		return
	}
	r.endpoints = append(r.endpoints[:r.activeIndex], r.endpoints[r.activeIndex+1:]...)
	if r.activeIndex >= len(r.endpoints) {
		r.activeIndex = 0
	}
	r.attempt = 0
}

// AdvanceActive rotates activeIndex to the next endpoint modulo registry
// size and resets the attempt counter (spec.md §4.2 step 2d — strictly
// round-robin by insertion order).
func (g *Guard) AdvanceActive() {
	r := g.r
	if len(r.endpoints) == 0 {
		return
	}
	r.activeIndex = (r.activeIndex + 1) % len(r.endpoints)
	r.attempt = 0
}

// ResetToPrimary sets activeIndex back to 0 and resets the attempt
// counter (used by the Failover Timer, spec.md §4.4).
func (g *Guard) ResetToPrimary() {
	g.r.activeIndex = 0
	g.r.attempt = 0
}
