// Package farmrig is a reference interfaces.Farm: a goroutine-per-worker
// kernel-dispatch stand-in that counts simulated hashes against the current
// WorkPackage, occasionally fabricates a random solution, and reports a
// mean hash rate, good enough to drive the pool
// manager end-to-end without a real GPU/CL backend. It carries no
// cryptographic solution validation (spec.md §1 Non-goals).
package farmrig

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/heliopool/poolmanager/internal/interfaces"
)

// Config tunes the simulated dispatch: how many worker goroutines per
// backend and how much simulated hashing each does per tick.
type Config struct {
	WorkersPerBackend int
	TickInterval      time.Duration
	HashesPerTick     uint64
}

// DefaultConfig starts four workers per backend, each reporting a modest
// simulated hash rate every 200ms.
func DefaultConfig() Config {
	return Config{
		WorkersPerBackend: 4,
		TickInterval:      200 * time.Millisecond,
		HashesPerTick:     5_000_000,
	}
}

// Rig is a reference interfaces.Farm implementation.
type Rig struct {
	log interfaces.ILogger
	cfg Config

	mu      sync.Mutex
	mining  bool
	work    interfaces.WorkPackage
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	minerID int

	counter hashCounter

	onSolutionFoundCb func(interfaces.Solution, int) bool
	onMinerRestartCb  func()
}

// New returns an idle Rig.
func New(log interfaces.ILogger, cfg Config) *Rig {
	return &Rig{log: log, cfg: cfg}
}

func (r *Rig) IsMining() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mining
}

// Start spins up WorkersPerBackend dispatch goroutines against backend. It
// is idempotent: a second Start call while already mining is a no-op,
// matching the manager's own startMiners guard.
func (r *Rig) Start(backend string, isSecondary bool) {
	r.mu.Lock()
	if r.mining {
		r.mu.Unlock()
		return
	}
	r.mining = true
	r.counter.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	baseID := r.minerID
	r.minerID += r.cfg.WorkersPerBackend
	r.mu.Unlock()

	r.log.Infof("starting %d %s workers (secondary=%v)", r.cfg.WorkersPerBackend, backend, isSecondary)

	for i := 0; i < r.cfg.WorkersPerBackend; i++ {
		minerIndex := baseID + i
		r.wg.Add(1)
		go r.dispatchLoop(ctx, minerIndex)
	}
}

func (r *Rig) Stop() {
	r.mu.Lock()
	if !r.mining {
		r.mu.Unlock()
		return
	}
	r.mining = false
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *Rig) Work() interfaces.WorkPackage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.work
}

func (r *Rig) SetWork(wp interfaces.WorkPackage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.work = wp
}

func (r *Rig) AcceptedSolution(stale bool, minerIndex int) {
	r.log.Infof("miner %d solution accepted (stale=%v)", minerIndex, stale)
}

func (r *Rig) RejectedSolution(minerIndex int) {
	r.log.Warnf("miner %d solution rejected", minerIndex)
}

func (r *Rig) MiningProgress() interfaces.MiningProgress {
	return interfaces.MiningProgress{HashRate: r.counter.Rate()}
}

func (r *Rig) OnSolutionFound(cb func(interfaces.Solution, int) bool) { r.onSolutionFoundCb = cb }
func (r *Rig) OnMinerRestart(cb func())                               { r.onMinerRestartCb = cb }

// dispatchLoop simulates one worker's kernel dispatch: it periodically
// reports hashing progress against the currently set work and, rarely,
// finds a solution. It suspends cleanly (keeps ticking but stops counting)
// while the work package is empty, mirroring how a real kernel idles
// during a Mining Suspension window (spec.md §4.5) without tearing itself
// down.
func (r *Rig) dispatchLoop(ctx context.Context, minerIndex int) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(int64(minerIndex) + time.Now().UnixNano()))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		wp := r.Work()
		if wp.Empty() {
			continue
		}
		r.counter.Add(r.cfg.HashesPerTick)

		if rng.Intn(200000) == 0 && r.onSolutionFoundCb != nil {
			sol := interfaces.Solution{Nonce: rng.Uint64(), MixHash: wp.Header}
			r.onSolutionFoundCb(sol, minerIndex)
		}
	}
}
