// Package poolmanager implements the Pool Connection Manager: the
// Supervisor Loop, Event Bridge, Failover Timer, Mining Suspension and
// Public Control Surface described in spec.md §4.
package poolmanager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heliopool/poolmanager/internal/interfaces"
	"github.com/heliopool/poolmanager/internal/pool"
)

// Config carries the tunables spec.md leaves to the operator: how many
// consecutive failures before rotating, how long a fallback connection may
// run before the manager forces a return to the primary, and how often the
// farm's hash rate is reported upstream.
type Config struct {
	MaxConnectionAttempts  int
	FailoverTimeout        time.Duration // 0 disables the failover timer
	HashrateReportInterval time.Duration
}

// DefaultConfig mirrors the original implementation's defaults: three
// attempts per endpoint before rotating and a report every 30 seconds; no
// automatic return to primary unless configured.
func DefaultConfig() Config {
	return Config{
		MaxConnectionAttempts:  3,
		FailoverTimeout:        0,
		HashrateReportInterval: 30 * time.Second,
	}
}

// Manager is the Pool Connection Manager. It is single-use with respect to
// the Start/Stop transition pair (spec.md §3 Lifecycle): create a new
// Manager to restart cleanly.
type Manager struct {
	client    interfaces.PoolClient
	farm      interfaces.Farm
	minerType interfaces.MinerType
	log       interfaces.ILogger
	cfg       Config

	registry *pool.Registry
	failover failoverTimer

	running            atomic.Bool
	connectionSwitches atomic.Uint64
	epochChanges       atomic.Uint64

	lastMu            sync.Mutex
	lastConnectedHost string
	lastBoundary      [32]byte
	haveBoundary      bool
	lastDifficulty    float64
	lastEpoch         uint64
	haveEpoch         bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager binds a Manager to a pool client and a farm and wires the
// Event Bridge (spec.md §3 Lifecycle, §4.3). Endpoints may be added to the
// returned Manager before or during Start.
func NewManager(client interfaces.PoolClient, farm interfaces.Farm, minerType interfaces.MinerType, cfg Config, log interfaces.ILogger) *Manager {
	m := &Manager{
		client:    client,
		farm:      farm,
		minerType: minerType,
		log:       log,
		cfg:       cfg,
		registry:  pool.NewRegistry(),
	}
	m.registerCallbacks()
	return m
}

func (m *Manager) registerCallbacks() {
	m.client.OnConnected(m.onConnected)
	m.client.OnDisconnected(m.onDisconnected)
	m.client.OnWorkReceived(m.onWorkReceived)
	m.client.OnSolutionAccepted(m.onSolutionAccepted)
	m.client.OnSolutionRejected(m.onSolutionRejected)
	m.farm.OnSolutionFound(m.onSolutionFound)
	m.farm.OnMinerRestart(m.onMinerRestart)
}

// Start transitions running false->true and launches the Supervisor Loop.
// It is a no-op with a warning if the registry has no endpoints
// (spec.md §4.6).
func (m *Manager) Start() {
	if m.registry.Len() == 0 {
		m.log.Warnf("manager has no connections defined")
		return
	}
	if !m.running.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.superviseLoop(ctx)
	}()
}

// Stop transitions running true->false, cancels the Failover Timer,
// disconnects the client if connected, and stops the farm if mining
// (spec.md §3 Lifecycle, §4.6). It is idempotent.
func (m *Manager) Stop() {
	if !m.running.CompareAndSwap(true, false) {
		return
	}
	m.log.Infof("shutting down")
	m.failover.cancel()
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	if m.client.IsConnected() {
		m.client.Disconnect()
	}
	if m.farm.IsMining() {
		m.log.Infof("shutting down miners")
		m.farm.Stop()
	}
}

// IsRunning reports whether the Supervisor Loop is live.
func (m *Manager) IsRunning() bool {
	return m.running.Load()
}

// AddConnection appends an endpoint to the registry (spec.md §4.1 add).
func (m *Manager) AddConnection(e interfaces.Endpoint) {
	m.registry.Add(e)
}

// RemoveConnection erases the endpoint at index (spec.md §4.1 remove).
func (m *Manager) RemoveConnection(index int) error {
	return m.registry.Remove(index)
}

// ClearConnections drops every configured endpoint and, if the client
// reports connected, requests a disconnect outside the registry lock
// (spec.md §4.1 clear).
func (m *Manager) ClearConnections() {
	m.registry.Clear()
	if m.client.IsConnected() {
		m.client.Disconnect()
	}
}

// SetActiveConnection sets the active endpoint to idx. If idx already names
// the active endpoint this is a no-op. Otherwise it bumps
// connection_switches, releases the registry lock, then requests a
// disconnect and suspends mining; the Supervisor Loop reconnects to the
// new active endpoint on its next tick (spec.md §4.1 set_active).
func (m *Manager) SetActiveConnection(idx int) error {
	changed, err := m.registry.SetActive(idx)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	m.connectionSwitches.Add(1)
	m.client.Disconnect()
	m.suspendMining()
	return nil
}

// GetActiveConnectionCopy returns a copy of the active endpoint, or the
// zero-value Endpoint (printed as ":0" by pool.URIOrEmpty) if the registry
// is empty (spec.md §4.6).
func (m *Manager) GetActiveConnectionCopy() interfaces.Endpoint {
	return m.registry.SnapshotActive()
}

// GetConnectionsSnapshot returns the ordered JSON-facing connection list
// (spec.md §4.6, §6).
func (m *Manager) GetConnectionsSnapshot() []pool.ConnectionInfo {
	return m.registry.List()
}

// GetCurrentDifficulty returns 0 unless the manager is running and the
// client is connected (spec.md §4.6).
func (m *Manager) GetCurrentDifficulty() float64 {
	if !m.running.Load() || !m.client.IsConnected() {
		return 0
	}
	m.lastMu.Lock()
	defer m.lastMu.Unlock()
	return m.lastDifficulty
}

// GetConnectionSwitches returns the total rotations since start
// (spec.md §3, §4.6).
func (m *Manager) GetConnectionSwitches() uint64 {
	return m.connectionSwitches.Load()
}

// GetEpochChanges returns the total distinct epochs observed since start
// (spec.md §3, §4.6).
func (m *Manager) GetEpochChanges() uint64 {
	return m.epochChanges.Load()
}

// suspendMining halts kernel dispatch by setting the farm's work to the
// empty package while preserving its initialised state, so a subsequent
// set_work resumes mining without reinitialisation. Idempotent: it is a
// no-op if the farm is not mining or its work is already empty
// (spec.md §4.5).
func (m *Manager) suspendMining() {
	if !m.farm.IsMining() {
		return
	}
	if m.farm.Work().Empty() {
		return
	}
	m.farm.SetWork(interfaces.WorkPackage{})
	m.log.Infof("suspend mining due connection change")
}

// startMiners starts the farm backend(s) selected by minerType
// (spec.md §4.3 "On connected").
func (m *Manager) startMiners() {
	if m.farm.IsMining() {
		return
	}
	m.log.Infof("spinning up miners")
	switch m.minerType {
	case interfaces.MinerTypeCL:
		m.farm.Start("opencl", false)
	case interfaces.MinerTypeCUDA:
		m.farm.Start("cuda", false)
	case interfaces.MinerTypeMixed:
		m.farm.Start("cuda", false)
		m.farm.Start("opencl", true)
	}
}
