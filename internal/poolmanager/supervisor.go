package poolmanager

import (
	"context"
	"time"
)

const tickInterval = time.Second

// superviseLoop is the Supervisor Loop (spec.md §4.2): the sole actor that
// initiates connections, rotations and periodic hashrate submission. One
// tick per second until ctx is cancelled by Stop or the loop decides to
// quiesce on its own (registry exhausted).
func (m *Manager) superviseLoop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	reportElapsed := time.Duration(0)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if m.tick() {
			// registry exhausted or only the exit sentinel reachable:
			// farm stopped and running cleared inside tick().
			return
		}

		reportElapsed += tickInterval
		if reportElapsed >= m.cfg.HashrateReportInterval && m.cfg.HashrateReportInterval > 0 {
			m.reportHashrate()
			reportElapsed = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick runs one iteration of the Supervisor Loop's connection-management
// step (spec.md §4.2 steps 1-2). It returns true if the loop must exit
// (registry has nothing left to try).
func (m *Manager) tick() (shouldExit bool) {
	if m.client.IsPendingState() {
		return false
	}
	if m.client.IsConnected() {
		return false
	}

	m.suspendMining()

	g := m.registry.Guard()

	if active, ok := g.Active(); ok && active.Unrecoverable {
		m.client.UnsetConnection()
		g.EraseActive()
		m.connectionSwitches.Add(1)
	} else if g.Attempt() >= m.cfg.MaxConnectionAttempts {
		g.AdvanceActive()
		m.connectionSwitches.Add(1)
	}

	active, ok := g.Active()
	if ok && !active.IsExitSentinel() {
		g.IncrementAttempt()
		m.client.SetConnection(active)
		g.Unlock()

		m.log.Infof("selected pool %s:%d", active.Host, active.Port)
		m.client.Connect()
		return false
	}

	g.Unlock()

	m.log.Infof("no more connections to try, exiting")
	if m.farm.IsMining() {
		m.log.Infof("shutting down miners")
		m.farm.Stop()
	}
	m.running.Store(false)
	return true
}

// reportHashrate reads the farm's current hash rate and submits it via the
// client, encoded per spec.md §6 (spec.md §4.2 step 3).
func (m *Manager) reportHashrate() {
	progress := m.farm.MiningProgress()
	m.client.SubmitHashrate(encodeHashrate(progress.HashRate))
}
