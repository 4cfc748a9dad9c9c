package poolmanager

import (
	"time"

	"github.com/heliopool/poolmanager/internal/interfaces"
)

// The Event Bridge converts collaborator callbacks into manager state
// changes (spec.md §4.3). The client and farm handlers here run on a
// caller-owned goroutine and return quickly. They only query the client
// (ActiveEndPoint, IsConnected) or, in onSolutionFound, submit to it; none
// of them calls Connect or Disconnect. onFailoverTimeout runs on the
// Failover Timer's goroutine.

// onConnected captures last_connected_host, arms or cancels the Failover
// Timer, and starts the farm if it is idle.
func (m *Manager) onConnected() {
	g := m.registry.Guard()
	active, _ := g.Active()
	activeIdx := g.Index()
	g.ResetAttempt() // spec.md §8 invariant 3: reset on every connected event
	g.Unlock()

	m.lastMu.Lock()
	m.lastConnectedHost = active.Host
	m.lastMu.Unlock()

	m.log.Infof("established connection with %s:%d at %s", active.Host, active.Port, m.client.ActiveEndPoint())

	if activeIdx != 0 && m.cfg.FailoverTimeout > 0 {
		m.failover.arm(m.cfg.FailoverTimeout, m.onFailoverTimeout)
	} else {
		m.failover.cancel()
	}

	m.startMiners()
}

// onDisconnected logs the disconnection. It deliberately does not stop the
// farm: the Supervisor Loop decides on its next tick whether this is a
// fast reconnect to the same endpoint or the start of a rotation
// (spec.md §4.3 "On disconnected").
func (m *Manager) onDisconnected() {
	m.lastMu.Lock()
	host := m.lastConnectedHost
	m.lastMu.Unlock()
	m.log.Infof("disconnected from %s %s", host, m.client.ActiveEndPoint())
}

// onWorkReceived updates last_boundary/last_difficulty and
// last_epoch/epoch_changes on change, then forwards the work
// unconditionally to the farm (spec.md §4.3 "On work received").
func (m *Manager) onWorkReceived(wp interfaces.WorkPackage) {
	m.lastMu.Lock()
	boundaryChanged := !m.haveBoundary || wp.Boundary != m.lastBoundary
	if boundaryChanged {
		m.lastBoundary = wp.Boundary
		m.haveBoundary = true
		m.lastDifficulty = deriveDifficulty(wp.Boundary)
	}
	epochChanged := !m.haveEpoch || wp.Epoch != m.lastEpoch
	if epochChanged {
		m.lastEpoch = wp.Epoch
		m.haveEpoch = true
	}
	difficulty := m.lastDifficulty
	m.lastMu.Unlock()

	if boundaryChanged {
		m.log.Infof("pool difficulty: %s", formatDifficultyLog(difficulty))
	}
	if epochChanged {
		m.log.Infof("new epoch %d", wp.Epoch)
		m.epochChanges.Add(1)
	}

	m.farm.SetWork(wp)
}

// onSolutionAccepted logs the outcome and forwards acceptance to the farm
// (spec.md §4.3 "On solution accepted / rejected").
func (m *Manager) onSolutionAccepted(stale bool, elapsed time.Duration, minerIndex int) {
	m.log.Infof("**accepted%s %4dms %s", staleSuffix(stale), elapsed.Milliseconds(), m.client.ActiveEndPoint())
	m.farm.AcceptedSolution(stale, minerIndex)
}

// onSolutionRejected logs the outcome and forwards rejection to the farm.
func (m *Manager) onSolutionRejected(stale bool, elapsed time.Duration, minerIndex int) {
	m.log.Warnf("**rejected%s %4dms %s", staleSuffix(stale), elapsed.Milliseconds(), m.client.ActiveEndPoint())
	m.farm.RejectedSolution(minerIndex)
}

func staleSuffix(stale bool) string {
	if stale {
		return " (stale)"
	}
	return ""
}

// onSolutionFound submits the solution if the client is connected;
// otherwise it logs the solution as wasted and drops it (at-most-once
// submission, spec.md §4.3 "On solution found", §5 Ordering guarantees,
// §7 "Solution submitted while disconnected"). It always returns false: the
// caller never needs to re-enqueue.
func (m *Manager) onSolutionFound(sol interfaces.Solution, minerIndex int) bool {
	if m.client.IsConnected() {
		if sol.Stale {
			m.log.Warnf("stale solution: %x", sol.Nonce)
		} else {
			m.log.Infof("solution: %x", sol.Nonce)
		}
		m.client.SubmitSolution(sol, minerIndex)
	} else {
		m.log.Infof("solution %x wasted, waiting for connection", sol.Nonce)
	}
	return false
}

// onMinerRestart stops the farm if mining, then starts it again
// (spec.md §4.3 "On miner restart").
func (m *Manager) onMinerRestart() {
	m.log.Infof("restart miners")
	if m.farm.IsMining() {
		m.log.Infof("shutting down miners")
		m.farm.Stop()
	}
	m.startMiners()
}

// onFailoverTimeout is the Failover Timer's expiry callback
// (spec.md §4.4). If running and not already on the primary, it resets to
// the primary, bumps connection_switches, and requests a disconnect; the
// Supervisor Loop reconnects to the primary on its next tick.
func (m *Manager) onFailoverTimeout() {
	if !m.running.Load() {
		return
	}
	g := m.registry.Guard()
	if g.Index() == 0 {
		g.Unlock()
		return
	}
	g.ResetToPrimary()
	g.Unlock()

	m.connectionSwitches.Add(1)
	m.log.Infof("failover timeout reached, retrying connection to primary pool")
	m.client.Disconnect()
}
