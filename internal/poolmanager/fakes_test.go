package poolmanager

import (
	"sync"
	"time"

	"github.com/heliopool/poolmanager/internal/interfaces"
)

// fakeClient is a hand-rolled PoolClient double, in the style of the
// teacher's internal/resources/hashrate/proxy/conn_test.go fakes rather
// than a generated mock.
type fakeClient struct {
	mu        sync.Mutex
	connected bool
	pending   bool
	bound     interfaces.Endpoint
	activeEP  string

	connectCalls    int
	disconnectCalls int
	unsetCalls      int
	submittedSols   []interfaces.Solution
	submittedRates  []string

	// connectFn, if set, is invoked synchronously by Connect() so tests can
	// script success/failure without waiting on real network I/O.
	connectFn func(c *fakeClient)

	onConnectedCb        func()
	onDisconnectedCb     func()
	onWorkReceivedCb     func(interfaces.WorkPackage)
	onSolutionAcceptedCb func(bool, time.Duration, int)
	onSolutionRejectedCb func(bool, time.Duration, int)
}

func newFakeClient() *fakeClient {
	return &fakeClient{activeEP: "203.0.113.1:4444"}
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) IsPendingState() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *fakeClient) SetConnection(e interfaces.Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bound = e
}

func (c *fakeClient) UnsetConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsetCalls++
	c.bound = interfaces.Endpoint{}
}

func (c *fakeClient) Connect() {
	c.mu.Lock()
	c.connectCalls++
	fn := c.connectFn
	c.mu.Unlock()
	if fn != nil {
		fn(c)
	}
}

func (c *fakeClient) Disconnect() {
	c.mu.Lock()
	c.disconnectCalls++
	c.connected = false
	cb := c.onDisconnectedCb
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (c *fakeClient) SubmitSolution(sol interfaces.Solution, minerIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submittedSols = append(c.submittedSols, sol)
}

func (c *fakeClient) SubmitHashrate(hex string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submittedRates = append(c.submittedRates, hex)
}

func (c *fakeClient) ActiveEndPoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeEP
}

func (c *fakeClient) OnConnected(cb func())        { c.onConnectedCb = cb }
func (c *fakeClient) OnDisconnected(cb func())     { c.onDisconnectedCb = cb }
func (c *fakeClient) OnWorkReceived(cb func(interfaces.WorkPackage)) {
	c.onWorkReceivedCb = cb
}
func (c *fakeClient) OnSolutionAccepted(cb func(bool, time.Duration, int)) {
	c.onSolutionAcceptedCb = cb
}
func (c *fakeClient) OnSolutionRejected(cb func(bool, time.Duration, int)) {
	c.onSolutionRejectedCb = cb
}

// simulateConnected marks the client connected and fires onConnected,
// mimicking what a real client does after a successful handshake.
func (c *fakeClient) simulateConnected() {
	c.mu.Lock()
	c.connected = true
	cb := c.onConnectedCb
	c.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// fakeFarm is a hand-rolled Farm double.
type fakeFarm struct {
	mu       sync.Mutex
	mining   bool
	work     interfaces.WorkPackage
	hashrate uint64

	startCalls []fakeStartCall
	stopCalls  int

	acceptedCalls []fakeAcceptCall
	rejectedIdx   []int

	onSolutionFoundCb func(interfaces.Solution, int) bool
	onMinerRestartCb  func()
}

type fakeStartCall struct {
	backend   string
	secondary bool
}

type fakeAcceptCall struct {
	stale      bool
	minerIndex int
}

func newFakeFarm() *fakeFarm {
	return &fakeFarm{}
}

func (f *fakeFarm) IsMining() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mining
}

func (f *fakeFarm) Start(backend string, isSecondary bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mining = true
	f.startCalls = append(f.startCalls, fakeStartCall{backend, isSecondary})
}

func (f *fakeFarm) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mining = false
	f.stopCalls++
}

func (f *fakeFarm) Work() interfaces.WorkPackage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.work
}

func (f *fakeFarm) SetWork(wp interfaces.WorkPackage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.work = wp
}

func (f *fakeFarm) AcceptedSolution(stale bool, minerIndex int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acceptedCalls = append(f.acceptedCalls, fakeAcceptCall{stale, minerIndex})
}

func (f *fakeFarm) RejectedSolution(minerIndex int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectedIdx = append(f.rejectedIdx, minerIndex)
}

func (f *fakeFarm) MiningProgress() interfaces.MiningProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return interfaces.MiningProgress{HashRate: f.hashrate}
}

func (f *fakeFarm) OnSolutionFound(cb func(interfaces.Solution, int) bool) {
	f.onSolutionFoundCb = cb
}

func (f *fakeFarm) OnMinerRestart(cb func()) {
	f.onMinerRestartCb = cb
}

func (f *fakeFarm) setHashrate(v uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hashrate = v
}
