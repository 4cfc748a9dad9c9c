// Package stratumclient is a reference PoolClient: a Stratum-derived,
// line-delimited JSON client good enough to drive the pool manager
// end-to-end against a real upstream. It is grounded on the retrieved
// stratum/client, stratum/rpc and stratum/template sibling packages
// (net.Dial + bufio + one-JSON-object-per-line), adapted from their
// Cryptonote share-submission shape to an Ethash-style
// subscribe/authorize/notify/submit exchange matching the WorkPackage the
// pool manager understands.
package stratumclient

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heliopool/poolmanager/internal/interfaces"
)

const (
	dialTimeout  = 30 * time.Second
	writeTimeout = 10 * time.Second
)

type pendingSubmit struct {
	startedAt  time.Time
	minerIndex int
	stale      bool
}

// Client is a reference interfaces.PoolClient implementation.
type Client struct {
	log interfaces.ILogger

	mu       sync.Mutex
	endpoint interfaces.Endpoint
	conn     net.Conn
	writer   *bufio.Writer

	connected atomic.Bool
	pending   atomic.Bool
	nextID    atomic.Uint64

	submitMu sync.Mutex
	submits  map[uint64]pendingSubmit

	onConnectedCb        func()
	onDisconnectedCb     func()
	onWorkReceivedCb     func(interfaces.WorkPackage)
	onSolutionAcceptedCb func(bool, time.Duration, int)
	onSolutionRejectedCb func(bool, time.Duration, int)
}

// New returns a Client bound to no endpoint. Call SetConnection before
// Connect.
func New(log interfaces.ILogger) *Client {
	return &Client{
		log:     log,
		submits: make(map[uint64]pendingSubmit),
	}
}

func (c *Client) IsConnected() bool    { return c.connected.Load() }
func (c *Client) IsPendingState() bool { return c.pending.Load() }

func (c *Client) SetConnection(e interfaces.Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = e
}

func (c *Client) UnsetConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = interfaces.Endpoint{}
}

func (c *Client) ActiveEndPoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endpoint.Host == "" {
		return ""
	}
	return net.JoinHostPort(c.endpoint.Host, strconv.Itoa(int(c.endpoint.Port)))
}

// Connect dials the currently bound endpoint on its own goroutine so the
// Supervisor Loop's tick, which calls this, never blocks on network I/O
// (spec.md §4.2 step 2e, §5).
func (c *Client) Connect() {
	if !c.pending.CompareAndSwap(false, true) {
		return
	}
	go c.connectAndHandshake()
}

func (c *Client) connectAndHandshake() {
	defer c.pending.Store(false)

	c.mu.Lock()
	endpoint := c.endpoint
	c.mu.Unlock()

	if endpoint.IsExitSentinel() || endpoint.Host == "" {
		return
	}

	addr := net.JoinHostPort(endpoint.Host, strconv.Itoa(int(endpoint.Port)))
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		c.log.Warnf("dial %s failed: %v", addr, err)
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.writer = bufio.NewWriter(conn)
	c.mu.Unlock()

	if err := c.writeLine(request{ID: c.nextID.Add(1), Method: methodSubscribe}); err != nil {
		c.log.Warnf("subscribe to %s failed: %v", addr, err)
		conn.Close()
		return
	}
	if err := c.writeLine(request{ID: c.nextID.Add(1), Method: methodAuthorize, Params: []string{endpoint.Credentials, ""}}); err != nil {
		c.log.Warnf("authorize against %s failed: %v", addr, err)
		conn.Close()
		return
	}

	go c.readLoop(conn)

	c.connected.Store(true)
	if c.onConnectedCb != nil {
		c.onConnectedCb()
	}
}

// Disconnect closes the socket. The readLoop goroutine observes the
// resulting read error and drives the actual connected->false transition
// and OnDisconnected callback, so the transition always happens on the
// same goroutine regardless of who called Disconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (c *Client) readLoop(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			c.handleDisconnect(conn)
			return
		}
		if len(line) <= 1 {
			continue
		}

		var n notification
		if err := json.Unmarshal(line, &n); err == nil && n.Method != "" {
			c.handleNotification(n)
			continue
		}

		var r response
		if err := json.Unmarshal(line, &r); err == nil {
			c.handleResponse(r)
		}
	}
}

func (c *Client) handleDisconnect(conn net.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()

	if !c.connected.CompareAndSwap(true, false) {
		return
	}
	if c.onDisconnectedCb != nil {
		c.onDisconnectedCb()
	}
}

func (c *Client) handleNotification(n notification) {
	switch n.Method {
	case methodNotify:
		wp, ok := workPackageFromParams(n.Params)
		if !ok {
			c.log.Warnf("malformed %s notification", methodNotify)
			return
		}
		if c.onWorkReceivedCb != nil {
			c.onWorkReceivedCb(wp)
		}
	case methodSetTarget:
		// A bare difficulty update with no accompanying header is not
		// representable as a WorkPackage; the next mining.notify carries
		// the combined header+boundary the manager acts on.
	default:
		c.log.Debugf("ignoring notification method %s", n.Method)
	}
}

func (c *Client) handleResponse(r response) {
	c.submitMu.Lock()
	ps, ok := c.submits[r.ID]
	if ok {
		delete(c.submits, r.ID)
	}
	c.submitMu.Unlock()
	if !ok {
		return
	}

	elapsed := time.Since(ps.startedAt)
	if r.Error != nil {
		if c.onSolutionRejectedCb != nil {
			c.onSolutionRejectedCb(ps.stale, elapsed, ps.minerIndex)
		}
		return
	}
	if c.onSolutionAcceptedCb != nil {
		c.onSolutionAcceptedCb(ps.stale, elapsed, ps.minerIndex)
	}
}

// SubmitSolution sends a mining.submit for sol and tracks the outstanding
// request so the eventual response can be routed to
// OnSolutionAccepted/OnSolutionRejected.
func (c *Client) SubmitSolution(sol interfaces.Solution, minerIndex int) {
	id := c.nextID.Add(1)
	c.submitMu.Lock()
	c.submits[id] = pendingSubmit{startedAt: time.Now(), minerIndex: minerIndex, stale: sol.Stale}
	c.submitMu.Unlock()

	params := []string{
		"0x" + strconv.FormatUint(sol.Nonce, 16),
		"0x" + hex.EncodeToString(sol.MixHash[:]),
	}
	if err := c.writeLine(request{ID: id, Method: methodSubmit, Params: params}); err != nil {
		c.log.Warnf("submit solution failed: %v", err)
	}
}

// SubmitHashrate is fire-and-forget: the pool manager does not care whether
// the report was acknowledged (spec.md §4.2 step 3).
func (c *Client) SubmitHashrate(hexRate string) {
	if err := c.writeLine(request{ID: c.nextID.Add(1), Method: "eth_submitHashrate", Params: []string{hexRate}}); err != nil {
		c.log.Warnf("submit hashrate failed: %v", err)
	}
}

func (c *Client) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	c.mu.Lock()
	conn, w := c.conn, c.writer
	c.mu.Unlock()
	if conn == nil || w == nil {
		return fmt.Errorf("stratumclient: not connected")
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}

func (c *Client) OnConnected(cb func())                                { c.onConnectedCb = cb }
func (c *Client) OnDisconnected(cb func())                             { c.onDisconnectedCb = cb }
func (c *Client) OnWorkReceived(cb func(interfaces.WorkPackage))       { c.onWorkReceivedCb = cb }
func (c *Client) OnSolutionAccepted(cb func(bool, time.Duration, int)) { c.onSolutionAcceptedCb = cb }
func (c *Client) OnSolutionRejected(cb func(bool, time.Duration, int)) { c.onSolutionRejectedCb = cb }
