// Package interfaces holds the external-collaborator contracts the pool
// manager consumes (PoolClient, Farm) and the small logging contract every
// component is built against, plus the domain value types that flow across
// those contracts.
package interfaces

import (
	"math/big"
	"time"
)

// ILogger is implemented by internal/lib.Logger (a zap.SugaredLogger
// wrapper). Components never depend on zap directly.
type ILogger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	DPanicf(template string, args ...interface{})

	Named(name string) ILogger
	With(args ...interface{}) ILogger
	Sync() error
}

// MinerType selects which farm backend(s) the manager spins up on connect.
type MinerType string

const (
	MinerTypeCL    MinerType = "CL"
	MinerTypeCUDA  MinerType = "CUDA"
	MinerTypeMixed MinerType = "Mixed"
)

// WorkPackage is the (header, boundary, epoch) tuple a pool hands out and a
// farm searches against. A zero-value WorkPackage (Empty returns true) is
// used to suspend mining without tearing the farm down.
type WorkPackage struct {
	Header   [32]byte
	Boundary [32]byte
	Epoch    uint64
}

// Empty reports whether this is the sentinel "no work" package used to
// suspend mining while preserving farm initialisation.
func (w WorkPackage) Empty() bool {
	return w == WorkPackage{}
}

// BoundaryInt interprets Boundary as a big-endian 256-bit unsigned integer.
func (w WorkPackage) BoundaryInt() *big.Int {
	return new(big.Int).SetBytes(w.Boundary[:])
}

// Solution is a candidate nonce/mix produced by the farm.
type Solution struct {
	Nonce   uint64
	MixHash [32]byte
	Stale   bool
}

// MiningProgress is a snapshot of the farm's current performance.
type MiningProgress struct {
	HashRate uint64 // hashes/second
}

// PoolClient is the wire-protocol collaborator (stratum, getwork, ...). The
// manager never speaks a protocol itself; it only drives this contract.
type PoolClient interface {
	IsConnected() bool
	IsPendingState() bool // connecting or disconnecting

	SetConnection(endpoint Endpoint)
	UnsetConnection()
	Connect()
	Disconnect()

	SubmitSolution(sol Solution, minerIndex int)
	SubmitHashrate(hexRate string)

	ActiveEndPoint() string

	OnConnected(cb func())
	OnDisconnected(cb func())
	OnWorkReceived(cb func(wp WorkPackage))
	OnSolutionAccepted(cb func(stale bool, elapsed time.Duration, minerIndex int))
	OnSolutionRejected(cb func(stale bool, elapsed time.Duration, minerIndex int))
}

// Farm is the local compute-engine collaborator.
type Farm interface {
	IsMining() bool
	Start(backend string, isSecondary bool)
	Stop()
	Work() WorkPackage
	SetWork(wp WorkPackage)
	AcceptedSolution(stale bool, minerIndex int)
	RejectedSolution(minerIndex int)
	MiningProgress() MiningProgress

	OnSolutionFound(cb func(sol Solution, minerIndex int) bool)
	OnMinerRestart(cb func())
}

// Endpoint describes one configured upstream. The registry stores it by
// value and never modifies it after insertion; Unrecoverable is whatever
// the caller set before adding it.
type Endpoint struct {
	Host          string
	Port          uint16
	Credentials   string // opaque: user[:pass] or similar
	Protocol      string // opaque protocol selector tag
	StratumMode   string // opaque to the manager, threaded through verbatim
	URI           string // original printable form, round-tripped verbatim
	Unrecoverable bool
}

// IsExitSentinel reports whether this endpoint is the "stop the manager"
// terminator (§3 of the spec).
func (e Endpoint) IsExitSentinel() bool {
	return e.Host == "exit"
}
