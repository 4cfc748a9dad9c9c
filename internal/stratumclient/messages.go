package stratumclient

// Package stratumclient speaks a Stratum-derived, line-delimited JSON
// protocol against an upstream pool: one JSON object per line, terminated
// by '\n', matching the framing the teacher's stratum/rpc.ReadJSON and
// stratum/template line reader use.

// request is an outbound JSON-RPC call.
type request struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// response is an inbound reply to a request this client sent.
type response struct {
	ID     uint64 `json:"id"`
	Result any    `json:"result"`
	Error  any    `json:"error"`
}

// notification is an inbound server-initiated message (mining.notify,
// mining.set_target, client.reconnect, ...).
type notification struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

const (
	methodSubscribe = "mining.subscribe"
	methodAuthorize = "mining.authorize"
	methodSubmit    = "mining.submit"
	methodNotify    = "mining.notify"
	methodSetTarget = "mining.set_difficulty"
)
