package handlers

import "github.com/heliopool/poolmanager/internal/pool"

// AddConnectionRequest is the POST /connections body (spec.md §4.6 add).
type AddConnectionRequest struct {
	URI string `json:"uri" binding:"required"`
}

// SetActiveConnectionRequest is the POST /connections/active body
// (spec.md §4.6 set_active).
type SetActiveConnectionRequest struct {
	Index int `json:"index" binding:"gte=0"`
}

// StatusResponse is the GET /status body: everything the Public Control
// Surface exposes for read-only observation (spec.md §4.6, §6).
type StatusResponse struct {
	Running            bool                  `json:"running"`
	ActiveConnection   string                `json:"active_connection"`
	Connections        []pool.ConnectionInfo `json:"connections"`
	CurrentDifficulty  float64               `json:"current_difficulty"`
	ConnectionSwitches uint64                `json:"connection_switches"`
	EpochChanges       uint64                `json:"epoch_changes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	Status string `json:"status"`
}
