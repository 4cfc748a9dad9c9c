package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/heliopool/poolmanager/internal/config"
	"github.com/heliopool/poolmanager/internal/interfaces"
	"github.com/heliopool/poolmanager/internal/pool"
	"github.com/heliopool/poolmanager/internal/poolmanager"
)

// HTTPHandler is the Public Control Surface's HTTP transport (spec.md
// §4.6): add/remove/switch/clear connections, and read-only status. It
// wraps a *poolmanager.Manager the way the teacher's HTTPHandler wraps an
// *allocator.Allocator/*contractmanager.ContractManager pair.
type HTTPHandler struct {
	manager *poolmanager.Manager
	log     interfaces.ILogger
}

// NewHTTPHandler builds the gin route table and returns the engine ready
// to Run, mirroring the teacher's NewHTTPHandler signature and route-table
// construction style.
func NewHTTPHandler(manager *poolmanager.Manager, log interfaces.ILogger) *gin.Engine {
	h := &HTTPHandler{manager: manager, log: log}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.GET("/healthcheck", h.HealthCheck)
	r.GET("/status", h.GetStatus)
	r.GET("/connections", h.GetConnections)
	r.POST("/connections", h.AddConnection)
	r.DELETE("/connections/:index", h.RemoveConnection)
	r.POST("/connections/active", h.SetActiveConnection)
	r.DELETE("/connections", h.ClearConnections)

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": config.BuildVersion,
	})
}

func (h *HTTPHandler) GetStatus(ctx *gin.Context) {
	active := h.manager.GetActiveConnectionCopy()
	ctx.JSON(http.StatusOK, StatusResponse{
		Running:            h.manager.IsRunning(),
		ActiveConnection:   pool.URIOrEmpty(active),
		Connections:        sortedConnections(h.manager.GetConnectionsSnapshot()),
		CurrentDifficulty:  h.manager.GetCurrentDifficulty(),
		ConnectionSwitches: h.manager.GetConnectionSwitches(),
		EpochChanges:       h.manager.GetEpochChanges(),
	})
}

func (h *HTTPHandler) GetConnections(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, sortedConnections(h.manager.GetConnectionsSnapshot()))
}

// sortedConnections stable-sorts a connection snapshot by index before it
// goes out over JSON, the same defensive stable-sort the teacher applies
// to its own miner/contract snapshots before serving them.
func sortedConnections(conns []pool.ConnectionInfo) []pool.ConnectionInfo {
	slices.SortStableFunc(conns, func(a, b pool.ConnectionInfo) bool {
		return a.Index < b.Index
	})
	return conns
}

func (h *HTTPHandler) AddConnection(ctx *gin.Context) {
	var req AddConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	endpoint, err := pool.ParseEndpoint(req.URI)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	for _, warning := range pool.CredentialWarnings(endpoint) {
		h.log.Warnf("%s", warning)
	}

	h.manager.AddConnection(endpoint)
	ctx.JSON(http.StatusOK, okResponse{Status: "ok"})
}

func (h *HTTPHandler) RemoveConnection(ctx *gin.Context) {
	index, ok := parseIndexParam(ctx)
	if !ok {
		return
	}
	if err := h.manager.RemoveConnection(index); err != nil {
		ctx.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, okResponse{Status: "ok"})
}

func (h *HTTPHandler) SetActiveConnection(ctx *gin.Context) {
	var req SetActiveConnectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := h.manager.SetActiveConnection(req.Index); err != nil {
		ctx.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, okResponse{Status: "ok"})
}

func (h *HTTPHandler) ClearConnections(ctx *gin.Context) {
	h.manager.ClearConnections()
	ctx.JSON(http.StatusOK, okResponse{Status: "ok"})
}

func parseIndexParam(ctx *gin.Context) (int, bool) {
	index, err := parseNonNegativeInt(ctx.Param("index"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: "index must be a non-negative integer"})
		return 0, false
	}
	return index, true
}
