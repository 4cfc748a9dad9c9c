package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliopool/poolmanager/internal/interfaces"
	"github.com/heliopool/poolmanager/internal/lib"
	"github.com/heliopool/poolmanager/internal/poolmanager"
)

// fakeHTTPClient/fakeHTTPFarm are the minimal no-op PoolClient/Farm doubles
// needed to construct a Manager for exercising the HTTP layer in
// isolation, mirroring the teacher's practice of testing handlers against
// in-memory fakes rather than live network I/O.
type fakeHTTPClient struct{}

func (fakeHTTPClient) IsConnected() bool                                 { return false }
func (fakeHTTPClient) IsPendingState() bool                              { return false }
func (fakeHTTPClient) SetConnection(interfaces.Endpoint)                 {}
func (fakeHTTPClient) UnsetConnection()                                  {}
func (fakeHTTPClient) Connect()                                          {}
func (fakeHTTPClient) Disconnect()                                       {}
func (fakeHTTPClient) SubmitSolution(interfaces.Solution, int)           {}
func (fakeHTTPClient) SubmitHashrate(string)                             {}
func (fakeHTTPClient) ActiveEndPoint() string                            { return "" }
func (fakeHTTPClient) OnConnected(func())                                {}
func (fakeHTTPClient) OnDisconnected(func())                             {}
func (fakeHTTPClient) OnWorkReceived(func(interfaces.WorkPackage))       {}
func (fakeHTTPClient) OnSolutionAccepted(func(bool, time.Duration, int)) {}
func (fakeHTTPClient) OnSolutionRejected(func(bool, time.Duration, int)) {}

type fakeHTTPFarm struct{}

func (fakeHTTPFarm) IsMining() bool                                      { return false }
func (fakeHTTPFarm) Start(string, bool)                                  {}
func (fakeHTTPFarm) Stop()                                               {}
func (fakeHTTPFarm) Work() interfaces.WorkPackage                        { return interfaces.WorkPackage{} }
func (fakeHTTPFarm) SetWork(interfaces.WorkPackage)                      {}
func (fakeHTTPFarm) AcceptedSolution(bool, int)                          {}
func (fakeHTTPFarm) RejectedSolution(int)                                {}
func (fakeHTTPFarm) MiningProgress() interfaces.MiningProgress           { return interfaces.MiningProgress{} }
func (fakeHTTPFarm) OnSolutionFound(func(interfaces.Solution, int) bool) {}
func (fakeHTTPFarm) OnMinerRestart(func())                               {}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	m := poolmanager.NewManager(fakeHTTPClient{}, fakeHTTPFarm{}, interfaces.MinerTypeCUDA, poolmanager.DefaultConfig(), lib.NewTestLogger())
	return NewHTTPHandler(m, lib.NewTestLogger())
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddAndListConnections(t *testing.T) {
	h := newTestHandler(t)

	body, _ := json.Marshal(AddConnectionRequest{URI: "stratum+tcp://u@p0:4444"})
	req := httptest.NewRequest(http.MethodPost, "/connections", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/connections", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "p0")
}

func TestAddConnectionRejectsBadURI(t *testing.T) {
	h := newTestHandler(t)
	body, _ := json.Marshal(AddConnectionRequest{URI: "not a uri"})
	req := httptest.NewRequest(http.MethodPost, "/connections", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveConnectionNotFound(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/connections/9", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStatus(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)
}
