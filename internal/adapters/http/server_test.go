package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/game"
	"github.com/comalice/riskbox/internal/production"
)

func newTestServer(t *testing.T) (http.Handler, *core.System) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := production.NewMetrics(reg)
	require.NoError(t, err)

	sys, machines, err := game.New(game.DefaultConfig(), func() float64 { return 0.5 }, core.WithObserver(metrics))
	require.NoError(t, err)
	t.Cleanup(sys.Stop)
	return NewHandler(sys, machines, reg, nil), sys
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeSnapshot(t *testing.T, rr *httptest.ResponseRecorder) core.Snapshot {
	t.Helper()
	var snap core.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	return snap
}

func TestGetHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestGetSnapshot(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/snapshot", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	snap := decodeSnapshot(t, rr)
	assert.Equal(t, "game", snap.Machine)
	assert.Equal(t, game.GamePlaying, snap.Value)
	assert.Contains(t, snap.Children, game.PlayerActor)
	assert.Contains(t, snap.Children, game.BoxActor)
	assert.Contains(t, snap.NextEvents, game.EventShootPlayer)

	rr = do(t, h, http.MethodGet, "/snapshot?actor=game/player", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "player", decodeSnapshot(t, rr).Machine)

	rr = do(t, h, http.MethodGet, "/snapshot?actor=game/ghost", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPostEvent(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/events", `{"type":"AWARD_POINTS","data":{"total":20000}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	snap := decodeSnapshot(t, rr)
	assert.Equal(t, game.GameWin, snap.Value)

	ctx, ok := snap.Context.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(20000), ctx["points"])
}

func TestPostEvent_Errors(t *testing.T) {
	h, sys := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"type":`, http.StatusBadRequest},
		{"unknown type", `{"type":"LOSE_LIFE"}`, http.StatusBadRequest},
		{"bad payload", `{"type":"AWARD_POINTS","data":{"total":"many"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/events", tt.body)
			assert.Equal(t, tt.status, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}

	sys.Stop()
	rr := do(t, h, http.MethodPost, "/events", `{"type":"SHOOT_PLAYER"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestGetGraph(t *testing.T) {
	h, _ := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/graph/box", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "digraph Statechart")
	assert.Contains(t, rr.Body.String(), "lightgreen", "running box state is highlighted")

	rr = do(t, h, http.MethodGet, "/graph/player?format=mermaid", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "stateDiagram-v2")
	assert.Contains(t, rr.Body.String(), "alive --> respawning : LOSE_LIFE")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/graph/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/graph/game?format=png", "").Code)
}

func TestGetMetrics(t *testing.T) {
	h, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/events", `{"type":"SHOOT_PLAYER"}`)

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "riskbox_transitions_total")
	assert.Contains(t, rr.Body.String(), "riskbox_actors_active")
}
