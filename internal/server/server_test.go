package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lowc1012/drivetrain-limiter/internal/control"
	"github.com/lowc1012/drivetrain-limiter/internal/drive"
	"github.com/lowc1012/drivetrain-limiter/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCommand drive.Command

func (f fixedCommand) Last() drive.Command { return drive.Command(f) }

func newTestHandler(t *testing.T) (http.Handler, *control.Teleop) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)
	cmd := drive.Command{
		Time:         2.5,
		Heading:      90,
		FieldCentric: true,
		Limited:      true,
		Y:            drive.AxisState{Input: 1, Output: 0.4, Branch: "accelerating"},
		X:            drive.AxisState{Input: -0.2, Output: -0.2, Branch: "releasing"},
	}
	require.NoError(t, m.Record(context.Background(), telemetry.FromCommand(cmd)...))

	teleop := &control.Teleop{}
	return NewHandler(fixedCommand(cmd), teleop, reg), teleop
}

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandler_State(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var view StateView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, 2.5, view.Time)
	assert.Equal(t, 90.0, view.Heading)
	assert.True(t, view.FieldCentric)
	assert.Equal(t, AxisView{Input: 1, Output: 0.4, Branch: "accelerating"}, view.Axes["y"])
	assert.Equal(t, AxisView{}, view.Axes["rotation"])
}

func TestHandler_Metrics(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `drivetrain_axis_output{axis="y"} 0.4`)
	assert.Contains(t, rec.Body.String(), `drivetrain_limiter_transitions_total{axis="x",branch="releasing"} 1`)
}

func TestHandler_Input(t *testing.T) {
	var tests = []struct {
		name   string
		method string
		body   string
		status int
		want   control.Inputs
	}{
		{
			name:   "accepts inputs",
			method: http.MethodPut,
			body:   `{"y": 0.5, "x": -0.25, "rotation": 1}`,
			status: http.StatusNoContent,
			want:   control.Inputs{Y: 0.5, X: -0.25, Rotation: 1},
		},
		{
			name:   "rejects out of range",
			method: http.MethodPut,
			body:   `{"y": 1.5}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "rejects unknown fields",
			method: http.MethodPut,
			body:   `{"z": 0.1}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "rejects malformed json",
			method: http.MethodPut,
			body:   `{"y":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "rejects other methods",
			method: http.MethodPost,
			body:   `{}`,
			status: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, teleop := newTestHandler(t)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/api/v1/input", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, teleop.Inputs())
		})
	}
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	h, _ := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ListenAndServe(ctx, addr, h, time.Second) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
