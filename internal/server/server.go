// Package server exposes the running drive over HTTP: operator input in,
// limiter state and metrics out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lowc1012/drivetrain-limiter/internal/control"
	"github.com/lowc1012/drivetrain-limiter/internal/drive"
	"github.com/lowc1012/drivetrain-limiter/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CommandSource reports the last command sent to the drive.
type CommandSource interface {
	Last() drive.Command
}

// AxisView is the JSON form of drive.AxisState.
type AxisView struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
	Branch string  `json:"branch,omitempty"`
}

// StateView is the body of GET /api/v1/state.
type StateView struct {
	Time         float64             `json:"time"`
	Heading      float64             `json:"heading"`
	FieldCentric bool                `json:"fieldCentric"`
	Limited      bool                `json:"limited"`
	Axes         map[string]AxisView `json:"axes"`
}

type handler struct {
	commands CommandSource
	teleop   *control.Teleop
}

// NewHandler builds the HTTP routes. Inputs accepted on PUT /api/v1/input
// are handed to teleop; the control loop polls it.
func NewHandler(commands CommandSource, teleop *control.Teleop, gatherer prometheus.Gatherer) http.Handler {
	h := &handler{commands: commands, teleop: teleop}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/state", h.state).Methods(http.MethodGet)
	api.HandleFunc("/input", h.input).Methods(http.MethodPut)
	return r
}

func (h *handler) writeResponse(writer http.ResponseWriter, status int, msg string, args ...interface{}) {
	writer.Header().Set("Content-Type", "text/plain")
	writer.WriteHeader(status)
	if _, err := writer.Write([]byte(fmt.Sprintf(msg, args...))); err != nil {
		log.Logger().Warn("Failed to write response body", zap.Error(err))
	}
}

func (h *handler) health(writer http.ResponseWriter, _ *http.Request) {
	h.writeResponse(writer, http.StatusOK, "ok")
}

func (h *handler) state(writer http.ResponseWriter, _ *http.Request) {
	c := h.commands.Last()
	view := StateView{
		Time:         c.Time,
		Heading:      c.Heading,
		FieldCentric: c.FieldCentric,
		Limited:      c.Limited,
		Axes:         make(map[string]AxisView, len(drive.Axes)),
	}
	for _, axis := range drive.Axes {
		st := c.Axis(axis)
		view.Axes[string(axis)] = AxisView{Input: st.Input, Output: st.Output, Branch: st.Branch}
	}

	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(view); err != nil {
		log.Logger().Warn("Failed to encode state", zap.Error(err))
	}
}

// input accepts normalized commands; the limiters themselves do no range
// checking so it happens here.
func (h *handler) input(writer http.ResponseWriter, request *http.Request) {
	var in control.Inputs
	dec := json.NewDecoder(http.MaxBytesReader(writer, request.Body, 1<<12))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		h.writeResponse(writer, http.StatusBadRequest, "failed to decode inputs: %v", err)
		return
	}

	for name, v := range map[string]float64{"y": in.Y, "x": in.X, "rotation": in.Rotation} {
		if math.IsNaN(v) || v < -1 || v > 1 {
			h.writeResponse(writer, http.StatusBadRequest, "%s must be within [-1, 1], got %v", name, v)
			return
		}
	}

	h.teleop.Set(in)
	writer.WriteHeader(http.StatusNoContent)
}

// ListenAndServe serves handler on addr until ctx is done, then shuts
// down gracefully within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger().Info("Serving drivetrain API", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
