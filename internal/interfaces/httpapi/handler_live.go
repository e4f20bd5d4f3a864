package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLive")
	defer span.End()

	out := liveDTO{
		Auto:     h.autoSimulator.State(),
		Schedule: h.matchService.Schedule(),
	}
	if live, ok := h.matchService.LiveMatch(); ok {
		out.Live = true
		out.Match = &live
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SimulateBall(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SimulateBall")
	defer span.End()

	updated, err := h.matchService.SimulateBall(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "simulate ball failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, updated)
}

func (h *Handler) GetAutoSimulation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAutoSimulation")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.autoSimulator.State())
}

func (h *Handler) ToggleAutoSimulation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ToggleAutoSimulation")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.autoSimulator.Toggle())
}

func (h *Handler) PauseAutoSimulation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PauseAutoSimulation")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.autoSimulator.TogglePause())
}

func (h *Handler) SetAutoSimulationSpeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetAutoSimulationSpeed")
	defer span.End()

	var req setSpeedRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.autoSimulator.SetSpeed(req.Speed)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}
