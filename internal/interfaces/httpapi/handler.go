package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

type Handler struct {
	tournamentService *usecase.TournamentService
	matchService      *usecase.MatchService
	statsService      *usecase.StatsService
	autoSimulator     *usecase.AutoSimulator
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	tournamentService *usecase.TournamentService,
	matchService *usecase.MatchService,
	statsService *usecase.StatsService,
	autoSimulator *usecase.AutoSimulator,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		tournamentService: tournamentService,
		matchService:      matchService,
		statsService:      statsService,
		autoSimulator:     autoSimulator,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	_, live := h.matchService.LiveMatch()
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"status": "ok", "liveMatch": live})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
