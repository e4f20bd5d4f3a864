package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/report"
)

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, err := h.tournamentService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]tournamentSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, tournamentSummaryToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	item, err := h.tournamentService.Get(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) GetPointsTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPointsTable")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	table, err := h.statsService.PointsTable(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get points table failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, table)
}

func (h *Handler) GetLeaderboards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboards")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	boards, err := h.statsService.Leaderboards(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboards failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boards)
}

func (h *Handler) ExportStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportStandings")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	table, err := h.statsService.PointsTable(ctx, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	boards, err := h.statsService.Leaderboards(ctx, tournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	raw, err := report.StandingsWorkbook(table, boards)
	if err != nil {
		h.logger.ErrorContext(ctx, "render standings workbook failed", "tournament_id", tournamentID, "error", err)
		writeInternalError(ctx, w)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-standings.xlsx"`, tournamentID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
