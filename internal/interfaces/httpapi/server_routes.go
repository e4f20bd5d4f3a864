package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerTournamentRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/points-table", handler.GetPointsTable)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/leaderboards", handler.GetLeaderboards)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/standings.xlsx", handler.ExportStandings)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/matches", handler.CreateMatch)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/matches/{matchID}/start", handler.StartMatch)
	mux.HandleFunc("POST /v1/tournaments/{tournamentID}/simulate-scheduled", handler.SimulateScheduled)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler, feed *LiveFeedHub) {
	mux.HandleFunc("GET /v1/live", handler.GetLive)
	mux.HandleFunc("POST /v1/live/ball", handler.SimulateBall)
	mux.HandleFunc("GET /v1/live/auto", handler.GetAutoSimulation)
	mux.HandleFunc("POST /v1/live/auto/toggle", handler.ToggleAutoSimulation)
	mux.HandleFunc("POST /v1/live/auto/pause", handler.PauseAutoSimulation)
	mux.HandleFunc("PUT /v1/live/auto/speed", handler.SetAutoSimulationSpeed)
	if feed != nil {
		mux.Handle("GET /v1/live/feed", feed)
	}
}
