package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerCommitteeRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/committee/fixtures/{fixtureID}/results", handler.SubmitFixtureResult)
	mux.HandleFunc("GET /v1/committee/fixtures/{fixtureID}/salary-transactions", handler.ListFixtureSalaryTransactions)
	mux.HandleFunc("POST /v1/committee/teams/{teamID}/seasons/{seasonID}/budget-adjustments", handler.ChargeTeamBudget)
}

func registerFantasyRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/admin/fantasy/recalculate", handler.RecalculateFantasy)
	mux.HandleFunc("GET /v1/fantasy/leagues/{leagueID}/standings", handler.GetFantasyStandings)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/fantasy-recalculate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFantasyRecalculationJob)))
}
