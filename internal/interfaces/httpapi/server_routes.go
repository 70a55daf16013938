package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/participants", handler.ListParticipants)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/scores/{gameweek}", handler.ListScoresByGameweek)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/squad/assign", RequireAuth(verifier, http.HandlerFunc(handler.AssignPlayer)))
	mux.Handle("POST /v1/squad/preflight", RequireAuth(verifier, http.HandlerFunc(handler.PreflightAssign)))
	mux.Handle("DELETE /v1/squad/players/{playerID}", RequireAuth(verifier, http.HandlerFunc(handler.UnassignPlayer)))
	mux.Handle("PUT /v1/squad/captaincy", RequireAuth(verifier, http.HandlerFunc(handler.SetCaptaincy)))
	mux.Handle("GET /v1/squad", RequireAuth(verifier, http.HandlerFunc(handler.GetMySquad)))
	mux.Handle("GET /v1/squad/scores", RequireAuth(verifier, http.HandlerFunc(handler.ListMyScores)))

	mux.Handle("POST /v1/rewards/draw", RequireAuth(verifier, http.HandlerFunc(handler.DrawReward)))
	mux.Handle("GET /v1/chips", RequireAuth(verifier, http.HandlerFunc(handler.ListMyChips)))
	mux.Handle("POST /v1/chips/use", RequireAuth(verifier, http.HandlerFunc(handler.UseChip)))
	mux.Handle("GET /v1/chips/effects", RequireAuth(verifier, http.HandlerFunc(handler.ListMyActiveEffects)))
}

func registerPrivilegedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/admin/draft/complete", RequireAuth(verifier, RequirePrivileged(http.HandlerFunc(handler.CompleteDraft))))
	mux.Handle("POST /v1/admin/baseline/reset", RequireAuth(verifier, RequirePrivileged(http.HandlerFunc(handler.ResetBaseline))))
	mux.Handle("GET /v1/admin/squads/audit", RequireAuth(verifier, RequirePrivileged(http.HandlerFunc(handler.AuditSquads))))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/simulate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSimulateJob)))
	mux.Handle("POST /v1/internal/jobs/recalculate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateJob)))
	mux.Handle("POST /v1/internal/jobs/feed-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFeedSyncJob)))
}
