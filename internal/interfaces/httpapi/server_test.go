package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/domain/roster"
	"github.com/fivesquad/fivesquad/internal/infrastructure/notifier"
	"github.com/fivesquad/fivesquad/internal/infrastructure/repository/memory"
	"github.com/fivesquad/fivesquad/internal/platform/cache"
	idgen "github.com/fivesquad/fivesquad/internal/platform/id"
	"github.com/fivesquad/fivesquad/internal/platform/rng"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

const testJobToken = "job-secret"

func newTestRouter(t *testing.T, verifier TokenVerifier) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	participantRepo := memory.NewParticipantRepository(memory.SeedParticipants())
	draftRepo := memory.NewDraftRepository()
	performanceRepo := memory.NewPerformanceRepository()
	scoringRepo := memory.NewScoringRepository()
	chipRepo := memory.NewChipRepository(memory.SeedChips())
	publisher := notifier.NewNoopPublisher(logger)

	allocationService := usecase.NewAllocationService(playerRepo, participantRepo, draftRepo, roster.DefaultRules(), publisher, logger)
	scoringService := usecase.NewScoringService(playerRepo, participantRepo, performanceRepo, scoringRepo, chipRepo, logger)
	chipService := usecase.NewChipService(chipRepo, participantRepo, publisher, idgen.NewRandomGenerator(), logger)
	rewardService := usecase.NewRewardService(chipRepo, participantRepo, scoringService, cache.NewStore(time.Minute), rng.NewSeeded(1), logger)
	simulationService := usecase.NewSimulationService(playerRepo, performanceRepo, logger)

	handler := NewHandler(
		allocationService,
		scoringService,
		chipService,
		rewardService,
		simulationService,
		nil,
		playerRepo,
		participantRepo,
		logger,
	)

	return NewRouter(handler, verifier, logger, []string{"*"}, testJobToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if got, _ := body["ok"].(bool); !got {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestRouter_ListPlayers(t *testing.T) {
	router := newTestRouter(t, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].([]any)
	if !ok || len(data) == 0 {
		t.Fatalf("expected non-empty player list, got %v", body["data"])
	}
}

func TestRouter_AssignFlow(t *testing.T) {
	verifier := stubVerifier{principal: participant.Principal{ParticipantID: "part-01", Name: "Alex"}}
	router := newTestRouter(t, verifier)

	req := httptest.NewRequest(http.MethodPost, "/v1/squad/assign",
		strings.NewReader(`{"player_id":"pl-gk-01","as_captain":true}`))
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected squad object, got %v", body["data"])
	}
	players, _ := data["players"].([]any)
	if len(players) != 1 {
		t.Fatalf("expected squad of 1, got %d", len(players))
	}

	// The same player is now owned; a second claim must conflict.
	req = httptest.NewRequest(http.MethodPost, "/v1/squad/assign",
		strings.NewReader(`{"player_id":"pl-gk-01"}`))
	req.Header.Set("Authorization", "Bearer token-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	body = decodeEnvelope(t, rec)
	if got, _ := body["errorKind"].(string); got != "Conflict" {
		t.Fatalf("expected errorKind=Conflict, got %v", body["errorKind"])
	}
}

func TestRouter_AssignRequiresAuth(t *testing.T) {
	router := newTestRouter(t, stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/v1/squad/assign",
		strings.NewReader(`{"player_id":"pl-gk-01"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_LeaderboardBeforeBaseline(t *testing.T) {
	router := newTestRouter(t, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected status 412, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if got, _ := body["errorKind"].(string); got != "PreconditionFailed" {
		t.Fatalf("expected errorKind=PreconditionFailed, got %v", body["errorKind"])
	}
}

func TestRouter_AdminRequiresPrivilege(t *testing.T) {
	verifier := stubVerifier{principal: participant.Principal{ParticipantID: "part-01"}}
	router := newTestRouter(t, verifier)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/baseline/reset", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_AdminBaselineReset(t *testing.T) {
	verifier := stubVerifier{principal: participant.Principal{ParticipantID: "part-01", IsPrivileged: true}}
	router := newTestRouter(t, verifier)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/baseline/reset", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// With the baseline set, the leaderboard projection opens up.
	req = httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_InternalJobToken(t *testing.T) {
	router := newTestRouter(t, stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/simulate",
		strings.NewReader(`{"gameweek":1,"seed":42}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/simulate",
		strings.NewReader(`{"gameweek":1,"seed":42}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ScoresBadGameweek(t *testing.T) {
	router := newTestRouter(t, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/v1/scores/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if got, _ := body["errorKind"].(string); got != "ValidationError" {
		t.Fatalf("expected errorKind=ValidationError, got %v", body["errorKind"])
	}
}
