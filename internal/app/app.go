package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fivesquad/fivesquad/internal/config"
	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/domain/draft"
	"github.com/fivesquad/fivesquad/internal/domain/notification"
	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/domain/performance"
	"github.com/fivesquad/fivesquad/internal/domain/player"
	"github.com/fivesquad/fivesquad/internal/domain/roster"
	"github.com/fivesquad/fivesquad/internal/domain/scoring"
	"github.com/fivesquad/fivesquad/internal/infrastructure/feed"
	"github.com/fivesquad/fivesquad/internal/infrastructure/identity/keeper"
	"github.com/fivesquad/fivesquad/internal/infrastructure/notifier"
	"github.com/fivesquad/fivesquad/internal/infrastructure/repository/memory"
	"github.com/fivesquad/fivesquad/internal/infrastructure/repository/postgres"
	"github.com/fivesquad/fivesquad/internal/interfaces/httpapi"
	"github.com/fivesquad/fivesquad/internal/platform/cache"
	idgen "github.com/fivesquad/fivesquad/internal/platform/id"
	"github.com/fivesquad/fivesquad/internal/platform/resilience"
	"github.com/fivesquad/fivesquad/internal/platform/rng"
	"github.com/fivesquad/fivesquad/internal/usecase"
)

type repositories struct {
	players      player.Repository
	participants participant.Repository
	drafts       draft.Repository
	performances performance.Repository
	scores       scoring.Repository
	chips        chip.Repository
}

// NewHTTPServer wires repositories, services, and the HTTP router. The
// returned cleanup closes the database connection when one was opened.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	publisher := buildPublisher(cfg, logger)

	allocationService := usecase.NewAllocationService(
		repos.players,
		repos.participants,
		repos.drafts,
		roster.DefaultRules(),
		publisher,
		logger,
	)
	scoringService := usecase.NewScoringService(
		repos.players,
		repos.participants,
		repos.performances,
		repos.scores,
		repos.chips,
		logger,
	)
	chipService := usecase.NewChipService(
		repos.chips,
		repos.participants,
		publisher,
		idgen.NewRandomGenerator(),
		logger,
	)
	rewardService := usecase.NewRewardService(
		repos.chips,
		repos.participants,
		scoringService,
		cache.NewStore(cfg.CacheTTL),
		rng.NewSeeded(time.Now().UnixNano()),
		logger,
	)
	simulationService := usecase.NewSimulationService(repos.players, repos.performances, logger)

	var feedSyncService *usecase.FeedSyncService
	if cfg.FeedEnabled {
		feedClient := feed.NewClient(feed.Config{
			BaseURL: cfg.FeedBaseURL,
			APIKey:  cfg.FeedAPIKey,
			Timeout: cfg.FeedTimeout,
		}, logger)
		feedSyncService = usecase.NewFeedSyncService(feedClient, repos.performances, repos.players, logger)
	} else {
		logger.Info("performance feed disabled", "reason", "FEED_ENABLED=false")
	}

	verifier := keeper.NewClient(
		&http.Client{Timeout: cfg.KeeperTimeout},
		cfg.KeeperBaseURL,
		cfg.KeeperIntrospectPath,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.KeeperCircuitEnabled,
			FailureThreshold: cfg.KeeperCircuitFailureCount,
			OpenTimeout:      cfg.KeeperCircuitOpenTimeout,
		},
		logger,
	)

	handler := httpapi.NewHandler(
		allocationService,
		scoringService,
		chipService,
		rewardService,
		simulationService,
		feedSyncService,
		repos.players,
		repos.participants,
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *slog.Logger) (repositories, func(), error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("using seeded in-memory repositories", "reason", "DB_URL empty")
		return repositories{
			players:      memory.NewPlayerRepository(memory.SeedPlayers()),
			participants: memory.NewParticipantRepository(memory.SeedParticipants()),
			drafts:       memory.NewDraftRepository(),
			performances: memory.NewPerformanceRepository(),
			scores:       memory.NewScoringRepository(),
			chips:        memory.NewChipRepository(memory.SeedChips()),
		}, func() {}, nil
	}

	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Info("using postgres repositories", "db_name", dbNameFromURL(cfg.DBURL))

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("close db", "error", err)
		}
	}

	return repositories{
		players:      postgres.NewPlayerRepository(db),
		participants: postgres.NewParticipantRepository(db),
		drafts:       postgres.NewDraftRepository(db),
		performances: postgres.NewPerformanceRepository(db),
		scores:       postgres.NewScoringRepository(db),
		chips:        postgres.NewChipRepository(db),
	}, cleanup, nil
}

func buildPublisher(cfg config.Config, logger *slog.Logger) notification.Publisher {
	if !cfg.WebhookEnabled {
		return notifier.NewNoopPublisher(logger)
	}

	return notifier.NewWebhookPublisher(notifier.WebhookConfig{
		URL:     cfg.WebhookURL,
		Token:   cfg.WebhookToken,
		Timeout: cfg.WebhookTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.WebhookCircuitEnabled,
			FailureThreshold: cfg.WebhookCircuitFailureCount,
			OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
		},
	}, logger)
}
