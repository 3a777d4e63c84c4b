package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/league-scoring/internal/config"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/league-scoring/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/league-scoring/internal/platform/id"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/platform/resilience"
	"github.com/riskibarqy/league-scoring/internal/platform/scheduler"
	"github.com/riskibarqy/league-scoring/internal/usecase"
)

// App owns the HTTP server, the recalculation schedule and the storage
// handles opened for them.
type App struct {
	Server    *http.Server
	scheduler *scheduler.Service
	repos     repositories
	logger    *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	settlementSvc := usecase.NewSalarySettlementService(
		repos.budgets,
		ids,
		usecase.SalarySettlementConfig{CASRetries: cfg.SalaryCASRetries},
		logger,
	)
	scoringSvc := usecase.NewFantasyScoringService(repos.fantasy, repos.fixtures, repos.rules, ids, logger)
	recalcSvc := usecase.NewFantasyRecalculationService(
		repos.fantasy,
		scoringSvc,
		usecase.FantasyRecalculationConfig{LeagueConcurrency: cfg.FantasyLeagueConcurrency},
		logger,
	)

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	}
	jobSvc := usecase.NewJobOrchestratorService(
		recalcSvc,
		queue,
		repos.jobDispatch,
		usecase.JobOrchestratorConfig{RecalcDelay: cfg.FantasyRecalcDelay},
		logger,
	)

	matchResultSvc := usecase.NewMatchResultService(
		repos.players,
		repos.mirror,
		repos.fixtures,
		settlementSvc,
		jobSvc,
		usecase.MatchResultConfig{
			WorkerCount:     cfg.IngestWorkerCount,
			RecalcOnResult:  cfg.FantasyRecalcOnResult,
			DefaultSeasonID: cfg.DefaultSeasonID,
		},
		logger,
	)

	handler := httpapi.NewHandler(matchResultSvc, settlementSvc, scoringSvc, recalcSvc, jobSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	sched, err := buildScheduler(cfg, jobSvc, logger)
	if err != nil {
		_ = repos.close()
		return nil, err
	}

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		scheduler: sched,
		repos:     repos,
		logger:    logger,
	}, nil
}

func buildScheduler(cfg config.Config, jobSvc *usecase.JobOrchestratorService, logger *logging.Logger) (*scheduler.Service, error) {
	if cfg.FantasyRecalcCron == "" {
		logger.Info("fantasy recalculation schedule disabled", "reason", "FANTASY_RECALC_CRON empty")
		return nil, nil
	}

	sched, err := scheduler.New(logger)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.AddCronJob(usecase.JobFantasyRecalculate, cfg.FantasyRecalcCron, func(ctx context.Context) {
		result, err := jobSvc.RunFantasyRecalculation(ctx, usecase.FantasyRecalcJobInput{Trigger: "cron"})
		if err != nil {
			logger.WarnContext(ctx, "scheduled fantasy recalculation failed", "error", err)
			return
		}
		logger.InfoContext(ctx, "scheduled fantasy recalculation finished",
			"leagues", result.LeagueCount,
			"failed", result.FailedCount,
		)
	})
	if err != nil {
		_ = sched.Stop()
		return nil, fmt.Errorf("register fantasy recalculation schedule: %w", err)
	}
	return sched, nil
}

// Start launches background jobs. The HTTP server is started by the caller.
func (a *App) Start() {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
}

// Shutdown drains the HTTP server, stops the schedule and closes storage.
func (a *App) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var firstErr error
	if err := a.Server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutdown http server: %w", err)
	}
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop scheduler: %w", err)
		}
	}
	if err := a.repos.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
