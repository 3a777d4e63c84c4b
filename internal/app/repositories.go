package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-scoring/internal/config"
	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/domain/fixture"
	"github.com/riskibarqy/league-scoring/internal/domain/jobscheduler"
	"github.com/riskibarqy/league-scoring/internal/domain/playerseason"
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/docstore"
	cacherepo "github.com/riskibarqy/league-scoring/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/league-scoring/internal/platform/cache"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/platform/resilience"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

type repositories struct {
	players     playerseason.Repository
	mirror      playerseason.LegacyMirror
	budgets     budget.Repository
	fixtures    fixture.Repository
	rules       scoringrule.Repository
	fantasy     fantasy.Repository
	jobDispatch jobscheduler.Repository
	db          *sqlx.DB
	firestore   *firestore.Client
}

func (r repositories) close() error {
	var firstErr error
	if r.firestore != nil {
		if err := r.firestore.Close(); err != nil {
			firstErr = fmt.Errorf("close firestore client: %w", err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close database: %w", err)
		}
	}
	return firstErr
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var repos repositories

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		if cfg.SeedDevData {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
			}
			logger.Info("postgres bootstrap seed applied")
		}

		repos = repositories{
			players:     postgres.NewPlayerSeasonRepository(db),
			mirror:      postgres.NewPlayerMirrorRepository(db),
			budgets:     postgres.NewBudgetRepository(db),
			fixtures:    postgres.NewFixtureRepository(db),
			rules:       postgres.NewScoringRuleRepository(db),
			fantasy:     postgres.NewFantasyRepository(db),
			jobDispatch: postgres.NewJobDispatchRepository(db),
			db:          db,
		}
	default:
		snapshot := memory.FantasySnapshot{}
		var (
			players  []playerseason.Record
			budgets  []budget.TeamSeasonBudget
			fixtures []fixture.Fixture
			rules    []scoringrule.Rule
		)
		if cfg.SeedDevData {
			snapshot = memory.SeedFantasy()
			players = memory.SeedPlayerSeasons()
			budgets = memory.SeedBudgets()
			fixtures = memory.SeedFixtures()
			rules = memory.SeedScoringRules()
		}

		repos = repositories{
			players:     memory.NewPlayerSeasonRepository(players),
			mirror:      memory.NewLegacyPlayerMirror(),
			budgets:     memory.NewBudgetRepository(budgets),
			fixtures:    memory.NewFixtureRepository(fixtures),
			rules:       memory.NewScoringRuleRepository(rules),
			fantasy:     memory.NewFantasyRepository(snapshot),
			jobDispatch: memory.NewJobDispatchRepository(),
		}
	}

	if cfg.BudgetStore == config.BudgetStoreFirestore {
		client, err := docstore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			_ = repos.close()
			return repositories{}, err
		}
		ledger := docstore.NewBudgetLedger(client, docstore.Config{
			ProjectID: cfg.FirestoreProjectID,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FirestoreCircuitEnabled,
				FailureThreshold: cfg.FirestoreCircuitFailureCount,
				OpenTimeout:      cfg.FirestoreCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FirestoreCircuitHalfOpenMaxReq,
			},
		}, logger)
		if cfg.SeedDevData {
			if err := ledger.SeedBudgets(ctx, memory.SeedBudgets()); err != nil {
				_ = client.Close()
				_ = repos.close()
				return repositories{}, fmt.Errorf("seed firestore budgets: %w", err)
			}
		}
		repos.budgets = ledger
		repos.firestore = client
		logger.Info("budget ledger on firestore", "project_id", cfg.FirestoreProjectID)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.rules = cacherepo.NewScoringRuleRepository(repos.rules, store)
		repos.fantasy = cacherepo.NewFantasyRepository(repos.fantasy, store)
	}

	return repos, nil
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
