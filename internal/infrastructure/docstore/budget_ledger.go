// Package docstore keeps team budgets and the salary ledger in Firestore.
package docstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/platform/resilience"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	budgetsCollection      = "team_season_budgets"
	transactionsCollection = "salary_transactions"
)

type budgetDocument struct {
	TeamID           string    `firestore:"team_id"`
	SeasonID         string    `firestore:"season_id"`
	DualCurrency     bool      `firestore:"dual_currency"`
	RealPlayerBudget string    `firestore:"real_player_budget"`
	RealPlayerSpent  string    `firestore:"real_player_spent"`
	FootballBudget   string    `firestore:"football_budget"`
	FootballSpent    string    `firestore:"football_spent"`
	Budget           string    `firestore:"budget"`
	Spent            string    `firestore:"spent"`
	Version          int64     `firestore:"version"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

type transactionDocument struct {
	ID            string            `firestore:"id"`
	Type          string            `firestore:"type"`
	TeamID        string            `firestore:"team_id"`
	SeasonID      string            `firestore:"season_id"`
	PlayerID      string            `firestore:"player_id"`
	FixtureID     string            `firestore:"fixture_id"`
	Amount        string            `firestore:"amount"`
	BalanceBefore string            `firestore:"balance_before"`
	BalanceAfter  string            `firestore:"balance_after"`
	Currency      string            `firestore:"currency"`
	Metadata      map[string]string `firestore:"metadata"`
	CreatedAt     time.Time         `firestore:"created_at"`
}

type Config struct {
	ProjectID      string
	CircuitBreaker resilience.CircuitBreakerConfig
}

// BudgetLedger implements budget.Repository on Firestore. Budget documents are
// keyed {team_id}_{season_id}; salary rows use a fixture+player document id so
// a second deduction for the same pair cannot be created.
type BudgetLedger struct {
	client  *firestore.Client
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
	now     func() time.Time
}

// NewClient dials Firestore. FIRESTORE_EMULATOR_HOST is honoured by the SDK.
func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, crerr.Wrapf(err, "create firestore client project=%s", projectID)
	}
	return client, nil
}

func NewBudgetLedger(client *firestore.Client, cfg Config, logger *logging.Logger) *BudgetLedger {
	if logger == nil {
		logger = logging.Default()
	}
	return &BudgetLedger{
		client:  client,
		breaker: resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:  logger.Component("firestore_budget_ledger"),
		now:     time.Now,
	}
}

func (l *BudgetLedger) GetTeamSeason(ctx context.Context, teamID, seasonID string) (budget.TeamSeasonBudget, error) {
	var out budget.TeamSeasonBudget
	err := l.execute(ctx, "get_team_season", func() error {
		snap, err := l.budgetRef(teamID, seasonID).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: team=%s season=%s", budget.ErrTeamSeasonNotFound, teamID, seasonID)
			}
			return crerr.Wrapf(err, "get budget document team=%s season=%s", teamID, seasonID)
		}

		item, err := budgetFromSnapshot(snap)
		if err != nil {
			return err
		}
		out = item
		return nil
	})
	return out, err
}

func (l *BudgetLedger) ApplyDeduction(ctx context.Context, updated budget.TeamSeasonBudget, expectedVersion int64, item budget.SalaryTransaction) error {
	budgetRef := l.budgetRef(updated.TeamID, updated.SeasonID)
	txRef := l.client.Collection(transactionsCollection).Doc(transactionDocID(item))
	now := l.now().UTC()

	return l.execute(ctx, "apply_deduction", func() error {
		err := l.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			snap, err := tx.Get(budgetRef)
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return fmt.Errorf("%w: team=%s season=%s", budget.ErrTeamSeasonNotFound, updated.TeamID, updated.SeasonID)
				}
				return crerr.Wrapf(err, "read budget document key=%s", updated.Key())
			}

			var current budgetDocument
			if err := snap.DataTo(&current); err != nil {
				return crerr.Wrapf(err, "decode budget document key=%s", updated.Key())
			}
			if current.Version != expectedVersion {
				return fmt.Errorf("%w: key=%s expected=%d actual=%d", budget.ErrVersionConflict, updated.Key(), expectedVersion, current.Version)
			}

			doc := budgetToDocument(updated)
			doc.Version = expectedVersion + 1
			doc.UpdatedAt = now
			if err := tx.Set(budgetRef, doc); err != nil {
				return crerr.Wrapf(err, "stage budget write key=%s", updated.Key())
			}
			return tx.Create(txRef, transactionToDocument(item, now))
		})
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%w: fixture=%s player=%s", budget.ErrDuplicateSalary, item.FixtureID, item.PlayerID)
		}
		return err
	})
}

func (l *BudgetLedger) HasSalaryTransactionForFixture(ctx context.Context, fixtureID string) (bool, error) {
	var found bool
	err := l.execute(ctx, "has_salary_for_fixture", func() error {
		iter := l.client.Collection(transactionsCollection).
			Where("fixture_id", "==", fixtureID).
			Where("type", "==", budget.TransactionTypeSalary).
			Limit(1).
			Documents(ctx)
		defer iter.Stop()

		_, err := iter.Next()
		if stderrors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return crerr.Wrapf(err, "query salary transactions fixture=%s", fixtureID)
		}
		found = true
		return nil
	})
	return found, err
}

func (l *BudgetLedger) ListSalaryTransactionsByFixture(ctx context.Context, fixtureID string) ([]budget.SalaryTransaction, error) {
	out := make([]budget.SalaryTransaction, 0)
	err := l.execute(ctx, "list_salary_for_fixture", func() error {
		iter := l.client.Collection(transactionsCollection).
			Where("fixture_id", "==", fixtureID).
			Documents(ctx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if stderrors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				return crerr.Wrapf(err, "iterate salary transactions fixture=%s", fixtureID)
			}

			var doc transactionDocument
			if err := snap.DataTo(&doc); err != nil {
				return crerr.Wrapf(err, "decode salary transaction doc=%s", snap.Ref.ID)
			}
			item, err := transactionFromDocument(doc)
			if err != nil {
				return err
			}
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SeedBudgets writes budgets that do not exist yet. Used by dev bootstrap.
func (l *BudgetLedger) SeedBudgets(ctx context.Context, items []budget.TeamSeasonBudget) error {
	for _, item := range items {
		_, err := l.budgetRef(item.TeamID, item.SeasonID).Create(ctx, budgetToDocument(item))
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return crerr.Wrapf(err, "seed budget key=%s", item.Key())
		}
	}
	return nil
}

func (l *BudgetLedger) execute(ctx context.Context, op string, fn func() error) error {
	err := l.breaker.Execute(fn, isFirestoreFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		l.logger.WarnContext(ctx, "firestore circuit breaker rejected request", "op", op, "state", l.breaker.State())
		return fmt.Errorf("firestore budget ledger unavailable op=%s: %w", op, err)
	}
	return err
}

func (l *BudgetLedger) budgetRef(teamID, seasonID string) *firestore.DocumentRef {
	return l.client.Collection(budgetsCollection).Doc(budget.Key(teamID, seasonID))
}

func transactionDocID(item budget.SalaryTransaction) string {
	if item.Type == budget.TransactionTypeSalary {
		return "salary_" + item.FixtureID + "_" + item.PlayerID
	}
	return item.ID
}

// isFirestoreFailure separates backend trouble from business outcomes so that
// version conflicts and missing budgets never trip the breaker.
func isFirestoreFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, budget.ErrVersionConflict) ||
		stderrors.Is(err, budget.ErrTeamSeasonNotFound) ||
		stderrors.Is(err, budget.ErrDuplicateSalary) {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Internal, codes.Aborted:
		return true
	case codes.Unknown:
		return !stderrors.Is(err, context.Canceled)
	default:
		return false
	}
}

func budgetToDocument(item budget.TeamSeasonBudget) budgetDocument {
	return budgetDocument{
		TeamID:           item.TeamID,
		SeasonID:         item.SeasonID,
		DualCurrency:     item.DualCurrency,
		RealPlayerBudget: item.RealPlayerBudget.String(),
		RealPlayerSpent:  item.RealPlayerSpent.String(),
		FootballBudget:   item.FootballBudget.String(),
		FootballSpent:    item.FootballSpent.String(),
		Budget:           item.Budget.String(),
		Spent:            item.Spent.String(),
		Version:          item.Version,
		UpdatedAt:        item.UpdatedAt,
	}
}

func budgetFromSnapshot(snap *firestore.DocumentSnapshot) (budget.TeamSeasonBudget, error) {
	var doc budgetDocument
	if err := snap.DataTo(&doc); err != nil {
		return budget.TeamSeasonBudget{}, crerr.Wrapf(err, "decode budget document id=%s", snap.Ref.ID)
	}
	return budgetFromDocument(doc)
}

func budgetFromDocument(doc budgetDocument) (budget.TeamSeasonBudget, error) {
	amounts := []*struct {
		raw string
		out decimal.Decimal
	}{
		{raw: doc.RealPlayerBudget}, {raw: doc.RealPlayerSpent},
		{raw: doc.FootballBudget}, {raw: doc.FootballSpent},
		{raw: doc.Budget}, {raw: doc.Spent},
	}
	for _, amount := range amounts {
		value, err := parseAmount(amount.raw)
		if err != nil {
			return budget.TeamSeasonBudget{}, crerr.Wrapf(err, "budget %s", budget.Key(doc.TeamID, doc.SeasonID))
		}
		amount.out = value
	}

	return budget.TeamSeasonBudget{
		TeamID:           doc.TeamID,
		SeasonID:         doc.SeasonID,
		DualCurrency:     doc.DualCurrency,
		RealPlayerBudget: amounts[0].out,
		RealPlayerSpent:  amounts[1].out,
		FootballBudget:   amounts[2].out,
		FootballSpent:    amounts[3].out,
		Budget:           amounts[4].out,
		Spent:            amounts[5].out,
		Version:          doc.Version,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

func transactionToDocument(item budget.SalaryTransaction, now time.Time) transactionDocument {
	createdAt := item.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	return transactionDocument{
		ID:            item.ID,
		Type:          item.Type,
		TeamID:        item.TeamID,
		SeasonID:      item.SeasonID,
		PlayerID:      item.PlayerID,
		FixtureID:     item.FixtureID,
		Amount:        item.Amount.String(),
		BalanceBefore: item.BalanceBefore.String(),
		BalanceAfter:  item.BalanceAfter.String(),
		Currency:      string(item.Currency),
		Metadata:      item.Metadata,
		CreatedAt:     createdAt,
	}
}

func transactionFromDocument(doc transactionDocument) (budget.SalaryTransaction, error) {
	amount, err := parseAmount(doc.Amount)
	if err != nil {
		return budget.SalaryTransaction{}, crerr.Wrapf(err, "salary transaction %s amount", doc.ID)
	}
	before, err := parseAmount(doc.BalanceBefore)
	if err != nil {
		return budget.SalaryTransaction{}, crerr.Wrapf(err, "salary transaction %s balance_before", doc.ID)
	}
	after, err := parseAmount(doc.BalanceAfter)
	if err != nil {
		return budget.SalaryTransaction{}, crerr.Wrapf(err, "salary transaction %s balance_after", doc.ID)
	}

	return budget.SalaryTransaction{
		ID:            doc.ID,
		Type:          doc.Type,
		TeamID:        doc.TeamID,
		SeasonID:      doc.SeasonID,
		PlayerID:      doc.PlayerID,
		FixtureID:     doc.FixtureID,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Currency:      budget.Currency(doc.Currency),
		Metadata:      doc.Metadata,
		CreatedAt:     doc.CreatedAt,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, crerr.Wrapf(err, "parse amount %q", raw)
	}
	return value, nil
}
