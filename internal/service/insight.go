package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/paisa/paisa/internal/insight"
	"github.com/paisa/paisa/internal/metrics"
	"github.com/paisa/paisa/internal/model"
	"github.com/paisa/paisa/internal/repository"
)

// InsightService builds reports from a user's ledger or from ad-hoc input.
type InsightService struct {
	transactions TransactionStore
	budgets      BudgetStore
	users        UserStore
	defaults     ReportOptions
	metrics      metrics.Recorder
	logger       *slog.Logger
	now          func() time.Time
}

// ReportOptions selects the trend series and contribution used for a report.
// Zero values fall back to the service defaults.
type ReportOptions struct {
	Granularity         insight.Granularity
	Window              int
	MonthlyContribution *decimal.Decimal
}

// NewInsightService creates a new InsightService.
func NewInsightService(store Store, defaults ReportOptions, recorder metrics.Recorder, logger *slog.Logger) *InsightService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	base := insight.DefaultOptions()
	if defaults.Granularity == "" {
		defaults.Granularity = base.Granularity
	}
	if defaults.Window <= 0 {
		defaults.Window = base.Window
	}
	return &InsightService{
		transactions: store,
		budgets:      store,
		users:        store,
		defaults:     defaults,
		metrics:      recorder,
		logger:       logger.With("component", "service.insight"),
		now:          time.Now,
	}
}

// Report reads the user's ledger and computes the full report. The three
// reads run concurrently; any failure aborts the whole report.
func (s *InsightService) Report(ctx context.Context, userID string, opts ReportOptions) (*insight.Report, error) {
	start := s.now()
	resolved, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}

	var (
		txs     []*model.Transaction
		budgets []*model.Budget
		user    *model.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactions.ListTransactions(gctx, userID, repository.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgets(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.users.GetUserByID(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read ledger snapshot: %w", err)
	}

	snapshot := insight.Snapshot{
		Transactions:   derefTransactions(txs),
		Budgets:        insight.CollapseBudgets(derefBudgets(budgets)),
		SavingsGoal:    user.SavingsGoal,
		MonthlyBudget:  user.MonthlyBudget,
		CurrentSavings: user.CurrentBalance,
	}

	report, err := insight.Compute(snapshot, resolved)
	if err != nil {
		return nil, err
	}

	s.metrics.IncReportGenerated("ledger")
	s.metrics.ObserveReportDuration(s.now().Sub(start))
	return report, nil
}

// Analyze computes a report from a caller-supplied JSON snapshot instead of
// the stored ledger. The monthly budget is compared against every supplied
// expense.
func (s *InsightService) Analyze(_ context.Context, raw []byte, opts ReportOptions) (*insight.Report, error) {
	start := s.now()
	resolved, err := s.resolve(opts)
	if err != nil {
		return nil, err
	}
	resolved.WholeHistory = true

	snapshot, err := insight.DecodeSnapshot(raw, s.logger)
	if err != nil {
		return nil, err
	}

	report, err := insight.Compute(snapshot, resolved)
	if err != nil {
		return nil, err
	}

	s.metrics.IncReportGenerated("adhoc")
	s.metrics.ObserveReportDuration(s.now().Sub(start))
	return report, nil
}

func (s *InsightService) resolve(opts ReportOptions) (insight.Options, error) {
	resolved := insight.Options{
		Now:                 s.now().UTC(),
		Granularity:         s.defaults.Granularity,
		Window:              s.defaults.Window,
		MonthlyContribution: s.defaults.MonthlyContribution,
	}
	if opts.Granularity != "" {
		resolved.Granularity = opts.Granularity
		if opts.Window == 0 && resolved.Granularity != s.defaults.Granularity {
			resolved.Window = defaultWindow(resolved.Granularity)
		}
	}
	if opts.Window != 0 {
		resolved.Window = opts.Window
	}
	if err := insight.ValidateWindow(resolved.Granularity, resolved.Window); err != nil {
		return resolved, err
	}
	if opts.MonthlyContribution != nil {
		if err := validateMoney("monthlyContribution", *opts.MonthlyContribution, true); err != nil {
			return resolved, err
		}
		resolved.MonthlyContribution = opts.MonthlyContribution
	}
	return resolved, nil
}

func defaultWindow(g insight.Granularity) int {
	if g == insight.Monthly {
		return 12
	}
	return 30
}

func derefTransactions(txs []*model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = *tx
	}
	return out
}

func derefBudgets(budgets []*model.Budget) []model.Budget {
	out := make([]model.Budget, len(budgets))
	for i, b := range budgets {
		out[i] = *b
	}
	return out
}
