package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/expenses"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/period"
)

// Service loads whole collections and hands them to the pure aggregations.
type Service struct {
	transactions *transactions.Service
	expenses     *expenses.Service
	clients      *clients.Service
	profile      config.Profile
	now          func() time.Time
}

func NewService(txSvc *transactions.Service, expSvc *expenses.Service, clientSvc *clients.Service, profile config.Profile) *Service {
	return &Service{
		transactions: txSvc,
		expenses:     expSvc,
		clients:      clientSvc,
		profile:      profile,
		now:          time.Now,
	}
}

func (s *Service) Profile() config.Profile { return s.profile }

func (s *Service) Location() *time.Location { return s.profile.Location() }

func (s *Service) Dashboard(ctx context.Context, r period.Range) (Dashboard, error) {
	if err := r.Bounded(); err != nil {
		return Dashboard{}, err
	}
	txs, exps, err := s.load(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return ComputeDashboard(txs, exps, r, s.profile.TopClientsLimit), nil
}

func (s *Service) ProfitLoss(ctx context.Context, r period.Range) (ProfitLoss, error) {
	if err := r.Bounded(); err != nil {
		return ProfitLoss{}, err
	}
	txs, exps, err := s.load(ctx)
	if err != nil {
		return ProfitLoss{}, err
	}
	return ComputeProfitLoss(txs, exps, r), nil
}

func (s *Service) Tax(ctx context.Context, r period.Range) (TaxReport, error) {
	var (
		txs  []transactions.Transaction
		list []clients.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactions.All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = s.clients.List(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return TaxReport{}, err
	}
	npwp := make(map[string]string, len(list))
	for _, c := range list {
		if c.NPWP != "" {
			npwp[c.ID] = c.NPWP
		}
	}
	return ComputeTax(txs, npwp, r), nil
}

// TransactionStats resolves a named window (today, week, month, year).
func (s *Service) TransactionStats(ctx context.Context, name string) (TransactionStats, error) {
	r, err := period.Named(name, s.now(), s.Location())
	if err != nil {
		return TransactionStats{}, err
	}
	txs, err := s.transactions.All(ctx)
	if err != nil {
		return TransactionStats{}, err
	}
	return ComputeTransactionStats(txs, name, r), nil
}

func (s *Service) load(ctx context.Context) ([]transactions.Transaction, []expenses.Expense, error) {
	var (
		txs  []transactions.Transaction
		exps []expenses.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactions.All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		exps, err = s.expenses.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, exps, nil
}
