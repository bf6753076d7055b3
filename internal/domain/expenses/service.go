package expenses

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/period"
	"c2ms/internal/requestctx"
)

var (
	ErrNotFound       = errors.New("expense not found")
	ErrPayrollExpense = errors.New("expense was recorded by a payroll run")
)

type Service struct {
	docs *docstore.Collection[Expense, *Expense]
	now  func() time.Time
}

func NewService(backend docstore.Backend) *Service {
	return &Service{
		docs: docstore.NewCollection[Expense](backend, docstore.Expenses),
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*Expense, error) {
	e := &Expense{CreatedBy: requestctx.GetActor(ctx)}
	s.apply(e, in)
	if err := s.docs.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ForPayroll returns the expense booked for a payroll period, creating it
// under a period-derived id when none exists. Repeated calls for the same
// period yield the same expense.
func (s *Service) ForPayroll(ctx context.Context, in Input) (*Expense, error) {
	if in.PayrollID == "" {
		return nil, errors.New("payroll id is required")
	}
	id := PayrollExpenseID(in.PayrollID)
	e, err := s.Get(ctx, id)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].PayrollID == in.PayrollID {
			return &all[i], nil
		}
	}
	e = &Expense{CreatedBy: requestctx.GetActor(ctx)}
	e.ID = id
	s.apply(e, in)
	if err := s.docs.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func PayrollExpenseID(payrollID string) string {
	return "payroll-" + payrollID
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Expense, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.PayrollID != "" {
		return nil, ErrPayrollExpense
	}
	s.apply(e, in)
	if err := s.docs.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Expense, error) {
	e, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.PayrollID != "" {
		return ErrPayrollExpense
	}
	return s.docs.Delete(ctx, id)
}

func (s *Service) All(ctx context.Context) ([]Expense, error) {
	return s.docs.List(ctx)
}

// List returns matching expenses, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Expense, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := Apply(all, f)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tanggal.After(out[j].Tanggal)
	})
	return out, nil
}

func Apply(items []Expense, f Filter) []Expense {
	out := make([]Expense, 0, len(items))
	for _, e := range items {
		if f.Range != nil && !f.Range.Contains(e.Tanggal) {
			continue
		}
		if f.Kategori != "" && e.Kategori != f.Kategori {
			continue
		}
		if f.VoyageID != "" && e.VoyageID != f.VoyageID {
			continue
		}
		if f.FleetID != "" && e.FleetID != f.FleetID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func ExportRows(items []Expense) []ExportRow {
	rows := make([]ExportRow, 0, len(items))
	for _, e := range items {
		group := "OpEx"
		if IsCOGS(e.Kategori) {
			group = "COGS"
		}
		rows = append(rows, ExportRow{
			Tanggal:    e.Tanggal.Format(period.DateLayout),
			Kategori:   e.Kategori,
			Kelompok:   group,
			Keterangan: e.Keterangan,
			Jumlah:     e.Jumlah.StringFixed(0),
			Metode:     e.Metode,
		})
	}
	return rows
}

func (s *Service) apply(e *Expense, in Input) {
	if in.Tanggal.IsZero() {
		in.Tanggal = s.now()
	}
	e.Tanggal = in.Tanggal
	e.Kategori = strings.ToLower(strings.TrimSpace(in.Kategori))
	if e.Kategori == "" {
		e.Kategori = KategoriLainLain
	}
	e.Keterangan = strings.TrimSpace(in.Keterangan)
	e.Jumlah = in.Jumlah
	e.Metode = in.Metode
	if e.Metode == "" {
		e.Metode = MetodeCash
	}
	e.VoyageID = in.VoyageID
	e.FleetID = in.FleetID
	e.PayrollID = in.PayrollID
}
