package fleets

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"c2ms/internal/domain/expenses"
	"c2ms/internal/platform/docstore"
)

var ErrNotFound = errors.New("fleet not found")

type Service struct {
	docs     *docstore.Collection[Fleet, *Fleet]
	expenses *expenses.Service
}

func NewService(backend docstore.Backend, expenseSvc *expenses.Service) *Service {
	return &Service{
		docs:     docstore.NewCollection[Fleet](backend, docstore.Fleets),
		expenses: expenseSvc,
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*Fleet, error) {
	f := &Fleet{Maintenance: []Maintenance{}}
	apply(f, in)
	if err := s.docs.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Fleet, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(f, in)
	if err := s.docs.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Fleet, error) {
	f, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.docs.Delete(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) List(ctx context.Context, status string) ([]Fleet, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Fleet, 0, len(all))
	for _, f := range all {
		if status == "" || f.Status == status {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Nama < out[j].Nama })
	return out, nil
}

// AddMaintenance appends a service record, newest first, and optionally
// books its cost as a perawatan_armada expense.
func (s *Service) AddMaintenance(ctx context.Context, id string, in MaintenanceInput) (*Fleet, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := in.Maintenance
	rec.Deskripsi = strings.TrimSpace(rec.Deskripsi)
	if in.RecordExpense && rec.Biaya.IsPositive() && s.expenses != nil {
		exp, err := s.expenses.Create(ctx, expenses.Input{
			Tanggal:    rec.Tanggal,
			Kategori:   expenses.KategoriPerawatanArmada,
			Keterangan: f.Nama + ": " + rec.Deskripsi,
			Jumlah:     rec.Biaya,
			FleetID:    f.ID,
		})
		if err != nil {
			return nil, err
		}
		rec.ExpenseID = exp.ID
	}
	f.Maintenance = append([]Maintenance{rec}, f.Maintenance...)
	if in.ServisBerikutnya != nil {
		f.ServisBerikutnya = in.ServisBerikutnya
	}
	if err := s.docs.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ServiceDue lists fleets not retired whose next service falls on or before
// the cutoff.
func (s *Service) ServiceDue(ctx context.Context, cutoff time.Time) ([]Fleet, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Fleet, 0)
	for _, f := range all {
		if f.Status == StatusNonaktif || f.ServisBerikutnya == nil {
			continue
		}
		if !f.ServisBerikutnya.After(cutoff) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ServisBerikutnya.Before(*out[j].ServisBerikutnya) })
	return out, nil
}

func apply(f *Fleet, in Input) {
	f.Nama = strings.TrimSpace(in.Nama)
	f.Jenis = strings.ToLower(strings.TrimSpace(in.Jenis))
	f.Nomor = strings.ToUpper(strings.TrimSpace(in.Nomor))
	f.Kapasitas = strings.TrimSpace(in.Kapasitas)
	f.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if f.Status == "" {
		f.Status = StatusAktif
	}
	f.ServisBerikutnya = in.ServisBerikutnya
	f.Catatan = strings.TrimSpace(in.Catatan)
}
