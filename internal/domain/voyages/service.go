package voyages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/docstore"
)

var (
	ErrNotFound          = errors.New("voyage not found")
	ErrInvalidTransition = errors.New("voyage status transition not allowed")
	ErrNotScheduled      = errors.New("voyage has already departed or was cancelled")
	ErrScheduleOrder     = errors.New("eta must not be before etd")
	ErrNotAssigned       = errors.New("transaction is not on this voyage")
)

type Service struct {
	docs *docstore.Collection[Voyage, *Voyage]
	txs  *transactions.Service
	now  func() time.Time
}

func NewService(backend docstore.Backend, txSvc *transactions.Service) *Service {
	return &Service{
		docs: docstore.NewCollection[Voyage](backend, docstore.Voyages),
		txs:  txSvc,
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*Voyage, error) {
	v := &Voyage{Status: StatusTerjadwal, TransactionIDs: []string{}}
	if err := apply(v, in); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Voyage, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusTerjadwal {
		return nil, ErrNotScheduled
	}
	if err := apply(v, in); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Voyage, error) {
	v, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

// List returns voyages by departure, latest first.
func (s *Service) List(ctx context.Context, status string) ([]Voyage, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Voyage, 0, len(all))
	for _, v := range all {
		if status == "" || v.Status == status {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ETD.After(out[j].ETD) })
	return out, nil
}

// Upcoming lists scheduled voyages departing from now on, soonest first.
func (s *Service) Upcoming(ctx context.Context) ([]Voyage, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Voyage, 0)
	for _, v := range all {
		if v.Status == StatusTerjadwal && !v.ETD.Before(now) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ETD.Before(out[j].ETD) })
	return out, nil
}

// Delete removes a voyage that has not departed and frees its shipments.
func (s *Service) Delete(ctx context.Context, id string) error {
	v, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if v.Status == StatusBerangkat || v.Status == StatusTiba {
		return ErrNotScheduled
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	s.releaseAll(ctx, v)
	return nil
}

// Assign loads shipments onto a scheduled voyage. Already assigned ids are
// skipped.
func (s *Service) Assign(ctx context.Context, id string, txIDs []string) (*Voyage, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusTerjadwal {
		return nil, ErrNotScheduled
	}
	for _, txID := range txIDs {
		if slices.Contains(v.TransactionIDs, txID) {
			continue
		}
		tx, err := s.txs.AssignVoyage(ctx, txID, v.ID)
		if err != nil {
			return nil, fmt.Errorf("assign %s: %w", txID, err)
		}
		v.TransactionIDs = append(v.TransactionIDs, tx.ID)
		if err := s.docs.Save(ctx, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *Service) Unassign(ctx context.Context, id, txID string) (*Voyage, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusTerjadwal {
		return nil, ErrNotScheduled
	}
	idx := slices.Index(v.TransactionIDs, txID)
	if idx < 0 {
		return nil, ErrNotAssigned
	}
	v.TransactionIDs = slices.Delete(v.TransactionIDs, idx, idx+1)
	if err := s.docs.Save(ctx, v); err != nil {
		return nil, err
	}
	if err := s.txs.ReleaseVoyage(ctx, txID, v.ID); err != nil && !errors.Is(err, transactions.ErrNotFound) {
		return nil, err
	}
	return v, nil
}

// SetStatus advances the voyage. Departure puts assigned shipments in
// transit; cancellation frees them for another voyage.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*Voyage, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(v.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, v.Status, status)
	}
	v.Status = status
	switch status {
	case StatusBerangkat:
		for _, txID := range v.TransactionIDs {
			if err := s.txs.Depart(ctx, txID); err != nil && !errors.Is(err, transactions.ErrNotFound) {
				return nil, fmt.Errorf("depart %s: %w", txID, err)
			}
		}
	case StatusBatal:
		s.releaseAll(ctx, v)
		v.TransactionIDs = []string{}
	}
	if err := s.docs.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) releaseAll(ctx context.Context, v *Voyage) {
	for _, txID := range v.TransactionIDs {
		if err := s.txs.ReleaseVoyage(ctx, txID, v.ID); err != nil && !errors.Is(err, transactions.ErrNotFound) {
			slog.Warn("voyage release failed", "voyage", v.Kode, "transaction", txID, "err", err)
		}
	}
}

func apply(v *Voyage, in Input) error {
	if !in.ETA.IsZero() && !in.ETD.IsZero() && in.ETA.Before(in.ETD) {
		return ErrScheduleOrder
	}
	v.Kode = strings.ToUpper(strings.TrimSpace(in.Kode))
	v.Moda = strings.ToLower(strings.TrimSpace(in.Moda))
	v.FleetID = in.FleetID
	v.Asal = strings.TrimSpace(in.Asal)
	v.Tujuan = strings.TrimSpace(in.Tujuan)
	v.ETD = in.ETD
	v.ETA = in.ETA
	v.Catatan = strings.TrimSpace(in.Catatan)
	return nil
}
