package employees

import (
	"context"
	"errors"
	"sort"
	"strings"

	"c2ms/internal/platform/docstore"
)

var ErrNotFound = errors.New("employee not found")

type Service struct {
	docs *docstore.Collection[Employee, *Employee]
}

func NewService(backend docstore.Backend) *Service {
	return &Service{docs: docstore.NewCollection[Employee](backend, docstore.Employees)}
}

func (s *Service) Create(ctx context.Context, in Input) (*Employee, error) {
	e := &Employee{}
	apply(e, in)
	if err := s.docs.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Employee, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(e, in)
	if err := s.docs.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	e, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.docs.Delete(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// List returns employees sorted by name; status narrows when set.
func (s *Service) List(ctx context.Context, status string) ([]Employee, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(all))
	for _, e := range all {
		if status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Nama) < strings.ToLower(out[j].Nama)
	})
	return out, nil
}

func (s *Service) Active(ctx context.Context) ([]Employee, error) {
	return s.List(ctx, StatusAktif)
}

func apply(e *Employee, in Input) {
	e.Nama = strings.TrimSpace(in.Nama)
	e.Jabatan = strings.TrimSpace(in.Jabatan)
	e.Telepon = strings.TrimSpace(in.Telepon)
	e.Email = strings.TrimSpace(in.Email)
	e.GajiPokok = in.GajiPokok
	e.UangHarian = in.UangHarian
	e.TarifLembur = in.TarifLembur
	e.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if e.Status == "" {
		e.Status = StatusAktif
	}
	e.TanggalMasuk = in.TanggalMasuk
	e.Rekening = strings.TrimSpace(in.Rekening)
}
