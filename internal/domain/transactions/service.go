package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/stt"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/requestctx"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

type Service struct {
	docs    *docstore.Collection[Transaction, *Transaction]
	seq     *stt.Sequencer
	clients *clients.Service
	rate    decimal.Decimal
	now     func() time.Time
}

// NewService binds transactions to the backend. rate is the PPN fraction
// applied to taxable shipments when they are entered or edited.
func NewService(backend docstore.Backend, clientSvc *clients.Service, rate decimal.Decimal) *Service {
	return &Service{
		docs:    docstore.NewCollection[Transaction](backend, docstore.Transactions),
		seq:     stt.NewSequencer(backend),
		clients: clientSvc,
		rate:    rate,
		now:     time.Now,
	}
}

func (s *Service) Rate() decimal.Decimal { return s.rate }

func (s *Service) Create(ctx context.Context, d Details) (*Transaction, error) {
	if d.Tanggal.IsZero() {
		d.Tanggal = s.now()
	}
	noSTT, err := s.seq.NextSTT(ctx, d.Tanggal)
	if err != nil {
		return nil, err
	}
	t := &Transaction{
		NoSTT:     noSTT,
		Status:    StatusPending,
		Pelunasan: PelunasanPending,
		CreatedBy: requestctx.GetActor(ctx),
	}
	if err := s.applyDetails(ctx, t, d); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id string, d Details) (*Transaction, error) {
	return s.mutate(ctx, id, func(t *Transaction) error {
		if t.Status == StatusDibatalkan {
			return ErrCancelled
		}
		if t.InvoiceID != "" && billingChanged(t, d) {
			return ErrInvoiced
		}
		if d.Tanggal.IsZero() {
			d.Tanggal = t.Tanggal
		}
		ppn := t.PPN
		if err := s.applyDetails(ctx, t, d); err != nil {
			return err
		}
		if t.InvoiceID != "" {
			t.PPN = ppn
		}
		return nil
	})
}

// billingChanged reports whether d alters what an invoice billed for t.
func billingChanged(t *Transaction, d Details) bool {
	return !d.Jumlah.Equal(t.Jumlah) || d.KenaPajak != t.KenaPajak || d.ClientID != t.ClientID
}

func (s *Service) applyDetails(ctx context.Context, t *Transaction, d Details) error {
	if d.Pelunasan != "" {
		if !ValidPelunasan(d.Pelunasan) {
			return ErrInvalidPelunasan
		}
		t.Pelunasan = d.Pelunasan
	}
	clientName := strings.TrimSpace(d.Pengirim.Nama)
	if d.ClientID != "" && s.clients != nil {
		c, err := s.clients.Get(ctx, d.ClientID)
		if err != nil {
			return err
		}
		clientName = c.Nama
	}
	t.Tanggal = d.Tanggal
	t.ClientID = d.ClientID
	t.ClientName = clientName
	t.Pengirim = trimParty(d.Pengirim)
	t.Penerima = trimParty(d.Penerima)
	t.Asal = strings.TrimSpace(d.Asal)
	t.Tujuan = strings.TrimSpace(d.Tujuan)
	t.Layanan = strings.ToLower(strings.TrimSpace(d.Layanan))
	t.Koli = d.Koli
	t.Berat = d.Berat
	t.Volume = d.Volume
	t.IsiBarang = strings.TrimSpace(d.IsiBarang)
	t.Jumlah = d.Jumlah
	t.KenaPajak = d.KenaPajak
	t.PPN = ComputePPN(d.Jumlah, d.KenaPajak, s.rate)
	t.Catatan = strings.TrimSpace(d.Catatan)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	t, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

// Delete removes a shipment that is not referenced by an invoice or voyage.
func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.InvoiceID != "" {
		return ErrInvoiced
	}
	if t.VoyageID != "" {
		return ErrOnVoyage
	}
	return s.docs.Delete(ctx, id)
}

func (s *Service) All(ctx context.Context) ([]Transaction, error) {
	return s.docs.List(ctx)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Transaction, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := Apply(all, f)
	SortRecent(out)
	return out, nil
}

// Find resolves one shipment by STT or free text.
func (s *Service) Find(ctx context.Context, query string) (*Transaction, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := Find(all, query)
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	limit = min(limit, MaxRecentLimit)
	out, err := s.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Service) SetStatus(ctx context.Context, id, status string) (*Transaction, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.mutate(ctx, id, func(t *Transaction) error {
		if !CanTransition(t.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, t.Status, status)
		}
		if status == StatusDibatalkan && t.InvoiceID != "" {
			return ErrInvoiced
		}
		t.Status = status
		return nil
	})
}

func (s *Service) Cancel(ctx context.Context, id string) (*Transaction, error) {
	return s.SetStatus(ctx, id, StatusDibatalkan)
}

func (s *Service) SetPelunasan(ctx context.Context, id, pelunasan string) (*Transaction, error) {
	if !ValidPelunasan(pelunasan) {
		return nil, ErrInvalidPelunasan
	}
	return s.mutate(ctx, id, func(t *Transaction) error {
		t.Pelunasan = pelunasan
		return nil
	})
}

// LinkInvoice marks the shipment as billed by invoiceID.
func (s *Service) LinkInvoice(ctx context.Context, id, invoiceID string) (*Transaction, error) {
	return s.mutate(ctx, id, func(t *Transaction) error {
		if t.Status == StatusDibatalkan {
			return ErrCancelled
		}
		if t.InvoiceID != "" && t.InvoiceID != invoiceID {
			return ErrInvoiced
		}
		t.InvoiceID = invoiceID
		return nil
	})
}

func (s *Service) UnlinkInvoice(ctx context.Context, id, invoiceID string) error {
	_, err := s.mutate(ctx, id, func(t *Transaction) error {
		if t.InvoiceID == invoiceID {
			t.InvoiceID = ""
		}
		return nil
	})
	return err
}

func (s *Service) AssignVoyage(ctx context.Context, id, voyageID string) (*Transaction, error) {
	return s.mutate(ctx, id, func(t *Transaction) error {
		if t.Status == StatusDibatalkan {
			return ErrCancelled
		}
		if t.VoyageID != "" && t.VoyageID != voyageID {
			return ErrOnVoyage
		}
		t.VoyageID = voyageID
		return nil
	})
}

func (s *Service) ReleaseVoyage(ctx context.Context, id, voyageID string) error {
	_, err := s.mutate(ctx, id, func(t *Transaction) error {
		if t.VoyageID == voyageID {
			t.VoyageID = ""
		}
		return nil
	})
	return err
}

// Depart moves a not yet shipped transaction into transit.
func (s *Service) Depart(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, id, func(t *Transaction) error {
		if t.Status == StatusPending || t.Status == StatusDiproses {
			t.Status = StatusDalamPerjalanan
		}
		return nil
	})
	return err
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*Transaction) error) (*Transaction, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func trimParty(p Party) Party {
	return Party{
		Nama:    strings.TrimSpace(p.Nama),
		Telepon: strings.TrimSpace(p.Telepon),
		Alamat:  strings.TrimSpace(p.Alamat),
	}
}
