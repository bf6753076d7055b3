package invoices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/stt"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/money"
	"c2ms/internal/platform/pdf"
	"c2ms/internal/platform/period"
)

var (
	ErrNotFound       = errors.New("invoice not found")
	ErrNoTransactions = errors.New("invoice needs at least one transaction")
	ErrClientMismatch = errors.New("transaction belongs to another client")
	ErrNotOpen        = errors.New("invoice is not awaiting payment")
	ErrPaid           = errors.New("paid invoices cannot be changed")
	ErrInvalidMetode  = errors.New("payment method must be Cash or Transfer")
	ErrDuplicateItem  = errors.New("transaction listed twice")
)

type Service struct {
	docs    *docstore.Collection[Invoice, *Invoice]
	seq     *stt.Sequencer
	clients *clients.Service
	txs     *transactions.Service
	profile config.Profile
	now     func() time.Time
}

func NewService(backend docstore.Backend, clientSvc *clients.Service, txSvc *transactions.Service, profile config.Profile) *Service {
	return &Service{
		docs:    docstore.NewCollection[Invoice](backend, docstore.Invoices),
		seq:     stt.NewSequencer(backend),
		clients: clientSvc,
		txs:     txSvc,
		profile: profile,
		now:     time.Now,
	}
}

// FromTransactions bills a client's unbilled shipments and links each one
// to the new invoice.
func (s *Service) FromTransactions(ctx context.Context, in BuildInput) (*Invoice, error) {
	if len(in.TransactionIDs) == 0 {
		return nil, ErrNoTransactions
	}
	client, err := s.clients.Get(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if in.Tanggal.IsZero() {
		in.Tanggal = s.now()
	}

	seen := map[string]bool{}
	items := make([]Item, 0, len(in.TransactionIDs))
	for _, id := range in.TransactionIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateItem, id)
		}
		seen[id] = true
		t, err := s.txs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if t.ClientID != client.ID {
			return nil, fmt.Errorf("%w: %s", ErrClientMismatch, t.NoSTT)
		}
		if t.Status == transactions.StatusDibatalkan {
			return nil, fmt.Errorf("%w: %s", transactions.ErrCancelled, t.NoSTT)
		}
		if t.InvoiceID != "" {
			return nil, fmt.Errorf("%w: %s", transactions.ErrInvoiced, t.NoSTT)
		}
		items = append(items, ItemFor(*t))
	}

	number, err := s.seq.NextInvoice(ctx, in.Tanggal)
	if err != nil {
		return nil, err
	}
	subtotal, ppn, total := Totals(items)
	inv := &Invoice{
		NoInvoice:  number,
		ClientID:   client.ID,
		ClientName: client.Nama,
		Tanggal:    in.Tanggal,
		JatuhTempo: in.Tanggal.AddDate(0, 0, s.profile.InvoiceDueDays),
		Items:      items,
		Subtotal:   subtotal,
		PPN:        ppn,
		Total:      total,
		Status:     StatusUnpaid,
		Catatan:    strings.TrimSpace(in.Catatan),
	}
	if err := s.docs.Save(ctx, inv); err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, err := s.txs.LinkInvoice(ctx, item.TransactionID, inv.ID); err != nil {
			return nil, fmt.Errorf("link %s: %w", item.NoSTT, err)
		}
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.docs.Get(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	return inv, err
}

// List returns invoices newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Invoice, error) {
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Invoice, 0, len(all))
	for _, inv := range all {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			continue
		}
		out = append(out, inv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tanggal.After(out[j].Tanggal)
	})
	return out, nil
}

// Update changes the due date and note of an open invoice.
func (s *Service) Update(ctx context.Context, id string, jatuhTempo time.Time, catatan string) (*Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsOpen() {
		return nil, ErrNotOpen
	}
	if !jatuhTempo.IsZero() {
		inv.JatuhTempo = jatuhTempo
		if inv.Status == StatusOverdue && !jatuhTempo.Before(period.StartOfDay(s.now(), s.profile.Location())) {
			inv.Status = StatusUnpaid
		}
	}
	inv.Catatan = strings.TrimSpace(catatan)
	if err := s.docs.Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// MarkPaid settles the invoice and the payment status of every linked shipment.
func (s *Service) MarkPaid(ctx context.Context, id, metode string, paidAt time.Time) (*Invoice, error) {
	if metode != transactions.PelunasanCash && metode != transactions.PelunasanTransfer {
		return nil, ErrInvalidMetode
	}
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsOpen() {
		return nil, ErrNotOpen
	}
	if paidAt.IsZero() {
		paidAt = s.now()
	}
	inv.Status = StatusPaid
	inv.PaidAt = &paidAt
	inv.Metode = metode
	if err := s.docs.Save(ctx, inv); err != nil {
		return nil, err
	}
	for _, item := range inv.Items {
		if _, err := s.txs.SetPelunasan(ctx, item.TransactionID, metode); err != nil && !errors.Is(err, transactions.ErrNotFound) {
			return nil, fmt.Errorf("settle %s: %w", item.NoSTT, err)
		}
	}
	return inv, nil
}

// Void cancels an unpaid invoice and releases its shipments for rebilling.
func (s *Service) Void(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid {
		return nil, ErrPaid
	}
	if inv.Status == StatusVoid {
		return inv, nil
	}
	inv.Status = StatusVoid
	if err := s.docs.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.release(ctx, inv)
	return inv, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status == StatusPaid {
		return ErrPaid
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	s.release(ctx, inv)
	return nil
}

func (s *Service) release(ctx context.Context, inv *Invoice) {
	for _, item := range inv.Items {
		if err := s.txs.UnlinkInvoice(ctx, item.TransactionID, inv.ID); err != nil && !errors.Is(err, transactions.ErrNotFound) {
			slog.Warn("invoice release failed", "invoice", inv.NoInvoice, "transaction", item.TransactionID, "err", err)
		}
	}
}

// SweepOverdue flags unpaid invoices whose due date has passed.
func (s *Service) SweepOverdue(ctx context.Context) (map[string]any, error) {
	today := period.StartOfDay(s.now(), s.profile.Location())
	all, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	updated := []string{}
	for i := range all {
		inv := all[i]
		if !IsOverdue(inv, today) {
			continue
		}
		inv.Status = StatusOverdue
		if err := s.docs.Save(ctx, &inv); err != nil {
			return map[string]any{"updated": updated}, err
		}
		updated = append(updated, inv.NoInvoice)
	}
	return map[string]any{"updated": updated, "checked": len(all)}, nil
}

// RenderPDF writes the printable invoice.
func (s *Service) RenderPDF(w io.Writer, inv *Invoice) error {
	doc := pdf.New(s.profile, "Invoice "+inv.NoInvoice)
	doc.Field("Kepada", inv.ClientName)
	doc.Field("Tanggal", inv.Tanggal.Format(period.DateLayout))
	doc.Field("Jatuh tempo", inv.JatuhTempo.Format(period.DateLayout))
	doc.Field("Status", strings.ToUpper(inv.Status))
	doc.Gap()

	rows := make([][]string, 0, len(inv.Items))
	for _, item := range inv.Items {
		rows = append(rows, []string{item.NoSTT, item.Keterangan, money.Rupiah(item.Jumlah), money.Rupiah(item.PPN)})
	}
	doc.Table([]pdf.Column{
		{Title: "No. STT", Width: 35},
		{Title: "Keterangan", Width: 85},
		{Title: "Jumlah", Width: 35, Align: "R"},
		{Title: "PPN", Width: 35, Align: "R"},
	}, rows)
	doc.Gap()
	doc.Total("Subtotal", money.Rupiah(inv.Subtotal), false)
	doc.Total("PPN", money.Rupiah(inv.PPN), false)
	doc.Total("Total", money.Rupiah(inv.Total), true)
	if inv.Catatan != "" {
		doc.Gap()
		doc.Note(inv.Catatan)
	}
	return doc.WriteTo(w)
}
