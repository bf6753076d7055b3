// Package stt issues waybill numbers (surat tanda terima).
package stt

import (
	"context"
	"fmt"
	"time"

	"c2ms/internal/platform/docstore"
)

const (
	counterDoc     = "stt_counters"
	invoiceCounter = "invoice_counters"
)

// FormatSTT renders STT-YYMM-NNNNN.
func FormatSTT(at time.Time, seq int64) string {
	return fmt.Sprintf("STT-%s-%05d", at.Format("0601"), seq)
}

// FormatInvoice renders INV-YYYYMM-NNNN.
func FormatInvoice(at time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%04d", at.Format("200601"), seq)
}

// Sequencer draws monthly sequences from counters kept under the metadata
// collection. Each month restarts at one.
type Sequencer struct {
	backend docstore.Backend
}

func NewSequencer(backend docstore.Backend) *Sequencer {
	return &Sequencer{backend: backend}
}

func (s *Sequencer) NextSTT(ctx context.Context, at time.Time) (string, error) {
	seq, err := s.backend.Increment(ctx, docstore.Metadata, counterDoc, at.Format("0601"))
	if err != nil {
		return "", fmt.Errorf("next stt: %w", err)
	}
	return FormatSTT(at, seq), nil
}

func (s *Sequencer) NextInvoice(ctx context.Context, at time.Time) (string, error) {
	seq, err := s.backend.Increment(ctx, docstore.Metadata, invoiceCounter, at.Format("200601"))
	if err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return FormatInvoice(at, seq), nil
}
