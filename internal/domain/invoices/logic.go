package invoices

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/domain/transactions"
)

// ItemFor describes one billed shipment.
func ItemFor(t transactions.Transaction) Item {
	desc := fmt.Sprintf("Pengiriman %s - %s (%s)", t.Asal, t.Tujuan, t.Layanan)
	if t.IsiBarang != "" {
		desc += ", " + t.IsiBarang
	}
	return Item{
		TransactionID: t.ID,
		NoSTT:         t.NoSTT,
		Keterangan:    desc,
		Jumlah:        t.Jumlah,
		PPN:           t.PPN,
	}
}

// Totals sums items; total = subtotal + ppn.
func Totals(items []Item) (subtotal, ppn, total decimal.Decimal) {
	for _, item := range items {
		subtotal = subtotal.Add(item.Jumlah)
		ppn = ppn.Add(item.PPN)
	}
	return subtotal, ppn, subtotal.Add(ppn)
}

// IsOverdue reports whether an unpaid invoice fell due before the start of today.
func IsOverdue(inv Invoice, today time.Time) bool {
	return inv.Status == StatusUnpaid && inv.JatuhTempo.Before(today)
}
