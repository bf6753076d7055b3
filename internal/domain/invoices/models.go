package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/docstore"
)

const (
	StatusUnpaid  = "unpaid"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
	StatusVoid    = "void"
)

var Statuses = []string{StatusUnpaid, StatusPaid, StatusOverdue, StatusVoid}

type Item struct {
	TransactionID string          `json:"transactionId"`
	NoSTT         string          `json:"noSTT"`
	Keterangan    string          `json:"keterangan"`
	Jumlah        decimal.Decimal `json:"jumlah"`
	PPN           decimal.Decimal `json:"ppn"`
}

type Invoice struct {
	docstore.Meta
	NoInvoice  string          `json:"noInvoice"`
	ClientID   string          `json:"clientId"`
	ClientName string          `json:"clientName"`
	Tanggal    time.Time       `json:"tanggal"`
	JatuhTempo time.Time       `json:"jatuhTempo"`
	Items      []Item          `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	PPN        decimal.Decimal `json:"ppn"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	PaidAt     *time.Time      `json:"paidAt,omitempty"`
	Metode     string          `json:"metode,omitempty"`
	Catatan    string          `json:"catatan,omitempty"`
}

// IsOpen reports whether the invoice still awaits payment.
func (i Invoice) IsOpen() bool {
	return i.Status == StatusUnpaid || i.Status == StatusOverdue
}

type BuildInput struct {
	ClientID       string
	TransactionIDs []string
	Tanggal        time.Time
	Catatan        string
}

type Filter struct {
	Status   string
	ClientID string
}
