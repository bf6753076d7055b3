package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/period"
)

type Party struct {
	Nama    string `json:"nama"`
	Telepon string `json:"telepon"`
	Alamat  string `json:"alamat"`
}

// Transaction is one cargo shipment. ClientName is denormalized at entry
// so aggregations never need a client lookup.
type Transaction struct {
	docstore.Meta
	NoSTT      string          `json:"noSTT"`
	Tanggal    time.Time       `json:"tanggal"`
	ClientID   string          `json:"clientId,omitempty"`
	ClientName string          `json:"clientName"`
	Pengirim   Party           `json:"pengirim"`
	Penerima   Party           `json:"penerima"`
	Asal       string          `json:"asal"`
	Tujuan     string          `json:"tujuan"`
	Layanan    string          `json:"layanan"`
	Koli       int             `json:"koli"`
	Berat      decimal.Decimal `json:"berat"`
	Volume     decimal.Decimal `json:"volume"`
	IsiBarang  string          `json:"isiBarang"`
	Jumlah     decimal.Decimal `json:"jumlah"`
	KenaPajak  bool            `json:"kenaPajak"`
	PPN        decimal.Decimal `json:"ppn"`
	Pelunasan  string          `json:"pelunasan"`
	Status     string          `json:"status"`
	VoyageID   string          `json:"voyageId,omitempty"`
	InvoiceID  string          `json:"invoiceId,omitempty"`
	Catatan    string          `json:"catatan,omitempty"`
	CreatedBy  string          `json:"createdBy,omitempty"`
}

// Total is the amount billed including PPN.
func (t Transaction) Total() decimal.Decimal {
	return t.Jumlah.Add(t.PPN)
}

// Details are the editable shipment fields shared by create and update.
type Details struct {
	Tanggal   time.Time
	ClientID  string
	Pengirim  Party
	Penerima  Party
	Asal      string
	Tujuan    string
	Layanan   string
	Koli      int
	Berat     decimal.Decimal
	Volume    decimal.Decimal
	IsiBarang string
	Jumlah    decimal.Decimal
	KenaPajak bool
	Pelunasan string
	Catatan   string
}

type Filter struct {
	Range     *period.Range
	Status    string
	Pelunasan string
	ClientID  string
	Query     string
}
