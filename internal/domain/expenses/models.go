package expenses

import (
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/period"
)

type Expense struct {
	docstore.Meta
	Tanggal    time.Time       `json:"tanggal"`
	Kategori   string          `json:"kategori"`
	Keterangan string          `json:"keterangan"`
	Jumlah     decimal.Decimal `json:"jumlah"`
	Metode     string          `json:"metode"`
	VoyageID   string          `json:"voyageId,omitempty"`
	FleetID    string          `json:"fleetId,omitempty"`
	PayrollID  string          `json:"payrollId,omitempty"`
	CreatedBy  string          `json:"createdBy,omitempty"`
}

type Input struct {
	Tanggal    time.Time
	Kategori   string
	Keterangan string
	Jumlah     decimal.Decimal
	Metode     string
	VoyageID   string
	FleetID    string
	PayrollID  string
}

type Filter struct {
	Range    *period.Range
	Kategori string
	VoyageID string
	FleetID  string
}

type ExportRow struct {
	Tanggal    string `csv:"tanggal"`
	Kategori   string `csv:"kategori"`
	Kelompok   string `csv:"kelompok"`
	Keterangan string `csv:"keterangan"`
	Jumlah     string `csv:"jumlah"`
	Metode     string `csv:"metode"`
}
