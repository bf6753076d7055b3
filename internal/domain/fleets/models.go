package fleets

import (
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/docstore"
)

const (
	JenisKapal = "kapal"
	JenisTruk  = "truk"

	StatusAktif     = "aktif"
	StatusPerawatan = "perawatan"
	StatusNonaktif  = "nonaktif"
)

var (
	Jenises  = []string{JenisKapal, JenisTruk}
	Statuses = []string{StatusAktif, StatusPerawatan, StatusNonaktif}
)

type Maintenance struct {
	Tanggal   time.Time       `json:"tanggal"`
	Deskripsi string          `json:"deskripsi"`
	Biaya     decimal.Decimal `json:"biaya"`
	Odometer  int64           `json:"odometer,omitempty"`
	ExpenseID string          `json:"expenseId,omitempty"`
}

type Fleet struct {
	docstore.Meta
	Nama             string        `json:"nama"`
	Jenis            string        `json:"jenis"`
	Nomor            string        `json:"nomor"`
	Kapasitas        string        `json:"kapasitas"`
	Status           string        `json:"status"`
	Maintenance      []Maintenance `json:"maintenance"`
	ServisBerikutnya *time.Time    `json:"servisBerikutnya,omitempty"`
	Catatan          string        `json:"catatan,omitempty"`
}

type Input struct {
	Nama             string
	Jenis            string
	Nomor            string
	Kapasitas        string
	Status           string
	ServisBerikutnya *time.Time
	Catatan          string
}

type MaintenanceInput struct {
	Maintenance
	ServisBerikutnya *time.Time
	RecordExpense    bool
}
