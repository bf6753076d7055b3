package employees

import (
	"time"

	"github.com/shopspring/decimal"

	"c2ms/internal/platform/docstore"
)

const (
	StatusAktif    = "aktif"
	StatusNonaktif = "nonaktif"
)

var Statuses = []string{StatusAktif, StatusNonaktif}

// Employee carries the salary configuration used by payroll. Jabatan is
// free text and never interpreted.
type Employee struct {
	docstore.Meta
	Nama         string          `json:"nama"`
	Jabatan      string          `json:"jabatan"`
	Telepon      string          `json:"telepon"`
	Email        string          `json:"email,omitempty"`
	GajiPokok    decimal.Decimal `json:"gajiPokok"`
	UangHarian   decimal.Decimal `json:"uangHarian"`
	TarifLembur  decimal.Decimal `json:"tarifLembur"`
	Status       string          `json:"status"`
	TanggalMasuk *time.Time      `json:"tanggalMasuk,omitempty"`
	Rekening     string          `json:"rekening,omitempty"`
}

type Input struct {
	Nama         string
	Jabatan      string
	Telepon      string
	Email        string
	GajiPokok    decimal.Decimal
	UangHarian   decimal.Decimal
	TarifLembur  decimal.Decimal
	Status       string
	TanggalMasuk *time.Time
	Rekening     string
}
