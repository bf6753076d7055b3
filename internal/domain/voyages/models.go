package voyages

import (
	"time"

	"c2ms/internal/platform/docstore"
)

const (
	ModaKapal = "kapal"
	ModaTruk  = "truk"

	StatusTerjadwal = "terjadwal"
	StatusBerangkat = "berangkat"
	StatusTiba      = "tiba"
	StatusBatal     = "batal"
)

var (
	Modas    = []string{ModaKapal, ModaTruk}
	Statuses = []string{StatusTerjadwal, StatusBerangkat, StatusTiba, StatusBatal}
)

// transitions lists the statuses reachable from each state.
var transitions = map[string][]string{
	StatusTerjadwal: {StatusBerangkat, StatusBatal},
	StatusBerangkat: {StatusTiba},
}

type Voyage struct {
	docstore.Meta
	Kode           string    `json:"kode"`
	Moda           string    `json:"moda"`
	FleetID        string    `json:"fleetId,omitempty"`
	Asal           string    `json:"asal"`
	Tujuan         string    `json:"tujuan"`
	ETD            time.Time `json:"etd"`
	ETA            time.Time `json:"eta"`
	Status         string    `json:"status"`
	TransactionIDs []string  `json:"transactionIds"`
	Catatan        string    `json:"catatan,omitempty"`
}

type Input struct {
	Kode    string
	Moda    string
	FleetID string
	Asal    string
	Tujuan  string
	ETD     time.Time
	ETA     time.Time
	Catatan string
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
