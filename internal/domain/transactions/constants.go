package transactions

const (
	StatusPending         = "pending"
	StatusDiproses        = "diproses"
	StatusDalamPerjalanan = "dalam_perjalanan"
	StatusTerkirim        = "terkirim"
	StatusDibatalkan      = "dibatalkan"

	LayananDarat = "darat"
	LayananLaut  = "laut"

	PelunasanCash     = "Cash"
	PelunasanTransfer = "Transfer"
	PelunasanPending  = "Pending"
)

var (
	Statuses   = []string{StatusPending, StatusDiproses, StatusDalamPerjalanan, StatusTerkirim, StatusDibatalkan}
	Layanans   = []string{LayananDarat, LayananLaut}
	Pelunasans = []string{PelunasanCash, PelunasanTransfer, PelunasanPending}
)

// statusRank orders the delivery lifecycle; moves only go forward.
var statusRank = map[string]int{
	StatusPending:         0,
	StatusDiproses:        1,
	StatusDalamPerjalanan: 2,
	StatusTerkirim:        3,
}

// IsActive reports whether a shipment is still in flight.
func IsActive(status string) bool {
	return status != StatusTerkirim && status != StatusDibatalkan
}

// IsSettled reports whether the payment has been received.
func IsSettled(pelunasan string) bool {
	return pelunasan == PelunasanCash || pelunasan == PelunasanTransfer
}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func ValidPelunasan(value string) bool {
	for _, p := range Pelunasans {
		if p == value {
			return true
		}
	}
	return false
}
