package expenses

const (
	KategoriBBM             = "bbm"
	KategoriTol             = "tol"
	KategoriPelabuhan       = "pelabuhan"
	KategoriBongkarMuat     = "bongkar_muat"
	KategoriSewaArmada      = "sewa_armada"
	KategoriPerawatanArmada = "perawatan_armada"
	KategoriEkspedisi       = "ekspedisi"

	KategoriGaji       = "gaji"
	KategoriSewaKantor = "sewa_kantor"
	KategoriListrik    = "listrik"
	KategoriLainLain   = "lain_lain"

	MetodeCash     = "Cash"
	MetodeTransfer = "Transfer"
)

// cogsCategories are direct costs of moving cargo; every other category is
// operating expense.
var cogsCategories = map[string]bool{
	KategoriBBM:             true,
	KategoriTol:             true,
	KategoriPelabuhan:       true,
	KategoriBongkarMuat:     true,
	KategoriSewaArmada:      true,
	KategoriPerawatanArmada: true,
	KategoriEkspedisi:       true,
}

var Kategoris = []string{
	KategoriBBM, KategoriTol, KategoriPelabuhan, KategoriBongkarMuat, KategoriSewaArmada,
	KategoriPerawatanArmada, KategoriEkspedisi, KategoriGaji, KategoriSewaKantor, KategoriListrik, KategoriLainLain,
}

var Metodes = []string{MetodeCash, MetodeTransfer}

func IsCOGS(kategori string) bool {
	return cogsCategories[kategori]
}
