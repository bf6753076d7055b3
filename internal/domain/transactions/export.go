package transactions

import "c2ms/internal/platform/period"

type ExportRow struct {
	NoSTT     string `csv:"no_stt"`
	Tanggal   string `csv:"tanggal"`
	Klien     string `csv:"klien"`
	Pengirim  string `csv:"pengirim"`
	Penerima  string `csv:"penerima"`
	Asal      string `csv:"asal"`
	Tujuan    string `csv:"tujuan"`
	Layanan   string `csv:"layanan"`
	Koli      int    `csv:"koli"`
	Berat     string `csv:"berat_kg"`
	Volume    string `csv:"volume_m3"`
	Jumlah    string `csv:"jumlah"`
	PPN       string `csv:"ppn"`
	Pelunasan string `csv:"pelunasan"`
	Status    string `csv:"status"`
}

func ExportRows(items []Transaction) []ExportRow {
	rows := make([]ExportRow, 0, len(items))
	for _, t := range items {
		rows = append(rows, ExportRow{
			NoSTT:     t.NoSTT,
			Tanggal:   t.Tanggal.Format(period.DateLayout),
			Klien:     t.ClientName,
			Pengirim:  t.Pengirim.Nama,
			Penerima:  t.Penerima.Nama,
			Asal:      t.Asal,
			Tujuan:    t.Tujuan,
			Layanan:   t.Layanan,
			Koli:      t.Koli,
			Berat:     t.Berat.String(),
			Volume:    t.Volume.String(),
			Jumlah:    t.Jumlah.StringFixed(0),
			PPN:       t.PPN.StringFixed(0),
			Pelunasan: t.Pelunasan,
			Status:    t.Status,
		})
	}
	return rows
}
