package clients

import "c2ms/internal/platform/docstore"

const (
	TipePerorangan = "perorangan"
	TipePerusahaan = "perusahaan"
)

var Tipes = []string{TipePerorangan, TipePerusahaan}

type Client struct {
	docstore.Meta
	Nama    string `json:"nama"`
	Tipe    string `json:"tipe"`
	Telepon string `json:"telepon"`
	Email   string `json:"email,omitempty"`
	Alamat  string `json:"alamat"`
	Kota    string `json:"kota"`
	NPWP    string `json:"npwp,omitempty"`
	PKP     bool   `json:"pkp"`
	Catatan string `json:"catatan,omitempty"`
}

type Input struct {
	Nama    string `json:"nama"`
	Tipe    string `json:"tipe"`
	Telepon string `json:"telepon"`
	Email   string `json:"email"`
	Alamat  string `json:"alamat"`
	Kota    string `json:"kota"`
	NPWP    string `json:"npwp"`
	PKP     bool   `json:"pkp"`
	Catatan string `json:"catatan"`
}
