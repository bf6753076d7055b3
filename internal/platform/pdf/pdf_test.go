package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"c2ms/internal/platform/config"
)

func TestDocumentRendersPDF(t *testing.T) {
	profile := config.DefaultProfile()
	profile.NPWP = "01.234.567.8-901.000"
	profile.PKP = true

	doc := New(profile, "Invoice INV-202603-0001")
	doc.Field("Klien", "PT Samudra")
	doc.Table([]Column{{Title: "STT", Width: 60}, {Title: "Jumlah", Width: 40, Align: "R"}}, [][]string{
		{"STT-2603-00001", "Rp 100.000"},
		{"STT-2603-00002"},
	})
	doc.Total("Total", "Rp 100.000", true)
	doc.Note("Pembayaran melalui transfer.")

	var buf bytes.Buffer
	require.NoError(t, doc.WriteTo(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
