// Package csvexport writes csv-tagged row structs as CSV.
package csvexport

import (
	"io"
	"net/http"

	"github.com/gocarina/gocsv"
)

// Write marshals rows (a slice of csv-tagged structs) with a header line.
func Write(w io.Writer, rows any) error {
	return gocsv.Marshal(rows, w)
}

// Serve writes rows as an attachment download.
func Serve(w http.ResponseWriter, filename string, rows any) error {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	return Write(w, rows)
}

// Read parses CSV with a header line into a pointer to a slice of structs.
func Read(r io.Reader, out any) error {
	return gocsv.Unmarshal(r, out)
}
