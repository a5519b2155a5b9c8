// ABOUTME: CSV encoding of the vehicle list with a UTF-8 byte order mark
// ABOUTME: Quoting follows RFC 4180 so names with commas, quotes or newlines survive a round trip

package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

// BOM marks the file as UTF-8 for spreadsheet tools
const BOM = "\ufeff"

// WriteCSV writes the header row and one row per vehicle
func WriteCSV(w io.Writer, r Report) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, v := range r.Vehicles {
		if err := cw.Write(r.row(v)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
