// ABOUTME: Vehicle list exports to CSV and PDF, built in memory from the filtered list
// ABOUTME: Files are written atomically so a failed export never leaves a partial file

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
)

// Format is an export file format
type Format string

const (
	CSV Format = "csv"
	PDF Format = "pdf"
)

// ParseFormat accepts csv or pdf in any case
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case CSV:
		return CSV, nil
	case PDF:
		return PDF, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or pdf)", s)
	}
}

// Headers are the column titles shared by both formats
var Headers = []string{
	"Nombre",
	"Placa",
	"Marca",
	"Modelo",
	"Tipo",
	"Estado",
	"Consumo (L/Km)",
	"Capacidad (L)",
}

// Title heads the PDF report
const Title = "Sistema de Control de Combustible"

// FileName returns vehiculos_YYYY-MM-DD.<format> for the UTC date of now
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("vehiculos_%s.%s", now.UTC().Format("2006-01-02"), f)
}

// Report is the data behind one export
type Report struct {
	Vehicles []fleet.Vehicle
	Types    fleet.TypeIndex
	Now      time.Time
}

func (r Report) row(v fleet.Vehicle) []string {
	return []string{
		v.Name,
		v.Plate,
		v.Brand,
		v.Model,
		r.Types.Name(v.TypeID),
		v.Availability,
		formatNumber(v.FuelPerKm),
		formatNumber(v.FuelCapacity),
	}
}

// Rows formats every vehicle in Headers order
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Vehicles))
	for _, v := range r.Vehicles {
		rows = append(rows, r.row(v))
	}
	return rows
}

// Render encodes the report in format f
func Render(f Format, r Report) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case CSV:
		err = WriteCSV(&buf, r)
	case PDF:
		err = WritePDF(&buf, r)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save renders the report and writes it atomically into dir.
// Returns the final path.
func Save(dir string, f Format, r Report) (string, error) {
	data, err := Render(f, r)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", f, err)
	}
	path := filepath.Join(dir, FileName(f, r.Now))
	if err := WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFileAtomic writes data to a temp file beside path and renames it into place
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync export: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod export: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}
