// ABOUTME: PDF report of the vehicle list: dark header, KPI row and a paged grid with status chips
// ABOUTME: Drawn with go-pdf/fpdf core fonts; text is translated to cp1252 for accented labels

package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fuelwise/fuelwise-cli/internal/fleet"
	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	slate950 = rgb{2, 6, 23}
	slate900 = rgb{15, 23, 42}
	slate850 = rgb{20, 29, 48}
	slate800 = rgb{30, 41, 59}
	slate700 = rgb{51, 65, 85}
	slate400 = rgb{148, 163, 184}
	slate300 = rgb{203, 213, 225}
	slate200 = rgb{226, 232, 240}
	emerald  = rgb{16, 185, 129}
	yellow   = rgb{234, 179, 8}
	red      = rgb{239, 68, 68}
	black    = rgb{0, 0, 0}
	white    = rgb{255, 255, 255}
)

const (
	padX      = 28.0
	headerH   = 86.0
	rowH      = 18.0
	bottomPad = 64.0
)

// column widths as shares of the usable width
var columnShares = []float64{0.18, 0.10, 0.12, 0.12, 0.13, 0.13, 0.11, 0.11}

type statusStyle struct{ bg, text rgb }

func chipStyle(raw string) statusStyle {
	a, _ := fleet.NormalizeAvailability(raw)
	switch a {
	case fleet.Available:
		return statusStyle{emerald, black}
	case fleet.Maintenance:
		return statusStyle{yellow, black}
	default:
		return statusStyle{red, white}
	}
}

type pdfWriter struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	pageW float64
	pageH float64
	cols  []float64
}

// WritePDF renders the report as a landscape A4 document
func WritePDF(w io.Writer, r Report) error {
	pdf, err := buildPDF(r)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildPDF(r Report) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(padX, padX, padX)
	pdf.SetAutoPageBreak(false, bottomPad)
	pdf.SetCreator("fuelwise", true)
	pdf.SetTitle(Title, true)
	if !r.Now.IsZero() {
		pdf.SetCreationDate(r.Now)
	}

	pw := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pw.pageW, pw.pageH = pdf.GetPageSize()
	usable := pw.pageW - 2*padX
	for _, share := range columnShares {
		pw.cols = append(pw.cols, usable*share)
	}

	pdf.SetFooterFunc(pw.footer)
	pdf.AddPage()
	pw.header(r)
	pw.kpis(fleet.Stats(r.Vehicles))
	pw.table(r)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}

func (pw *pdfWriter) fill(c rgb)   { pw.pdf.SetFillColor(c.r, c.g, c.b) }
func (pw *pdfWriter) text(c rgb)   { pw.pdf.SetTextColor(c.r, c.g, c.b) }
func (pw *pdfWriter) stroke(c rgb) { pw.pdf.SetDrawColor(c.r, c.g, c.b) }

func (pw *pdfWriter) header(r Report) {
	pdf := pw.pdf
	pw.fill(slate900)
	pdf.Rect(0, 0, pw.pageW, headerH, "F")

	pw.text(emerald)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(padX, 38, pw.tr(Title))

	pw.text(slate400)
	pdf.SetFont("Helvetica", "", 10)
	stamp := r.Now.Format("02/01/2006 15:04")
	pdf.Text(padX, 56, pw.tr(fmt.Sprintf("Vehículos Registrados • Exportado: %s", stamp)))

	pw.stroke(slate800)
	pdf.SetLineWidth(1.2)
	pdf.Line(padX, headerH-10, pw.pageW-padX, headerH-10)
	pdf.SetY(headerH + 10)
}

func (pw *pdfWriter) kpis(s fleet.Summary) {
	pdf := pw.pdf
	labels := []string{"Disponibles", "En mantenimiento", "No disponibles", "Prom. consumo (L/Km)", "Capacidad total (L)"}
	values := []string{
		strconv.Itoa(s.Available),
		strconv.Itoa(s.Maintenance),
		strconv.Itoa(s.Unavailable),
		strconv.FormatFloat(s.AvgFuelPerKm, 'f', 2, 64),
		formatNumber(s.TotalCapacity),
	}
	styles := []statusStyle{{emerald, black}, {yellow, black}, {red, white}, {slate850, slate200}, {slate850, slate200}}
	w := (pw.pageW - 2*padX) / float64(len(labels))

	pdf.SetX(padX)
	pdf.SetFont("Helvetica", "B", 10)
	pw.fill(slate800)
	pw.text(slate300)
	for _, l := range labels {
		pdf.CellFormat(w, 20, pw.tr(l), "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetX(padX)
	pdf.SetFont("Helvetica", "", 10)
	for i, v := range values {
		pw.fill(styles[i].bg)
		pw.text(styles[i].text)
		pdf.CellFormat(w, 20, v, "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetY(pdf.GetY() + 14)
}

func (pw *pdfWriter) tableHead() {
	pdf := pw.pdf
	pdf.SetX(padX)
	pdf.SetFont("Helvetica", "B", 9)
	pw.fill(slate800)
	pw.text(slate300)
	pw.stroke(slate700)
	pdf.SetLineWidth(0.6)
	for i, h := range Headers {
		pdf.CellFormat(pw.cols[i], rowH+4, pw.tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func (pw *pdfWriter) table(r Report) {
	pdf := pw.pdf
	pw.tableHead()

	for n, v := range r.Vehicles {
		if pdf.GetY()+rowH > pw.pageH-bottomPad {
			pdf.AddPage()
			pdf.SetY(padX)
			pw.tableHead()
		}
		bg := slate900
		if n%2 == 1 {
			bg = slate950
		}
		pw.row(r.row(v), bg)
	}
}

func (pw *pdfWriter) row(cells []string, bg rgb) {
	pdf := pw.pdf
	pdf.SetX(padX)
	y := pdf.GetY()
	for i, c := range cells {
		x := pdf.GetX()
		pw.fill(bg)
		pw.text(slate200)
		pdf.SetFont("Helvetica", "", 9)
		align := "L"
		switch i {
		case 5:
			pdf.CellFormat(pw.cols[i], rowH, "", "1", 0, "C", true, 0, "")
			pw.chip(x, y, pw.cols[i], c)
			continue
		case 6, 7:
			align = "R"
		}
		pdf.CellFormat(pw.cols[i], rowH, pw.tr(c), "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)
}

func (pw *pdfWriter) chip(x, y, width float64, label string) {
	pdf := pw.pdf
	style := chipStyle(label)
	pdf.SetFont("Helvetica", "B", 8.5)
	txt := pw.tr(label)
	chipW := min(width-6, pdf.GetStringWidth(txt)+16)
	chipH := min(rowH-4, 14.0)
	cx := x + (width-chipW)/2
	cy := y + (rowH-chipH)/2

	pw.fill(style.bg)
	pw.stroke(style.bg)
	pdf.RoundedRect(cx, cy, chipW, chipH, chipH/2, "1234", "F")
	pw.text(style.text)
	pdf.Text(x+(width-pdf.GetStringWidth(txt))/2, y+rowH/2+3, txt)
	pw.stroke(slate700)
}

func (pw *pdfWriter) footer() {
	pdf := pw.pdf
	pdf.SetFont("Helvetica", "", 9)
	pw.text(slate400)
	pdf.Text(pw.pageW-padX-48, pw.pageH-20, pw.tr(fmt.Sprintf("Página %d", pdf.PageNo())))
}
