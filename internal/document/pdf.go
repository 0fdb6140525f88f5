// Package document renders CSRD report documents.
package document

import (
	"fmt"
	"io"
	"time"

	gofpdf "github.com/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/format"
	"github.com/rshade/openfootprint/internal/model"
)

// ContentTypePDF is the media type of rendered PDF documents.
const ContentTypePDF = "application/pdf"

// EmissionReportRow is a linked emission report as shown in the document.
type EmissionReportRow struct {
	Report           model.EmissionReport
	OrganizationName string
	StatementCount   int
	TotalKgCO2e      float64
}

// DocumentData is everything a CSRD document shows. Names are resolved by
// the caller so rendering does not touch storage.
type DocumentData struct {
	Report           model.CSRDReport
	OrganizationName string
	EmissionReports  []EmissionReportRow
	TotalKgCO2e      float64
	Equivalency      carbon.EquivalencyOutput
	DateLayout       string
	GeneratedAt      time.Time
}

//nolint:gochecknoglobals // colour palette
var (
	headerFill = [3]int{215, 228, 188}
	textDark   = [3]int{40, 40, 40}
	textMuted  = [3]int{110, 110, 110}
	statusRGB  = map[model.CheckStatus][3]int{
		model.CheckPassed:  {22, 128, 61},
		model.CheckWarning: {180, 120, 0},
		model.CheckFailed:  {200, 30, 30},
	}
)

// RenderCSRDPDF writes the PDF document for data to w.
func RenderCSRDPDF(w io.Writer, data DocumentData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(data.Report.Title, true)
	pdf.SetAuthor(data.Report.PreparedBy, true)
	pdf.SetCreationDate(data.GeneratedAt)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		setText(pdf, textMuted)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s - page %d of {nb}", tr(data.Report.Title), pdf.PageNo()),
			"", 0, "C", false, 0, "")
	})

	r := &renderer{pdf: pdf, tr: tr, data: data}
	r.titlePage()
	r.emissionReports()
	r.emissionsSummary()
	r.validationResults()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("rendering CSRD document: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing CSRD document: %w", err)
	}
	return nil
}

type renderer struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	data DocumentData
}

func (r *renderer) layout() string {
	if r.data.DateLayout == "" {
		return format.DefaultDateLayout
	}
	return r.data.DateLayout
}

func (r *renderer) titlePage() {
	pdf, rep := r.pdf, r.data.Report
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	setText(pdf, textDark)
	pdf.MultiCell(0, 10, r.tr(rep.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	setText(pdf, textMuted)
	pdf.MultiCell(0, 6, r.tr(r.data.OrganizationName), "", "L", false)
	pdf.Ln(6)

	period := format.Period(rep.ReportingPeriodStart.Time, rep.ReportingPeriodEnd.Time, r.layout())
	rows := [][2]string{
		{"Report ID", rep.CSRDReportPK},
		{"Reporting Period", period},
		{"Report Type", string(rep.ReportType)},
		{"Status", string(rep.Status)},
		{"Version", rep.Version},
		{"Prepared By", rep.PreparedBy},
		{"Approved By", format.OrDash(rep.ApprovedBy)},
		{"Generated", format.Timestamp(r.data.GeneratedAt) + " UTC"},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		setText(pdf, textDark)
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 7, r.tr(row[1]), "", "L", false)
	}

	if rep.Description != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, r.tr(rep.Description), "", "L", false)
	}
}

func (r *renderer) sectionHeader(title string) {
	pdf := r.pdf
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, textDark)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func (r *renderer) tableHeader(widths []float64, headers []string) {
	pdf := r.pdf
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	setText(pdf, textDark)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func (r *renderer) emissionReports() {
	pdf := r.pdf
	r.sectionHeader("Linked Emission Reports")

	if len(r.data.EmissionReports) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		setText(pdf, textMuted)
		pdf.CellFormat(0, 6, "No emission reports are linked to this report.", "", 1, "L", false, 0, "")
		return
	}

	widths := []float64{55, 40, 45, 20, 20}
	r.tableHeader(widths, []string{"Description", "Organization", "Period", "Type", "Status"})

	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, textDark)
	for _, row := range r.data.EmissionReports {
		rep := row.Report
		cells := []string{
			truncate(rep.Description, 34),
			truncate(row.OrganizationName, 24),
			format.Period(rep.ReportPeriodStart.Time, rep.ReportPeriodEnd.Time, r.layout()),
			string(rep.ReportType),
			string(rep.Status),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, r.tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (r *renderer) emissionsSummary() {
	pdf := r.pdf
	r.sectionHeader("Emissions Summary")

	pdf.SetFont("Helvetica", "B", 12)
	setText(pdf, textDark)
	pdf.CellFormat(0, 8, "Total emissions: "+carbon.FormatKg(r.data.TotalKgCO2e), "", 1, "L", false, 0, "")

	if !r.data.Equivalency.IsEmpty {
		pdf.SetFont("Helvetica", "", 10)
		setText(pdf, textMuted)
		pdf.MultiCell(0, 6, r.data.Equivalency.DisplayText, "", "L", false)
	}

	if len(r.data.EmissionReports) == 0 {
		return
	}
	pdf.Ln(3)
	widths := []float64{110, 30, 40}
	r.tableHeader(widths, []string{"Emission Report", "Statements", "Emissions"})
	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, textDark)
	for _, row := range r.data.EmissionReports {
		pdf.CellFormat(widths[0], 7, r.tr(truncate(row.Report.Description, 70)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", row.StatementCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, carbon.FormatKg(row.TotalKgCO2e), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
}

func (r *renderer) validationResults() {
	pdf := r.pdf
	res, ok := model.ValidationFromSection(r.data.Report.CSRDReportPK, r.data.Report.ESRSCompliance)
	if !ok {
		return
	}

	r.sectionHeader("ESRS Validation")
	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, textDark)
	title := cases.Title(language.English)
	line := "Overall status: " + title.String(string(res.OverallStatus))
	if !res.ValidationDate.IsZero() {
		line += " (validated " + format.Date(res.ValidationDate, r.layout()) + ")"
	}
	pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{25, 35, 22, 98}
	r.tableHeader(widths, []string{"Standard", "Topic", "Status", "Details"})
	pdf.SetFont("Helvetica", "", 9)
	for _, c := range res.Checks {
		setText(pdf, textDark)
		pdf.CellFormat(widths[0], 7, c.Standard, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, r.tr(c.Description), "1", 0, "L", false, 0, "")
		rgb, ok := statusRGB[c.Status]
		if !ok {
			rgb = textMuted
		}
		setText(pdf, rgb)
		pdf.CellFormat(widths[2], 7, title.String(string(c.Status)), "1", 0, "L", false, 0, "")
		setText(pdf, textDark)
		pdf.CellFormat(widths[3], 7, r.tr(truncate(c.Details, 62)), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}

func setText(pdf *gofpdf.Fpdf, rgb [3]int) {
	pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
}
