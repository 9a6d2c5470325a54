// Package export renders month rosters into shareable documents.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/gracechapel/roster-engine/pkg/services"
)

// PDFRenderer renders a month roster as a single-column A4 document, one
// block per Sunday.
type PDFRenderer struct{}

// NewPDFRenderer creates a new PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

var _ services.PDFRenderer = (*PDFRenderer)(nil)

const (
	pageMargin  = 15.0
	lineHeight  = 6.0
	roleColumn  = 50.0
	blockIndent = 4.0
)

// RenderMonthRoster produces the PDF bytes for a month roster.
func (r *PDFRenderer) RenderMonthRoster(roster *services.MonthRoster) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	title := fmt.Sprintf("Service Roster - %s %d", time.Month(roster.Month).String(), roster.Year)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	if roster.Status == services.RosterStatusDraft {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(160, 60, 60)
		pdf.CellFormat(0, 6, "DRAFT - not yet finalized", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	for _, sunday := range roster.Sundays {
		r.renderSunday(pdf, sunday)
	}

	if len(roster.Sundays) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, lineHeight, "No Sundays in this month.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) renderSunday(pdf *fpdf.Fpdf, sunday services.MonthSunday) {
	heading := formatDateHeading(sunday.Date)
	if sunday.SpecialDay != nil {
		heading += " - " + sunday.SpecialDay.Name
	}

	// Keep each Sunday block on one page where it fits.
	blockHeight := lineHeight*float64(len(sunday.Slots)+1) + lineHeight
	_, pageHeight := pdf.GetPageSize()
	if y := pdf.GetY(); y+blockHeight > pageHeight-pageMargin {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, lineHeight+1, heading, "", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if len(sunday.Slots) == 0 {
		pdf.SetX(pageMargin + blockIndent)
		pdf.CellFormat(0, lineHeight, "No assignments", "", 1, "L", false, 0, "")
	}
	for _, slot := range sunday.Slots {
		pdf.SetX(pageMargin + blockIndent)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(roleColumn, lineHeight, slot.RoleName, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, lineHeight, strings.Join(slot.People, ", "), "", "L", false)
	}
	pdf.Ln(3)
}

func formatDateHeading(dateKey string) string {
	date, err := time.Parse("2006-01-02", dateKey)
	if err != nil {
		return dateKey
	}
	return date.Format("Monday, 2 January 2006")
}
