package infra

// pdf.go: quotation and delivery challan documents using go-pdf/fpdf.
// Both render A4 portrait with the company header, a client block and an
// item table. Quotations add the totals section; challans add driver details
// and the batch deductions per line.

import (
	"bytes"
	"fmt"
	"strconv"

	"tilerp/internal/config"
	"tilerp/internal/dto"
	"tilerp/internal/service"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// DocumentRenderer renders quotations and challans to PDF and purchase
// registers to XLSX.
type DocumentRenderer struct {
	companyName    string
	companyAddress string
}

func NewDocumentRenderer(cfg *config.Config) *DocumentRenderer {
	return &DocumentRenderer{companyName: cfg.CompanyName, companyAddress: cfg.CompanyAddress}
}

var _ service.Renderer = (*DocumentRenderer)(nil)

type pdfColumn struct {
	title string
	width float64 // fraction of content width
	align string
}

func (r *DocumentRenderer) newPage() (*fpdf.Fpdf, float64) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 14)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	return pdf, pageW - 24
}

func (r *DocumentRenderer) header(pdf *fpdf.Fpdf, contentW float64, title string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(r.companyName), "", 1, "C", false, 0, "")
	if r.companyAddress != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, tr(r.companyAddress), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, title, "TB", 1, "C", false, 0, "")
	pdf.Ln(3)
}

func labelValue(pdf *fpdf.Fpdf, w float64, label, value string) {
	if value == "" {
		return
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(32, 5, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(w-32, 5, tr(value), "", 1, "L", false, 0, "")
}

func tableHeader(pdf *fpdf.Fpdf, contentW float64, cols []pdfColumn) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(contentW*col.width, 6, col.title, "1", ln, "C", true, 0, "")
	}
}

func tableRow(pdf *fpdf.Fpdf, contentW float64, cols []pdfColumn, values []string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 8)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		w := contentW * col.width
		pdf.CellFormat(w, 6, fitText(pdf, tr(values[i]), w-1), "1", ln, col.align, false, 0, "")
	}
}

// fitText trims s until it fits in w millimetres at the current font.
func fitText(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"..") > w {
		r = r[:len(r)-1]
	}
	return string(r) + ".."
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// QuotationPDF renders a printable quotation. In qname mode the first item
// column carries the product name, otherwise the product code.
func (r *DocumentRenderer) QuotationPDF(buf *bytes.Buffer, q *dto.QuotationFull, mode string) error {
	pdf, contentW := r.newPage()
	r.header(pdf, contentW, "QUOTATION")

	labelValue(pdf, contentW, "Quotation No:", strconv.FormatUint(uint64(q.ID), 10))
	labelValue(pdf, contentW, "Date:", shortDate(q.CreatedAt))
	labelValue(pdf, contentW, "Client:", q.ClientName)
	labelValue(pdf, contentW, "Contact:", q.ContactNo)
	labelValue(pdf, contentW, "Address:", q.Address)
	labelValue(pdf, contentW, "GST No:", q.GSTNo)
	labelValue(pdf, contentW, "Architect:", q.Architect)
	labelValue(pdf, contentW, "Attended By:", q.AttendedBy)
	pdf.Ln(2)

	if q.HeaderSection != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, pdf.UnicodeTranslatorFromDescriptor("")(q.HeaderSection), "", "L", false)
		pdf.Ln(2)
	}

	codeTitle := "Code"
	if mode == service.PrintModeQName {
		codeTitle = "Product Name"
	}
	cols := []pdfColumn{
		{"#", 0.05, "C"},
		{codeTitle, 0.23, "L"},
		{"Size", 0.10, "C"},
		{"Quality", 0.09, "C"},
		{"Rate", 0.10, "R"},
		{"Cov", 0.07, "R"},
		{"Box", 0.06, "R"},
		{"Area", 0.09, "R"},
		{"Disc", 0.08, "R"},
		{"Total", 0.13, "R"},
	}
	tableHeader(pdf, contentW, cols)
	for i, it := range q.Items {
		code := strconv.FormatUint(uint64(it.ProductID), 10)
		if mode == service.PrintModeQName {
			code = it.ProductName
		}
		tableRow(pdf, contentW, cols, []string{
			strconv.Itoa(i + 1),
			code,
			it.Size,
			it.Quality,
			money(it.Rate),
			it.Cov.String(),
			strconv.Itoa(it.Box),
			it.Area.String(),
			it.Discount.String(),
			money(it.Total),
		})
	}
	pdf.Ln(3)

	labelW := contentW * 0.75
	valueW := contentW - labelW
	total := func(label string, v decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valueW, 6, money(v), "", 1, "R", false, 0, "")
	}
	if !q.AdditionalDiscount.IsZero() {
		total("Additional Discount:", q.AdditionalDiscount, false)
	}
	total("Grand Total:", q.GrandTotal, true)
	if q.PaidAmount.IsPositive() {
		total("Paid:", q.PaidAmount, false)
		total("Due:", q.DueAmount, true)
	}

	if q.BottomSection != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(contentW, 4.5, pdf.UnicodeTranslatorFromDescriptor("")(q.BottomSection), "", "L", false)
	}

	if err := pdf.Output(buf); err != nil {
		return fmt.Errorf("pdf: quotation %d: %w", q.ID, err)
	}
	return nil
}

// ChallanPDF renders a delivery challan with its batch deductions.
func (r *DocumentRenderer) ChallanPDF(buf *bytes.Buffer, c *dto.ChallanResponse) error {
	pdf, contentW := r.newPage()
	r.header(pdf, contentW, "DELIVERY CHALLAN")

	labelValue(pdf, contentW, "Challan No:", strconv.FormatUint(uint64(c.ID), 10))
	labelValue(pdf, contentW, "Quotation No:", strconv.FormatUint(uint64(c.QuotationID), 10))
	labelValue(pdf, contentW, "Date:", shortDate(c.CreatedAt))
	labelValue(pdf, contentW, "Client:", c.Client)
	labelValue(pdf, contentW, "Contact:", c.Contact)
	labelValue(pdf, contentW, "Address:", c.Address)
	labelValue(pdf, contentW, "Delivery Boy:", c.DeliveryBoy)
	labelValue(pdf, contentW, "Driver Contact:", c.DriverContact)
	labelValue(pdf, contentW, "Tempo:", c.Tempo)
	pdf.Ln(2)

	cols := []pdfColumn{
		{"#", 0.06, "C"},
		{"Product", 0.34, "L"},
		{"Boxes", 0.10, "R"},
		{"Qty", 0.12, "R"},
		{"Batches", 0.38, "L"},
	}
	tableHeader(pdf, contentW, cols)
	for i, it := range c.Items {
		batches := ""
		for j, d := range it.Deductions {
			if j > 0 {
				batches += ", "
			}
			batches += d.BatchNo + ": " + d.Qty.String()
		}
		tableRow(pdf, contentW, cols, []string{
			strconv.Itoa(i + 1),
			it.ProductName,
			strconv.Itoa(it.DispatchBoxes),
			it.DispatchQty.String(),
			batches,
		})
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Total items: %d", c.TotalItems), "", 1, "L", false, 0, "")
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 6, "Receiver's Signature", "T", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Authorised Signatory", "T", 1, "R", false, 0, "")

	if err := pdf.Output(buf); err != nil {
		return fmt.Errorf("pdf: challan %d: %w", c.ID, err)
	}
	return nil
}

// shortDate keeps the date part of an RFC 3339 timestamp.
func shortDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
