package documents

import (
	"fmt"
	"io"
	"strings"
	"time"

	"invoiceflow/billing"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// Party is the seller or buyer block printed on a document.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (p Party) lines() []string {
	out := []string{p.Name}
	if p.Address != "" {
		out = append(out, p.Address)
	}
	if city := strings.TrimSpace(p.Zip + " " + p.City); city != "" {
		out = append(out, city)
	}
	if p.Country != "" {
		out = append(out, p.Country)
	}
	if p.Phone != "" {
		out = append(out, "Tel: "+p.Phone)
	}
	if p.Email != "" {
		out = append(out, p.Email)
	}
	return out
}

// Document is everything a renderer needs to print one document type of an invoice.
type Document struct {
	Type        DocumentType        `json:"type"`
	Number      string              `json:"number"`
	InvoiceType billing.InvoiceType `json:"invoice_type"`
	Date        time.Time           `json:"date"`
	DueDate     time.Time           `json:"due_date"`
	Seller      Party               `json:"seller"`
	Buyer       Party               `json:"buyer"`
	Lines       []billing.LineItem  `json:"-"`
	Totals      billing.Totals      `json:"totals"`
	Summary     Summary             `json:"summary"`
	Notes       string              `json:"notes,omitempty"`
	Pages       []Page              `json:"pages"`
}

// Summary holds the shipping quantities of a document.
type Summary struct {
	Quantity    int             `json:"quantity"`
	GrossWeight decimal.Decimal `json:"gross_weight_kgs"`
	NetWeight   decimal.Decimal `json:"net_weight_kgs"`
}

// Summarize totals quantities and per-unit weights over lines, free lines included.
func Summarize(lines []billing.LineItem) Summary {
	s := Summary{GrossWeight: decimal.Zero, NetWeight: decimal.Zero}
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		s.Quantity += l.Quantity
		s.GrossWeight = s.GrossWeight.Add(l.GrossWeightKgs.Mul(qty))
		s.NetWeight = s.NetWeight.Add(l.NetWeightKgs.Mul(qty))
	}
	return s
}

// Build prepares the rows and pages of a document of type t.
// Packing lists are grouped by category; invoices keep line order.
func Build(t DocumentType, lines []billing.LineItem, g Grouper) (Document, error) {
	var rows []Row
	switch t {
	case TypeInvoice:
		rows = ItemRows(lines)
	case TypePackingList:
		rows = g.Group(lines)
	}
	pages, err := Paginate(rows, t)
	if err != nil {
		return Document{}, err
	}
	return Document{Type: t, Lines: lines, Summary: Summarize(lines), Pages: pages}, nil
}

// Renderer prints documents to PDF.
type Renderer struct {
	Format billing.Formatter
}

// NewRenderer prints amounts and dates with f.
func NewRenderer(f billing.Formatter) Renderer {
	return Renderer{Format: f}
}

// Render writes doc as a PDF to w.
func (r Renderer) Render(w io.Writer, doc Document) error {
	var pdf *gofpdf.Fpdf
	switch doc.Type {
	case TypeInvoice:
		pdf = newPDF("P", "A4")
		r.renderInvoice(pdf, doc)
	case TypePackingList:
		pdf = newPDF("P", "A4")
		r.renderPackingList(pdf, doc)
	case TypeShippingLabel:
		pdf = newPDF("L", "A5")
		r.renderShippingLabel(pdf, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDocumentType, doc.Type)
	}

	if pdf.Err() {
		return fmt.Errorf("render %s: %w", doc.Type, pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write %s pdf: %w", doc.Type, err)
	}
	return nil
}

func newPDF(orientation, size string) *gofpdf.Fpdf {
	pdf := gofpdf.New(orientation, "mm", size, "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AliasNbPages("")
	return pdf
}

func (r Renderer) header(pdf *gofpdf.Fpdf, tr func(string) string, title string, doc Document, page Page) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(120, 8, tr(doc.Seller.Name), "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 8, tr(title), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	left := doc.Seller.lines()[1:]
	right := []string{
		"No: " + doc.Number,
		"Date: " + r.Format.Date(doc.Date),
	}
	if doc.Type == TypeInvoice && !doc.DueDate.IsZero() {
		right = append(right, "Due: "+r.Format.Date(doc.DueDate))
	}
	right = append(right, fmt.Sprintf("Page %d of {nb}", page.Index+1))
	for i := 0; i < max(len(left), len(right)); i++ {
		var l, rt string
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			rt = right[i]
		}
		pdf.CellFormat(120, 5, tr(l), "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 5, tr(rt), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	label := "Bill To"
	if doc.InvoiceType == billing.Payable {
		label = "Supplier"
	}
	if doc.Type == TypePackingList {
		label = "Ship To"
	}
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(190, 6, label, "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range doc.Buyer.lines() {
		pdf.CellFormat(190, 5, tr(line), "LR", 1, "L", false, 0, "")
	}
	pdf.CellFormat(190, 0, "", "T", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func (r Renderer) renderInvoice(pdf *gofpdf.Fpdf, doc Document) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := []float64{12, 25, 73, 20, 30, 30}
	title := "INVOICE"
	if doc.InvoiceType == billing.Payable {
		title = "PURCHASE INVOICE"
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		r.header(pdf, tr, title, doc, page)

		tableHead(pdf, widths, []string{"#", "Item Code", "Description", "Qty", "Unit Price", "Amount"})
		pdf.SetFont("Arial", "", 9)
		for _, row := range page.Rows {
			l := row.Line
			price, amount := r.Format.Amount(l.UnitPrice), r.Format.Amount(l.Amount)
			if l.IsFreeFromScheme() {
				price, amount = "FREE", "-"
			}
			cells := []string{fmt.Sprint(row.Serial), l.ItemCode, l.Description, r.Format.Quantity(l.Quantity), price, amount}
			tableRow(pdf, tr, widths, cells, []string{"C", "L", "L", "R", "R", "R"})
		}
		for i := 0; i < page.EmptyCount; i++ {
			tableRow(pdf, tr, widths, make([]string, len(widths)), []string{"C", "L", "L", "R", "R", "R"})
		}

		if page.ShowSummary {
			pdf.Ln(4)
			t := doc.Totals.Rounded()
			summaryLine(pdf, "Subtotal", r.Format.Money(t.Subtotal), false, tr)
			summaryLine(pdf, "Discount", "-"+r.Format.Money(t.Discount), false, tr)
			summaryLine(pdf, "Freight", r.Format.Money(t.Freight), false, tr)
			summaryLine(pdf, "Total", r.Format.Money(t.Total), true, tr)

			if doc.Notes != "" {
				pdf.Ln(4)
				pdf.SetFont("Arial", "B", 9)
				pdf.CellFormat(190, 5, "Notes", "", 1, "L", false, 0, "")
				pdf.SetFont("Arial", "", 9)
				pdf.MultiCell(190, 5, tr(doc.Notes), "", "L", false)
			}
			footer(pdf, tr, "Thank you for your business.")
		}
	}
}

func (r Renderer) renderPackingList(pdf *gofpdf.Fpdf, doc Document) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := []float64{12, 25, 68, 25, 20, 20, 20}
	aligns := []string{"C", "L", "L", "L", "R", "R", "R"}

	for _, page := range doc.Pages {
		pdf.AddPage()
		r.header(pdf, tr, "PACKING LIST", doc, page)

		tableHead(pdf, widths, []string{"#", "Item Code", "Description", "Packing", "Qty", "Gross", "Net"})
		for _, row := range page.Rows {
			if row.Kind == RowCategoryHeader {
				pdf.SetFont("Arial", "B", 9)
				pdf.SetFillColor(225, 225, 225)
				pdf.CellFormat(190, 6, tr(row.Category), "1", 1, "L", true, 0, "")
				continue
			}
			l := row.Line
			qty := decimal.NewFromInt(int64(l.Quantity))
			pdf.SetFont("Arial", "", 9)
			cells := []string{
				fmt.Sprint(row.Serial), l.ItemCode, l.Description, l.PackingSize,
				r.Format.Quantity(l.Quantity),
				r.Format.Amount(l.GrossWeightKgs.Mul(qty)),
				r.Format.Amount(l.NetWeightKgs.Mul(qty)),
			}
			tableRow(pdf, tr, widths, cells, aligns)
		}

		if page.ShowSummary {
			pdf.Ln(4)
			summaryLine(pdf, "Total Quantity", r.Format.Quantity(doc.Summary.Quantity), false, tr)
			summaryLine(pdf, "Gross Weight", r.Format.Weight(doc.Summary.GrossWeight), false, tr)
			summaryLine(pdf, "Net Weight", r.Format.Weight(doc.Summary.NetWeight), true, tr)
			footer(pdf, tr, "Received the above goods in good condition.")
		}
	}
}

func (r Renderer) renderShippingLabel(pdf *gofpdf.Fpdf, doc Document) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 6, "FROM", "LTR", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "SHIP TO", "LTR", 1, "L", false, 0, "")

	from, to := doc.Seller.lines(), doc.Buyer.lines()
	for i := 0; i < max(len(from), len(to)); i++ {
		var f, t string
		if i < len(from) {
			f = from[i]
		}
		if i < len(to) {
			t = to[i]
		}
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(95, 6, tr(f), "LR", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(95, 6, tr(t), "LR", 1, "L", false, 0, "")
	}
	pdf.CellFormat(190, 0, "", "T", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Invoice No", doc.Number},
		{"Date", r.Format.Date(doc.Date)},
		{"Packages", r.Format.Quantity(doc.Summary.Quantity)},
		{"Gross Weight", r.Format.Weight(doc.Summary.GrossWeight)},
		{"Net Weight", r.Format.Weight(doc.Summary.NetWeight)},
	}
	for _, kv := range rows {
		pdf.CellFormat(50, 8, kv[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(140, 8, tr(kv[1]), "1", 1, "L", false, 0, "")
	}
}

func tableHead(pdf *gofpdf.Fpdf, widths []float64, titles []string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for i, title := range titles {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func tableRow(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, cells, aligns []string) {
	for i, c := range cells {
		pdf.CellFormat(widths[i], 6, tr(c), "1", 0, aligns[i], false, 0, "")
	}
	pdf.Ln(-1)
}

func summaryLine(pdf *gofpdf.Fpdf, label, value string, bold bool, tr func(string) string) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Arial", style, 10)
	pdf.CellFormat(130, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, tr(value), "1", 1, "R", false, 0, "")
}

func footer(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(190, 5, tr(text), "T", 1, "C", false, 0, "")
}
