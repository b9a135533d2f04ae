package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"invoiceflow/billing"
	"invoiceflow/documents"
	"invoiceflow/logger"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	renderOut  string
	renderType string
)

var renderCmd = &cobra.Command{
	Use:   "render [invoice.json]",
	Short: "Render an invoice, packing list or shipping label from a JSON file",
	Long: `Computes an invoice from a JSON description (entries, schemes, discount,
freight and parties) and prints one document type to PDF without a database.`,
	Example: `  # Print the invoice
  invoiceflow render order.json -o order.pdf

  # Print the packing list
  invoiceflow render order.json --type packing-list -o packing.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output PDF file (default: stdout)")
	renderCmd.Flags().StringVarP(&renderType, "type", "t", string(documents.TypeInvoice), "document type: invoice, packing-list or shipping-label")
	rootCmd.AddCommand(renderCmd)
}

// renderInput is the file format read by the render command.
type renderInput struct {
	Type      billing.InvoiceType `json:"type"`
	Number    string              `json:"number"`
	Date      string              `json:"date"`
	TermsDays int                 `json:"terms_days"`
	Seller    documents.Party     `json:"seller"`
	Buyer     documents.Party     `json:"buyer"`
	Entries   []billing.Entry     `json:"entries"`
	Schemes   []billing.Scheme    `json:"schemes"`
	Discount  *decimal.Decimal    `json:"discount"`
	Freight   decimal.Decimal     `json:"freight"`
	Notes     string              `json:"notes"`
}

func runRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("render")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	var in renderInput
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	t, err := documents.ParseDocumentType(renderType)
	if err != nil {
		return err
	}
	rate, err := cfg.DiscountRate()
	if err != nil {
		return err
	}

	r := documents.NewRenderer(billing.NewFormatter(cfg.Billing.CurrencySymbol))
	g := documents.NewGrouper(cfg.Billing.CategoryOrder)

	var buf bytes.Buffer
	doc, err := renderDocument(&buf, in, t, rate, r, g)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if renderOut != "" {
		f, err := os.Create(renderOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := buf.WriteTo(w); err != nil {
		return err
	}

	log.Info().
		Str("document", string(t)).
		Int("pages", len(doc.Pages)).
		Str("total", doc.Totals.Total.StringFixed(2)).
		Msg("Document rendered")
	return nil
}

// renderDocument computes in and writes document type t to w.
func renderDocument(w io.Writer, in renderInput, t documents.DocumentType, rate decimal.Decimal, r documents.Renderer, g documents.Grouper) (documents.Document, error) {
	if in.Type == "" {
		in.Type = billing.Receivable
	}
	if in.Type != billing.Receivable && in.Type != billing.Payable {
		return documents.Document{}, fmt.Errorf("unknown invoice type %q", in.Type)
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if in.Date != "" {
		d, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return documents.Document{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", in.Date)
		}
		date = d
	}
	if in.TermsDays <= 0 {
		in.TermsDays = cfgTermsDays()
	}

	billing.SortSchemes(in.Schemes)
	projection, totals, err := billing.Compute(
		billing.Draft{Entries: in.Entries},
		in.Schemes,
		billing.DiscountFor(in.Type, in.Discount, rate),
		in.Freight,
	)
	if err != nil {
		return documents.Document{}, err
	}

	doc, err := documents.Build(t, projection.Lines, g)
	if err != nil {
		return documents.Document{}, err
	}
	doc.Number = in.Number
	doc.InvoiceType = in.Type
	doc.Date = date
	doc.DueDate = billing.DueDate(date, in.TermsDays)
	doc.Seller = in.Seller
	doc.Buyer = in.Buyer
	doc.Totals = totals.Rounded()
	doc.Notes = in.Notes

	if err := r.Render(w, doc); err != nil {
		return documents.Document{}, err
	}
	return doc, nil
}

func cfgTermsDays() int {
	if cfg != nil && cfg.Billing.DefaultTermsDays > 0 {
		return cfg.Billing.DefaultTermsDays
	}
	return 30
}
