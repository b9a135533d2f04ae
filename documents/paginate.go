package documents

import (
	"errors"
	"fmt"
	"strings"
)

type DocumentType string

const (
	TypeInvoice       DocumentType = "invoice"
	TypePackingList   DocumentType = "packing-list"
	TypeShippingLabel DocumentType = "shipping-label"
)

const (
	InvoiceRowsPerPage = 13
	// The invoice summary, notes and footer only print on this page.
	InvoiceSummaryPage = 1

	PackingListRowsPerPage  = 21
	PackingListSinglePageAt = 12
)

var ErrUnknownDocumentType = errors.New("unknown document type")

// ParseDocumentType validates a document type tag from a request.
func ParseDocumentType(s string) (DocumentType, error) {
	switch t := DocumentType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeInvoice, TypePackingList, TypeShippingLabel:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDocumentType, s)
}

// Page is one printable page. EmptyCount is the number of blank rows padding
// the invoice table; it is only ever set on the first invoice page.
type Page struct {
	Type        DocumentType `json:"type"`
	Index       int          `json:"index"`
	Rows        []Row        `json:"rows"`
	EmptyCount  int          `json:"empty_count"`
	ShowSummary bool         `json:"show_summary"`
}

// Paginate splits rows into pages using the layout rules of t. It never fails
// for empty input; the only error is an unknown document type.
func Paginate(rows []Row, t DocumentType) ([]Page, error) {
	switch t {
	case TypeInvoice:
		return paginateInvoice(rows), nil
	case TypePackingList:
		return paginatePackingList(rows), nil
	case TypeShippingLabel:
		return []Page{{Type: t, Rows: []Row{}, ShowSummary: true}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentType, t)
}

func paginateInvoice(rows []Row) []Page {
	var pages []Page
	for start := 0; start < len(rows) || start == 0; start += InvoiceRowsPerPage {
		end := min(start+InvoiceRowsPerPage, len(rows))
		pages = append(pages, Page{Type: TypeInvoice, Index: len(pages), Rows: rows[start:end:end]})
	}

	pages[0].EmptyCount = InvoiceRowsPerPage - len(pages[0].Rows)
	if len(pages) == 1 {
		pages = append(pages, Page{Type: TypeInvoice, Index: 1, Rows: []Row{}})
	}
	pages[InvoiceSummaryPage].ShowSummary = true
	return pages
}

func paginatePackingList(rows []Row) []Page {
	if len(rows) <= PackingListSinglePageAt {
		return []Page{{Type: TypePackingList, Rows: append([]Row{}, rows...), ShowSummary: true}}
	}

	var pages []Page
	for start := 0; start < len(rows); start += PackingListRowsPerPage {
		end := min(start+PackingListRowsPerPage, len(rows))
		pages = append(pages, Page{Type: TypePackingList, Index: len(pages), Rows: rows[start:end:end]})
	}

	if last := &pages[len(pages)-1]; len(last.Rows) < PackingListRowsPerPage {
		last.ShowSummary = true
		return pages
	}
	return append(pages, Page{Type: TypePackingList, Index: len(pages), Rows: []Row{}, ShowSummary: true})
}
