// Package pdf renders printable invoice documents.
package pdf

import (
	"context"
	"io"
)

type Provider interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error)
}

// InvoiceDocument carries everything the renderer needs, pre-formatted.
// Amount fields are display strings so the renderer stays unaware of
// decimal arithmetic.
type InvoiceDocument struct {
	ShopName    string
	ShopAddress string
	ShopPhone   string
	GSTNumber   string

	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	Status        string

	CustomerName string

	Items []InvoiceLine

	Subtotal string
	Tax      string
	Discount string
	Total    string
	Paid     string
	Balance  string

	Notes string
}

type InvoiceLine struct {
	Name      string
	Quantity  string
	Unit      string
	UnitPrice string
	Amount    string
}
