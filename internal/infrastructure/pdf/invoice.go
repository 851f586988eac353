package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

// InvoiceRenderer produces the fixed-layout invoice PDF: header, billed-to,
// line items, totals. The layout is deterministic for a given order so
// re-exports are byte-stable apart from embedded timestamps.
type InvoiceRenderer struct {
	currency string
}

func NewInvoiceRenderer(currency string) *InvoiceRenderer {
	return &InvoiceRenderer{currency: currency}
}

func (r *InvoiceRenderer) Render(o *order.Order, billedTo identity.Identity) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(o.CreatedAt)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 12, "INVOICE")
	doc.Ln(14)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 6, fmt.Sprintf("Invoice no: %s", o.InvoiceNumber))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Order: %s", o.ID))
	doc.Ln(6)
	if o.PaidAt != nil {
		doc.Cell(0, 6, fmt.Sprintf("Paid at: %s", o.PaidAt.Format("2006-01-02 15:04 UTC")))
		doc.Ln(6)
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(0, 7, "Billed to")
	doc.Ln(7)
	doc.SetFont("Helvetica", "", 11)
	name := billedTo.Name
	if name == "" {
		name = o.ShippingAddress.FullName
	}
	doc.Cell(0, 6, name)
	doc.Ln(6)
	if billedTo.Email != "" {
		doc.Cell(0, 6, billedTo.Email)
		doc.Ln(6)
	}
	doc.Cell(0, 6, o.ShippingAddress.AddressLine1)
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("%s %s, %s", o.ShippingAddress.PostalCode, o.ShippingAddress.City, o.ShippingAddress.Country))
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(90, 8, "Item", "1", 0, "L", false, 0, "")
	doc.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, "Unit price", "1", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, "Total", "1", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	for _, line := range o.Items {
		doc.CellFormat(90, 8, line.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(20, 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 8, r.money(line.UnitPrice), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 8, r.money(line.LineTotal), "1", 1, "R", false, 0, "")
	}
	doc.Ln(4)

	r.totalRow(doc, "Subtotal", o.Subtotal, false)
	r.totalRow(doc, "Tax", o.Tax, false)
	r.totalRow(doc, "Shipping", o.Shipping, false)
	r.totalRow(doc, "Total", o.Total, true)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *InvoiceRenderer) totalRow(doc *fpdf.Fpdf, label string, value float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	doc.SetFont("Helvetica", style, 11)
	doc.CellFormat(145, 7, label, "", 0, "R", false, 0, "")
	doc.CellFormat(35, 7, r.money(value), "", 1, "R", false, 0, "")
}

func (r *InvoiceRenderer) money(v float64) string {
	return fmt.Sprintf("%.2f %s", v, r.currency)
}
