package infra

// pdf.go: invoice generation using go-pdf/fpdf.
// Generates A4 invoices with:
//   - Brand header
//   - Bill id and timestamp
//   - Shop, cashier and customer block
//   - Item table (product, quantity, unit price, line total)
//   - Bold grand total and declared payment method
//
// The output file is saved to storagePath/InvoiceFileName(bill.ID, bill.CreatedAt).

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"airportpos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRenderer writes invoice PDFs into one storage directory.
type InvoiceRenderer struct {
	storagePath  string
	brand        string
	supportEmail string
}

func NewInvoiceRenderer(storagePath, brand, supportEmail string) *InvoiceRenderer {
	return &InvoiceRenderer{storagePath: storagePath, brand: brand, supportEmail: supportEmail}
}

// StoragePath is the directory served under InvoiceURLPrefix.
func (r *InvoiceRenderer) StoragePath() string { return r.storagePath }

// FilePath is where the invoice for (billID, createdAt) lives on disk.
func (r *InvoiceRenderer) FilePath(b *model.Bill) string {
	return filepath.Join(r.storagePath, InvoiceFileName(b.ID, b.CreatedAt))
}

// Exists reports whether the invoice for b has already been written.
func (r *InvoiceRenderer) Exists(b *model.Bill) bool {
	_, err := os.Stat(r.FilePath(b))
	return err == nil
}

// Render draws the invoice for a persisted bill and returns its path on disk.
// bill.Shop and bill.Cashier are optional; missing context prints as "N/A".
// Rendering the same bill twice overwrites the file with identical content.
func (r *InvoiceRenderer) Render(bill *model.Bill) (string, error) {
	if bill == nil || bill.ID == uuid.Nil {
		return "", errors.New("pdf: bill without id")
	}
	if err := os.MkdirAll(r.storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Invoice "+bill.ID.String(), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 122, 204)
	pdf.CellFormat(contentW, 10, tr(r.brand), "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(contentW, 8, "Invoice", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// ── Bill / shop / customer block ─────────────────────────────────────────
	shopName, shopLocation := "N/A", "N/A"
	if bill.Shop != nil {
		shopName = orNA(bill.Shop.Name)
		shopLocation = orNA(bill.Shop.Location)
	}
	cashierName := "N/A"
	if bill.Cashier != nil {
		cashierName = orNA(bill.Cashier.Name)
	}
	customerName := bill.CustomerName
	if strings.TrimSpace(customerName) == "" {
		customerName = "Walk-in"
	}

	pdf.SetFont("Helvetica", "", 11)
	lines := [][2]string{
		{"Bill ID", bill.ID.String()},
		{"Date", bill.CreatedAt.UTC().Format("02 Jan 2006 15:04:05 UTC")},
		{"Shop", shopName},
		{"Location", shopLocation},
		{"Cashier", cashierName},
		{"Customer Name", customerName},
		{"Customer Phone", orNA(bill.CustomerPhone)},
	}
	for _, l := range lines {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 6, l[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentW-40, 6, tr(l[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// ── Items header ──────────────────────────────────────────────────────────
	colName := contentW * 0.46
	colQty := contentW * 0.12
	colPrice := contentW * 0.20
	colTotal := contentW * 0.22

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(235, 242, 250)
	pdf.CellFormat(colName, 7, "Product", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "B", 0, "C", true, 0, "")
	pdf.CellFormat(colPrice, 7, "Price (Rs.)", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 7, "Total (Rs.)", "B", 1, "R", true, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 11)
	total := decimal.Zero
	for _, item := range bill.Items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID.String()
		}
		name = truncateRunes(name, 48)
		lineTotal := item.LineTotal()
		total = total.Add(lineTotal)
		pdf.CellFormat(colName, 7, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, 7, item.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 7, lineTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ────────────────────────────────────────────────────────────────
	// The stored total is authoritative; items are re-summed only for display rows.
	grand := bill.Total
	if grand.IsZero() && !total.IsZero() {
		grand = total
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(colName+colQty+colPrice, 8, "Grand Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 8, "Rs. "+grand.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(colName+colQty+colPrice, 6, "Payment method:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 6, strings.ToUpper(orNA(bill.PaymentMethod)), "", 1, "R", false, 0, "")

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.MultiCell(contentW, 5, tr(fmt.Sprintf(
		"Thank you for shopping at Airport Vendor Shops.\nFor queries, contact %s", r.supportEmail)),
		"", "C", false)

	// Write to a temp name and rename so readers never see a half-written invoice.
	final := r.FilePath(bill)
	tmp := final + ".tmp"
	if err := pdf.OutputFileAndClose(tmp); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("pdf: publish file: %w", err)
	}
	return final, nil
}

// truncateRunes shortens s to at most max runes, marking the cut with "...".
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
