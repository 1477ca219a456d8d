package infra

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvoiceURLPrefix is the route under which generated invoices are served.
const InvoiceURLPrefix = "/invoices"

// isoMillis matches the ISO-8601 form dashboards display: millisecond precision, UTC, "Z" suffix.
const isoMillis = "2006-01-02T15:04:05.000Z"

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-", "T", "_", "Z", "")

// InvoiceTimestamp renders createdAt as the file-name-safe timestamp used in
// invoice names, e.g. 2025-03-01T10:15:30.123Z → 2025-03-01_10-15-30-123.
func InvoiceTimestamp(createdAt time.Time) string {
	return timestampReplacer.Replace(createdAt.UTC().Format(isoMillis))
}

// InvoiceFileName is a pure function of (billID, createdAt) so any reader can
// locate an invoice without an index lookup.
func InvoiceFileName(billID uuid.UUID, createdAt time.Time) string {
	return fmt.Sprintf("invoice-%s-%s.pdf", billID, InvoiceTimestamp(createdAt))
}

// InvoiceURL is the public retrieval path reported to clients as pdfPath.
func InvoiceURL(billID uuid.UUID, createdAt time.Time) string {
	return path.Join(InvoiceURLPrefix, InvoiceFileName(billID, createdAt))
}
