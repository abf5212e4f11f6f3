package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/sharearide/sharearide-backend/internal/models"
)

const receiptsFolder = "receipts"

// Uploader stores a file and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, folder, name, contentType string, data []byte) (string, error)
}

// ReceiptIssuer renders booking receipts as PDF and uploads them.
type ReceiptIssuer struct {
	uploader Uploader
	now      func() time.Time
}

func NewReceiptIssuer(u Uploader) *ReceiptIssuer {
	return &ReceiptIssuer{uploader: u, now: time.Now}
}

func (r *ReceiptIssuer) Issue(ctx context.Context, b *models.Booking) (string, error) {
	data, err := buildReceiptPDF(b, r.now())
	if err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}
	name := fmt.Sprintf("RECEIPT_%d.pdf", b.ID)
	return r.uploader.Upload(ctx, receiptsFolder, name, "application/pdf", data)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func buildReceiptPDF(b *models.Booking, issuedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt no.    : RCP-%d", b.ID),
		fmt.Sprintf("Issued         : %s", issuedAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Route          : %s -> %s", orDash(b.DepartureCity), orDash(b.DestinationCity)),
		fmt.Sprintf("Departure      : %s", b.DepartureTime.Format("2006-01-02 15:04")),
		fmt.Sprintf("Pickup         : %s", orDash(b.PickupLocation)),
		fmt.Sprintf("Dropoff        : %s", orDash(b.DropoffLocation)),
		fmt.Sprintf("Driver         : %s", orDash(b.DriverName)),
		fmt.Sprintf("Car            : %s %s (%s)", orDash(b.CarMake), b.CarModel, orDash(b.CarPlate)),
		fmt.Sprintf("Payment method : %s", orDash(string(b.PaymentMethod))),
		fmt.Sprintf("Payment status : %s", b.PaymentStatus),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Total          : %.2f", b.TotalPrice))
	pdf.Ln(10)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
