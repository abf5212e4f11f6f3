package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sharearide/sharearide-backend/internal/config"
	"github.com/sharearide/sharearide-backend/internal/models"
)

type memoryUploader struct {
	folder, name, contentType string
	data                      []byte
}

func (u *memoryUploader) Upload(ctx context.Context, folder, name, contentType string, data []byte) (string, error) {
	u.folder, u.name, u.contentType, u.data = folder, name, contentType, data
	return "https://files.example.com/" + folder + "/" + name, nil
}

func TestReceiptIssuerRendersPDF(t *testing.T) {
	up := &memoryUploader{}
	issuer := NewReceiptIssuer(up)
	issuer.now = func() time.Time { return time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC) }

	b := &models.Booking{
		DepartureCity:   "Nakuru",
		DestinationCity: "Nairobi",
		DepartureTime:   time.Date(2025, 7, 2, 9, 30, 0, 0, time.UTC),
		DriverName:      "Kiprop Langat",
		TotalPrice:      800,
		PaymentMethod:   models.PaymentMethodCard,
		PaymentStatus:   models.PaymentStatusCompleted,
	}
	b.ID = 12

	url, err := issuer.Issue(context.Background(), b)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if url != "https://files.example.com/receipts/RECEIPT_12.pdf" {
		t.Fatalf("unexpected url %q", url)
	}
	if up.contentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", up.contentType)
	}
	if !bytes.HasPrefix(up.data, []byte("%PDF")) {
		t.Fatalf("receipt is not a PDF")
	}
}

func TestFileStorageWritesLocally(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(config.StorageConfig{UploadDir: dir, BaseURL: "http://localhost:8080/"})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if fs.UsingS3() {
		t.Fatalf("S3 must stay off without credentials")
	}

	url, err := fs.Upload(context.Background(), "receipts", "RECEIPT_1.pdf", "application/pdf", []byte("%PDF-1.3"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "http://localhost:8080/uploads/receipts/RECEIPT_1.pdf" {
		t.Fatalf("unexpected url %q", url)
	}
	got, err := os.ReadFile(filepath.Join(dir, "receipts", "RECEIPT_1.pdf"))
	if err != nil || string(got) != "%PDF-1.3" {
		t.Fatalf("file not written: %v %q", err, got)
	}
}

func TestFileStorageRequiresBucketForS3(t *testing.T) {
	_, err := NewFileStorage(config.StorageConfig{AWSRegion: "eu-west-1", AWSAccessKey: "a", AWSSecretKey: "b"})
	if err == nil {
		t.Fatalf("expected an error without a bucket")
	}
}
