package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
)

// pngHeader is a minimal valid PNG magic sequence.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// elfHeader is the magic of a Linux executable.
var elfHeader = []byte{0x7F, 0x45, 0x4C, 0x46, 2, 1, 1, 0, 0, 0, 0, 0}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
		maxSize  int64
		wantErr  bool
	}{
		{"png upload", "invoice.png", pngHeader, 1 << 20, false},
		{"pdf extension", "invoice.pdf", []byte("%PDF-1.4 content"), 1 << 20, false},
		{"uppercase extension", "INVOICE.PNG", pngHeader, 1 << 20, false},
		{"unsupported extension", "invoice.exe", pngHeader, 1 << 20, true},
		{"no extension", "invoice", pngHeader, 1 << 20, true},
		{"oversized file", "invoice.png", pngHeader, 4, true},
		{"empty file", "invoice.png", nil, 1 << 20, true},
		{"renamed executable", "invoice.png", elfHeader, 1 << 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.fileName, tt.data, tt.maxSize)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsInvoiceAttachment(t *testing.T) {
	assert.True(t, IsInvoiceAttachment("invoice.pdf"))
	assert.True(t, IsInvoiceAttachment("scan.JPG"))
	assert.True(t, IsInvoiceAttachment("receipt.png"))

	// webp is allowed for direct uploads but not for mail attachments
	assert.False(t, IsInvoiceAttachment("photo.webp"))
	assert.False(t, IsInvoiceAttachment("notes.txt"))
	assert.False(t, IsInvoiceAttachment("archive.zip"))
	assert.False(t, IsInvoiceAttachment(""))
}

func TestContentTypeForExtension(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeForExtension("doc.pdf"))
	assert.Equal(t, "image/jpeg", ContentTypeForExtension("scan.jpeg"))
	assert.Equal(t, "image/jpeg", ContentTypeForExtension("scan.jpg"))
	assert.Equal(t, "application/octet-stream", ContentTypeForExtension("unknown.bin"))
}

func TestDomainFromAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{`"ACME Ltd" <billing@acme.co.il>`, "acme.co.il"},
		{"billing@acme.co.il", "acme.co.il"},
		{"Billing <BILLING@ACME.CO.IL>", "acme.co.il"},
		{"not-an-address", ""},
		{"trailing@", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DomainFromAddress(tt.address), "address %q", tt.address)
	}
}
