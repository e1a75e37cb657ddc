package orders

import (
	"bytes"
	"testing"
	"time"

	"github.com/jillianguerra/home-depot/models"
)

func paidOrder() *models.Order {
	paidAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return &models.Order{
		ID:     "abc123def456",
		User:   "u1",
		IsPaid: true,
		PaidAt: &paidAt,
		LineItems: []models.LineItem{
			{Qty: 2, Item: models.Item{ItemID: "hammer", Name: "Claw Hammer", Price: 100}},
		},
	}
}

func TestReceiptPayloadRoundTrip(t *testing.T) {
	payload := receiptPayload(paidOrder())

	if !verifyReceiptPayload(payload) {
		t.Errorf("freshly signed payload failed verification")
	}

	// Any tampering with the payload body breaks the signature.
	tampered := bytes.Replace([]byte(payload), []byte("u1"), []byte("u2"), 1)
	if verifyReceiptPayload(string(tampered)) {
		t.Errorf("tampered payload passed verification")
	}

	if verifyReceiptPayload("no-separator") {
		t.Errorf("malformed payload passed verification")
	}
}

func TestBuildReceiptPDF(t *testing.T) {
	pdf, err := buildReceiptPDF(paidOrder(), "Pat Doe")
	if err != nil {
		t.Fatalf("buildReceiptPDF: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("empty PDF output")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF")
	}
}
