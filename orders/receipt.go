package orders

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/jillianguerra/home-depot/models"
	"github.com/jillianguerra/home-depot/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

func receiptSecret() []byte {
	if s := os.Getenv("RECEIPT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev-only-receipt-secret")
}

// receiptPayload returns a signed payload string for the receipt QR code:
// orderID|user|paidAtUnix|signature. Support staff can verify a printed
// receipt against it.
func receiptPayload(o *models.Order) string {
	var paidAt int64
	if o.PaidAt != nil {
		paidAt = o.PaidAt.Unix()
	}
	data := fmt.Sprintf("%s|%s|%d", o.ID, o.User, paidAt)

	h := hmac.New(sha256.New, receiptSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// verifyReceiptPayload reports whether a scanned payload carries a valid
// signature.
func verifyReceiptPayload(payload string) bool {
	idx := bytes.LastIndexByte([]byte(payload), '|')
	if idx < 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, receiptSecret())
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(want), []byte(sig))
}

// buildReceiptPDF renders a paid order as a one-page PDF with a QR code of
// the signed payload.
func buildReceiptPDF(o *models.Order, buyerName string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(receiptPayload(o), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order: %s", o.ShortID()))
	pdf.Ln(8)
	if buyerName != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Name: %s", buyerName))
		pdf.Ln(8)
	}
	if o.PaidAt != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Paid: %s", o.PaidAt.Format("2006-01-02 15:04")))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	for _, li := range o.LineItems {
		name := li.Item.Name
		if li.SubItem != nil && li.SubItem.Color != "" {
			name = fmt.Sprintf("%s (%s)", name, li.SubItem.Color)
		}
		pdf.Cell(0, 7, fmt.Sprintf("%dx %s @ %.2f = %.2f", li.Qty, name, li.UnitPrice(), li.ExtPrice()))
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f (%d items)", o.OrderTotal(), o.TotalQty()))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Receipt serves a PDF receipt for one of the user's paid orders.
// GET /api/orders/receipt/:orderId
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	order, err := h.svc.Order(ctx, userID, ps.ByName("orderId"))
	if err != nil {
		respondOrderError(w, err)
		return
	}
	if !order.IsPaid {
		utils.RespondWithError(w, http.StatusBadRequest, "Receipt is only available for paid orders")
		return
	}

	buyerName := utils.GetUsernameFromRequest(r)

	pdfBytes, err := buildReceiptPDF(order, buyerName)
	if err != nil {
		respondOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.ShortID()+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}
