package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/edunova/lms-api/internal/models"
)

// Receipt renders a payment receipt as a single-page PDF.
func Receipt(payment *models.PaymentDetail) ([]byte, error) {
	if payment == nil {
		return nil, fmt.Errorf("receipt requires a payment")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "PAYMENT RECEIPT", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	rows := [][2]string{
		{"Receipt No", payment.ID},
		{"Date", payment.PaymentDate.Format("2006-01-02 15:04")},
		{"Paid By", deref(payment.UserName)},
		{"Email", deref(payment.UserEmail)},
		{"Course", deref(payment.CourseTitle)},
		{"Method", payment.Method},
		{"Status", payment.Status},
	}
	if payment.TransactionID != nil {
		rows = append(rows, [2]string{"Transaction", *payment.TransactionID})
	}

	pdf.SetFont("Arial", "", 11)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(130, 8, row[1], "1", 1, "", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 10, fmt.Sprintf("Amount Paid: LKR %.2f", payment.Amount), "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
