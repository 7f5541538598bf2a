package leave

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderStatement writes a one-page PDF of the yearly balance ledger.
func RenderStatement(employeeName string, year int, balances []Balance, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Balance Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Year: %d", year))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	for _, header := range []string{"Leave type", "Entitled", "Used", "Remaining"} {
		pdf.CellFormat(45, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, b := range balances {
		pdf.CellFormat(45, 8, b.LeaveType, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 8, formatDays(b.Entitled), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 8, formatDays(b.Used), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 8, formatDays(b.Remaining), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDays(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
