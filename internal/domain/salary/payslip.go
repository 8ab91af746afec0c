package salary

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderPayslip writes a one-page PDF payslip for a salary record loaded via
// FindWithEmployee.
func RenderPayslip(w io.Writer, record map[string]any) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", asString(record["employee_name"])))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s", asString(record["department_name"])))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Position: %s", asString(record["position_title"])))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %02d/%d", asInt(record["month"]), asInt(record["year"])))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Base salary: %.2f", asFloat(record["base_salary"])))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Bonus: %.2f", asFloat(record["bonus"])))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Deduction: %.2f", asFloat(record["deduction"])))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", asFloat(record["total_salary"])))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 MST")))
	return pdf.Output(w)
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// asFloat covers the numeric shapes pgx produces for generic row values.
func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	default:
		return 0
	}
}

func asInt(value any) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
