package grading

import "fmt"

// SubjectRows builds one chart row per subject: grade point weighted by credits.
func SubjectRows(scale Scale, entries []SubjectEntry) []ChartRow {
	rows := make([]ChartRow, 0, len(entries))
	for i, e := range entries {
		category := scale.LetterFor(e.GradePoint)
		if category == "" {
			category = fmt.Sprintf("%d pts", e.GradePoint)
		}
		rows = append(rows, ChartRow{
			Label:    fmt.Sprintf("Subject %d", i+1),
			Value:    float64(e.GradePoint),
			Weight:   float64(e.Credits),
			Category: category,
		})
	}
	return rows
}

// SemesterRows builds the semester-over-semester SGPA trend.
func SemesterRows(entries []SemesterEntry) []ChartRow {
	rows := make([]ChartRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, ChartRow{
			Label:    fmt.Sprintf("Sem %d", i+1),
			Value:    e.SGPA,
			Weight:   float64(e.Credits),
			Category: string(Classify(e.SGPA)),
		})
	}
	return rows
}

// CreditShare returns each row's share of the total weight, in row order.
// A zero total yields all zeros.
func CreditShare(rows []ChartRow) []float64 {
	var total float64
	for _, r := range rows {
		total += r.Weight
	}
	shares := make([]float64, len(rows))
	if total == 0 {
		return shares
	}
	for i, r := range rows {
		shares[i] = r.Weight / total
	}
	return shares
}
