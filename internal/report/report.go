package report

import (
	"bytes"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
)

const (
	DefaultTitle = "BTech SGPA & CGPA Report"
	Filename     = "Report_Card.pdf"
	ContentType  = "application/pdf"
)

// Card is the content of one exported report. A nil score is omitted.
type Card struct {
	Title string
	Name  string
	SGPA  *float64
	CGPA  *float64
}

// Validate blocks export of a card without a printable student name or
// with a score outside the grade-point range.
func (c Card) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return apperrors.NewMissingNameError()
	}
	if bad := unprintable(name); bad != "" {
		return apperrors.NewValidationError("name contains characters the report cannot print", bad)
	}
	return c.CheckScores()
}

// CheckScores rejects a present SGPA or CGPA that is NaN or outside
// [MinGradePoint, MaxGradePoint].
func (c Card) CheckScores() error {
	for _, score := range []struct {
		field string
		value *float64
	}{{"sgpa", c.SGPA}, {"cgpa", c.CGPA}} {
		if score.value == nil {
			continue
		}
		v := *score.value
		if math.IsNaN(v) || v < grading.MinGradePoint || v > grading.MaxGradePoint {
			return apperrors.NewOutOfRangeError(score.field, v, grading.MinGradePoint, grading.MaxGradePoint)
		}
	}
	return nil
}

// Printable reports whether s can be drawn with the PDF core fonts,
// which cover Windows-1252 only.
func Printable(s string) bool {
	return unprintable(s) == ""
}

// unprintable returns the distinct runes of s outside Windows-1252.
func unprintable(s string) string {
	var bad []rune
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			continue
		}
		if !strings.ContainsRune(string(bad), r) {
			bad = append(bad, r)
		}
	}
	return string(bad)
}

// Lines returns the report text in print order: title, name, then each
// present score.
func (c Card) Lines() []string {
	title := c.Title
	if title == "" {
		title = DefaultTitle
	}
	lines := []string{title, "Student Name: " + strings.TrimSpace(c.Name)}
	if c.SGPA != nil {
		lines = append(lines, "SGPA: "+grading.FormatScore(*c.SGPA))
	}
	if c.CGPA != nil {
		lines = append(lines, "CGPA: "+grading.FormatScore(*c.CGPA))
	}
	return lines
}

// Renderer turns cards into PDF documents.
type Renderer struct {
	// Compress deflates page content streams.
	Compress bool
	// Now stamps the document creation date; defaults to time.Now.
	Now func() time.Time
}

// NewRenderer returns a renderer producing compressed documents.
func NewRenderer() *Renderer {
	return &Renderer{Compress: true, Now: time.Now}
}

// Render produces a single-page PDF. It writes nothing outside the
// returned slice, so it can be called repeatedly.
func (r *Renderer) Render(c Card) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	lines := c.Lines()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now())
	pdf.SetTitle(lines[0], true)
	pdf.SetAuthor(strings.TrimSpace(c.Name), true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 14)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.CellFormat(200, 10, tr(lines[0]), "", 1, "C", false, 0, "")
	pdf.Ln(10)
	for _, line := range lines[1:] {
		pdf.CellFormat(200, 10, tr(line), "", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.NewInternalError("failed to render report", err)
	}
	return buf.Bytes(), nil
}

// Render renders a card with the default renderer.
func Render(c Card) ([]byte, error) {
	return NewRenderer().Render(c)
}

// Score returns a pointer for an optional card field.
func Score(v float64) *float64 {
	return &v
}
