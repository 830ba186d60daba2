package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"strconv"

	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
)

const (
	chartWidth  = 300.0
	chartRowGap = 28
)

var funcMap = template.FuncMap{
	"score": grading.FormatScore,
	"inc":   func(i int) int { return i + 1 },
	// raw keeps full precision in hidden fields so a later report uses
	// the unrounded value.
	"raw": func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
	"barWidth": func(v float64) string {
		return strconv.FormatFloat(v/grading.MaxGradePoint*chartWidth, 'f', 1, 64)
	},
	"barY":        func(i int) int { return i * chartRowGap },
	"chartHeight": func(n int) int { return n * chartRowGap },
	// share is row i's percentage of the total credits.
	"share": func(rows []grading.ChartRow, i int) string {
		return strconv.FormatFloat(grading.CreditShare(rows)[i]*100, 'f', 0, 64) + "%"
	},
	"fieldError": func(errs map[string]string, key string) string {
		return errs[key]
	},
}

// LoadTemplates parses the calculator page from fsys
func LoadTemplates(fsys fs.FS) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if tmpl.Lookup("index.html") == nil {
		return nil, fmt.Errorf("index.html template not found")
	}
	return tmpl, nil
}

// Execute renders the calculator page into a byte slice
func Execute(tmpl *template.Template, page Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "index.html", page); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}
