package frontend

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/security"
)

// Mode selects which calculator the page shows.
type Mode string

const (
	ModeSGPA Mode = "sgpa"
	ModeCGPA Mode = "cgpa"
)

// SubjectRow is one rendered subject input row.
type SubjectRow struct {
	Grade   string
	Percent string
	Credits int
}

// SemesterRow is one rendered semester input row.
type SemesterRow struct {
	SGPA    string
	Credits int
}

// Result is a computed aggregate as shown on the page.
type Result struct {
	Label string
	grading.AggregateResult
}

// Page is the view model of the calculator page. It is rebuilt from the
// submitted form on every request.
type Page struct {
	Nonce       string
	Title       string
	Mode        Mode
	Percent     bool
	Count       int
	Scale       grading.Scale
	Bounds      grading.Bounds
	Policy      grading.Policy
	Subjects    []SubjectRow
	Semesters   []SemesterRow
	Results     []Result
	SGPA        *float64
	CGPA        *float64
	Chart       []grading.ChartRow
	Name        string
	Error       string
	Warning     string
	FieldErrors map[string]string
}

// HasResult reports whether there is something to export.
func (p Page) HasResult() bool {
	return p.SGPA != nil || p.CGPA != nil
}

// NewPage returns an empty page of count rows for the given mode.
func NewPage(mode Mode, count int, scale grading.Scale, bounds grading.Bounds, policy grading.Policy) Page {
	p := Page{
		Title:  "CGPA & SGPA Calculator",
		Mode:   mode,
		Count:  count,
		Scale:  scale,
		Bounds: bounds,
		Policy: policy,
	}
	switch mode {
	case ModeCGPA:
		p.Semesters = make([]SemesterRow, count)
		for i := range p.Semesters {
			p.Semesters[i] = SemesterRow{SGPA: "0.00", Credits: 1}
		}
	default:
		p.Mode = ModeSGPA
		p.Subjects = make([]SubjectRow, count)
		first := ""
		if len(scale.Grades) > 0 {
			first = scale.Grades[0].Letter
		}
		for i := range p.Subjects {
			p.Subjects[i] = SubjectRow{Grade: first, Percent: "0", Credits: 1}
		}
	}
	return p
}

// Renderer writes the calculator page with the request's CSP nonce.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer wraps parsed templates
func NewRenderer(tmpl *template.Template) *Renderer {
	return &Renderer{tmpl: tmpl}
}

// Render executes the page template and writes it with no-cache headers
func (r *Renderer) Render(c *gin.Context, status int, page Page) {
	page.Nonce = security.GetNonce(c)
	if page.Nonce == "" {
		slog.Warn("CSP nonce not found in context, generating new one")
		nonce, err := security.GenerateNonce()
		if err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to generate nonce", err))
			return
		}
		page.Nonce = nonce
	}

	body, err := Execute(r.tmpl, page)
	if err != nil {
		slog.Error("Failed to render page", "error", err, "path", c.Request.URL.Path)
		_ = c.Error(apperrors.NewInternalError("failed to render page", err))
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Data(status, "text/html; charset=utf-8", body)
}

// Load parses the embedded templates into a Renderer
func Load() (*Renderer, error) {
	fsys, err := GetTemplatesFS()
	if err != nil {
		return nil, err
	}
	tmpl, err := LoadTemplates(fsys)
	if err != nil {
		return nil, err
	}
	return NewRenderer(tmpl), nil
}

// Status maps an error onto the status code of the re-rendered page.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return apperrors.ToAppError(err).HTTPStatus
}
