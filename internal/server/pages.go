package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/frontend"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/report"
)

const defaultRows = 1

func (s *Server) newPage(mode frontend.Mode, count int) frontend.Page {
	return frontend.NewPage(mode, count, s.scale, s.cfg.Bounds, s.policy)
}

func (s *Server) countCheck(mode frontend.Mode) func(int) error {
	if mode == frontend.ModeCGPA {
		return s.cfg.Bounds.SemesterCount
	}
	return s.cfg.Bounds.SubjectCount
}

func parseMode(raw string) frontend.Mode {
	if frontend.Mode(raw) == frontend.ModeCGPA {
		return frontend.ModeCGPA
	}
	return frontend.ModeSGPA
}

// handleIndex renders an empty calculator. A bad count falls back to one
// row with the error shown.
func (s *Server) handleIndex(c *gin.Context) {
	mode := parseMode(c.Query("mode"))

	count := defaultRows
	var countErr error
	if raw := c.Query("count"); raw != "" {
		count, countErr = parseCount(raw, s.countCheck(mode))
		if countErr != nil {
			count = defaultRows
		}
	}

	page := s.newPage(mode, count)
	page.Percent = c.Query("entry") == "percent"
	if countErr != nil {
		showError(&page, countErr)
	}
	s.pages.Render(c, frontend.Status(countErr), page)
}

func (s *Server) handleSGPAForm(c *gin.Context) {
	count, err := parseCount(c.PostForm("count"), s.cfg.Bounds.SubjectCount)
	if err != nil {
		page := s.newPage(frontend.ModeSGPA, defaultRows)
		showError(&page, s.reject("sgpa", 0, err))
		s.pages.Render(c, frontend.Status(err), page)
		return
	}

	page := s.newPage(frontend.ModeSGPA, count)
	page.Percent = c.PostForm("entry") == "percent"

	start := time.Now()
	in, err := s.parseSubjects(c, &page)
	if err == nil {
		err = in.Check(s.cfg.Bounds)
	}
	var res grading.AggregateResult
	if err == nil {
		res, err = in.Aggregate()
	}
	if err != nil {
		showError(&page, s.reject("sgpa", count, err))
		s.pages.Render(c, frontend.Status(err), page)
		return
	}

	s.metrics.RecordCalculation("sgpa")
	s.logger.CalculationLogger("sgpa", count, res.Value, "", time.Since(start))

	page.Results = []frontend.Result{{Label: "SGPA", AggregateResult: res}}
	page.SGPA = &res.Value
	page.Chart = grading.SubjectRows(s.scale, in.Entries())
	s.pages.Render(c, http.StatusOK, page)
}

func (s *Server) handleCGPAForm(c *gin.Context) {
	count, err := parseCount(c.PostForm("count"), s.cfg.Bounds.SemesterCount)
	if err != nil {
		page := s.newPage(frontend.ModeCGPA, defaultRows)
		showError(&page, s.reject("cgpa", 0, err))
		s.pages.Render(c, frontend.Status(err), page)
		return
	}

	page := s.newPage(frontend.ModeCGPA, count)

	start := time.Now()
	in, err := s.parseSemesters(c, &page)
	if err == nil {
		err = in.Check(s.cfg.Bounds)
	}
	var res grading.AggregateResult
	if err == nil {
		res, err = in.Aggregate(s.policy)
	}
	if err != nil {
		showError(&page, s.reject("cgpa", count, err))
		s.pages.Render(c, frontend.Status(err), page)
		return
	}

	s.metrics.RecordCalculation("cgpa")
	s.logger.CalculationLogger("cgpa", count, res.Value, string(s.policy), time.Since(start))

	page.Results = []frontend.Result{{Label: "CGPA", AggregateResult: res}}
	page.CGPA = &res.Value
	page.Chart = grading.SemesterRows(in.Entries())
	s.pages.Render(c, http.StatusOK, page)
}

// handleReportForm streams the PDF. Without a name the page is shown again
// with its results intact and a warning.
func (s *Server) handleReportForm(c *gin.Context) {
	mode := parseMode(c.PostForm("mode"))
	count, err := parseCount(c.PostForm("count"), s.countCheck(mode))
	if err != nil {
		count = defaultRows
	}
	page := s.newPage(mode, count)

	sgpa, sgpaErr := parseScore(c.PostForm("sgpa"), "sgpa")
	cgpa, cgpaErr := parseScore(c.PostForm("cgpa"), "cgpa")
	if err := errors.Join(sgpaErr, cgpaErr); err != nil {
		showError(&page, err)
		s.pages.Render(c, http.StatusBadRequest, page)
		return
	}
	if err := (report.Card{SGPA: sgpa, CGPA: cgpa}).CheckScores(); err != nil {
		showError(&page, err)
		s.pages.Render(c, frontend.Status(err), page)
		return
	}
	page.SGPA, page.CGPA = sgpa, cgpa
	if sgpa != nil {
		page.Results = append(page.Results, frontend.Result{Label: "SGPA", AggregateResult: grading.Derive(*sgpa)})
	}
	if cgpa != nil {
		page.Results = append(page.Results, frontend.Result{Label: "CGPA", AggregateResult: grading.Derive(*cgpa)})
	}

	name := c.PostForm("name")
	if err := s.security.ValidateName(name); err != nil {
		page.Name = s.security.SanitizeName(name)
		showError(&page, err)
		s.pages.Render(c, frontend.Status(err), page)
		return
	}

	card := report.Card{Title: s.cfg.ReportTitle, Name: s.security.SanitizeName(name), SGPA: sgpa, CGPA: cgpa}
	pdf, err := s.renderReport(card)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrMissingName):
			page.Warning = apperrors.ToAppError(err).Message()
		case apperrors.IsUserError(err):
			page.Name = card.Name
			showError(&page, err)
		default:
			_ = c.Error(err)
			return
		}
		s.pages.Render(c, frontend.Status(err), page)
		return
	}

	writePDF(c, pdf)
}

func (s *Server) renderReport(card report.Card) ([]byte, error) {
	start := time.Now()
	pdf, err := s.reports.Render(card)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementReports()
	s.logger.ReportLogger(len(card.Lines()), len(pdf), time.Since(start))
	return pdf, nil
}

func writePDF(c *gin.Context, pdf []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, report.ContentType, pdf)
}
