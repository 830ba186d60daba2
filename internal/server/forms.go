package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/frontend"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
)

// parseCount reads the row count and checks it against the bounds before
// any rows are read, so the row set always has a fixed, validated shape.
func parseCount(raw string, check func(int) error) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.NewValidationError("count must be a whole number", raw)
	}
	if err := check(n); err != nil {
		return 0, err
	}
	return n, nil
}

// parseSubjects reads count subject rows from the form. Submitted values
// are echoed into page so the form re-renders as the user left it.
func (s *Server) parseSubjects(c *gin.Context, page *frontend.Page) (grading.SubjectInput, error) {
	entries := make([]grading.SubjectEntry, page.Count)
	fields := make(map[string]string)

	for i := range entries {
		row := &page.Subjects[i]

		creditsRaw := c.PostForm(fmt.Sprintf("credit_%d", i))
		credits, err := strconv.Atoi(strings.TrimSpace(creditsRaw))
		if err != nil {
			fields[fmt.Sprintf("subjects[%d].credits", i)] = "must be a whole number"
		}
		row.Credits = credits
		entries[i].Credits = credits

		if page.Percent {
			row.Percent = c.PostForm(fmt.Sprintf("percent_%d", i))
			pct, err := strconv.ParseFloat(strings.TrimSpace(row.Percent), 64)
			if err != nil {
				fields[fmt.Sprintf("subjects[%d].percent", i)] = "must be a number"
				continue
			}
			gp, err := grading.GradePointFromPercentage(pct)
			if err != nil {
				fields[fmt.Sprintf("subjects[%d].percent", i)] = "must be between 0 and 100"
				continue
			}
			entries[i].GradePoint = gp
			continue
		}

		row.Grade = c.PostForm(fmt.Sprintf("grade_%d", i))
		gp, err := s.scale.Points(row.Grade)
		if err != nil {
			fields[fmt.Sprintf("subjects[%d].grade", i)] = "unknown grade"
			continue
		}
		entries[i].GradePoint = gp
	}

	if len(fields) > 0 {
		return grading.SubjectInput{}, apperrors.NewValidationErrorWithMap(fields)
	}
	return grading.NewSubjectInput(entries...), nil
}

// parseSemesters reads count semester rows from the form.
func (s *Server) parseSemesters(c *gin.Context, page *frontend.Page) (grading.SemesterInput, error) {
	entries := make([]grading.SemesterEntry, page.Count)
	fields := make(map[string]string)

	for i := range entries {
		row := &page.Semesters[i]

		row.SGPA = c.PostForm(fmt.Sprintf("sgpa_%d", i))
		sgpa, err := strconv.ParseFloat(strings.TrimSpace(row.SGPA), 64)
		if err != nil {
			fields[fmt.Sprintf("semesters[%d].sgpa", i)] = "must be a number"
		}
		entries[i].SGPA = sgpa

		credits, err := strconv.Atoi(strings.TrimSpace(c.PostForm(fmt.Sprintf("credit_sem_%d", i))))
		if err != nil {
			fields[fmt.Sprintf("semesters[%d].credits", i)] = "must be a whole number"
		}
		row.Credits = credits
		entries[i].Credits = credits
	}

	if len(fields) > 0 {
		return grading.SemesterInput{}, apperrors.NewValidationErrorWithMap(fields)
	}
	return grading.NewSemesterInput(entries...), nil
}

// parseScore reads an optional score field. An empty field is absent.
func parseScore(raw, field string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewValidationError(field+" must be a number", raw)
	}
	return &v, nil
}

// showError puts an error on the page: the message in the banner and any
// per-field messages next to their rows.
func showError(page *frontend.Page, err error) {
	appErr := apperrors.ToAppError(err)
	page.FieldErrors = appErr.Fields()
	if hasRowErrors(page.FieldErrors) {
		page.Error = "Please correct the highlighted fields."
		return
	}
	page.Error = appErr.Message()
}

// hasRowErrors reports whether any message belongs next to a form row.
func hasRowErrors(fields map[string]string) bool {
	for key := range fields {
		if strings.HasPrefix(key, "subjects[") || strings.HasPrefix(key, "semesters[") {
			return true
		}
	}
	return false
}
