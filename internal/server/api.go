package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/grading"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/report"
)

// SubjectRequest is one subject row. Exactly one of Grade and Percent is set.
type SubjectRequest struct {
	Grade   string   `json:"grade,omitempty" example:"A+"`
	Percent *float64 `json:"percent,omitempty" example:"87.5"`
	Credits int      `json:"credits" example:"4"`
}

// SGPARequest is the body of POST /api/v1/sgpa.
type SGPARequest struct {
	Subjects []SubjectRequest `json:"subjects"`
}

// CGPARequest is the body of POST /api/v1/cgpa.
type CGPARequest struct {
	Semesters []grading.SemesterEntry `json:"semesters"`
}

// AggregateResponse reports an unrounded value alongside its display form.
type AggregateResponse struct {
	Kind           string                 `json:"kind" example:"sgpa"`
	Value          float64                `json:"value" example:"8.857142857142858"`
	Display        string                 `json:"display" example:"8.86"`
	Percentage     float64                `json:"percentage" example:"81.07"`
	Classification grading.Classification `json:"classification" example:"Distinction"`
	Policy         grading.Policy         `json:"policy,omitempty" example:"credit_weighted"`
	Chart          []grading.ChartRow     `json:"chart"`
}

// ReportRequest is the body of POST /api/v1/report.
type ReportRequest struct {
	Name string   `json:"name" example:"Asha Rao"`
	SGPA *float64 `json:"sgpa,omitempty" example:"8.86"`
	CGPA *float64 `json:"cgpa,omitempty" example:"8.2"`
}

// ScaleResponse describes the active grade table and form limits.
type ScaleResponse struct {
	Scale  grading.Scale  `json:"scale"`
	Bounds grading.Bounds `json:"bounds"`
	Policy grading.Policy `json:"policy"`
}

func newAggregateResponse(kind string, res grading.AggregateResult, chart []grading.ChartRow) AggregateResponse {
	return AggregateResponse{
		Kind:           kind,
		Value:          res.Value,
		Display:        grading.FormatScore(res.Value),
		Percentage:     res.Percentage,
		Classification: res.Classification,
		Chart:          chart,
	}
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.NewValidationError("invalid request body", err.Error())
	}
	return nil
}

// subjectEntries resolves each row's grade or percentage to grade points.
func (s *Server) subjectEntries(rows []SubjectRequest) ([]grading.SubjectEntry, error) {
	entries := make([]grading.SubjectEntry, len(rows))
	fields := make(map[string]string)

	for i, row := range rows {
		entries[i].Credits = row.Credits
		hasGrade := strings.TrimSpace(row.Grade) != ""

		switch {
		case hasGrade && row.Percent != nil:
			fields[fmt.Sprintf("subjects[%d]", i)] = "set either grade or percent, not both"
		case row.Percent != nil:
			gp, err := grading.GradePointFromPercentage(*row.Percent)
			if err != nil {
				fields[fmt.Sprintf("subjects[%d].percent", i)] = "must be between 0 and 100"
				continue
			}
			entries[i].GradePoint = gp
		case hasGrade:
			gp, err := s.scale.Points(row.Grade)
			if err != nil {
				fields[fmt.Sprintf("subjects[%d].grade", i)] = "unknown grade"
				continue
			}
			entries[i].GradePoint = gp
		default:
			fields[fmt.Sprintf("subjects[%d]", i)] = "grade or percent is required"
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationErrorWithMap(fields)
	}
	return entries, nil
}

// handleSGPA godoc
// @Summary      Calculate SGPA
// @Description  Credit-weighted mean of subject grade points. Each subject gives a letter grade or a percentage.
// @Tags         grading
// @Accept       json
// @Produce      json
// @Param        request  body      SGPARequest  true  "Subjects"
// @Success      200      {object}  AggregateResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      422      {object}  map[string]interface{}
// @Router       /api/v1/sgpa [post]
func (s *Server) handleSGPA(c *gin.Context) {
	var req SGPARequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(s.reject("sgpa", 0, err))
		return
	}

	start := time.Now()
	entries, err := s.subjectEntries(req.Subjects)
	if err != nil {
		_ = c.Error(s.reject("sgpa", len(req.Subjects), err))
		return
	}
	in := grading.NewSubjectInput(entries...)
	// an empty list is the aggregator's EmptyInput, not a bounds failure
	if in.Count() > 0 {
		if err := in.Check(s.cfg.Bounds); err != nil {
			_ = c.Error(s.reject("sgpa", in.Count(), err))
			return
		}
	}
	res, err := in.Aggregate()
	if err != nil {
		_ = c.Error(s.reject("sgpa", in.Count(), err))
		return
	}

	s.metrics.RecordCalculation("sgpa")
	s.logger.CalculationLogger("sgpa", in.Count(), res.Value, "", time.Since(start))

	c.JSON(http.StatusOK, newAggregateResponse("sgpa", res, grading.SubjectRows(s.scale, entries)))
}

// handleCGPA godoc
// @Summary      Calculate CGPA
// @Description  Combines semester SGPAs under the configured policy, which is echoed in the response.
// @Tags         grading
// @Accept       json
// @Produce      json
// @Param        request  body      CGPARequest  true  "Semesters"
// @Success      200      {object}  AggregateResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      422      {object}  map[string]interface{}
// @Router       /api/v1/cgpa [post]
func (s *Server) handleCGPA(c *gin.Context) {
	var req CGPARequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(s.reject("cgpa", 0, err))
		return
	}

	start := time.Now()
	in := grading.NewSemesterInput(req.Semesters...)
	// an empty list is the aggregator's EmptyInput, not a bounds failure
	if in.Count() > 0 {
		if err := in.Check(s.cfg.Bounds); err != nil {
			_ = c.Error(s.reject("cgpa", in.Count(), err))
			return
		}
	}
	res, err := in.Aggregate(s.policy)
	if err != nil {
		_ = c.Error(s.reject("cgpa", in.Count(), err))
		return
	}

	s.metrics.RecordCalculation("cgpa")
	s.logger.CalculationLogger("cgpa", in.Count(), res.Value, string(s.policy), time.Since(start))

	resp := newAggregateResponse("cgpa", res, grading.SemesterRows(req.Semesters))
	resp.Policy = s.policy
	c.JSON(http.StatusOK, resp)
}

// handleReport godoc
// @Summary      Export report card
// @Description  Renders a single-page PDF with the student name and any supplied scores.
// @Tags         report
// @Accept       json
// @Produce      application/pdf
// @Param        request  body      ReportRequest  true  "Report contents"
// @Success      200      {file}    file
// @Failure      400      {object}  map[string]interface{}
// @Router       /api/v1/report [post]
func (s *Server) handleReport(c *gin.Context) {
	var req ReportRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := s.security.ValidateName(req.Name); err != nil {
		_ = c.Error(err)
		return
	}

	card := report.Card{
		Title: s.cfg.ReportTitle,
		Name:  s.security.SanitizeName(req.Name),
		SGPA:  req.SGPA,
		CGPA:  req.CGPA,
	}
	pdf, err := s.renderReport(card)
	if err != nil {
		_ = c.Error(err)
		return
	}

	writePDF(c, pdf)
}

// handleScale godoc
// @Summary      Active grade scale
// @Tags         grading
// @Produce      json
// @Success      200  {object}  ScaleResponse
// @Router       /api/v1/scale [get]
func (s *Server) handleScale(c *gin.Context) {
	c.JSON(http.StatusOK, ScaleResponse{Scale: s.scale, Bounds: s.cfg.Bounds, Policy: s.policy})
}
