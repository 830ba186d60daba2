package grading

import (
	"strings"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
)

// Policy selects how semester SGPAs are combined into a CGPA.
type Policy string

const (
	PolicyCreditWeighted Policy = "credit_weighted"
	PolicyUnweighted     Policy = "unweighted"
)

// ParsePolicy accepts the config/flag spelling of a policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyCreditWeighted, "weighted", "":
		return PolicyCreditWeighted, nil
	case PolicyUnweighted, "mean":
		return PolicyUnweighted, nil
	}
	return "", apperrors.NewValidationError("unknown CGPA policy", s)
}

// Classification is the label derived from a CGPA threshold table.
type Classification string

const (
	Distinction Classification = "Distinction"
	FirstClass  Classification = "First Class"
	SecondClass Classification = "Second Class"
	NotEligible Classification = "Not Eligible"
)

// SubjectEntry is one subject row of an SGPA calculation.
type SubjectEntry struct {
	GradePoint int `json:"grade_point"`
	Credits    int `json:"credits"`
}

// SemesterEntry is one semester row of a CGPA calculation.
type SemesterEntry struct {
	SGPA    float64 `json:"sgpa"`
	Credits int     `json:"credits"`
}

// AggregateResult holds an unrounded aggregate and the values derived from it.
type AggregateResult struct {
	Value          float64        `json:"value"`
	Percentage     float64        `json:"percentage"`
	Classification Classification `json:"classification"`
}

// ChartRow is one data point handed to the chart layer.
type ChartRow struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Weight   float64 `json:"weight"`
	Category string  `json:"category"`
}
