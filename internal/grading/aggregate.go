package grading

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
)

const (
	MinGradePoint = 0
	MaxGradePoint = 10
)

// SGPA returns Σ(gradePoint×credits)/Σcredits over the subjects.
//
// Both sums are integers, so the result does not depend on entry order.
// The value is not rounded.
func SGPA(entries []SubjectEntry) (float64, error) {
	if len(entries) == 0 {
		return 0, apperrors.NewEmptyInputError("subject")
	}

	var weighted, total int
	for i, e := range entries {
		if e.GradePoint < MinGradePoint || e.GradePoint > MaxGradePoint {
			return 0, apperrors.NewOutOfRangeError(fmt.Sprintf("subjects[%d].grade_point", i),
				e.GradePoint, MinGradePoint, MaxGradePoint)
		}
		if e.Credits < 0 {
			return 0, apperrors.NewValidationError("credits cannot be negative", fmt.Sprintf("subjects[%d].credits", i))
		}
		weighted += e.GradePoint * e.Credits
		total += e.Credits
	}

	if total == 0 {
		return 0, apperrors.NewZeroCreditError("subjects")
	}
	return float64(weighted) / float64(total), nil
}

// CGPA combines semester SGPAs under the given policy.
func CGPA(policy Policy, entries []SemesterEntry) (float64, error) {
	if len(entries) == 0 {
		return 0, apperrors.NewEmptyInputError("semester")
	}

	for i, e := range entries {
		if math.IsNaN(e.SGPA) || e.SGPA < MinGradePoint || e.SGPA > MaxGradePoint {
			return 0, apperrors.NewOutOfRangeError(fmt.Sprintf("semesters[%d].sgpa", i),
				e.SGPA, MinGradePoint, MaxGradePoint)
		}
		if e.Credits < 0 {
			return 0, apperrors.NewValidationError("credits cannot be negative", fmt.Sprintf("semesters[%d].credits", i))
		}
	}

	switch policy {
	case PolicyCreditWeighted:
		return creditWeightedCGPA(entries)
	case PolicyUnweighted:
		return unweightedCGPA(entries), nil
	default:
		return 0, apperrors.NewValidationError("unknown CGPA policy", string(policy))
	}
}

func creditWeightedCGPA(entries []SemesterEntry) (float64, error) {
	var weighted float64
	var total int
	for _, e := range entries {
		weighted += e.SGPA * float64(e.Credits)
		total += e.Credits
	}
	if total == 0 {
		return 0, apperrors.NewZeroCreditError("semesters")
	}
	return weighted / float64(total), nil
}

func unweightedCGPA(entries []SemesterEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.SGPA
	}
	return sum / float64(len(entries))
}
