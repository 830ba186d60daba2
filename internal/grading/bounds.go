package grading

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
)

// Bounds are the input limits the form enforces before aggregation.
type Bounds struct {
	MaxSubjects        int `yaml:"max_subjects" json:"max_subjects"`
	MaxSubjectCredits  int `yaml:"max_subject_credits" json:"max_subject_credits"`
	MaxSemesters       int `yaml:"max_semesters" json:"max_semesters"`
	MaxSemesterCredits int `yaml:"max_semester_credits" json:"max_semester_credits"`
}

// DefaultBounds returns the limits of the original calculator form.
func DefaultBounds() Bounds {
	return Bounds{
		MaxSubjects:        20,
		MaxSubjectCredits:  10,
		MaxSemesters:       12,
		MaxSemesterCredits: 40,
	}
}

// SubjectCount validates the number of subject rows requested.
func (b Bounds) SubjectCount(n int) error {
	if n < 1 || n > b.MaxSubjects {
		return apperrors.NewOutOfRangeError("subject count", n, 1, b.MaxSubjects)
	}
	return nil
}

// SemesterCount validates the number of semester rows requested.
func (b Bounds) SemesterCount(n int) error {
	if n < 1 || n > b.MaxSemesters {
		return apperrors.NewOutOfRangeError("semester count", n, 1, b.MaxSemesters)
	}
	return nil
}

// CheckSubjects validates every subject row and reports all offending fields at once.
func (b Bounds) CheckSubjects(entries []SubjectEntry) error {
	if err := b.SubjectCount(len(entries)); err != nil {
		return err
	}
	fields := make(map[string]string)
	for i, e := range entries {
		if e.GradePoint < MinGradePoint || e.GradePoint > MaxGradePoint {
			fields[fmt.Sprintf("subjects[%d].grade_point", i)] =
				fmt.Sprintf("must be between %d and %d", MinGradePoint, MaxGradePoint)
		}
		if e.Credits < 1 || e.Credits > b.MaxSubjectCredits {
			fields[fmt.Sprintf("subjects[%d].credits", i)] =
				fmt.Sprintf("must be between 1 and %d", b.MaxSubjectCredits)
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationErrorWithMap(fields)
	}
	return nil
}

// CheckSemesters validates every semester row and reports all offending fields at once.
func (b Bounds) CheckSemesters(entries []SemesterEntry) error {
	if err := b.SemesterCount(len(entries)); err != nil {
		return err
	}
	fields := make(map[string]string)
	for i, e := range entries {
		if math.IsNaN(e.SGPA) || e.SGPA < MinGradePoint || e.SGPA > MaxGradePoint {
			fields[fmt.Sprintf("semesters[%d].sgpa", i)] =
				fmt.Sprintf("must be between %d and %d", MinGradePoint, MaxGradePoint)
		}
		if e.Credits < 1 || e.Credits > b.MaxSemesterCredits {
			fields[fmt.Sprintf("semesters[%d].credits", i)] =
				fmt.Sprintf("must be between 1 and %d", b.MaxSemesterCredits)
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationErrorWithMap(fields)
	}
	return nil
}
