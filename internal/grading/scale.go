package grading

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
)

// Grade is one letter grade and the points it is worth.
type Grade struct {
	Letter string `yaml:"letter" json:"letter"`
	Points int    `yaml:"points" json:"points"`
}

// Label is the form label, e.g. "A+ (9)".
func (g Grade) Label() string {
	return fmt.Sprintf("%s (%d)", g.Letter, g.Points)
}

// Scale is an ordered letter-grade table, best grade first.
type Scale struct {
	Name   string  `yaml:"name" json:"name"`
	Grades []Grade `yaml:"grades" json:"grades"`
}

// DefaultScale returns the ten-point letter table.
func DefaultScale() Scale {
	return Scale{
		Name: "ten-point",
		Grades: []Grade{
			{Letter: "O", Points: 10},
			{Letter: "A+", Points: 9},
			{Letter: "A", Points: 8},
			{Letter: "B+", Points: 7},
			{Letter: "B", Points: 6},
			{Letter: "C", Points: 5},
			{Letter: "F", Points: 0},
			{Letter: "Ab", Points: 0},
		},
	}
}

// Points looks up a letter. Both "A+" and the form label "A+ (9)" are accepted.
func (s Scale) Points(letter string) (int, error) {
	key := strings.TrimSpace(letter)
	if i := strings.Index(key, " ("); i > 0 {
		key = key[:i]
	}
	for _, g := range s.Grades {
		if strings.EqualFold(g.Letter, key) {
			return g.Points, nil
		}
	}
	return 0, apperrors.NewValidationError("unknown grade", letter)
}

// LetterFor returns the first letter worth the given points, or "".
func (s Scale) LetterFor(points int) string {
	for _, g := range s.Grades {
		if g.Points == points {
			return g.Letter
		}
	}
	return ""
}

// Validate checks the table is usable.
func (s Scale) Validate() error {
	if len(s.Grades) == 0 {
		return apperrors.NewConfigurationError("grade scale has no grades", nil)
	}
	seen := make(map[string]bool, len(s.Grades))
	for _, g := range s.Grades {
		letter := strings.ToLower(strings.TrimSpace(g.Letter))
		if letter == "" {
			return apperrors.NewConfigurationError("grade scale has an empty letter", nil)
		}
		if seen[letter] {
			return apperrors.NewConfigurationError(fmt.Sprintf("grade scale repeats letter %q", g.Letter), nil)
		}
		seen[letter] = true
		if g.Points < MinGradePoint || g.Points > MaxGradePoint {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("grade %q is worth %d points, want %d-%d", g.Letter, g.Points, MinGradePoint, MaxGradePoint), nil)
		}
	}
	return nil
}

// LoadScale reads a YAML grade table. An empty path or a missing file
// yields the default table.
func LoadScale(path string) (Scale, error) {
	if path == "" {
		return DefaultScale(), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultScale(), nil
	}
	if err != nil {
		return Scale{}, apperrors.NewConfigurationError("failed to read grade scale", err)
	}

	var s Scale
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scale{}, apperrors.NewConfigurationError("failed to decode grade scale", err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return Scale{}, err
	}
	return s, nil
}

// percentageBreakpoints map a subject percentage onto grade points,
// evaluated high to low.
var percentageBreakpoints = []struct {
	min    float64
	points int
}{
	{90, 10},
	{80, 9},
	{70, 8},
	{60, 7},
	{50, 6},
	{40, 5},
}

// GradePointFromPercentage derives a grade point from a subject percentage.
func GradePointFromPercentage(pct float64) (int, error) {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, apperrors.NewOutOfRangeError("percentage", pct, 0, 100)
	}
	for _, b := range percentageBreakpoints {
		if pct >= b.min {
			return b.points, nil
		}
	}
	return 0, nil
}
