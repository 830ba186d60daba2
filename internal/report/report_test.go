package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
)

func plainRenderer() *Renderer {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &Renderer{Compress: false, Now: func() time.Time { return fixed }}
}

func TestCard_Lines(t *testing.T) {
	tests := []struct {
		name     string
		card     Card
		expected []string
	}{
		{
			name: "sgpa only",
			card: Card{Name: "Asha", SGPA: Score(9)},
			expected: []string{
				DefaultTitle,
				"Student Name: Asha",
				"SGPA: 9.00",
			},
		},
		{
			name: "both scores in order",
			card: Card{Name: " Ravi ", SGPA: Score(8.666666), CGPA: Score(7.25)},
			expected: []string{
				DefaultTitle,
				"Student Name: Ravi",
				"SGPA: 8.67",
				"CGPA: 7.25",
			},
		},
		{
			name: "cgpa only with custom title",
			card: Card{Title: "Semester Report", Name: "Meera", CGPA: Score(6)},
			expected: []string{
				"Semester Report",
				"Student Name: Meera",
				"CGPA: 6.00",
			},
		},
		{
			name: "no scores",
			card: Card{Name: "Asha"},
			expected: []string{
				DefaultTitle,
				"Student Name: Asha",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.card.Lines())
		})
	}
}

func TestRender_ContainsPresentScoresOnly(t *testing.T) {
	doc, err := plainRenderer().Render(Card{Name: "Asha", SGPA: Score(9.0)})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	assert.Contains(t, string(doc), "(Student Name: Asha) Tj")
	assert.Contains(t, string(doc), "(SGPA: 9.00) Tj")
	assert.NotContains(t, string(doc), "CGPA: ")
}

func TestRender_BothScores(t *testing.T) {
	doc, err := plainRenderer().Render(Card{Name: "Asha", SGPA: Score(9.0), CGPA: Score(8.5)})
	require.NoError(t, err)

	text := string(doc)
	sgpaAt := bytes.Index(doc, []byte("(SGPA: 9.00) Tj"))
	cgpaAt := bytes.Index(doc, []byte("(CGPA: 8.50) Tj"))
	nameAt := bytes.Index(doc, []byte("(Student Name: Asha) Tj"))
	require.NotEqual(t, -1, sgpaAt, text)
	require.NotEqual(t, -1, cgpaAt, text)
	assert.Less(t, nameAt, sgpaAt)
	assert.Less(t, sgpaAt, cgpaAt)
}

func TestRender_MissingName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		doc, err := plainRenderer().Render(Card{Name: name, SGPA: Score(9), CGPA: Score(9)})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrMissingName)
		assert.Nil(t, doc)
	}
}

func TestRender_Repeatable(t *testing.T) {
	r := plainRenderer()
	card := Card{Name: "Asha", SGPA: Score(9.0)}

	first, err := r.Render(card)
	require.NoError(t, err)
	second, err := r.Render(card)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_DefaultCompressed(t *testing.T) {
	doc, err := Render(Card{Name: "Asha", CGPA: Score(7)})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	assert.NotContains(t, string(doc), "(CGPA: 7.00) Tj")
}

func TestCard_Validate(t *testing.T) {
	tests := []struct {
		name string
		card Card
		kind error
		code string
	}{
		{name: "scores in range", card: Card{Name: "Asha", SGPA: Score(0), CGPA: Score(10)}},
		{name: "latin-1 name", card: Card{Name: "José Müller", SGPA: Score(9)}},
		{name: "blank name", card: Card{Name: " ", SGPA: Score(42)}, kind: apperrors.ErrMissingName},
		{name: "sgpa above ten", card: Card{Name: "Asha", SGPA: Score(42)}, kind: apperrors.ErrOutOfRange},
		{name: "negative cgpa", card: Card{Name: "Asha", CGPA: Score(-3)}, kind: apperrors.ErrOutOfRange},
		{name: "nan sgpa", card: Card{Name: "Asha", SGPA: Score(math.NaN())}, kind: apperrors.ErrOutOfRange},
		{name: "infinite cgpa", card: Card{Name: "Asha", CGPA: Score(math.Inf(1))}, kind: apperrors.ErrOutOfRange},
		{name: "devanagari name", card: Card{Name: "आशा", SGPA: Score(9)}, code: "VALIDATION_ERROR"},
		{name: "mixed script name", card: Card{Name: "Asha 李", SGPA: Score(9)}, code: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if tt.kind == nil && tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.kind != nil {
				assert.ErrorIs(t, err, tt.kind)
			}
			if tt.code != "" {
				assert.Equal(t, tt.code, apperrors.ToAppError(err).Code())
			}

			doc, renderErr := plainRenderer().Render(tt.card)
			assert.Error(t, renderErr)
			assert.Nil(t, doc)
		})
	}
}

func TestRender_Latin1Name(t *testing.T) {
	doc, err := plainRenderer().Render(Card{Name: "José", SGPA: Score(9)})
	require.NoError(t, err)

	// Body text is Windows-1252; é is 0xE9.
	assert.Contains(t, string(doc), "(Student Name: Jos\xe9) Tj")
}

func TestPrintable(t *testing.T) {
	assert.True(t, Printable(DefaultTitle))
	assert.True(t, Printable("Zoë – naïve"))
	assert.False(t, Printable("आशा"))
	assert.False(t, Printable("🎓 Report"))
}
