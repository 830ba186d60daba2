package server

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/cgpa-calculator/internal/config"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/monitoring"
)

func quietLogger() *monitoring.Logger {
	return monitoring.NewLoggerTo(io.Discard, slog.LevelError)
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.MaxRequestsPerMin = 6000
	for _, m := range mutate {
		m(&cfg)
	}

	s, err := New(cfg, quietLogger())
	require.NoError(t, err)
	return s
}

func postForm(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.Handler().ServeHTTP(w, req)
	return w
}

func postJSON(s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(w, req)
	return w
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.CGPAPolicy = "median"

	_, err := New(cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIGURATION_ERROR")
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{name: "GET /health returns OK status", method: "GET", expectedStatus: http.StatusOK},
		{name: "POST /health not routed", method: "POST", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, "/health", nil)
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				body := decode(t, w)
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, "credit_weighted", body["policy"])
				assert.Equal(t, "ten-point", body["scale"])
			}
		})
	}
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		contains       []string
		notContains    []string
	}{
		{
			name:           "default is one subject row",
			path:           "/",
			expectedStatus: http.StatusOK,
			contains:       []string{"Subject 1", `name="grade_0"`, "A&#43; (9)", "Ab (0)"},
			notContains:    []string{"Subject 2"},
		},
		{
			name:           "sized semester rows",
			path:           "/?mode=cgpa&count=3",
			expectedStatus: http.StatusOK,
			contains:       []string{"Semester 3", `name="credit_sem_2"`},
			notContains:    []string{"Semester 4"},
		},
		{
			name:           "percentage entry",
			path:           "/?count=2&entry=percent",
			expectedStatus: http.StatusOK,
			contains:       []string{`name="percent_1"`},
			notContains:    []string{`name="grade_0"`},
		},
		{
			name:           "count above bound",
			path:           "/?count=21",
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"subject count must be between 1 and 20", "Subject 1"},
			notContains:    []string{"Subject 2"},
		},
		{
			name:           "count not a number",
			path:           "/?count=many",
			expectedStatus: http.StatusBadRequest,
			contains:       []string{"count must be a whole number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(s, tt.path)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'nonce-")
			for _, want := range tt.contains {
				assert.Contains(t, w.Body.String(), want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, w.Body.String(), unwanted)
			}
		})
	}
}

func TestSGPAForm(t *testing.T) {
	s := newTestServer(t)

	t.Run("letter grades", func(t *testing.T) {
		w := postForm(s, "/sgpa", url.Values{
			"count":    {"2"},
			"grade_0":  {"O"},
			"credit_0": {"4"},
			"grade_1":  {"A"},
			"credit_1": {"3"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Your SGPA is <strong>8.86</strong>")
		assert.Contains(t, body, "Distinction")
		assert.Contains(t, body, "8.857142857142858", "report form keeps the unrounded value")
		assert.Contains(t, body, `action="/report"`)
	})

	t.Run("percentages", func(t *testing.T) {
		w := postForm(s, "/sgpa", url.Values{
			"count":     {"2"},
			"entry":     {"percent"},
			"percent_0": {"95"},
			"credit_0":  {"4"},
			"percent_1": {"85"},
			"credit_1":  {"4"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Your SGPA is <strong>9.50</strong>")
		assert.Contains(t, w.Body.String(), "50% of credits")
	})

	t.Run("bad credit keeps the form", func(t *testing.T) {
		w := postForm(s, "/sgpa", url.Values{
			"count":    {"2"},
			"grade_0":  {"O"},
			"credit_0": {"4"},
			"grade_1":  {"A"},
			"credit_1": {"three"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Please correct the highlighted fields.")
		assert.Contains(t, body, "must be a whole number")
		assert.Contains(t, body, "Subject 2")
		assert.NotContains(t, body, `action="/report"`)
	})

	t.Run("credit above bound", func(t *testing.T) {
		w := postForm(s, "/sgpa", url.Values{
			"count":    {"1"},
			"grade_0":  {"O"},
			"credit_0": {"11"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must be between 1 and 10")
	})

	t.Run("unknown grade", func(t *testing.T) {
		w := postForm(s, "/sgpa", url.Values{
			"count":    {"1"},
			"grade_0":  {"Z"},
			"credit_0": {"3"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unknown grade")
	})

	t.Run("count zero", func(t *testing.T) {
		w := postForm(s, "/sgpa", url.Values{"count": {"0"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "subject count must be between 1 and 20")
	})

	assert.Equal(t, int64(2), s.Metrics().GetStats()["sgpa_calculations"])
	assert.Equal(t, int64(4), s.Metrics().GetStats()["rejected_inputs"])
}

func TestCGPAForm(t *testing.T) {
	t.Run("credit weighted", func(t *testing.T) {
		s := newTestServer(t)
		w := postForm(s, "/cgpa", url.Values{
			"count":        {"2"},
			"sgpa_0":       {"8"},
			"credit_sem_0": {"20"},
			"sgpa_1":       {"6"},
			"credit_sem_1": {"10"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Your CGPA is <strong>7.33</strong>")
		assert.Contains(t, body, "First Class")
		assert.Contains(t, body, "Sem 2")
	})

	t.Run("unweighted", func(t *testing.T) {
		s := newTestServer(t, func(c *config.Config) { c.CGPAPolicy = "unweighted" })
		w := postForm(s, "/cgpa", url.Values{
			"count":        {"2"},
			"sgpa_0":       {"8"},
			"credit_sem_0": {"20"},
			"sgpa_1":       {"6"},
			"credit_sem_1": {"10"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Your CGPA is <strong>7.00</strong>")
	})

	t.Run("sgpa above ten", func(t *testing.T) {
		s := newTestServer(t)
		w := postForm(s, "/cgpa", url.Values{
			"count":        {"1"},
			"sgpa_0":       {"10.5"},
			"credit_sem_0": {"20"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must be between 0 and 10")
	})
}

func TestReportForm(t *testing.T) {
	s := newTestServer(t)

	t.Run("download", func(t *testing.T) {
		w := postForm(s, "/report", url.Values{
			"mode":  {"sgpa"},
			"count": {"2"},
			"name":  {"Asha Rao"},
			"sgpa":  {"8.857142857142858"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Report_Card.pdf"`, w.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("missing name keeps results", func(t *testing.T) {
		w := postForm(s, "/report", url.Values{
			"mode":  {"cgpa"},
			"count": {"2"},
			"name":  {"   "},
			"cgpa":  {"7.499"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Please enter your name to generate PDF")
		assert.Contains(t, body, "Your CGPA is <strong>7.50</strong>")
		assert.Contains(t, body, "First Class", "classification uses the unrounded value")
		assert.Contains(t, body, "Semester 2")
	})

	t.Run("bad score", func(t *testing.T) {
		w := postForm(s, "/report", url.Values{"name": {"Asha"}, "sgpa": {"high"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "sgpa must be a number")
	})

	t.Run("scores outside the grade-point range", func(t *testing.T) {
		tests := []struct {
			name     string
			form     url.Values
			contains string
		}{
			{name: "nan", form: url.Values{"name": {"Asha"}, "sgpa": {"NaN"}}, contains: "sgpa must be between 0 and 10"},
			{name: "infinite", form: url.Values{"name": {"Asha"}, "cgpa": {"Inf"}}, contains: "cgpa must be between 0 and 10"},
			{name: "above ten", form: url.Values{"name": {"Asha"}, "sgpa": {"42"}}, contains: "sgpa must be between 0 and 10"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := postForm(s, "/report", tt.form)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), tt.contains)
				assert.NotContains(t, w.Body.String(), "Your SGPA is")
			})
		}
	})

	t.Run("name the fonts cannot print", func(t *testing.T) {
		w := postForm(s, "/report", url.Values{"name": {"आशा"}, "sgpa": {"9"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "name contains characters the report cannot print")
		assert.Contains(t, w.Body.String(), "Your SGPA is <strong>9.00</strong>")
	})

	assert.Equal(t, int64(1), s.Metrics().GetStats()["reports_generated"])
}

func TestSGPAAPI(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedCode   string
		expectedField  string
	}{
		{
			name:           "empty list",
			body:           SGPARequest{},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "EMPTY_INPUT",
		},
		{
			name: "grade and percent together",
			body: map[string]interface{}{
				"subjects": []map[string]interface{}{{"grade": "O", "percent": 95, "credits": 4}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "subjects[0]",
		},
		{
			name: "neither grade nor percent",
			body: map[string]interface{}{
				"subjects": []map[string]interface{}{{"credits": 4}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "subjects[0]",
		},
		{
			name: "credits above bound",
			body: map[string]interface{}{
				"subjects": []map[string]interface{}{{"grade": "O", "credits": 11}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "subjects[0].credits",
		},
		{
			name: "percent out of range",
			body: map[string]interface{}{
				"subjects": []map[string]interface{}{{"percent": 101, "credits": 3}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "subjects[0].percent",
		},
		{
			name:           "malformed body",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(s, "/api/v1/sgpa", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.expectedCode, body["error"])
			assert.NotEmpty(t, body["request_id"])
			if tt.expectedField != "" {
				fields, ok := body["fields"].(map[string]interface{})
				require.True(t, ok, "fields missing from %v", body)
				assert.Contains(t, fields, tt.expectedField)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		w := postJSON(s, "/api/v1/sgpa", SGPARequest{Subjects: []SubjectRequest{
			{Grade: "O", Credits: 4},
			{Grade: "a", Credits: 3},
		}})

		require.Equal(t, http.StatusOK, w.Code)
		var resp AggregateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sgpa", resp.Kind)
		assert.InDelta(t, 62.0/7.0, resp.Value, 1e-12)
		assert.Equal(t, "8.86", resp.Display)
		assert.Equal(t, "Distinction", string(resp.Classification))
		assert.Empty(t, resp.Policy)
		require.Len(t, resp.Chart, 2)
		assert.Equal(t, "A", resp.Chart[1].Category)
	})
}

func TestCGPAAPI(t *testing.T) {
	tests := []struct {
		name     string
		policy   string
		expected float64
	}{
		{name: "credit weighted", policy: "credit_weighted", expected: 220.0 / 30.0},
		{name: "unweighted", policy: "unweighted", expected: 7.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(c *config.Config) { c.CGPAPolicy = tt.policy })

			w := postJSON(s, "/api/v1/cgpa", map[string]interface{}{
				"semesters": []map[string]interface{}{
					{"sgpa": 8, "credits": 20},
					{"sgpa": 6, "credits": 10},
				},
			})

			require.Equal(t, http.StatusOK, w.Code)
			var resp AggregateResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.InDelta(t, tt.expected, resp.Value, 1e-12)
			assert.Equal(t, tt.policy, string(resp.Policy))
			assert.Len(t, resp.Chart, 2)
		})
	}

	t.Run("zero credits rejected by bounds", func(t *testing.T) {
		s := newTestServer(t)
		w := postJSON(s, "/api/v1/cgpa", map[string]interface{}{
			"semesters": []map[string]interface{}{{"sgpa": 8, "credits": 0}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Contains(t, body["fields"], "semesters[0].credits")
	})
}

func TestReportAPI(t *testing.T) {
	s := newTestServer(t)

	t.Run("pdf", func(t *testing.T) {
		sgpa := 9.0
		w := postJSON(s, "/api/v1/report", ReportRequest{Name: "<b>Asha</b>", SGPA: &sgpa})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "Report_Card.pdf")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("missing name", func(t *testing.T) {
		w := postJSON(s, "/api/v1/report", ReportRequest{Name: " "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "MISSING_NAME", body["error"])
		assert.Equal(t, "Please enter your name to generate PDF", body["message"])
	})

	t.Run("name too long", func(t *testing.T) {
		w := postJSON(s, "/api/v1/report", ReportRequest{Name: strings.Repeat("a", 101)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejected cards", func(t *testing.T) {
		tests := []struct {
			name string
			body map[string]interface{}
			code string
		}{
			{name: "sgpa above ten", body: map[string]interface{}{"name": "Asha", "sgpa": 42}, code: "OUT_OF_RANGE"},
			{name: "negative cgpa", body: map[string]interface{}{"name": "Asha", "cgpa": -3}, code: "OUT_OF_RANGE"},
			{name: "non-latin name", body: map[string]interface{}{"name": "आशा", "sgpa": 9}, code: "VALIDATION_ERROR"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := postJSON(s, "/api/v1/report", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.NotEqual(t, "application/pdf", w.Header().Get("Content-Type"))
				assert.Equal(t, tt.code, decode(t, w)["error"])
			})
		}
	})

	assert.Equal(t, int64(1), s.Metrics().GetStats()["reports_generated"])
}

func TestScaleAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := get(s, "/api/v1/scale")
	require.Equal(t, http.StatusOK, w.Code)
	var scale ScaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scale))
	assert.Len(t, scale.Scale.Grades, 8)
	assert.Equal(t, 20, scale.Bounds.MaxSubjects)
	assert.Equal(t, "credit_weighted", string(scale.Policy))

	postJSON(s, "/api/v1/cgpa", map[string]interface{}{
		"semesters": []map[string]interface{}{{"sgpa": 8, "credits": 20}},
	})

	w = get(s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["cgpa_calculations"])
	assert.Equal(t, float64(3), body["total_requests"], "the metrics request counts itself")
	assert.Contains(t, body, "compression")
	assert.Contains(t, body, "memory")
}

func TestIndexPage_Gzip(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/?mode=sgpa&count=5", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	page, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(page), "grade_4")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)
	w := get(s, "/health")
	assert.NotEmpty(t, w.Header().Get(monitoring.RequestIDHeader))
}
