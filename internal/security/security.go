package security

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/ZanzyTHEbar/cgpa-calculator/internal/errors"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/monitoring"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxNameLength     int           `json:"max_name_length"`
	MaxBodyBytes      int64         `json:"max_body_bytes"`
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	AllowedOrigins    []string      `json:"allowed_origins"`
	RequestTimeout    time.Duration `json:"request_timeout"`
	LimiterIdleTTL    time.Duration `json:"limiter_idle_ttl"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxNameLength:     100,
		MaxBodyBytes:      16 << 10,
		MaxRequestsPerMin: 60,
		AllowedOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
		RequestTimeout:    10 * time.Second,
		LimiterIdleTTL:    time.Hour,
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SecurityMiddleware provides comprehensive security middleware
type SecurityMiddleware struct {
	config  SecurityConfig
	metrics *monitoring.Metrics

	mu         sync.Mutex
	ipLimiters map[string]*ipLimiter
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig, metrics *monitoring.Metrics) *SecurityMiddleware {
	return &SecurityMiddleware{
		config:     config,
		metrics:    metrics,
		ipLimiters: make(map[string]*ipLimiter),
	}
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeName strips markup and collapses whitespace in a student name
func (sm *SecurityMiddleware) SanitizeName(name string) string {
	name = tagPattern.ReplaceAllString(name, "")
	name = whitespacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ValidateName checks a sanitized student name. Blank names are the
// report formatter's concern and pass here.
func (sm *SecurityMiddleware) ValidateName(name string) error {
	if !utf8.ValidString(name) {
		return apperrors.NewValidationError("name contains invalid UTF-8 encoding")
	}
	if strings.ContainsRune(name, '\x00') {
		return apperrors.NewValidationError("name contains invalid characters")
	}
	if utf8.RuneCountInString(name) > sm.config.MaxNameLength {
		return apperrors.NewValidationError(
			"name exceeds maximum length of "+strconv.Itoa(sm.config.MaxNameLength)+" characters")
	}
	return nil
}

func (sm *SecurityMiddleware) limiterFor(ip string, now time.Time) *rate.Limiter {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, ok := sm.ipLimiters[ip]
	if !ok {
		rps := rate.Limit(float64(sm.config.MaxRequestsPerMin) / 60.0)
		burst := sm.config.MaxRequestsPerMin / 2
		if burst < 5 {
			burst = 5
		}
		entry = &ipLimiter{limiter: rate.NewLimiter(rps, burst)}
		sm.ipLimiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// RateLimitByIP implements per-IP rate limiting
func (sm *SecurityMiddleware) RateLimitByIP(c *gin.Context) {
	limiter := sm.limiterFor(c.ClientIP(), time.Now())

	if !limiter.Allow() {
		if sm.metrics != nil {
			sm.metrics.IncrementRateLimitIPBlock()
		}
		appErr := apperrors.NewRateLimitError("60")
		c.Header("Retry-After", "60")
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
		return
	}

	c.Next()
}

// LimitBody caps request bodies at MaxBodyBytes
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// CORS returns the gin-contrib CORS handler for the configured origins.
// With no origins configured, cross-origin requests get no CORS headers.
func (sm *SecurityMiddleware) CORS() gin.HandlerFunc {
	if len(sm.config.AllowedOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return cors.New(cors.Config{
		AllowOrigins:  sm.config.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", monitoring.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", monitoring.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	})
}

// Cleanup drops limiters for IPs idle longer than LimiterIdleTTL until ctx ends
func (sm *SecurityMiddleware) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sm.cleanupOldLimiters(now)
			}
		}
	}()
}

func (sm *SecurityMiddleware) cleanupOldLimiters(now time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for ip, entry := range sm.ipLimiters {
		if now.Sub(entry.lastSeen) > sm.config.LimiterIdleTTL {
			delete(sm.ipLimiters, ip)
			removed++
		}
	}
	return removed
}
