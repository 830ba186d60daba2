package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // Minimum response size to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ContentTypes     []string // Content types to compress
}

// DefaultCompressionConfig compresses the calculator page and API JSON.
// PDFs are already deflated and pass through.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"text/html",
			"application/json",
			"text/plain",
		},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	cm := &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
	}
	cm.pool.New = func() interface{} {
		gz, err := gzip.NewWriterLevel(io.Discard, config.CompressionLevel)
		if err != nil {
			gz = gzip.NewWriter(io.Discard)
		}
		return gz
	}
	return cm
}

// Handler wraps the response writer so eligible bodies are gzipped.
// Bodies are held back until MinSize bytes arrive; shorter ones are sent
// as-is. Every eligible response carries Vary: Accept-Encoding, whether
// or not it ends up compressed.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		original := c.Writer
		gzw := &gzipResponseWriter{ResponseWriter: original, cm: cm, accepts: clientAcceptsGzip(c.Request)}
		c.Writer = gzw
		defer func() {
			gzw.finish()
			c.Writer = original
		}()

		c.Next()
	}
}

func clientAcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// gzipResponseWriter decides on the first bytes whether to compress.
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm      *CompressionMiddleware
	accepts bool

	buf      bytes.Buffer
	varied   bool
	decided  bool
	compress bool
	gz       *gzip.Writer
	out      *countingWriter
	raw      int64
}

func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	if !gzw.decided {
		h := gzw.Header()
		eligible := h.Get("Content-Encoding") == "" && gzw.cm.shouldCompress(h.Get("Content-Type"))
		if eligible && !gzw.varied {
			h.Add("Vary", "Accept-Encoding")
			gzw.varied = true
		}
		if !eligible || !gzw.accepts {
			gzw.decide(false)
		} else {
			gzw.buf.Write(data)
			if gzw.buf.Len() < gzw.cm.config.MinSize {
				return len(data), nil
			}
			gzw.decide(true)
			pending := gzw.buf.Bytes()
			gzw.buf.Reset()
			if _, err := gzw.writeBody(pending); err != nil {
				return 0, err
			}
			return len(data), nil
		}
	}
	return gzw.writeBody(data)
}

func (gzw *gzipResponseWriter) WriteString(s string) (int, error) {
	return gzw.Write([]byte(s))
}

// Written also counts bytes still held back, so error handlers do not
// write a second body.
func (gzw *gzipResponseWriter) Written() bool {
	return gzw.buf.Len() > 0 || gzw.ResponseWriter.Written()
}

func (gzw *gzipResponseWriter) Flush() {
	if gzw.gz != nil {
		_ = gzw.gz.Flush()
	}
	gzw.ResponseWriter.Flush()
}

func (gzw *gzipResponseWriter) writeBody(data []byte) (int, error) {
	gzw.raw += int64(len(data))
	if gzw.compress {
		return gzw.gz.Write(data)
	}
	return gzw.ResponseWriter.Write(data)
}

func (gzw *gzipResponseWriter) decide(compress bool) {
	gzw.decided = true
	gzw.compress = compress
	if !compress {
		return
	}

	h := gzw.Header()
	h.Set("Content-Encoding", "gzip")
	h.Del("Content-Length")

	gzw.out = &countingWriter{w: gzw.ResponseWriter}
	gzw.gz = gzw.cm.pool.Get().(*gzip.Writer)
	gzw.gz.Reset(gzw.out)
}

// finish flushes whatever is still buffered and records the outcome.
func (gzw *gzipResponseWriter) finish() {
	if !gzw.decided {
		if gzw.buf.Len() == 0 {
			return
		}
		gzw.decide(false)
		pending := gzw.buf.Bytes()
		gzw.buf.Reset()
		_, _ = gzw.writeBody(pending)
	}

	if !gzw.compress {
		gzw.cm.stats.RecordRequest(gzw.raw, gzw.raw, false)
		return
	}

	_ = gzw.gz.Close()
	gzw.cm.pool.Put(gzw.gz)
	gzw.gz = nil
	gzw.cm.stats.RecordRequest(gzw.raw, gzw.out.n, true)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, compressedSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += compressedSize
	} else {
		cs.CompressedBytes += originalSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	compressionRatio := float64(1)
	if cs.TotalBytes > 0 {
		compressionRatio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"compressed_bytes":    cs.CompressedBytes,
		"compression_ratio":   compressionRatio,
		"compression_savings": 1.0 - compressionRatio,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
