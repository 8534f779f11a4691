package httpmiddleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is echoed on every response.
	RequestIDHeader = "X-Request-Id"
	reqBodyLimit    = 8 * 1024

	truncatedBody   = "<truncated>"
	unparseableBody = "<unparseable>"
)

var redactedKeys = map[string]struct{}{
	"password":      {},
	"authorization": {},
	"token":         {},
	"secret":        {},
	"access":        {},
	"refresh":       {},
}

// Logging logs one line per request with a request id and the redacted JSON body.
func Logging(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, reqID)
		}
		c.Header(RequestIDHeader, reqID)

		var reqBody string
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") && c.Request.Body != nil {
			raw, err := io.ReadAll(io.LimitReader(c.Request.Body, reqBodyLimit+1))
			// the unread remainder still reaches the handler
			c.Request.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), c.Request.Body), Closer: c.Request.Body}
			switch {
			case err != nil:
			case len(raw) > reqBodyLimit:
				reqBody = truncatedBody
			default:
				reqBody = string(redactJSON(raw))
			}
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("req_id", reqID),
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Int64("dur_ms", time.Since(start).Milliseconds()),
			slog.String("remote", c.ClientIP()),
		}
		if reqBody != "" {
			attrs = append(attrs, slog.String("req_body", reqBody))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		base.LogAttrs(c.Request.Context(), level, "http_request", attrs...)
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// redactJSON masks credential-bearing keys. Input that does not parse is
// replaced by a placeholder, since its secrets cannot be located.
func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return []byte(unparseableBody)
	}
	out, err := json.Marshal(scrub(doc))
	if err != nil {
		return []byte(unparseableBody)
	}
	return out
}

func scrub(x any) any {
	switch v := x.(type) {
	case map[string]any:
		for k, val := range v {
			if _, secret := redactedKeys[strings.ToLower(k)]; secret {
				v[k] = "***redacted***"
				continue
			}
			v[k] = scrub(val)
		}
		return v
	case []any:
		for i := range v {
			v[i] = scrub(v[i])
		}
		return v
	default:
		return v
	}
}
