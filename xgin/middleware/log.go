package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/xiaoshicae/x-one/xlog"
	"github.com/xiaoshicae/x-one/xutil"
)

const (
	FilteredValue = "***FILTERED***"

	maxRequestBody  = 256 * 1024
	maxResponseBody = 4 * 1024
)

var (
	sensitiveMu      sync.RWMutex
	sensitiveFields  = []string{"password", "token", "secret", "authorization", "api_key", "apikey", "access_token", "refresh_token"}
	sensitiveHeaders = []string{"authorization", "x-api-key", "x-auth-token", "cookie"}
)

// AddSensitiveFields 追加需要脱敏的 body 字段，大小写不敏感
func AddSensitiveFields(fields ...string) {
	sensitiveMu.Lock()
	defer sensitiveMu.Unlock()
	for _, f := range fields {
		sensitiveFields = append(sensitiveFields, strings.ToLower(f))
	}
}

// AddSensitiveHeaders 追加需要脱敏的请求头
func AddSensitiveHeaders(headers ...string) {
	sensitiveMu.Lock()
	defer sensitiveMu.Unlock()
	for _, h := range headers {
		sensitiveHeaders = append(sensitiveHeaders, strings.ToLower(h))
	}
}

func isSensitive(list []string, key string) bool {
	sensitiveMu.RLock()
	defer sensitiveMu.RUnlock()
	return slices.Contains(list, strings.ToLower(key))
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	if w.body.Len()+len(b) <= maxResponseBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// AccessLog 请求日志中间件
// skipPaths 以 "/" 结尾时按前缀匹配，否则精确匹配
func AccessLog(skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkip(c.Request.URL.Path, skipPaths) {
			c.Next()
			return
		}

		begin := time.Now()
		reqBody := snapshotBody(c.Request)
		w := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		latency := time.Since(begin)
		fields := map[string]any{
			"request_method":   c.Request.Method,
			"request_uri":      c.Request.RequestURI,
			"request_header":   xutil.ToJsonString(maskHeader(c.Request.Header)),
			"request_body":     maskBody(reqBody, c.Request.Header.Get("Content-Type")),
			"request_clientip": c.ClientIP(),
			"response_status":  c.Writer.Status(),
			"process_latency":  latency.Milliseconds(),
		}
		if isText(c.Writer.Header().Get("Content-Type")) && w.body.Len() > 0 {
			fields["response_body"] = w.body.String()
		}
		xlog.Info(c.Request.Context(), "[xgin] %s %s processed, status=%d, latency=%v",
			c.Request.Method, routeOf(c), c.Writer.Status(), latency, xlog.KVMap(fields))
	}
}

func shouldSkip(path string, skipPaths []string) bool {
	for _, p := range skipPaths {
		if strings.HasSuffix(p, "/") && strings.HasPrefix(path, p) || path == p {
			return true
		}
	}
	return false
}

// snapshotBody 读取请求 body 的前 maxRequestBody 字节并重新放回 request
func snapshotBody(req *http.Request) []byte {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	ct := req.Header.Get("Content-Type")
	if strings.Contains(ct, "multipart/form-data") || strings.Contains(ct, "application/octet-stream") {
		return []byte("[binary body omitted]")
	}

	head, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBody))
	if err != nil {
		return nil
	}
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), req.Body), req.Body}
	return head
}

func maskHeader(h http.Header) http.Header {
	res := make(http.Header, len(h))
	for k, v := range h {
		if isSensitive(sensitiveHeaders, k) {
			res[k] = []string{FilteredValue}
			continue
		}
		res[k] = v
	}
	return res
}

func maskBody(body []byte, contentType string) string {
	if len(body) == 0 {
		return ""
	}
	switch {
	case strings.Contains(contentType, "application/json"):
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return string(body)
		}
		return xutil.ToJsonString(maskJSON(v))
	case strings.Contains(contentType, "x-www-form-urlencoded"):
		pairs := strings.Split(string(body), "&")
		for i, p := range pairs {
			if k, _, ok := strings.Cut(p, "="); ok && isSensitive(sensitiveFields, k) {
				pairs[i] = k + "=" + FilteredValue
			}
		}
		return strings.Join(pairs, "&")
	default:
		return string(body)
	}
}

func maskJSON(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		for k, item := range vv {
			if isSensitive(sensitiveFields, k) {
				vv[k] = FilteredValue
				continue
			}
			vv[k] = maskJSON(item)
		}
	case []any:
		for i, item := range vv {
			vv[i] = maskJSON(item)
		}
	}
	return v
}

func isText(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "json") || strings.HasPrefix(ct, "text/") || strings.Contains(ct, "xml")
}
