package filter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ajiwo/askailimiter/strategies"
)

func rateLimitHeaders(res strategies.Result, now time.Time) [][2]string {
	headers := [][2]string{
		{"X-RateLimit-Limit", strconv.FormatUint(uint64(res.Limit), 10)},
		{"X-RateLimit-Remaining", strconv.FormatUint(uint64(res.Remaining), 10)},
	}
	if res.Reset.IsZero() {
		return headers
	}
	headers = append(headers, [2]string{"X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10)})
	if !res.Allowed() {
		secs := int64((res.RetryAfter(now) + time.Second - 1) / time.Second)
		headers = append(headers, [2]string{"Retry-After", strconv.FormatInt(secs, 10)})
	}
	return headers
}

// Middleware guards next with the filter. Each request gets its own
// HTTPContext from root.
func Middleware(root *RootContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hc := root.NewHTTPContext()
			if hc.OnHTTPRequestHeaders(r.Context(), responseWriterSender{w}) == ActionPause {
				return
			}
			if root.withHeaders {
				for _, h := range rateLimitHeaders(hc.Result(), hc.now) {
					w.Header().Set(h[0], h[1])
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriterSender struct {
	w http.ResponseWriter
}

func (s responseWriterSender) SendHTTPResponse(status int, headers [][2]string, body []byte) error {
	for _, h := range headers {
		s.w.Header().Set(h[0], h[1])
	}
	s.w.WriteHeader(status)
	_, err := s.w.Write(body)
	return err
}
