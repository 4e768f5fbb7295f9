package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/pkg/metrics"
)

const headerRequestID = "X-Request-ID"

// requestIDWithLogging 复用或生成 X-Request-ID，写回响应头，并为请求 ctx 绑定带 request_id 的 logger。
func requestIDWithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = logging.NewRequestID()
			r.Header.Set(headerRequestID, requestID)
		}
		w.Header().Set(headerRequestID, requestID)
		ctx := logging.WithRequest(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog 记录请求耗时与状态码，同时写入 prometheus 指标。
// endpoint 使用路由模板（如 /recommend），避免路径参数造成标签膨胀。
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		endpoint := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, endpoint, status, elapsed)

		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}
