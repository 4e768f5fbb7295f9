// Package server 提供推荐服务的 HTTP 接口：POST /recommend、GET /healthz、GET /metrics。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/recommend"
)

// Server 是推荐服务的 HTTP 外壳。
type Server struct {
	cfg    config.ServerConfig
	svc    *recommend.Service
	router chi.Router
}

// New 创建 Server 并注册路由。
func New(cfg config.ServerConfig, svc *recommend.Service) *Server {
	s := &Server{cfg: cfg, svc: svc}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Post("/recommend", s.handleRecommend)
	})
	return r
}

// Handler 返回根 http.Handler（测试中配合 httptest 使用）。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 监听 cfg.Addr，ctx 取消后在 ShutdownTimeout 内优雅退出。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	log := logging.Component("server")

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	log.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
