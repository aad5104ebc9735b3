package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/hr-attendance-api/internal/adapters/http/handler"
	"github.com/ogurasousui/hr-attendance-api/internal/platform/config"
)

const shutdownTimeout = 10 * time.Second

// Server は HTTP サーバーのライフサイクルを管理します。
type Server struct {
	httpServer *http.Server
}

// New は勤怠・給与のハンドラを登録した HTTP サーバーを構築します。
func New(cfg config.ServerConfig, attendance *handler.AttendanceHandler, payroll *handler.PayrollHandler) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}

	attendance.Register(router)
	payroll.Register(router)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: router,
		},
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると
// Graceful Shutdown します。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve HTTP on %s: %w", s.httpServer.Addr, err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}
