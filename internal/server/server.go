// Package server - HTTP-панель управления: настройка профиля с загрузкой резюме,
// запуск и остановка прогона, статус и журнал откликов.
package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"easyApply/internal/config"
	"easyApply/internal/database"
	"easyApply/internal/logger"
	"easyApply/internal/runner"
)

//go:embed web/index.html
var indexHTML []byte

// Runner - фоновый прогон, которым управляет панель (см. runner.Controller).
type Runner interface {
	Start(ctx context.Context) (string, error)
	Stop() bool
	Status() runner.Snapshot
}

type Server struct {
	cfg     *config.Cfg
	log     *logger.Zap
	runs    Runner
	journal database.Journal
}

func New(cfg *config.Cfg, log *logger.Zap, runs Runner, journal database.Journal) *Server {
	if journal == nil {
		journal = database.Noop{}
	}
	return &Server{
		cfg:     cfg,
		log:     log,
		runs:    runs,
		journal: journal,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 16 << 20

	// Простейший лог-мидлвар
	r.Use(func(c *gin.Context) {
		s.log.Info("HTTP",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	api := r.Group("/api")
	api.GET("/setup", s.getSetup)
	api.POST("/setup", s.postSetup)
	api.GET("/status", s.status)
	api.POST("/start", s.start)
	api.POST("/stop", s.stop)
	api.GET("/applications", s.applications)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("Сервер запущен", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	s.log.Info("Сервер остановлен")
	return nil
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.runs.Status())
}

func (s *Server) start(c *gin.Context) {
	if s.runs.Status().Running {
		c.JSON(http.StatusConflict, gin.H{"error": "Run already in progress"})
		return
	}
	path := s.cfg.Paths.OverridesFile
	if !config.Configured(path) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Please complete Setup first (profile + CV upload) or set RESUME_PATH, CV_PATH and EASY_APPLY_EMAIL.",
		})
		return
	}

	// сохранённые через панель значения попадают в окружение до запуска
	if _, _, err := config.ApplyOverrides(path); err != nil {
		s.log.Error("apply overrides", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Start failed: " + err.Error()})
		return
	}

	id, err := s.runs.Start(c.Request.Context())
	if errors.Is(err, runner.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": "Run already in progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Start failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started", "run_id": id})
}

func (s *Server) stop(c *gin.Context) {
	if !s.runs.Stop() {
		c.JSON(http.StatusOK, gin.H{"status": "not_running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stop_requested"})
}

func (s *Server) applications(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad limit"})
			return
		}
		limit = min(n, 500)
	}

	apps, err := s.journal.ListApplications(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("db list applications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if apps == nil {
		apps = []database.Application{}
	}
	c.JSON(http.StatusOK, apps)
}
