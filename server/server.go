// Package server exposes the daily brief over HTTP: trigger a run, check
// its job status, print ad-hoc text and scrape Prometheus metrics. It is
// the always-on console for the printer box in the hallway.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fkorte/briefroll/config"
	"github.com/fkorte/briefroll/logger"
)

const shutdownTimeout = 10 * time.Second

// Deps are the pipeline entry points the console drives. RunBrief executes
// a full aggregate-compose-render run; PrintText pushes a snippet straight
// to the printer sink.
type Deps struct {
	RunBrief  func(ctx context.Context) (*Report, error)
	PrintText func(ctx context.Context, text string) error
}

// Server is the gin-backed HTTP console.
type Server struct {
	cfg    *config.Config
	log    logger.Logger
	deps   Deps
	engine *gin.Engine
	http   *http.Server
	met    *metrics
	jobs   *jobStore
}

// New wires routes, middleware and metrics. Call Run to serve.
func New(cfg *config.Config, log logger.Logger, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		cfg:    cfg,
		log:    log,
		deps:   deps,
		engine: engine,
		met:    newMetrics(),
		jobs:   newJobStore(),
	}
	engine.Use(requestLogger(log))
	engine.Use(gin.Recovery())

	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/metrics", gin.WrapH(s.met.handler()))

	api := engine.Group("/api")
	api.POST("/daily-brief", s.handleDailyBrief)
	api.GET("/jobs/:id", s.handleJob)
	api.POST("/print-text", s.handlePrintText)

	s.http = &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     engine,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 2 * time.Minute,
	}
	return s
}

// Engine exposes the router, mainly for handler tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves until the context is cancelled or SIGINT/SIGTERM arrives,
// then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http console listening", logger.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.log.Info("http console stopped")
	return nil
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDailyBrief(c *gin.Context) {
	if s.deps.RunBrief == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "brief pipeline not configured"})
		return
	}
	job := s.jobs.create()
	go s.runJob(job.ID)
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"status_url": "/api/jobs/" + job.ID,
	})
}

// runJob executes the pipeline detached from the request context: the
// brief must finish even when the curl that triggered it is gone.
func (s *Server) runJob(id string) {
	s.jobs.setRunning(id)
	report, err := s.deps.RunBrief(context.Background())
	if err != nil {
		s.log.Error("brief run failed", logger.String("job_id", id), logger.Error(err))
		s.jobs.fail(id, err)
		return
	}
	s.met.briefsGenerated.Inc()
	s.met.renderDuration.Observe(report.RenderDuration.Seconds())
	for _, src := range report.Degraded {
		s.met.sourceFailures.WithLabelValues(src).Inc()
	}
	if report.Printed {
		s.met.printJobs.WithLabelValues("ok").Inc()
	}
	s.jobs.finish(id, report)
	s.log.Info("brief run finished",
		logger.String("job_id", id),
		logger.String("run_id", report.RunID),
		logger.String("outcome", report.Outcome),
	)
}

func (s *Server) handleJob(c *gin.Context) {
	job, ok := s.jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

type printTextRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handlePrintText(c *gin.Context) {
	if s.deps.PrintText == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "printer not configured"})
		return
	}
	var req printTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `body must be {"text": "..."}`})
		return
	}
	if err := s.deps.PrintText(c.Request.Context(), req.Text); err != nil {
		s.met.printJobs.WithLabelValues("failed").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.met.printJobs.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "printed"})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		log.Info("http request",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}
