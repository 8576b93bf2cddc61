// Package api serves the analysis engine over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/sqlscope/core"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/ingest"
	"github.com/huangsam/sqlscope/internal/outwriter"
	"github.com/huangsam/sqlscope/schema"
)

// Route paths served by the API.
const (
	EndPointAnalyze = "/api/analyze"
	EndPointCompare = "/api/compare"
	EndPointInspect = "/api/inspect"
	EndPointScoring = "/api/scoring"
	EndPointHealth  = "/healthz"
)

const shutdownTimeout = 5 * time.Second

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Reports []schema.ReportRecord `json:"reports"`
}

// CompareRequest is the body of POST /api/compare. Both fields must be
// present but may be empty.
type CompareRequest struct {
	SQLA *string `json:"sql_a" binding:"required"`
	SQLB *string `json:"sql_b" binding:"required"`
}

// InspectRequest is the body of POST /api/inspect.
type InspectRequest struct {
	SQL string `json:"sql" binding:"required"`
}

// Server holds the router and the dependencies shared by handlers.
type Server struct {
	cfg    *contract.Config
	mgr    contract.CacheManager
	router *gin.Engine
}

// NewServer builds the router with gin's logger and recovery middleware.
func NewServer(cfg *contract.Config, mgr contract.CacheManager) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{cfg: cfg, mgr: mgr, router: router}
	router.GET(EndPointHealth, s.HealthCheck)
	router.GET(EndPointScoring, s.Scoring)
	router.POST(EndPointAnalyze, s.Analyze)
	router.POST(EndPointCompare, s.Compare)
	router.POST(EndPointInspect, s.Inspect)
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// HealthCheck returns the health status of the service.
func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sqlscope",
	})
}

// Scoring returns the active scoring definitions.
func (s *Server) Scoring(c *gin.Context) {
	cfg := s.cfg.Clone()
	c.JSON(http.StatusOK, core.ScoringDefinitions(core.OptionsFromConfig(cfg), len(cfg.CustomWeights) > 0))
}

// Analyze runs a batch analysis on the posted reports.
func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cfg := s.cfg.Clone()
	cfg.Output = schema.JSONOut
	cfg.InputPath = ""

	start := time.Now()
	summary, err := core.AnalyzeRecords(core.WithSuppressHeader(c.Request.Context()), cfg, ingest.Normalize(req.Reports), s.mgr)
	if errors.Is(err, core.ErrNilRecords) {
		badRequest(c, err)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(http.StatusOK)
	if err := outwriter.WriteAnalysisResults(c.Writer, summary, cfg, time.Since(start)); err != nil {
		_ = c.Error(err)
	}
}

// Compare compares two posted SQL texts.
func (s *Server) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, core.CompareWith(*req.SQLA, *req.SQLB, s.cfg.ClusterOptions().Weights))
}

// Inspect scores one posted SQL text with lineage and recommendations.
func (s *Server) Inspect(c *gin.Context) {
	var req InspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, core.AnalyzeSQLWith(req.SQL, core.OptionsFromConfig(s.cfg).Weights))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
