// Package server exposes the simulator and assessor over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ligun0805/swapguard/internal/chainrpc"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

// GasReporter supplies /v1/gas.
type GasReporter interface {
	GasReport(ctx context.Context, blocks int, percentiles []int) (chainrpc.GasReport, error)
}

// Config wires the server's collaborators.
type Config struct {
	Reader             swapcore.ChainReader
	Gas                GasReporter
	ExpectedChainID    uint64
	DefaultSlippageBps int
	GasBlocks          int
	GasPercentiles     []int
	Log                *zap.Logger
}

// Server holds handler dependencies.
type Server struct {
	cfg Config
	log *zap.Logger
}

// New builds a Server. A nil logger is replaced by a no-op one.
func New(cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Server{cfg: cfg, log: cfg.Log}
}

// Router returns the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), CorrelationIDMiddleware(s.log))

	r.GET("/healthz", s.healthz)
	v1 := r.Group("/v1")
	{
		v1.POST("/simulate", s.simulate)
		v1.POST("/assess", s.assess)
		v1.POST("/preflight", s.preflight)
		v1.GET("/gas", s.gas)
	}
	return r
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	s.log.Warn("request rejected",
		zap.String("correlation_id", GetCorrelationID(c)),
		zap.Int("status", status),
		zap.Error(err),
	)
	c.JSON(status, ErrorResponse{Error: err.Error(), CorrelationID: GetCorrelationID(c)})
}

// logFor tags the server logger with the request's correlation id.
func (s *Server) logFor(ctx context.Context) *zap.Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		return s.log.With(zap.String("correlation_id", id))
	}
	return s.log
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
