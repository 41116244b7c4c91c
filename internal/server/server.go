// Package server exposes the engine's operation surface over HTTP. Every
// route maps 1:1 to one engine operation; the server holds no state of its
// own beyond the wiring.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thrustlabs/thrust-engine/internal/attest"
	"github.com/thrustlabs/thrust-engine/internal/curve"
	"github.com/thrustlabs/thrust-engine/internal/engine"
	"github.com/thrustlabs/thrust-engine/internal/state"
	"github.com/thrustlabs/thrust-engine/internal/vault"
)

type Server struct {
	engine *engine.Engine
	store  *state.Store
	vault  *vault.Vault
	logger *zap.Logger
	router *gin.Engine
}

func New(eng *engine.Engine, st *state.Store, v *vault.Vault, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: eng,
		store:  st,
		vault:  v,
		logger: logger.Named("server"),
		router: gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api/v1")

	admin := api.Group("/admin")
	admin.POST("/init", s.handleInit)
	admin.POST("/config", s.handleUpdateConfig)
	admin.POST("/reference-price", s.handleReferencePrice)

	pools := api.Group("/pools")
	pools.POST("", s.handleCreatePool)
	pools.GET("/:mint", s.handleGetPool)
	pools.POST("/:mint/buy", s.handleBuy)
	pools.POST("/:mint/sell", s.handleSell)
	pools.POST("/:mint/withdraw", s.handleWithdraw)

	api.GET("/users/:address", s.handleGetUser)
	api.POST("/accounts/:address/deposit", s.handleDeposit)
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// statusFor maps operation failures onto HTTP statuses: identity problems are
// 403, missing records 404, precondition conflicts 409, malformed or
// unverifiable input 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnauthorised):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrPoolNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUninitialized),
		errors.Is(err, engine.ErrAlreadyInitialized),
		errors.Is(err, engine.ErrPoolExists),
		errors.Is(err, engine.ErrAlreadyWithdrawn),
		errors.Is(err, engine.ErrTradeNotStarted),
		errors.Is(err, engine.ErrBondingCurveComplete),
		errors.Is(err, engine.ErrBondingCurveIncomplete):
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnsupportedAsset),
		errors.Is(err, attest.ErrInvalidSignature),
		errors.Is(err, attest.ErrInvalidMessage),
		errors.Is(err, attest.ErrInvalidPubkey),
		errors.Is(err, curve.ErrFutureAttestation),
		errors.Is(err, curve.ErrAmountOverflow):
		return http.StatusBadRequest
	case errors.Is(err, vault.ErrInsufficientFunds),
		errors.Is(err, curve.ErrInsufficientLiquidity),
		errors.Is(err, curve.ErrInsufficientTrades),
		errors.Is(err, curve.ErrExceedsWalletLimit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Operation failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
