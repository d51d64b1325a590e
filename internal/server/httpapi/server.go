// Package httpapi exposes the account, wallet, and identity operations over
// a JSON HTTP API. Handlers stay thin: they bind the request, call the
// service, and translate errors through a single status mapping.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/config"
	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
	"github.com/dmitrijs2005/walletkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AccountOperations is the slice of the account service the API depends on.
type AccountOperations interface {
	Register(ctx context.Context, email, username, password string) (*services.AccountSummary, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	ValidateToken(ctx context.Context, token string) (*services.AccountSummary, error)
	GetByUsername(ctx context.Context, username string) (*services.AccountSummary, error)
	GetByWalletAddress(ctx context.Context, address string) (*services.AccountSummary, error)
	DecryptWalletKey(ctx context.Context, accountID, password string) ([]byte, error)
}

// IdentityOperations is the slice of the identity service the API depends on.
type IdentityOperations interface {
	Issue(ctx context.Context, accountID, name, symbol string) (*models.Identity, error)
	GetForAccount(ctx context.Context, accountID string) (*models.Identity, error)
	GetByAddress(ctx context.Context, address string) (*models.Identity, error)
}

// Pinger reports whether the chain endpoint is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	httpServer *http.Server
	accounts   AccountOperations
	identities IdentityOperations
	chain      Pinger
	logger     logging.Logger
}

func NewServer(cfg *config.Config, accounts AccountOperations, identities IdentityOperations, chain Pinger, logger logging.Logger) *Server {
	s := &Server{
		accounts:   accounts,
		identities: identities,
		chain:      chain,
		logger:     logger,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.EndpointAddr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware())

	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	{
		api.POST("/register", s.register)
		api.POST("/login", s.login)
		api.POST("/token/validate", s.validateToken)

		api.GET("/accounts/username/:username", s.accountByUsername)
		api.GET("/accounts/wallet/:address", s.accountByWalletAddress)
		api.GET("/identities/:address", s.identityByAddress)

		authed := api.Group("", s.authMiddleware())
		{
			authed.GET("/me", s.me)
			authed.POST("/identity", s.issueIdentity)
			authed.GET("/identity", s.myIdentity)
			authed.POST("/wallet/key", s.exportWalletKey)
		}
	}

	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
