package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
	"github.com/dmitrijs2005/walletkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

const accountKey = "account"

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type issueIdentityRequest struct {
	Name   string `json:"name" binding:"required"`
	Symbol string `json:"symbol" binding:"required"`
}

type exportKeyRequest struct {
	Password string `json:"password" binding:"required"`
}

type accountResponse struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Username        string  `json:"username"`
	WalletAddress   string  `json:"wallet_address"`
	IdentityAddress *string `json:"identity_address,omitempty"`
}

type identityResponse struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

func accountJSON(a *services.AccountSummary) accountResponse {
	return accountResponse{
		ID:              a.ID,
		Email:           a.Email,
		Username:        a.Username,
		WalletAddress:   a.WalletAddress,
		IdentityAddress: a.IdentityAddress,
	}
}

func identityJSON(i *models.Identity) identityResponse {
	return identityResponse{
		Address:   i.Address,
		Name:      i.Name,
		Symbol:    i.Symbol,
		AccountID: i.AccountID,
		CreatedAt: i.CreatedAt,
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, body := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"path", c.FullPath(), "error", err.Error())
	}
	c.AbortWithStatusJSON(status, body)
}

// authMiddleware resolves the bearer token and stores the account summary in
// the request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.fail(c, common.ErrorUnauthorized)
			return
		}

		account, err := s.accounts.ValidateToken(c.Request.Context(), token)
		if err != nil {
			s.fail(c, err)
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

func currentAccount(c *gin.Context) *services.AccountSummary {
	return c.MustGet(accountKey).(*services.AccountSummary)
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.chain.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "chain": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewValidationError("body", "invalid request body"))
		return
	}

	account, err := s.accounts.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, accountJSON(account))
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewValidationError("body", "invalid request body"))
		return
	}

	res, err := s.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   res.Token,
		"account": accountJSON(res.Account),
	})
}

func (s *Server) validateToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewValidationError("body", "invalid request body"))
		return
	}

	account, err := s.accounts.ValidateToken(c.Request.Context(), req.Token)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "account": accountJSON(account)})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, accountJSON(currentAccount(c)))
}

func (s *Server) accountByUsername(c *gin.Context) {
	account, err := s.accounts.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accountJSON(account))
}

func (s *Server) accountByWalletAddress(c *gin.Context) {
	account, err := s.accounts.GetByWalletAddress(c.Request.Context(), c.Param("address"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accountJSON(account))
}

func (s *Server) identityByAddress(c *gin.Context) {
	idn, err := s.identities.GetByAddress(c.Request.Context(), c.Param("address"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, identityJSON(idn))
}

func (s *Server) issueIdentity(c *gin.Context) {
	var req issueIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewValidationError("body", "invalid request body"))
		return
	}

	idn, err := s.identities.Issue(c.Request.Context(), currentAccount(c).ID, req.Name, req.Symbol)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, identityJSON(idn))
}

func (s *Server) myIdentity(c *gin.Context) {
	idn, err := s.identities.GetForAccount(c.Request.Context(), currentAccount(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, identityJSON(idn))
}

// exportWalletKey re-verifies the password and returns the plaintext private
// key. POST because the password travels in the body.
func (s *Server) exportWalletKey(c *gin.Context) {
	var req exportKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewValidationError("body", "invalid request body"))
		return
	}

	key, err := s.accounts.DecryptWalletKey(c.Request.Context(), currentAccount(c).ID, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer common.WipeByteArray(key)

	c.JSON(http.StatusOK, gin.H{"private_key": string(key)})
}
