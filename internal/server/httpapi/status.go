package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/server/identity"
)

// errorResponse is the uniform error body. Msg is safe for clients; internal
// details stay in the server log.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Phase string `json:"phase,omitempty"`
}

// statusOf maps a service error to an HTTP status and a client-safe body.
// The mapping is the single place where error kinds become status codes;
// handlers never pick codes ad hoc.
func statusOf(err error) (int, errorResponse) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: ve.Msg, Field: ve.Field}
	}

	var ce *identity.ChainError
	if errors.As(err, &ce) {
		resp := errorResponse{Phase: string(ce.Phase)}
		if ce.Retryable {
			resp.Error = "chain interaction failed, retry later"
			return http.StatusBadGateway, resp
		}
		if ce.Phase == identity.PhaseConfirming {
			resp.Error = "transaction not confirmed in time"
			return http.StatusGatewayTimeout, resp
		}
		resp.Error = "chain interaction failed"
		return http.StatusBadGateway, resp
	}

	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusConflict, errorResponse{Error: "email already registered"}
	case errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusConflict, errorResponse{Error: "username already taken"}
	case errors.Is(err, common.ErrDuplicateWalletAddress):
		return http.StatusConflict, errorResponse{Error: "wallet address already registered"}
	case errors.Is(err, common.ErrDuplicateIdentity):
		return http.StatusConflict, errorResponse{Error: "identity already exists"}
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: "token expired"}
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: "invalid token"}
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized"}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found"}
	case errors.Is(err, common.ErrDecryption):
		// not an auth failure: the stored envelope is unrecoverable
		return http.StatusInternalServerError, errorResponse{Error: "stored key cannot be decrypted"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}
