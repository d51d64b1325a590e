package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server/config"
	"github.com/dmitrijs2005/walletkeeper/internal/server/models"
	"github.com/dmitrijs2005/walletkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	registerOut *services.AccountSummary
	registerErr error

	loginOut *services.LoginResult
	loginErr error

	validateOut *services.AccountSummary
	validateErr error

	getOut *services.AccountSummary
	getErr error

	keyOut []byte
	keyErr error
}

func (f *fakeAccounts) Register(ctx context.Context, email, username, password string) (*services.AccountSummary, error) {
	return f.registerOut, f.registerErr
}

func (f *fakeAccounts) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeAccounts) ValidateToken(ctx context.Context, token string) (*services.AccountSummary, error) {
	return f.validateOut, f.validateErr
}

func (f *fakeAccounts) GetByUsername(ctx context.Context, username string) (*services.AccountSummary, error) {
	return f.getOut, f.getErr
}

func (f *fakeAccounts) GetByWalletAddress(ctx context.Context, address string) (*services.AccountSummary, error) {
	return f.getOut, f.getErr
}

func (f *fakeAccounts) DecryptWalletKey(ctx context.Context, accountID, password string) ([]byte, error) {
	return f.keyOut, f.keyErr
}

type fakeIdentities struct {
	issueOut *models.Identity
	issueErr error

	getOut *models.Identity
	getErr error
}

func (f *fakeIdentities) Issue(ctx context.Context, accountID, name, symbol string) (*models.Identity, error) {
	return f.issueOut, f.issueErr
}

func (f *fakeIdentities) GetForAccount(ctx context.Context, accountID string) (*models.Identity, error) {
	return f.getOut, f.getErr
}

func (f *fakeIdentities) GetByAddress(ctx context.Context, address string) (*models.Identity, error) {
	return f.getOut, f.getErr
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func newTestServer(t *testing.T, accounts *fakeAccounts, identities *fakeIdentities, pinger *fakePinger) http.Handler {
	t.Helper()
	if accounts == nil {
		accounts = &fakeAccounts{}
	}
	if identities == nil {
		identities = &fakeIdentities{}
	}
	if pinger == nil {
		pinger = &fakePinger{}
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	s := NewServer(&config.Config{EndpointAddr: ":0"}, accounts, identities, pinger, logger)
	return s.router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type jsonBody = map[string]any

func testSummary() *services.AccountSummary {
	return &services.AccountSummary{
		ID:            "acc-1",
		Email:         "alice@example.com",
		Username:      "alice",
		WalletAddress: "0x00000000000000000000000000000000000000aa",
	}
}

func TestRegisterEndpoint_Created(t *testing.T) {
	h := newTestServer(t, &fakeAccounts{registerOut: testSummary()}, nil, nil)

	w := doJSON(t, h, http.MethodPost, "/api/register", jsonBody{
		"email": "alice@example.com", "username": "alice", "password": "Str0ng!pass",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp accountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterEndpoint_MissingFields(t *testing.T) {
	h := newTestServer(t, nil, nil, nil)

	w := doJSON(t, h, http.MethodPost, "/api/register", jsonBody{"email": "a@b.co"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	h := newTestServer(t, &fakeAccounts{registerErr: common.ErrDuplicateUsername}, nil, nil)

	w := doJSON(t, h, http.MethodPost, "/api/register", jsonBody{
		"email": "a@b.co", "username": "alice", "password": "Str0ng!pass",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint_Success(t *testing.T) {
	h := newTestServer(t, &fakeAccounts{
		loginOut: &services.LoginResult{Token: "tok-123", Account: testSummary()},
	}, nil, nil)

	w := doJSON(t, h, http.MethodPost, "/api/login", jsonBody{"username": "alice", "password": "pw"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok-123", resp.Token)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	h := newTestServer(t, &fakeAccounts{loginErr: common.ErrInvalidCredentials}, nil, nil)

	w := doJSON(t, h, http.MethodPost, "/api/login", jsonBody{"username": "alice", "password": "pw"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	h := newTestServer(t, nil, nil, nil)

	w := doJSON(t, h, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	h := newTestServer(t, &fakeAccounts{validateErr: common.ErrTokenExpired}, nil, nil)

	w := doJSON(t, h, http.MethodGet, "/api/me", nil, map[string]string{"Authorization": "Bearer old"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeAccounts{validateOut: testSummary()}, nil, nil)

	w := doJSON(t, h, http.MethodGet, "/api/me", nil, map[string]string{"Authorization": "Bearer tok"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp accountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acc-1", resp.ID)
}

func TestIssueIdentityEndpoint_Created(t *testing.T) {
	h := newTestServer(t,
		&fakeAccounts{validateOut: testSummary()},
		&fakeIdentities{issueOut: &models.Identity{
			Address: "0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0", Name: "Alice", Symbol: "ALC", AccountID: "acc-1",
		}}, nil)

	w := doJSON(t, h, http.MethodPost, "/api/identity", jsonBody{"name": "Alice", "symbol": "ALC"},
		map[string]string{"Authorization": "Bearer tok"})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp identityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ALC", resp.Symbol)
}

func TestExportWalletKeyEndpoint(t *testing.T) {
	h := newTestServer(t,
		&fakeAccounts{validateOut: testSummary(), keyOut: []byte("0xdeadbeef")}, nil, nil)

	w := doJSON(t, h, http.MethodPost, "/api/wallet/key", jsonBody{"password": "pw"},
		map[string]string{"Authorization": "Bearer tok"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0xdeadbeef")
}

func TestExportWalletKeyEndpoint_WrongPassword(t *testing.T) {
	h := newTestServer(t,
		&fakeAccounts{validateOut: testSummary(), keyErr: common.ErrInvalidCredentials}, nil, nil)

	w := doJSON(t, h, http.MethodPost, "/api/wallet/key", jsonBody{"password": "bad"},
		map[string]string{"Authorization": "Bearer tok"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil, nil, &fakePinger{})

	w := doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthz_ChainDown(t *testing.T) {
	h := newTestServer(t, nil, nil, &fakePinger{err: errors.New("connection refused")})

	w := doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

