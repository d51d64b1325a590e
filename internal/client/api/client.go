// Package api implements the HTTP client for the walletkeeper backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Account is the directory entry returned by the server.
type Account struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Username        string  `json:"username"`
	WalletAddress   string  `json:"wallet_address"`
	IdentityAddress *string `json:"identity_address,omitempty"`
}

// Identity is the on-chain identity record returned by the server.
type Identity struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult bundles the bearer token with the account it belongs to.
type LoginResult struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the backend HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			msg = body.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Register creates an account and returns its directory entry.
func (c *Client) Register(ctx context.Context, email, username, password string) (*Account, error) {
	req := map[string]string{"email": email, "username": username, "password": password}
	var out Account
	if err := c.do(ctx, http.MethodPost, "/api/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns a bearer token with the account summary.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*Account, error) {
	var out Account
	if err := c.do(ctx, http.MethodGet, "/api/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IssueIdentity provisions an on-chain identity for the authenticated account.
// Identity creation can take a while; the server blocks until the transaction
// is confirmed.
func (c *Client) IssueIdentity(ctx context.Context, token, name, symbol string) (*Identity, error) {
	req := map[string]string{"name": name, "symbol": symbol}
	var out Identity
	if err := c.do(ctx, http.MethodPost, "/api/identity", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportWalletKey re-verifies the password and returns the plaintext private
// key. The caller should wipe the returned value when done.
func (c *Client) ExportWalletKey(ctx context.Context, token, password string) ([]byte, error) {
	req := map[string]string{"password": password}
	var out struct {
		PrivateKey string `json:"private_key"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/wallet/key", token, req, &out); err != nil {
		return nil, err
	}
	return []byte(out.PrivateKey), nil
}
