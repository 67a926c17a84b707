package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ghaggin/cfptracker/internal/config"
	"github.com/ghaggin/cfptracker/internal/model"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"

	pathToken  = "/api/token"
	pathUsers  = "/api/users/"
	pathMe     = "/api/users/me"
	pathCFPs   = "/api/cfps"
	pathNotify = "/api/notify"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Config *config.Config
}

func New(p Params) (*Client, error) {
	if _, err := url.Parse(p.Config.API.BaseURL); err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}

	timeout := p.Config.API.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: p.Config.API.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: p.Log,
	}, nil
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type NotifyRequest struct {
	CFPIDs    []int  `json:"cfp_ids"`
	ChannelID string `json:"channel_id,omitempty"`
}

type NotifyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SentTo  string `json:"sent_to"`
}

// IssueToken exchanges credentials for a bearer token.
func (c *Client) IssueToken(ctx context.Context, username, password string) (Token, error) {
	var tok Token
	err := c.do(ctx, http.MethodPost, pathToken, nil, Anonymous, tokenRequest{
		Username: username,
		Password: password,
	}, &tok)
	if err != nil {
		return Token{}, err
	}
	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: empty access token", ErrAuthRejected)
	}
	return tok, nil
}

// CreateUser registers a new account. The created representation is
// discarded.
func (c *Client) CreateUser(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, pathUsers, nil, Anonymous, createUserRequest{
		Email:    email,
		Password: password,
	}, nil)
}

func (c *Client) Me(ctx context.Context, cred Credential) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, pathMe, nil, cred, nil, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (c *Client) ListCFPs(ctx context.Context, cred Credential, query url.Values) ([]model.CFP, error) {
	cfps := []model.CFP{}
	if err := c.do(ctx, http.MethodGet, pathCFPs, query, cred, nil, &cfps); err != nil {
		return nil, err
	}
	return cfps, nil
}

// Notify asks the server to announce the given CFPs. The server may reply
// with an empty body, in which case the zero NotifyResult is returned.
func (c *Client) Notify(ctx context.Context, cred Credential, req NotifyRequest) (NotifyResult, error) {
	var res NotifyResult
	if err := c.do(ctx, http.MethodPost, pathNotify, nil, cred, req, &res); err != nil {
		return NotifyResult{}, err
	}
	return res, nil
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	cred Credential,
	body any,
	target any,
) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cred.apply(req.Header)

	log := c.log.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	log.Debug("request complete",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return parseResponse(resp, target)
}

type errorResponse struct {
	Detail  any    `json:"detail"`
	Message string `json:"message"`
}

func parseResponse(resp *http.Response, target any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		detail := string(b)
		var errResp errorResponse
		if err := json.Unmarshal(b, &errResp); err == nil {
			if s, ok := errResp.Detail.(string); ok && s != "" {
				detail = s
			} else if errResp.Message != "" {
				detail = errResp.Message
			}
		}

		return &StatusError{Code: resp.StatusCode, Detail: detail}
	}

	if target == nil {
		return nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
