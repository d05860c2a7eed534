// Package fusionauth implements ports.IdentityProvider against a FusionAuth server:
// OAuth2 Authorization Code + PKCE for login and the REST API for user and two-factor management.
package fusionauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/ports"
	"golang.org/x/oauth2"
)

const maxResponseBytes = 1 << 20

var _ ports.IdentityProvider = (*Client)(nil)

// Config holds configuration for the FusionAuth client.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	APIKey       string
	RedirectURL  string
	Scopes       []string
	// Issuer is the tenant issuer checked on id_tokens. Empty skips the issuer check.
	Issuer     string
	HTTPClient *http.Client // Optional, defaults to a client with a 10s timeout
}

// Client talks to FusionAuth.
type Client struct {
	base       *url.URL
	apiKey     string
	oauth      *oauth2.Config
	httpClient *http.Client

	// verifier is set when the openid scope is requested.
	verifier *gooidc.IDTokenVerifier
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	c := &Client{
		base:       base,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  base.String() + "/oauth2/authorize",
				TokenURL: base.String() + "/oauth2/token",
			},
		},
	}

	if slices.Contains(cfg.Scopes, gooidc.ScopeOpenID) {
		keyCtx := gooidc.ClientContext(context.Background(), httpClient)
		keySet := gooidc.NewRemoteKeySet(keyCtx, base.String()+"/.well-known/jwks.json")
		c.verifier = gooidc.NewVerifier(cfg.Issuer, keySet, &gooidc.Config{
			ClientID:        cfg.ClientID,
			SkipIssuerCheck: cfg.Issuer == "",
		})
	}

	return c, nil
}

// AuthorizeURL builds the /oauth2/authorize URL with client_id, redirect_uri, scope, state and the S256 challenge.
func (c *Client) AuthorizeURL(in ports.AuthorizeInput) string {
	return c.oauth.AuthCodeURL(in.State,
		oauth2.SetAuthURLParam("code_challenge", in.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode posts the code and PKCE verifier to /oauth2/token.
func (c *Client) ExchangeCode(ctx context.Context, in ports.ExchangeInput) (ports.Token, error) {
	if in.Code == "" {
		return ports.Token{}, errors.New("authorization code is required")
	}
	if in.Verifier == "" {
		return ports.Token{}, errors.New("PKCE verifier is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.Exchange(ctx, in.Code, oauth2.VerifierOption(in.Verifier))
	if err != nil {
		return ports.Token{}, fmt.Errorf("exchange code for token: %w", err)
	}

	out := ports.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if raw, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = raw
	}

	if c.verifier != nil {
		if out.IDToken == "" {
			return ports.Token{}, errors.New("missing id_token in token response")
		}
		if _, verr := c.verifier.Verify(ctx, out.IDToken); verr != nil {
			return ports.Token{}, fmt.Errorf("verify id_token: %w", verr)
		}
	}
	return out, nil
}

type userResponse struct {
	User domainauth.User `json:"user"`
}

// FetchUser calls GET /api/user with the access token as bearer credential.
func (c *Client) FetchUser(ctx context.Context, accessToken string) (domainauth.User, error) {
	if accessToken == "" {
		return domainauth.User{}, errors.New("access token is required")
	}
	var resp userResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/user",
		auth:   "Bearer " + accessToken,
		out:    &resp,
	})
	if err != nil {
		return domainauth.User{}, fmt.Errorf("fetch user: %w", err)
	}
	return resp.User, nil
}

// RetrieveUser calls GET /api/user/{id} with the API key.
func (c *Client) RetrieveUser(ctx context.Context, userID string) (domainauth.User, error) {
	if userID == "" {
		return domainauth.User{}, errors.New("user ID is required")
	}
	var resp userResponse
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/user/" + url.PathEscape(userID),
		out:    &resp,
	}); err != nil {
		return domainauth.User{}, fmt.Errorf("retrieve user: %w", err)
	}
	return resp.User, nil
}

type patchUserBody struct {
	User patchUserFields `json:"user"`
}

type patchUserFields struct {
	Data map[string]any `json:"data,omitempty"`
}

// PatchUser calls PATCH /api/user/{id} with the API key.
func (c *Client) PatchUser(ctx context.Context, userID string, patch ports.UserPatch) error {
	if userID == "" {
		return errors.New("user ID is required")
	}
	body := patchUserBody{User: patchUserFields{Data: patch.Data}}
	if err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/api/user/" + url.PathEscape(userID),
		body:   body,
	}); err != nil {
		return fmt.Errorf("patch user: %w", err)
	}
	return nil
}

type secretResponse struct {
	Secret              string `json:"secret"`
	SecretBase32Encoded string `json:"secretBase32Encoded"`
}

// GenerateSecret calls GET /api/two-factor/secret with the API key.
func (c *Client) GenerateSecret(ctx context.Context) (ports.TwoFactorSecret, error) {
	var resp secretResponse
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/two-factor/secret",
		out:    &resp,
	}); err != nil {
		return ports.TwoFactorSecret{}, fmt.Errorf("generate secret: %w", err)
	}
	if resp.SecretBase32Encoded == "" {
		return ports.TwoFactorSecret{}, errors.New("generate secret: empty secret in response")
	}
	return ports.TwoFactorSecret(resp), nil
}

type enableTwoFactorBody struct {
	Code                string `json:"code"`
	Method              string `json:"method"`
	SecretBase32Encoded string `json:"secretBase32Encoded"`
}

// EnableTwoFactor calls POST /api/user/two-factor/{id}, which validates the code and adds the
// authenticator method to the user. FusionAuth answers 421 when the code does not match.
func (c *Client) EnableTwoFactor(ctx context.Context, in ports.EnableTwoFactorInput) error {
	if in.UserID == "" || in.Code == "" || in.Secret == "" {
		return errors.New("user ID, code and secret are required")
	}
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/user/two-factor/" + url.PathEscape(in.UserID),
		body: enableTwoFactorBody{
			Code:                in.Code,
			Method:              domainauth.TwoFactorMethodAuthenticator,
			SecretBase32Encoded: in.Secret,
		},
	}); err != nil {
		return fmt.Errorf("verify code: %w", err)
	}
	return nil
}

// DisableTwoFactor calls DELETE /api/user/two-factor/{id}?methodId=&code=.
func (c *Client) DisableTwoFactor(ctx context.Context, in ports.DisableTwoFactorInput) error {
	if in.UserID == "" || in.Code == "" {
		return errors.New("user ID and code are required")
	}
	q := url.Values{}
	q.Set("code", in.Code)
	if in.MethodID != "" {
		q.Set("methodId", in.MethodID)
	}
	if err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/user/two-factor/" + url.PathEscape(in.UserID),
		query:  q,
	}); err != nil {
		return fmt.Errorf("disable two-factor: %w", err)
	}
	return nil
}

type request struct {
	method string
	path   string
	query  url.Values
	// auth overrides the API key Authorization header.
	auth string
	body any
	out  any
}

func (c *Client) do(ctx context.Context, r request) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + r.path
	u.RawQuery = r.query.Encode()

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	} else {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if r.out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, r.out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// APIError is returned for non-2xx FusionAuth responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fusionauth: status %d", e.StatusCode)
	}
	return fmt.Sprintf("fusionauth: status %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
