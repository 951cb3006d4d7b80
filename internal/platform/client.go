// Package platform wraps the hosting platform's project-domains API: the
// four operations the domain lifecycle needs, plus a typed error that
// preserves the platform's machine codes.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GiacomoGonzales/shopifree-domains/internal/domain"
)

const (
	DefaultBaseURL = "https://api.vercel.com"
	DefaultTimeout = 10 * time.Second
)

// Known machine codes returned when the platform rejects an attachment.
const (
	CodeDomainAlreadyInUse = "domain_already_in_use"
	CodeInvalidDomain      = "invalid_domain"
)

// Error is an upstream rejection or failure. Code carries the platform's
// machine code verbatim so callers can map it to user-facing messages.
type Error struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("platform: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is the platform saying it has no record of
// the requested domain.
func IsNotFound(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound
}

// ErrorCode returns the platform machine code carried by err, or "".
func ErrorCode(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Config holds the credentials and tuning for the platform client. Token and
// ProjectID are required; missing credentials are an operator error surfaced
// before any network call is attempted.
type Config struct {
	Token     string
	ProjectID string
	BaseURL   string
	Timeout   time.Duration
}

// Client is a stateless wrapper around the platform API, safe to share
// across concurrent requests.
type Client struct {
	token      string
	projectID  string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("platform: API token is required")
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("platform: project id is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		token:      cfg.Token,
		projectID:  cfg.ProjectID,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}, nil
}

type attachRequest struct {
	Name               string `json:"name"`
	Redirect           string `json:"redirect,omitempty"`
	RedirectStatusCode int    `json:"redirectStatusCode,omitempty"`
}

type wireChallenge struct {
	Type   string `json:"type"`
	Domain string `json:"domain"`
	Value  string `json:"value"`
}

type attachResponse struct {
	Verified     bool            `json:"verified"`
	Verification []wireChallenge `json:"verification"`
}

type rankedIPv4 struct {
	Rank  int      `json:"rank"`
	Value []string `json:"value"`
}

type rankedCNAME struct {
	Rank  int    `json:"rank"`
	Value string `json:"value"`
}

// The config endpoint answers with both plain values and ranked
// recommendation lists depending on domain state; both are decoded and
// canonicalized into domain.DomainConfig.
type configResponse struct {
	AValues          []string      `json:"aValues"`
	CNAMETarget      string        `json:"cnameTarget"`
	Misconfigured    *bool         `json:"misconfigured"`
	RecommendedIPv4  []rankedIPv4  `json:"recommendedIPv4"`
	RecommendedCNAME []rankedCNAME `json:"recommendedCNAME"`
}

type detailsResponse struct {
	Verification []wireChallenge `json:"verification"`
}

type errorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AttachDomain registers the domain on the project.
func (c *Client) AttachDomain(ctx context.Context, domainName string) (*domain.AttachResult, error) {
	data, status, err := c.do(ctx, http.MethodPost,
		"/v10/projects/"+url.PathEscape(c.projectID)+"/domains",
		attachRequest{Name: domainName})
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, decodeError(data, status)
	}

	var resp attachResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode attach response: %w", err)
	}
	return &domain.AttachResult{
		Verified:   resp.Verified,
		Challenges: toChallenges(resp.Verification),
	}, nil
}

// AttachAliasWithRedirect registers alias with a redirect to target.
func (c *Client) AttachAliasWithRedirect(ctx context.Context, alias, target string, redirectCode int) error {
	data, status, err := c.do(ctx, http.MethodPost,
		"/v10/projects/"+url.PathEscape(c.projectID)+"/domains",
		attachRequest{Name: alias, Redirect: target, RedirectStatusCode: redirectCode})
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return decodeError(data, status)
	}
	return nil
}

// GetDomainConfig fetches the recommended DNS configuration and the
// misconfigured flag for the domain.
func (c *Client) GetDomainConfig(ctx context.Context, domainName string) (*domain.DomainConfig, error) {
	data, status, err := c.do(ctx, http.MethodGet,
		"/v6/domains/"+url.PathEscape(domainName)+"/config", nil)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, decodeError(data, status)
	}

	var resp configResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode domain config: %w", err)
	}

	cfg := &domain.DomainConfig{
		ARecords:      resp.AValues,
		CNAMETarget:   resp.CNAMETarget,
		Misconfigured: resp.Misconfigured,
	}
	// Rank-1 recommendations win over the plain values.
	for _, rec := range resp.RecommendedIPv4 {
		if rec.Rank == 1 && len(rec.Value) > 0 {
			cfg.ARecords = rec.Value
			break
		}
	}
	for _, rec := range resp.RecommendedCNAME {
		if rec.Rank == 1 && rec.Value != "" {
			cfg.CNAMETarget = rec.Value
			break
		}
	}
	return cfg, nil
}

// GetDomainDetails fetches the project's view of the domain, including any
// pending verification challenges.
func (c *Client) GetDomainDetails(ctx context.Context, domainName string) (*domain.DomainDetails, error) {
	data, status, err := c.do(ctx, http.MethodGet,
		"/v9/projects/"+url.PathEscape(c.projectID)+"/domains/"+url.PathEscape(domainName), nil)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, decodeError(data, status)
	}

	var resp detailsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode domain details: %w", err)
	}
	return &domain.DomainDetails{Verification: toChallenges(resp.Verification)}, nil
}

// DetachDomain removes the domain from the project. A 404 means the domain
// is already gone and is treated as success.
func (c *Client) DetachDomain(ctx context.Context, domainName string) error {
	data, status, err := c.do(ctx, http.MethodDelete,
		"/v9/projects/"+url.PathEscape(c.projectID)+"/domains/"+url.PathEscape(domainName), nil)
	if err != nil {
		return err
	}
	if status/100 != 2 && status != http.StatusNotFound {
		return decodeError(data, status)
	}
	return nil
}

// do issues one API call with a bounded per-call timeout, retrying once on
// transport failure or 5xx. 4xx responses are returned without retry.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		data, status, err := c.doOnce(ctx, method, path, payload)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if status >= 500 && attempt == 0 {
			lastErr = decodeError(data, status)
			continue
		}
		return data, status, nil
	}
	return nil, 0, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create platform request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("platform request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read platform response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func decodeError(data []byte, status int) error {
	var resp errorResponse
	if err := json.Unmarshal(data, &resp); err == nil && resp.Error != nil {
		return &Error{Code: resp.Error.Code, Message: resp.Error.Message, StatusCode: status}
	}
	return &Error{StatusCode: status, Message: strings.TrimSpace(string(data))}
}

func toChallenges(in []wireChallenge) []domain.VerificationChallenge {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.VerificationChallenge, 0, len(in))
	for _, v := range in {
		out = append(out, domain.VerificationChallenge{Type: v.Type, Domain: v.Domain, Value: v.Value})
	}
	return out
}
