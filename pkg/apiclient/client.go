// Package apiclient is the HTTP wrapper non-browser dashboard clients route
// every API call through. Responses come back as tagged results instead of
// the transport deciding navigation as a side effect; the one cross-cutting
// behavior it owns is the session guard, which clears local session state and
// requests a redirect to /login when the server answers 401 or 402.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/toychauz/toycha-backend/pkg/errors"
	"github.com/toychauz/toycha-backend/pkg/logger"
)

const (
	loginPath      = "/login"
	defaultTimeout = 15 * time.Second
)

// Kind tags a Result so callers switch on outcome instead of status codes.
type Kind int

const (
	// KindSuccess carries decoded data.
	KindSuccess Kind = iota
	// KindUnauthorized means the session guard fired; the caller should
	// render nothing and let navigation happen.
	KindUnauthorized
	// KindError carries the API error taxonomy code and message.
	KindError
)

// Result is the tagged outcome of one API call.
type Result struct {
	Kind       Kind
	StatusCode int
	// Data holds the raw success payload (the envelope's data field).
	Data json.RawMessage
	// Code and Message are set for KindError.
	Code    string
	Message string
	Details json.RawMessage
	// Err is set when the request never produced an HTTP response.
	Err error
}

// DecodeData unmarshals a success payload into dest.
func (r Result) DecodeData(dest any) error {
	if r.Kind != KindSuccess {
		return fmt.Errorf("no data on %v result", r.Kind)
	}
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, dest)
}

// SessionStore owns the client-side session flags the guard clears.
type SessionStore interface {
	Clear()
	Token() string
}

// Navigator abstracts route changes so the transport never touches UI state
// directly.
type Navigator interface {
	Location() string
	Navigate(path string)
}

// Params configure a Client.
type Params struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    SessionStore
	Navigator  Navigator
	Logger     *logger.Logger
}

// Client wraps an http.Client with envelope decoding and the session guard.
type Client struct {
	base    string
	http    *http.Client
	session SessionStore
	nav     Navigator
	logg    *logger.Logger
}

// New builds a Client.
func New(params Params) (*Client, error) {
	if params.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if params.Session == nil {
		return nil, fmt.Errorf("session store required")
	}
	if params.Navigator == nil {
		return nil, fmt.Errorf("navigator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		base:    strings.TrimRight(params.BaseURL, "/"),
		http:    httpClient,
		session: params.Session,
		nav:     params.Navigator,
		logg:    params.Logger,
	}, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) Result {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) Result {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) Result {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do issues one request and maps the response to a tagged Result.
func (c *Client) Do(ctx context.Context, method, path string, body any) Result {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Result{Kind: KindError, Code: string(pkgerrors.CodeInternal), Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return Result{Kind: KindError, Code: string(pkgerrors.CodeInternal), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logg.Error(ctx, "api request failed", err)
		return Result{Kind: KindError, Code: string(pkgerrors.CodeDependency), Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Kind: KindError, StatusCode: resp.StatusCode, Code: string(pkgerrors.CodeDependency), Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusPaymentRequired {
		c.expireSession(ctx)
		return Result{Kind: KindUnauthorized, StatusCode: resp.StatusCode}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var wire struct {
			Data json.RawMessage `json:"data"`
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &wire); err != nil {
				return Result{Kind: KindError, StatusCode: resp.StatusCode, Code: string(pkgerrors.CodeDependency), Message: "malformed response", Err: err}
			}
		}
		return Result{Kind: KindSuccess, StatusCode: resp.StatusCode, Data: wire.Data}
	}

	var wire struct {
		Error struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil || wire.Error.Code == "" {
		return Result{
			Kind:       KindError,
			StatusCode: resp.StatusCode,
			Code:       string(pkgerrors.CodeInternal),
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return Result{
		Kind:       KindError,
		StatusCode: resp.StatusCode,
		Code:       wire.Error.Code,
		Message:    wire.Error.Message,
		Details:    wire.Error.Details,
	}
}

// expireSession clears session flags and asks for /login. Already being on
// /login means the guard only clears state; repeated redirects would fight
// the login form.
func (c *Client) expireSession(ctx context.Context) {
	c.session.Clear()
	if c.nav.Location() == loginPath {
		return
	}
	c.logg.Warn(ctx, "session expired, redirecting to login")
	c.nav.Navigate(loginPath)
}
