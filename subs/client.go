/*
LICENSE
  Copyright (C) 2026 the CoastPress project

  This is free software: you can redistribute it and/or modify it
  under the terms of the GNU General Public License as published by
  the Free Software Foundation, either version 3 of the License, or
  (at your option) any later version.

  It is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses/.
*/

package subs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/coastpress/cloud/model"
)

// defaultTimeout bounds every subscription service call. A timeout surfaces
// as ErrUnavailable and is handled fail closed by the caller.
const defaultTimeout = 10 * time.Second

// Client is a Service implementation that talks to the subscription service
// over HTTPS. It performs no retries and keeps no state between calls.
type Client struct {
	base   string       // Base URL of the subscription service API.
	apiKey string       // Bearer credential, unless OAuth is configured.
	hc     *http.Client // Underlying HTTP client.
}

// ClientOption is a functional option supplied to NewClient.
type ClientOption func(*Client) error

// WithAPIKey authenticates requests with a static bearer credential.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) error {
		if key == "" {
			return errors.New("empty API key")
		}
		c.apiKey = key
		return nil
	}
}

// WithOAuth authenticates requests using the OAuth2 client credentials flow.
// The token source's HTTP client replaces the default one, preserving the
// call timeout.
func WithOAuth(cfg *clientcredentials.Config) ClientOption {
	return func(c *Client) error {
		if cfg == nil {
			return errors.New("nil OAuth config")
		}
		hc := cfg.Client(context.Background())
		hc.Timeout = c.hc.Timeout
		c.hc = hc
		return nil
	}
}

// WithTimeout overrides the default 10s call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("non-positive timeout")
		}
		c.hc.Timeout = d
		return nil
	}
}

// NewClient creates a subscription service client for the given base URL.
func NewClient(base string, options ...ClientOption) (*Client, error) {
	if base == "" {
		return nil, errors.New("empty base URL")
	}
	c := &Client{
		base: strings.TrimSuffix(base, "/"),
		hc:   &http.Client{Timeout: defaultTimeout},
	}

	for i, opt := range options {
		err := opt(c)
		if err != nil {
			return nil, fmt.Errorf("could not apply option # %d: %w", i, err)
		}
	}

	return c, nil
}

// wireSubscriber is the JSON shape of a subscriber record on the wire.
type wireSubscriber struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	Created    time.Time `json:"created"`
}

func (w *wireSubscriber) subscriber() *model.Subscriber {
	return &model.Subscriber{
		ID:         w.ID,
		Email:      w.Email,
		GivenName:  w.GivenName,
		FamilyName: w.FamilyName,
		Created:    w.Created,
	}
}

// SubscriberByID implements the Service SubscriberByID method.
func (c *Client) SubscriberByID(ctx context.Context, id string) (*model.Subscriber, error) {
	if id == "" {
		return nil, ValidationError{Field: "id", Reason: "empty"}
	}
	var w wireSubscriber
	err := c.get(ctx, "/v1/subscribers/"+url.PathEscape(id), &w)
	if err != nil {
		return nil, fmt.Errorf("get subscriber %s: %w", id, err)
	}
	return w.subscriber(), nil
}

// SubscriberByEmail implements the Service SubscriberByEmail method.
func (c *Client) SubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	if !ValidEmail(email) {
		return nil, ValidationError{Field: "email", Reason: "malformed"}
	}
	var w wireSubscriber
	err := c.get(ctx, "/v1/subscribers?email="+url.QueryEscape(email), &w)
	if err != nil {
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	return w.subscriber(), nil
}

// SendVerificationCode implements the Service SendVerificationCode method.
func (c *Client) SendVerificationCode(ctx context.Context, email, returnURL string) (string, error) {
	if !ValidEmail(email) {
		return "", ValidationError{Field: "email", Reason: "malformed"}
	}
	req := struct {
		Email     string `json:"email"`
		ReturnURL string `json:"return_url"`
	}{email, returnURL}
	var resp struct {
		Token string `json:"token"`
	}
	err := c.post(ctx, "/v1/verifications", req, &resp)
	if err != nil {
		return "", fmt.Errorf("send verification code: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("send verification code: empty token: %w", ErrUnavailable)
	}
	return resp.Token, nil
}

// VerifyCode implements the Service VerifyCode method. The identity it
// returns came directly from the service and is therefore verified.
func (c *Client) VerifyCode(ctx context.Context, token, code string) (model.VerifiedID, error) {
	if token == "" || code == "" {
		return "", ValidationError{Field: "code", Reason: "missing token or code"}
	}
	req := struct {
		Token string `json:"token"`
		Code  string `json:"code"`
	}{token, code}
	var resp struct {
		SubscriberID string `json:"subscriber_id"`
	}
	err := c.post(ctx, "/v1/verifications/verify", req, &resp)
	if err != nil {
		// The service answers 404 or 410 for an unknown, expired or already
		// used token; all collapse to ErrInvalidCode for the caller.
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCode
		}
		return "", fmt.Errorf("verify code: %w", err)
	}
	if resp.SubscriberID == "" {
		return "", fmt.Errorf("verify code: empty subscriber ID: %w", ErrUnavailable)
	}
	return model.VerifiedID(resp.SubscriberID), nil
}

// Entitlements implements the Service Entitlements method.
func (c *Client) Entitlements(ctx context.Context, id model.VerifiedID) (model.Entitlements, error) {
	var resp struct {
		Entitlements model.Entitlements `json:"entitlements"`
	}
	err := c.get(ctx, "/v1/subscribers/"+url.PathEscape(string(id))+"/entitlements", &resp)
	if err != nil {
		return nil, fmt.Errorf("get entitlements: %w", err)
	}
	return resp.Entitlements, nil
}

// get performs a GET request and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	return c.do(req, dst)
}

// post performs a POST request with a JSON body and decodes the JSON
// response into dst.
func (c *Client) post(ctx context.Context, path string, body, dst any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dst)
}

// do sends the request, maps the response status onto the package error
// taxonomy, and decodes a 2xx body into dst.
func (c *Client) do(req *http.Request, dst any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		err = json.NewDecoder(resp.Body).Decode(dst)
		if err != nil {
			return fmt.Errorf("could not decode response: %v: %w", err, ErrUnavailable)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		var ve struct {
			Field  string `json:"field"`
			Reason string `json:"reason"`
		}
		if json.NewDecoder(resp.Body).Decode(&ve) == nil && ve.Field != "" {
			return ValidationError{Field: ve.Field, Reason: ve.Reason}
		}
		return ValidationError{Field: "request", Reason: resp.Status}
	default:
		return fmt.Errorf("unexpected status %s: %w", resp.Status, ErrUnavailable)
	}
}

// ValidEmail performs the minimal well-formedness check applied before a
// remote call is made. The subscription service remains the authority on
// whether an address is deliverable.
func ValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
