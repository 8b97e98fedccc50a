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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/coastpress/cloud/model"
)

func TestClientSubscriberByID(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/subscribers/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"id": "42", "email": "a@b.com"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAPIKey("k"))
	require.NoError(t, err)

	sub, err := c.SubscriberByID(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", sub.ID)
	assert.Equal(t, "a@b.com", sub.Email)
	assert.Equal(t, "Bearer k", gotAuth)
}

// With OAuth configured the client fetches a token from the token endpoint
// and presents it as the bearer credential on service calls.
func TestClientOAuth(t *testing.T) {
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"id": "42", "email": "a@b.com"})
	}))
	defer api.Close()

	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"oauth-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokens.Close()

	c, err := NewClient(api.URL, WithOAuth(&clientcredentials.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     tokens.URL,
	}))
	require.NoError(t, err)

	sub, err := c.SubscriberByID(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", sub.ID)
	assert.Equal(t, "Bearer oauth-token", gotAuth)
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotFound) },
		},
		{
			name:   "gone",
			status: http.StatusGone,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotFound) },
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"field":"email","reason":"malformed"}`,
			check: func(t *testing.T, err error) {
				var ve ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "email", ve.Field)
			},
		},
		{
			name:   "unprocessable without detail",
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, err error) {
				var ve ValidationError
				assert.ErrorAs(t, err, &ve)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnavailable) },
		},
		{
			name:   "service unavailable",
			status: http.StatusServiceUnavailable,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnavailable) },
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL)
			require.NoError(t, err)

			_, err = c.SubscriberByID(context.Background(), "42")
			require.Error(t, err)
			test.check(t, err)
		})
	}
}

// A network-level failure is unavailability, not a validation problem.
func TestClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening any more

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.SubscriberByID(context.Background(), "42")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClientSendVerificationCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/verifications", r.URL.Path)
		var req struct {
			Email     string `json:"email"`
			ReturnURL string `json:"return_url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)
		assert.Equal(t, "https://coastpress.net/article/tides", req.ReturnURL)
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	tok, err := c.SendVerificationCode(context.Background(), "a@b.com", "https://coastpress.net/article/tides")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestClientVerifyCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/verifications/verify", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"subscriber_id": "42"})
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL)
		require.NoError(t, err)

		id, err := c.VerifyCode(context.Background(), "tok-1", "123456")
		require.NoError(t, err)
		assert.Equal(t, model.VerifiedID("42"), id)
	})

	t.Run("unknown token is an invalid code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL)
		require.NoError(t, err)

		_, err = c.VerifyCode(context.Background(), "tok-1", "123456")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("missing arguments rejected locally", func(t *testing.T) {
		c, err := NewClient("https://example.invalid")
		require.NoError(t, err)

		_, err = c.VerifyCode(context.Background(), "", "123456")
		var ve ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestClientEntitlements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscribers/42/entitlements", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"entitlements": map[string][]string{"product": {"7", "9"}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ents, err := c.Entitlements(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, ents.Holds(model.Resource{Type: model.ResourceProduct, ID: "7"}))
	assert.False(t, ents.Holds(model.Resource{Type: model.ResourceProduct, ID: "8"}))
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.com", true},
		{"a.b+tag@c.d.org", true},
		{"", false},
		{"@b.com", false},
		{"a@", false},
		{"no-at-sign", false},
		{"a b@c.com", false},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, ValidEmail(test.email), test.email)
	}
}
