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

package gate_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastpress/cloud/gate"
)

func TestFormTokensRoundTrip(t *testing.T) {
	tokens, err := gate.NewFormTokens(testSecret)
	require.NoError(t, err)

	tok, err := tokens.Issue()
	require.NoError(t, err)
	assert.True(t, tokens.Verify(tok))
}

func TestFormTokensRejects(t *testing.T) {
	tokens, err := gate.NewFormTokens(testSecret)
	require.NoError(t, err)

	other, err := gate.NewFormTokens([]byte("a different secret entirely!!..."))
	require.NoError(t, err)
	forged, err := other.Issue()
	require.NoError(t, err)

	// An expired token signed with the right secret.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"aud": "subscribe-form",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredString, err := expired.SignedString(testSecret)
	require.NoError(t, err)

	// A token for another audience signed with the right secret.
	wrongAud := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"aud": "something-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	wrongAudString, err := wrongAud.SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name string
		tok  string
	}{
		{name: "empty", tok: ""},
		{name: "garbage", tok: "not.a.jwt"},
		{name: "wrong secret", tok: forged},
		{name: "expired", tok: expiredString},
		{name: "wrong audience", tok: wrongAudString},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.False(t, tokens.Verify(test.tok))
		})
	}
}

func TestNewFormTokensRequiresSecret(t *testing.T) {
	_, err := gate.NewFormTokens(nil)
	assert.Error(t, err)
}
