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

package gate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// formAudience scopes form tokens to the subscribe form so they cannot be
// replayed against any other signed surface.
const formAudience = "subscribe-form"

// defaultFormTokenAge is how long an issued form token stays valid.
const defaultFormTokenAge = time.Hour

// FormTokens issues and verifies the anti-forgery tokens embedded in the
// subscribe form. Tokens are HMAC-SHA-256 signed JWTs; they carry no
// per-visitor state, so no server-side storage is needed.
type FormTokens struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewFormTokens creates a FormTokens signing with the given secret.
func NewFormTokens(secret []byte) (*FormTokens, error) {
	if len(secret) == 0 {
		return nil, errors.New("missing form token secret")
	}
	return &FormTokens{secret: secret, maxAge: defaultFormTokenAge, now: time.Now}, nil
}

// Issue returns a fresh signed form token.
func (t *FormTokens) Issue() (string, error) {
	now := t.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"aud": formAudience,
		"iat": now.Unix(),
		"exp": now.Add(t.maxAge).Unix(),
	})
	tokString, err := tok.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("error signing form token: %w", err)
	}
	return tokString, nil
}

// Verify reports whether the given form token was issued by us and has not
// expired. A failed verification is not an error to the caller; the auth
// flow treats it as a silent no-op.
func (t *FormTokens) Verify(tokString string) bool {
	if tokString == "" {
		return false
	}
	tok, err := jwt.Parse(tokString, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithAudience(formAudience), jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	return err == nil && tok.Valid
}
