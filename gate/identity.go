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

// Package gate decides, per page request, whether a visitor is entitled to
// view gated content, and runs the passwordless email verification protocol
// that upgrades an anonymous visitor to an authenticated subscriber.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/coastpress/cloud/backend"
	"github.com/coastpress/cloud/model"
	"github.com/coastpress/cloud/subs"
)

// CookieName names both the identity cookie and the request parameter that
// can carry an identity.
const CookieName = "subscriber_identity"

const (
	identityKey    = "id"                 // Session key holding the identity.
	identityMaxAge = 365 * 24 * time.Hour // Identity cookie lifetime.
)

// IdentityStore reads and writes the subscriber identity cookie. It knows
// nothing about the verification protocol; its one remote concern is
// ValidateAndStore, the sole path by which a request-supplied identity
// becomes trusted.
type IdentityStore struct {
	svc subs.Service
}

// NewIdentityStore creates an IdentityStore validating against svc.
func NewIdentityStore(svc subs.Service) *IdentityStore {
	return &IdentityStore{svc: svc}
}

// ResolvedIdentity is the result of Get: at most one of Request and Cookie
// is acted on by callers, with the request-supplied identity preferred.
type ResolvedIdentity struct {
	// Request is an identity supplied with the request itself. It is
	// unverified and must pass ValidateAndStore before anything is granted.
	Request model.UnverifiedID

	// Cookie is an identity from the identity cookie. It was verified when
	// written and is not re-checked on every call; a stale value is bounded
	// by the server-side entitlement check on every restricted view.
	Cookie model.VerifiedID
}

// Absent reports whether no identity accompanied the request at all.
func (r ResolvedIdentity) Absent() bool {
	return r.Request == "" && r.Cookie == ""
}

// Get returns the identity accompanying the request, preferring an explicit
// request parameter over the cookie.
func (s *IdentityStore) Get(h backend.Handler) ResolvedIdentity {
	var r ResolvedIdentity
	if v := h.FormValue(CookieName); v != "" {
		r.Request = model.UnverifiedID(v)
	}
	sess, err := h.LoadSession(CookieName)
	if err == nil {
		if v, ok := sess.Get(identityKey); ok && v != "" {
			r.Cookie = model.VerifiedID(v)
		}
	}
	return r
}

// Set writes the identity cookie with a one year lifetime and path "/".
func (s *IdentityStore) Set(h backend.Handler, id model.VerifiedID) error {
	sess, err := h.LoadSession(CookieName)
	if err != nil {
		return fmt.Errorf("could not load identity session: %w", err)
	}
	err = sess.Set(identityKey, string(id))
	if err != nil {
		return fmt.Errorf("could not set identity: %w", err)
	}
	err = sess.SetMaxAge(identityMaxAge)
	if err != nil {
		return fmt.Errorf("could not set identity cookie age: %w", err)
	}
	return h.SaveSession(sess)
}

// Forget overwrites the identity cookie with an already-expired timestamp,
// effectively deleting it. Forgetting an absent identity is a no-op that
// still succeeds.
func (s *IdentityStore) Forget(h backend.Handler) error {
	sess, err := h.LoadSession(CookieName)
	if err != nil {
		return fmt.Errorf("could not load identity session: %w", err)
	}
	err = sess.Invalidate()
	if err != nil {
		return fmt.Errorf("could not invalidate identity session: %w", err)
	}
	return h.SaveSession(sess)
}

// ValidateAndStore confirms a request-supplied identity against the
// subscription service. On success the identity is cached in the cookie and
// returned as verified; on any failure the cookie is cleared and the error
// returned. This is the only producer of a VerifiedID outside the
// verification-code exchange.
func (s *IdentityStore) ValidateAndStore(ctx context.Context, h backend.Handler, id model.UnverifiedID) (model.VerifiedID, error) {
	sub, err := s.svc.SubscriberByID(ctx, string(id))
	if err != nil {
		ferr := s.Forget(h)
		if ferr != nil {
			return "", fmt.Errorf("could not forget identity after failed validation: %v: %w", ferr, err)
		}
		return "", fmt.Errorf("could not validate identity: %w", err)
	}

	v := model.VerifiedID(sub.ID)
	err = s.Set(h, v)
	if err != nil {
		return "", fmt.Errorf("could not store validated identity: %w", err)
	}
	return v, nil
}
