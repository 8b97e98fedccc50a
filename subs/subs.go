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

// Package subs provides typed access to the subscription service, which owns
// subscriber records, entitlements and the passwordless email verification
// protocol. The package holds no business logic; callers decide what a
// failed or inconclusive answer means.
package subs

import (
	"context"
	"errors"
	"fmt"

	"github.com/coastpress/cloud/model"
)

// Errors returned by Service implementations. Transport failures, timeouts
// and 5xx responses all wrap ErrUnavailable so that callers can fail closed
// with a single errors.Is check.
var (
	ErrNotFound    = errors.New("subscriber not found")
	ErrInvalidCode = errors.New("verification code invalid or expired")
	ErrUnavailable = errors.New("subscription service unavailable")
)

// ValidationError reports a request that the subscription service would
// reject without being consulted, such as a malformed email address.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Service is the set of subscription service operations used by the content
// gate. All calls are synchronous and network-bound; none retry.
type Service interface {
	// SubscriberByID looks up a subscriber by identity.
	SubscriberByID(ctx context.Context, id string) (*model.Subscriber, error)

	// SubscriberByEmail looks up a subscriber by email address.
	SubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error)

	// SendVerificationCode asks the service to email a verification code to
	// the given address, returning the token the code must be submitted with.
	// The return URL is included in the email so the reader lands back on the
	// page they were trying to view.
	SendVerificationCode(ctx context.Context, email, returnURL string) (string, error)

	// VerifyCode exchanges a (token, code) pair for a verified subscriber
	// identity. The pair is single use; the exchange must not be assumed to
	// be idempotent.
	VerifyCode(ctx context.Context, token, code string) (model.VerifiedID, error)

	// Entitlements returns the set of resources the subscriber holds.
	Entitlements(ctx context.Context, id model.VerifiedID) (model.Entitlements, error)
}
