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
	"context"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/coastpress/cloud/backend"
	"github.com/coastpress/cloud/subs"
)

// Request parameters making up the verification protocol surface.
const (
	ParamEmail     = "email"      // Starts the flow: address to send a code to.
	ParamFormToken = "form_token" // Anti-forgery token accompanying ParamEmail.
	ParamToken     = "token"      // Server-issued verification token.
	ParamCode      = "code"       // Code the visitor received by email.
	ParamCacheBust = "nc"         // Appended to the post-verification redirect.
)

// User-visible notices produced by the verification flow.
const (
	NoticeCodeSent    = "We've emailed you a verification code. Enter it below to continue."
	NoticeCodeInvalid = "That code is incorrect or has expired. Please request a new one."
	NoticeTryAgain    = "Something went wrong on our end. Please try again."
)

// AuthFlow runs the passwordless email verification protocol. A request
// either starts the flow (email + form token), completes it (token + code),
// or is not a protocol request at all.
type AuthFlow struct {
	svc       subs.Service
	ids       *IdentityStore
	tokens    *FormTokens
	canonical *url.URL // Pinned scheme and host for redirects, may be nil.
}

// NewAuthFlow creates an AuthFlow. If canonical is non-nil, its scheme and
// host replace the request's own when redirect URLs are built, closing the
// open-redirect hole that trusting the Host header would leave.
func NewAuthFlow(svc subs.Service, ids *IdentityStore, tokens *FormTokens, canonical *url.URL) *AuthFlow {
	return &AuthFlow{svc: svc, ids: ids, tokens: tokens, canonical: canonical}
}

// Result reports what the auth flow did with a request. The flow never
// performs the redirect itself; a non-empty RedirectURL is applied by the
// caller after rendering is abandoned.
type Result struct {
	Handled     bool   // A protocol request was recognized and processed.
	CodeSent    bool   // A verification code was sent; render the code form.
	Token       string // Verification token to embed in the code form.
	RedirectURL string // Non-empty after successful verification.
	Notice      string // User-visible message, if any.
}

// Run processes any verification protocol request present. Requests that
// carry no protocol parameters, and email submissions whose anti-forgery
// token fails, return an unhandled Result: the caller proceeds with normal
// gating as if the parameters were never sent.
func (f *AuthFlow) Run(ctx context.Context, h backend.Handler) Result {
	token, code := h.FormValue(ParamToken), h.FormValue(ParamCode)
	if token != "" && code != "" {
		return f.verify(ctx, h, token, code)
	}

	email := h.FormValue(ParamEmail)
	if email == "" {
		return Result{}
	}

	if !f.tokens.Verify(h.FormValue(ParamFormToken)) {
		// Deliberately silent: revealing which forms accept submissions
		// would leak information to a forger.
		log.Infof("dropping email submission with bad form token")
		return Result{}
	}

	return f.sendCode(ctx, h, email)
}

// sendCode asks the subscription service to email a verification code and
// discards any stale identity so the eventual verification starts clean.
func (f *AuthFlow) sendCode(ctx context.Context, h backend.Handler, email string) Result {
	returnURL := f.currentURL(h)
	token, err := f.svc.SendVerificationCode(ctx, email, returnURL.String())
	var ve subs.ValidationError
	if errors.As(err, &ve) {
		return Result{Handled: true, Notice: "Please enter a valid email address."}
	}
	if err != nil {
		log.Errorf("could not send verification code: %v", err)
		return Result{Handled: true, Notice: NoticeTryAgain}
	}

	err = f.ids.Forget(h)
	if err != nil {
		log.Errorf("could not forget identity after sending code: %v", err)
	}

	return Result{Handled: true, CodeSent: true, Token: token, Notice: NoticeCodeSent}
}

// verify exchanges the (token, code) pair for a verified identity. On
// success the identity cookie is written and a cache-busted redirect back to
// the current page is returned, so the post-authentication view can never be
// served from a cache that predates it.
func (f *AuthFlow) verify(ctx context.Context, h backend.Handler, token, code string) Result {
	id, err := f.svc.VerifyCode(ctx, token, code)
	switch {
	case errors.Is(err, subs.ErrInvalidCode):
		return Result{Handled: true, Notice: NoticeCodeInvalid}
	case err != nil:
		log.Errorf("could not verify code: %v", err)
		return Result{Handled: true, Notice: NoticeTryAgain}
	}

	err = f.ids.Set(h, id)
	if err != nil {
		log.Errorf("could not store verified identity: %v", err)
		return Result{Handled: true, Notice: NoticeTryAgain}
	}

	u := f.currentURL(h)
	u.RawQuery = ParamCacheBust + "=" + uuid.NewString()
	return Result{Handled: true, RedirectURL: u.String()}
}

// currentURL rebuilds the current URL from scheme, host and path only,
// never echoing request query parameters. With a canonical URL configured
// the request's own scheme and host are ignored.
func (f *AuthFlow) currentURL(h backend.Handler) *url.URL {
	u := h.RequestURL()
	if f.canonical != nil {
		u.Scheme = f.canonical.Scheme
		u.Host = f.canonical.Host
	}
	return u
}
