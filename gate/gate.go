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
	"net/url"

	"github.com/gofiber/fiber/v2/log"

	"github.com/coastpress/cloud/backend"
	"github.com/coastpress/cloud/content"
	"github.com/coastpress/cloud/model"
	"github.com/coastpress/cloud/subs"
)

// Compile-time checks that both service implementations satisfy the
// interface the gate depends on.
var (
	_ subs.Service = (*subs.Client)(nil)
	_ subs.Service = (*subs.DevService)(nil)
)

// User-visible notices produced by gating decisions. The two denial notices
// are deliberately distinct: one means the presented identity failed
// validation, the other that a valid subscriber lacks the entitlement.
const (
	NoticeInvalidIdentity = "We couldn't confirm your subscription. Please sign in again."
	NoticeNoAccess        = "Your subscription doesn't include this article."
)

// OutcomeKind enumerates the possible results of gating a page request.
type OutcomeKind int

const (
	// Unmodified means the article carries no resource requirement and is
	// served as is.
	Unmodified OutcomeKind = iota

	// FullContent means the visitor is entitled and sees the whole article.
	FullContent

	// PreviewWithCTA means the visitor sees the teaser plus a call to action.
	PreviewWithCTA

	// AuthForms means a verification code was just sent and the code entry
	// form renders in place of the article.
	AuthForms
)

// String returns a human readable outcome kind, for logging.
func (k OutcomeKind) String() string {
	switch k {
	case Unmodified:
		return "unmodified"
	case FullContent:
		return "full content"
	case PreviewWithCTA:
		return "preview with CTA"
	case AuthForms:
		return "auth forms"
	default:
		return "unknown"
	}
}

// Outcome is the gate's decision for one request. It is computed fresh per
// request and never persisted. The gate performs no redirect or response
// writing itself; the caller applies RedirectURL when set, and otherwise
// renders according to Kind.
type Outcome struct {
	Kind        OutcomeKind
	Title       string // Article title.
	Body        string // Full body or preview, depending on Kind.
	Notice      string // User-visible message, if any.
	FormToken   string // Anti-forgery token for the subscribe form.
	AuthToken   string // Verification token for the code entry form.
	RedirectURL string // Non-empty: redirect and render nothing.
}

// Gate is the top-level per-request decision point. It consults the content
// store for the page's requirement, runs the verification protocol when a
// protocol request is present, resolves and validates identity, and checks
// entitlements.
type Gate struct {
	content  content.Store
	ids      *IdentityStore
	auth     *AuthFlow
	checkers *Checkers
	tokens   *FormTokens
}

// New creates a Gate over the given content store and subscription service.
// If canonical is non-nil its scheme and host pin all redirect URLs.
func New(store content.Store, svc subs.Service, tokens *FormTokens, canonical *url.URL) *Gate {
	ids := NewIdentityStore(svc)
	return &Gate{
		content:  store,
		ids:      ids,
		auth:     NewAuthFlow(svc, ids, tokens, canonical),
		checkers: NewCheckers(svc),
		tokens:   tokens,
	}
}

// Checkers returns the gate's entitlement checker registry, so deployments
// can register checkers for additional resource types.
func (g *Gate) Checkers() *Checkers {
	return g.checkers
}

// Render decides the outcome for one article request. The gate never
// mutates the content store; its only side effects are identity cookie
// writes performed through the handler.
func (g *Gate) Render(ctx context.Context, contentID string, h backend.Handler) (Outcome, error) {
	art, err := g.content.Article(ctx, contentID)
	if err != nil {
		return Outcome{}, err
	}

	// Open articles bypass everything.
	if art.Resource == nil {
		return Outcome{Kind: Unmodified, Title: art.Title, Body: art.Body}, nil
	}

	// A verification protocol request runs before gating proper; a
	// successful verification ends this request with a redirect.
	res := g.auth.Run(ctx, h)
	if res.RedirectURL != "" {
		return Outcome{RedirectURL: res.RedirectURL}, nil
	}
	if res.CodeSent {
		return Outcome{
			Kind:      AuthForms,
			Title:     art.Title,
			Body:      Preview(art.Body, art.Marker),
			Notice:    res.Notice,
			AuthToken: res.Token,
		}, nil
	}
	if res.Handled {
		return g.previewCTA(art, res.Notice), nil
	}

	ri := g.ids.Get(h)
	if ri.Absent() {
		return g.previewCTA(art, ""), nil
	}

	var id model.VerifiedID
	if ri.Request != "" {
		id, err = g.ids.ValidateAndStore(ctx, h, ri.Request)
		if err != nil {
			log.Warnf("request-supplied identity failed validation: %v", err)
			return g.previewCTA(art, NoticeInvalidIdentity), nil
		}
	} else {
		id = ri.Cookie
	}

	if g.checkers.Check(ctx, id, *art.Resource) {
		return Outcome{Kind: FullContent, Title: art.Title, Body: art.Body}, nil
	}

	return g.previewCTA(art, NoticeNoAccess), nil
}

// previewCTA builds the preview outcome, with a fresh form token for the
// subscribe form rendered as the call to action.
func (g *Gate) previewCTA(art *model.Article, notice string) Outcome {
	tok, err := g.tokens.Issue()
	if err != nil {
		log.Errorf("could not issue form token: %v", err)
	}
	return Outcome{
		Kind:      PreviewWithCTA,
		Title:     art.Title,
		Body:      Preview(art.Body, art.Marker),
		Notice:    notice,
		FormToken: tok,
	}
}

// Identities returns the gate's identity store.
func (g *Gate) Identities() *IdentityStore {
	return g.ids
}
