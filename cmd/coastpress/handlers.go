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

package main

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/coastpress/cloud/backend"
	"github.com/coastpress/cloud/content"
	"github.com/coastpress/cloud/gate"
)

// healthHandler reports service health.
func (svc *service) healthHandler(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// articleHandler renders one article, gated according to the visitor's
// entitlements. Verification protocol parameters on this route are handled
// by the gate, which may answer with a redirect instead of a page.
func (svc *service) articleHandler(c *fiber.Ctx) error {
	h := backend.NewFiberHandler(c)

	out, err := svc.gate.Render(c.Context(), c.Params("id"), h)
	if errors.Is(err, content.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no such article")
	}
	if err != nil {
		return logAndReturnError(c, fmt.Sprintf("could not render article: %v", err))
	}

	if out.RedirectURL != "" {
		return c.Redirect(out.RedirectURL, fiber.StatusFound)
	}

	if svc.debug {
		log.Debugf("article %s outcome: %v", c.Params("id"), out.Kind)
	}

	c.Type("html")
	return c.SendString(renderPage(out))
}

// renderPage builds the article page for the given outcome. Article bodies
// are trusted HTML from the content store; everything else is escaped.
func renderPage(out gate.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html><head><title>%s</title></head><body>\n", esc(out.Title))
	fmt.Fprintf(&b, "<h1>%s</h1>\n", esc(out.Title))
	if out.Notice != "" {
		fmt.Fprintf(&b, "<p class=\"notice\">%s</p>\n", esc(out.Notice))
	}
	b.WriteString(out.Body)
	b.WriteString("\n")

	switch out.Kind {
	case gate.PreviewWithCTA:
		fmt.Fprintf(&b, subscribeForm, esc(out.FormToken))
	case gate.AuthForms:
		fmt.Fprintf(&b, codeForm, esc(out.AuthToken))
	}

	b.WriteString("</body></html>\n")
	return b.String()
}

// subscribeForm is the call to action rendered under a preview. The email
// submission carries the anti-forgery form token.
const subscribeForm = `<form method="post">
<label>Email <input type="email" name="email" required></label>
<input type="hidden" name="form_token" value="%s">
<button type="submit">Read with your subscription</button>
</form>
`

// codeForm collects the emailed verification code, echoing the server-issued
// token back with it.
const codeForm = `<form method="post">
<label>Verification code <input type="text" name="code" required></label>
<input type="hidden" name="token" value="%s">
<button type="submit">Verify</button>
</form>
`

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

// logAndReturnError logs the given message and returns an internal server
// error carrying a generic message, keeping internals out of responses.
func logAndReturnError(c *fiber.Ctx, msg string) error {
	log.Error(msg)
	return fiber.NewError(fiber.StatusInternalServerError, "internal error")
}
