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

// Package backend abstracts the HTTP framework from the rest of the service,
// so that the content gate can run under fiber in production and under plain
// net/http in tests and other deployments.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// Handler is an interface used to abstract the functionality of different HTTP frameworks.
type Handler interface {
	// FormValue returns the value for the given field from the request body
	// or query string, or "" if absent.
	FormValue(string) string

	// Redirect creates a redirect to the specified location, with the given status code.
	Redirect(string, int) error

	// Context returns a context value which implements the context.Context interface.
	Context() context.Context

	// RequestURL returns the scheme, host and path of the current request as
	// a URL. The query string is deliberately omitted; callers that rebuild
	// URLs must not echo request parameters verbatim.
	RequestURL() *url.URL

	// LoadSession returns a Session based on the given id.
	LoadSession(string) (Session, error)

	// SaveSession saves the passed Session to the session store.
	SaveSession(Session) error
}

// FiberHandler is a fiber based implementation of the Handler interface.
//
// NOTE: FiberHandler uses FiberSessions and stores them in client side cookies.
type FiberHandler struct {
	Ctx *fiber.Ctx
}

// NewFiberHandler creates a new FiberHandler wrapping the given fiber context.
func NewFiberHandler(c *fiber.Ctx) Handler {
	return &FiberHandler{c}
}

// FormValue implements the Handler FormValue method by checking the request
// body form first and falling back to the query string, matching the
// net/http FormValue behavior.
func (h *FiberHandler) FormValue(key string) string {
	if v := h.Ctx.FormValue(key); v != "" {
		return v
	}
	return h.Ctx.Query(key)
}

// Redirect implements the Handler Redirect method by calling the Redirect method
// of the attached *fiber.Ctx.
func (h *FiberHandler) Redirect(location string, status int) error {
	return h.Ctx.Redirect(location, status)
}

// Context implements the Handler Context method by calling the *fiber.Ctx.Context
// method.
func (h *FiberHandler) Context() context.Context {
	return h.Ctx.Context()
}

// RequestURL implements the Handler RequestURL method from the fiber context's
// protocol, hostname and path.
func (h *FiberHandler) RequestURL() *url.URL {
	return &url.URL{Scheme: h.Ctx.Protocol(), Host: h.Ctx.Hostname(), Path: h.Ctx.Path()}
}

// LoadSession implements the Handler LoadSession method by parsing the cookie
// with the given id. A cookie that cannot be parsed is treated as absent,
// matching the gorilla path: the returned session starts fresh and replaces
// the bad cookie on save.
func (h *FiberHandler) LoadSession(id string) (Session, error) {
	sess, err := NewFiberSession(id, h.Ctx.Cookies(id))
	if err != nil {
		return NewFiberSession(id, "")
	}
	return sess, nil
}

// SaveSession implements the Handler SaveSession method by writing the
// session's cookie to the response.
func (h *FiberHandler) SaveSession(session Session) error {
	fs, ok := session.(*FiberSession)
	if !ok {
		return fmt.Errorf("incompatible session type, wanted FiberSession, got %v", reflect.TypeOf(session))
	}

	h.Ctx.Cookie(fs.getCookie())
	return nil
}

// NetHandler is a net/http based implementation of the Handler interface.
//
// NOTE: NetHandler uses GorillaSessions.
type NetHandler struct {
	w     http.ResponseWriter
	r     *http.Request
	store *sessions.CookieStore
}

// NewNetHandler creates a new NetHandler with the passed response writer,
// request and cookie store.
func NewNetHandler(w http.ResponseWriter, r *http.Request, store *sessions.CookieStore) Handler {
	return &NetHandler{w, r, store}
}

// NewCookieStore creates a gorilla cookie store for use with NetHandler.
// If key is nil a random key is generated, which is only suitable for
// development since sessions will not survive a restart.
func NewCookieStore(key []byte) *sessions.CookieStore {
	if key == nil {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{Path: "/", HttpOnly: true}
	return store
}

// Redirect implements the Handler Redirect method by calling http.Redirect.
func (h *NetHandler) Redirect(location string, status int) error {
	http.Redirect(h.w, h.r, location, status)
	return nil
}

// FormValue implements the Handler FormValue method by calling the FormValue method
// of the attached *http.Request.
func (h *NetHandler) FormValue(key string) string {
	return h.r.FormValue(key)
}

// Context implements the Handler Context method by calling the *http.Request.Context
// method.
func (h *NetHandler) Context() context.Context {
	return h.r.Context()
}

// RequestURL implements the Handler RequestURL method from the request's
// TLS state, host and path.
func (h *NetHandler) RequestURL() *url.URL {
	scheme := "http"
	if h.r.TLS != nil {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: h.r.Host, Path: h.r.URL.Path}
}

// LoadSession implements the Handler LoadSession method using the gorilla
// session store.
func (h *NetHandler) LoadSession(id string) (Session, error) {
	sess, err := h.store.Get(h.r, id)
	if err != nil {
		// A session that fails to decode is treated as absent; a fresh
		// session is still returned by gorilla in this case.
		if sess == nil {
			return nil, fmt.Errorf("unable to get session with ID: %s: %w", id, err)
		}
	}

	return NewGorillaSession(sess), nil
}

// SaveSession implements the Handler SaveSession method using the gorilla
// session store.
func (h *NetHandler) SaveSession(session Session) error {
	gs, ok := session.(*GorillaSession)
	if !ok {
		return fmt.Errorf("incompatible session type, wanted GorillaSession, got %v", reflect.TypeOf(session))
	}

	return h.store.Save(h.r, h.w, gs.session)
}
