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

package backend

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/sessions"
)

// Session defines an interface for a cookie-backed session used to persist
// small string values, such as the subscriber identity, across requests.
type Session interface {
	// SetMaxAge sets the Max Age of the session, after which the session is
	// no longer valid.
	SetMaxAge(age time.Duration) error

	// Set sets a key value pair in the session.
	Set(key, value string) error

	// Get retrieves the value for a given key in the session, reporting
	// whether the key was present.
	Get(key string) (string, bool)

	// Invalidate immediately invalidates the session by expiring its cookie
	// and discarding its values.
	Invalidate() error
}

// FiberSession implements the Session interface using a Fiber cookie based
// storage method. Values are stored as query-escaped JSON in the cookie value.
type FiberSession struct {
	cookie *fiber.Cookie     // Cookie used to store the session.
	values map[string]string // Key value pairs encoded into the cookie.
}

// NewFiberSession creates a FiberSession with the given id, parsing the given
// raw cookie value if non-empty.
func NewFiberSession(id, value string) (*FiberSession, error) {
	s := &FiberSession{cookie: &fiber.Cookie{Name: id, Path: "/"}, values: make(map[string]string)}

	if value == "" {
		return s, nil
	}

	ckValue, err := url.QueryUnescape(value)
	if err != nil {
		return nil, fmt.Errorf("unable to unescape cookie value: %w", err)
	}
	err = json.Unmarshal([]byte(ckValue), &s.values)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal cookie value: %w", err)
	}

	return s, nil
}

// SetMaxAge implements the SetMaxAge method of the Session interface by setting
// the maximum age of the cookie.
func (s *FiberSession) SetMaxAge(age time.Duration) error {
	s.cookie.MaxAge = int(age.Seconds())
	s.cookie.Expires = time.Now().Add(age)
	return nil
}

// Set implements the Set method of the Session interface by re-encoding the
// value map into the cookie value.
func (s *FiberSession) Set(key, value string) error {
	s.values[key] = value
	bytes, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("unable to marshal session values: %w", err)
	}
	s.cookie.Value = url.QueryEscape(string(bytes))
	return nil
}

// Get implements the Get method of the Session interface.
func (s *FiberSession) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Invalidate implements the Invalidate method of the Session interface by
// clearing the session values and writing an already-expired cookie.
func (s *FiberSession) Invalidate() error {
	s.values = make(map[string]string)
	s.cookie.Value = ""
	s.cookie.MaxAge = -1
	s.cookie.Expires = time.Unix(0, 0)
	return nil
}

// getCookie is a helper function which returns the fiber Cookie used to store the session.
func (s *FiberSession) getCookie() *fiber.Cookie {
	return s.cookie
}

// GorillaSession implements the Session interface using Gorilla Sessions.
type GorillaSession struct {
	session *sessions.Session
}

// NewGorillaSession wraps the given gorilla session.
func NewGorillaSession(session *sessions.Session) *GorillaSession {
	return &GorillaSession{session: session}
}

// SetMaxAge implements the SetMaxAge method of the Session interface by setting
// the maximum age of the session cookie.
func (s *GorillaSession) SetMaxAge(age time.Duration) error {
	s.session.Options.MaxAge = int(age.Seconds())
	return nil
}

// Set implements the Set method of the Session interface by adding the key,
// value pair to the gorilla session's Values map.
func (s *GorillaSession) Set(key, value string) error {
	s.session.Values[key] = value
	return nil
}

// Get implements the Get method of the Session interface.
func (s *GorillaSession) Get(key string) (string, bool) {
	v, ok := s.session.Values[key].(string)
	return v, ok
}

// Invalidate implements the Invalidate method of the Session interface by
// discarding the session values and setting the Max Age of the cookie to -1.
func (s *GorillaSession) Invalidate() error {
	s.session.Values = make(map[interface{}]interface{})
	s.session.Options.MaxAge = -1
	return nil
}
