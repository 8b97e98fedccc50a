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
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coastpress/cloud/mailer"
	"github.com/coastpress/cloud/model"
)

// codeTTL is how long a dev verification code stays valid.
const codeTTL = 15 * time.Minute

// pending is an outstanding verification challenge.
type pending struct {
	email   string
	code    string
	used    bool
	expires time.Time
}

// DevService is an in-process Service implementation used in standalone mode
// and in tests. Subscribers live in memory, verification codes are single
// use, and code delivery goes through a Mailer, which logs rather than sends
// when it has no API keys.
type DevService struct {
	mutex         sync.Mutex
	subscribers   map[string]*model.Subscriber  // Keyed by subscriber ID.
	byEmail       map[string]string             // Email to subscriber ID.
	entitlements  map[string]model.Entitlements // Keyed by subscriber ID.
	verifications map[string]*pending           // Keyed by verification token.
	mailer        *mailer.Mailer
	now           func() time.Time
}

// NewDevService creates an empty DevService delivering codes via m, which
// may be nil, in which case codes are only logged.
func NewDevService(m *mailer.Mailer) *DevService {
	return &DevService{
		subscribers:   make(map[string]*model.Subscriber),
		byEmail:       make(map[string]string),
		entitlements:  make(map[string]model.Entitlements),
		verifications: make(map[string]*pending),
		mailer:        m,
		now:           time.Now,
	}
}

// Seed adds a subscriber with the given entitlements, assigning an ID if the
// subscriber has none. It returns the subscriber ID.
func (s *DevService) Seed(sub *model.Subscriber, ents model.Entitlements) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Created.IsZero() {
		sub.Created = s.now()
	}
	s.subscribers[sub.ID] = sub
	s.byEmail[sub.Email] = sub.ID
	s.entitlements[sub.ID] = ents
	return sub.ID
}

// SubscriberByID implements the Service SubscriberByID method.
func (s *DevService) SubscriberByID(ctx context.Context, id string) (*model.Subscriber, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	sub, ok := s.subscribers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sub, nil
}

// SubscriberByEmail implements the Service SubscriberByEmail method.
func (s *DevService) SubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return s.subscribers[id], nil
}

// SendVerificationCode implements the Service SendVerificationCode method.
// An unknown email address implicitly creates a subscriber, matching the
// production service's behavior.
func (s *DevService) SendVerificationCode(ctx context.Context, email, returnURL string) (string, error) {
	if !ValidEmail(email) {
		return "", ValidationError{Field: "email", Reason: "malformed"}
	}

	s.mutex.Lock()
	if _, ok := s.byEmail[email]; !ok {
		id := uuid.NewString()
		s.subscribers[id] = &model.Subscriber{ID: id, Email: email, Created: s.now()}
		s.byEmail[email] = id
	}

	token := uuid.NewString()
	code := newCode()
	s.verifications[token] = &pending{email: email, code: code, expires: s.now().Add(codeTTL)}
	s.mutex.Unlock()

	msg := fmt.Sprintf("Your CoastPress verification code is %s.\n\nReturn to %s to continue reading.", code, returnURL)
	if s.mailer != nil {
		err := s.mailer.Send(email, "Your verification code", msg)
		if err != nil {
			return "", fmt.Errorf("could not deliver code: %v: %w", err, ErrUnavailable)
		}
	} else {
		log.Printf("verification code for %s: %s", email, code)
	}

	return token, nil
}

// VerifyCode implements the Service VerifyCode method. A (token, code) pair
// is accepted exactly once; resubmission fails with ErrInvalidCode.
func (s *DevService) VerifyCode(ctx context.Context, token, code string) (model.VerifiedID, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.verifications[token]
	if !ok || p.used || s.now().After(p.expires) || p.code != code {
		return "", ErrInvalidCode
	}
	p.used = true

	id, ok := s.byEmail[p.email]
	if !ok {
		return "", ErrNotFound
	}
	return model.VerifiedID(id), nil
}

// Entitlements implements the Service Entitlements method.
func (s *DevService) Entitlements(ctx context.Context, id model.VerifiedID) (model.Entitlements, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.subscribers[string(id)]; !ok {
		return nil, ErrNotFound
	}
	return s.entitlements[string(id)], nil
}

// Grant adds a resource to a subscriber's entitlement set.
func (s *DevService) Grant(id string, r model.Resource) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ents := s.entitlements[id]
	if ents == nil {
		ents = make(model.Entitlements)
		s.entitlements[id] = ents
	}
	ents[r.Type] = append(ents[r.Type], r.ID)
}

// newCode returns a random six digit verification code.
func newCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		panic(fmt.Sprintf("could not generate code: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}
