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

	"github.com/gofiber/fiber/v2/log"

	"github.com/coastpress/cloud/model"
	"github.com/coastpress/cloud/subs"
)

// Checker decides whether a subscriber holds a required resource. A Checker
// must fail closed: any inconclusive remote answer is "not entitled". Only a
// VerifiedID can reach a Checker.
type Checker interface {
	Check(ctx context.Context, id model.VerifiedID, r model.Resource) bool
}

// Checkers dispatches entitlement checks on resource type. Adding a resource
// type means registering a new Checker; the content gate's control flow does
// not change.
type Checkers struct {
	byType map[string]Checker
}

// NewCheckers returns a Checkers with the product checker registered.
func NewCheckers(svc subs.Service) *Checkers {
	c := &Checkers{byType: make(map[string]Checker)}
	c.Register(model.ResourceProduct, &ProductChecker{svc: svc})
	return c
}

// Register adds a Checker for a resource type, replacing any existing one.
func (c *Checkers) Register(resourceType string, chk Checker) {
	c.byType[resourceType] = chk
}

// Check implements the Checker interface by dispatching on the resource
// type. An unregistered resource type denies access.
func (c *Checkers) Check(ctx context.Context, id model.VerifiedID, r model.Resource) bool {
	chk, ok := c.byType[r.Type]
	if !ok {
		log.Warnf("no checker for resource type %q; denying access", r.Type)
		return false
	}
	return chk.Check(ctx, id, r)
}

// ProductChecker checks product entitlements against the subscription
// service. Entitlements are fetched fresh on every check; the service is the
// source of truth and nothing is cached across page views.
type ProductChecker struct {
	svc subs.Service
}

// Check implements the Checker interface for product resources.
func (p *ProductChecker) Check(ctx context.Context, id model.VerifiedID, r model.Resource) bool {
	ents, err := p.svc.Entitlements(ctx, id)
	if err != nil {
		log.Errorf("could not get entitlements for %s: %v; denying access", id, err)
		return false
	}
	return ents.Holds(r)
}
