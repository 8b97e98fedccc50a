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

package model

// UnverifiedID is a subscriber identity as it arrived with a request, from a
// query parameter or form field. It names a subscriber but proves nothing;
// it must be confirmed against the subscription service before anything is
// granted on its behalf.
type UnverifiedID string

// VerifiedID is a subscriber identity that has been confirmed against the
// subscription service. The only producers of a VerifiedID are the identity
// store's ValidateAndStore and a successful verification-code exchange, so
// holding one is proof that the check happened.
type VerifiedID string

// Resource names something a piece of content can require a subscriber to
// hold, such as a paid product. Type selects the entitlement checker;
// ID is meaningful only to the subscription service.
type Resource struct {
	Type string // Resource type, e.g. "product".
	ID   string // Identifier within the type.
}

// ResourceProduct is the only resource type currently issued by the
// subscription service.
const ResourceProduct = "product"

// Entitlements is the set of resources a subscriber holds, keyed by resource
// type. It is fetched fresh from the subscription service for every
// restricted view and never cached across requests.
type Entitlements map[string][]string

// Holds reports whether the entitlement set contains the given resource.
func (e Entitlements) Holds(r Resource) bool {
	for _, id := range e[r.Type] {
		if id == r.ID {
			return true
		}
	}
	return false
}
