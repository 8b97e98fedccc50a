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

import "time"

// Subscriber is a reader known to the subscription service.
type Subscriber struct {
	ID         string    // Service-assigned subscriber ID.
	Email      string    // Subscriber's email address.
	GivenName  string    // Subscriber's given name.
	FamilyName string    // Subscriber's family name.
	Created    time.Time // Time the subscriber was created.
}
