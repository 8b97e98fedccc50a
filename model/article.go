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

// Article is a piece of content served by CoastPress. An article with a
// non-nil Resource is gated: the full body is only rendered for subscribers
// who hold that resource.
type Article struct {
	ID       string    // Article ID, used in the article URL.
	Title    string    // Article title.
	Body     string    // Full article body (HTML).
	Marker   string    // Optional explicit preview split marker within Body.
	Resource *Resource // Required resource, or nil when the article is open.
	Created  time.Time // Time the article was created.
}
