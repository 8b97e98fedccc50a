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

import "strings"

// MoreMarker is the structural read-more boundary recognized in article
// bodies when no explicit split marker is configured.
const MoreMarker = "<!--more-->"

// Preview computes the teaser shown to visitors who are not entitled to the
// full content. If the content contains the explicit split marker,
// everything before it is returned; failing that, everything before the
// read-more boundary. With neither present the preview is empty: nothing is
// leaked by guessing a cut point.
func Preview(content, marker string) string {
	if marker != "" {
		if i := strings.Index(content, marker); i >= 0 {
			return content[:i]
		}
	}
	if i := strings.Index(content, MoreMarker); i >= 0 {
		return content[:i]
	}
	return ""
}
