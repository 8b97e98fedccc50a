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

package gate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coastpress/cloud/gate"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		marker  string
		want    string
	}{
		{
			name:    "explicit marker",
			content: "before<!--split-->after",
			marker:  "<!--split-->",
			want:    "before",
		},
		{
			name:    "explicit marker preferred over boundary",
			content: "a<!--split-->b" + gate.MoreMarker + "c",
			marker:  "<!--split-->",
			want:    "a",
		},
		{
			name:    "marker absent falls back to boundary",
			content: "teaser" + gate.MoreMarker + "rest",
			marker:  "<!--split-->",
			want:    "teaser",
		},
		{
			name:    "boundary only",
			content: "teaser" + gate.MoreMarker + "rest",
			want:    "teaser",
		},
		{
			name:    "no marker at all yields nothing",
			content: "entire article body",
			want:    "",
		},
		{
			name:    "empty content",
			content: "",
			marker:  "<!--split-->",
			want:    "",
		},
		{
			name:    "marker at start",
			content: gate.MoreMarker + "all gated",
			want:    "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := gate.Preview(test.content, test.marker)
			assert.Equal(t, test.want, got)
		})
	}
}

// The preview never includes content at or beyond the split position, for
// arbitrary content.
func TestPreviewNeverLeaksBeyondMarker(t *testing.T) {
	contents := []string{
		"short",
		strings.Repeat("x", 1000) + gate.MoreMarker + strings.Repeat("secret", 100),
		gate.MoreMarker,
		"a<!--split-->b<!--split-->c",
	}
	for _, content := range contents {
		for _, marker := range []string{"", "<!--split-->", gate.MoreMarker} {
			got := gate.Preview(content, marker)
			if marker != "" && strings.Contains(content, marker) {
				assert.LessOrEqual(t, len(got), strings.Index(content, marker))
			}
			assert.NotContains(t, got, "secret")
		}
	}
}
