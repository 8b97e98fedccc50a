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

package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coastpress/cloud/model"
)

func TestFileStorePutAndGet(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	art := &model.Article{
		ID:       "tides",
		Title:    "Reading the Tides",
		Body:     "teaser<!--more-->the rest",
		Resource: &model.Resource{Type: model.ResourceProduct, ID: "7"},
	}
	require.NoError(t, s.PutArticle(ctx, art))

	got, err := s.Article(ctx, "tides")
	require.NoError(t, err)
	assert.Equal(t, art.Title, got.Title)
	assert.Equal(t, art.Body, got.Body)
	require.NotNil(t, got.Resource)
	assert.Equal(t, "7", got.Resource.ID)
}

func TestFileStoreNotFound(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Article(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, id := range []string{"", ".", "..", "../etc/passwd", `..\win`, "a/b"} {
		_, err := s.Article(ctx, id)
		assert.Error(t, err, "id %q", id)

		err = s.PutArticle(ctx, &model.Article{ID: id})
		assert.Error(t, err, "id %q", id)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.PutArticle(ctx, &model.Article{ID: "a", Title: "first"}))
	require.NoError(t, s.PutArticle(ctx, &model.Article{ID: "a", Title: "second"}))

	got, err := s.Article(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)
}
