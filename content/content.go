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

// Package content stores and retrieves articles and their per-article
// gating configuration. The gate only ever reads; writes exist for seeding
// and administration.
package content

import (
	"context"

	"github.com/pkg/errors"

	"github.com/coastpress/cloud/model"
)

// ErrNotFound is returned when no article exists with the requested ID.
var ErrNotFound = errors.New("article not found")

// Store provides article storage. An article's resource requirement and its
// full body both travel on the returned Article; the requirement is
// immutable for the duration of a request because the gate fetches the
// article exactly once per render.
type Store interface {
	// Article returns the article with the given ID, or ErrNotFound.
	Article(ctx context.Context, id string) (*model.Article, error)

	// PutArticle stores an article, replacing any existing one with the
	// same ID.
	PutArticle(ctx context.Context, art *model.Article) error
}
