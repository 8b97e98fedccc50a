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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/coastpress/cloud/model"
)

// FileStore implements Store using one JSON file per article in a directory.
// It serves standalone mode and tests; it is not intended for production.
type FileStore struct {
	dir   string
	mutex sync.RWMutex
}

// NewFileStore returns a FileStore rooted at dir, creating it if necessary.
func NewFileStore(dir string) (*FileStore, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create store directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// path maps an article ID onto a file path, rejecting IDs that would
// escape the store directory.
func (s *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Article implements the Store Article method.
func (s *FileStore) Article(ctx context.Context, id string) (*model.Article, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	bytes, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read article %s", id)
	}

	var art model.Article
	err = json.Unmarshal(bytes, &art)
	if err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal article %s", id)
	}
	art.ID = id
	return &art, nil
}

// PutArticle implements the Store PutArticle method.
func (s *FileStore) PutArticle(ctx context.Context, art *model.Article) error {
	p, err := s.path(art.ID)
	if err != nil {
		return errors.Errorf("invalid article ID %q", art.ID)
	}

	bytes, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "could not marshal article %s", art.ID)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return errors.Wrapf(os.WriteFile(p, bytes, 0o644), "could not write article %s", art.ID)
}
