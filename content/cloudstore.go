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
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/datastore"
	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/coastpress/cloud/model"
)

// articleKind is the datastore entity kind for articles.
const articleKind = "Article"

// CloudStore implements Store for the Google Cloud Datastore.
type CloudStore struct {
	client *datastore.Client
}

// articleEntity is the flattened datastore representation of an Article.
type articleEntity struct {
	Title        string
	Body         string `datastore:",noindex"`
	Marker       string
	ResourceType string
	ResourceID   string
	Created      time.Time
}

// NewCloudStore returns a new CloudStore for the given project, using the
// given URL to retrieve credentials and authenticate. To obtain credentials
// from a Google Storage bucket, URL takes the form gs://bucket_name/creds.
// A URL without a scheme is interpreted as a file. An empty URL attempts
// authentication with default credentials. If the environment variable
// <PROJECTID>_CREDENTIALS is defined it overrides the supplied URL.
func NewCloudStore(ctx context.Context, projectID, url string) (*CloudStore, error) {
	ev := strings.ToUpper(projectID) + "_CREDENTIALS"
	if os.Getenv(ev) != "" {
		url = os.Getenv(ev)
	}

	if url == "" {
		client, err := datastore.NewClient(ctx, projectID)
		if err != nil {
			return nil, errors.Wrap(err, "could not create datastore client")
		}
		return &CloudStore{client: client}, nil
	}

	creds, err := readCredentials(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read credentials from %s", url)
	}

	client, err := datastore.NewClient(ctx, projectID, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, errors.Wrap(err, "could not create datastore client")
	}
	return &CloudStore{client: client}, nil
}

// readCredentials reads credential bytes from a gs:// object or a file.
func readCredentials(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "gs://") {
		return os.ReadFile(url)
	}

	url = strings.TrimPrefix(url, "gs://")
	sep := strings.IndexByte(url, '/')
	if sep == -1 {
		return nil, errors.New("invalid gs bucket URL")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not create storage client")
	}
	r, err := client.Bucket(url[:sep]).Object(url[sep+1:]).NewReader(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not open credentials object")
	}
	defer r.Close()

	creds, err := io.ReadAll(r)
	if err != nil {
		return creds, errors.Wrap(err, "could not read credentials object")
	}
	return creds, nil
}

// Article implements the Store Article method.
func (s *CloudStore) Article(ctx context.Context, id string) (*model.Article, error) {
	var e articleEntity
	err := s.client.Get(ctx, datastore.NameKey(articleKind, id, nil), &e)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not get article %s", id)
	}

	art := &model.Article{
		ID:      id,
		Title:   e.Title,
		Body:    e.Body,
		Marker:  e.Marker,
		Created: e.Created,
	}
	if e.ResourceType != "" {
		art.Resource = &model.Resource{Type: e.ResourceType, ID: e.ResourceID}
	}
	return art, nil
}

// PutArticle implements the Store PutArticle method.
func (s *CloudStore) PutArticle(ctx context.Context, art *model.Article) error {
	e := articleEntity{
		Title:   art.Title,
		Body:    art.Body,
		Marker:  art.Marker,
		Created: art.Created,
	}
	if art.Resource != nil {
		e.ResourceType = art.Resource.Type
		e.ResourceID = art.Resource.ID
	}
	_, err := s.client.Put(ctx, datastore.NameKey(articleKind, art.ID, nil), &e)
	return errors.Wrapf(err, "could not put article %s", art.ID)
}
