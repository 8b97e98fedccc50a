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

// CoastPress is a cloud service serving CoastPress articles, gating paywalled
// content behind subscriber entitlements.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/coastpress/cloud/content"
	"github.com/coastpress/cloud/gate"
	"github.com/coastpress/cloud/mailer"
	"github.com/coastpress/cloud/model"
	"github.com/coastpress/cloud/secrets"
	"github.com/coastpress/cloud/subs"
)

// Project constants.
const (
	projectID = "coastpress"
	version   = "v0.1.0"
)

// service defines the properties of our web service.
type service struct {
	setupMutex   sync.Mutex
	contentStore content.Store
	subsSvc      subs.Service
	gate         *gate.Gate
	debug        bool
	standalone   bool
	storePath    string
	subsURL      string
	canonical    string
}

// app is an instance of our service.
var app *service = &service{}

func main() {
	defaultPort := 8086
	v := os.Getenv("PORT")
	if v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			defaultPort = i
		}
	}

	var host string
	var port int
	flag.BoolVar(&app.debug, "debug", false, "Run in debug mode.")
	flag.BoolVar(&app.standalone, "standalone", false, "Run in standalone mode.")
	flag.StringVar(&host, "host", "localhost", "Host we run on in standalone mode")
	flag.IntVar(&port, "port", defaultPort, "Port we listen on in standalone mode")
	flag.StringVar(&app.storePath, "filestore", "store", "File store path")
	flag.StringVar(&app.subsURL, "subs", "https://subs.coastpress.net", "Subscription service base URL")
	flag.StringVar(&app.canonical, "canonical", "", "Canonical site URL used for redirects, e.g. https://coastpress.net")
	flag.Parse()

	// Perform one-time setup or bail.
	ctx := context.Background()
	app.setup(ctx)

	f := fiber.New(fiber.Config{AppName: "CoastPress " + version})
	f.Get("/health", app.healthHandler)
	f.All("/article/:id", app.articleHandler)

	log.Infof("listening on %s:%d", host, port)
	log.Fatal(f.Listen(fmt.Sprintf("%s:%d", host, port)))
}

// setup executes per-instance one-time warmup and is used to
// initialize the service. Any errors are considered fatal.
func (svc *service) setup(ctx context.Context) {
	svc.setupMutex.Lock()
	defer svc.setupMutex.Unlock()

	if svc.gate != nil {
		return
	}

	var canonical *url.URL
	if svc.canonical != "" {
		var err error
		canonical, err = url.Parse(svc.canonical)
		if err != nil || canonical.Host == "" {
			log.Fatalf("invalid canonical URL %q: %v", svc.canonical, err)
		}
	}

	var formSecret []byte
	if svc.standalone {
		log.Info("running in standalone mode")
		svc.setupStandalone(ctx)

		// Form tokens signed with an ephemeral key do not survive a restart,
		// which is acceptable for development.
		formSecret = securecookie.GenerateRandomKey(32)
	} else {
		log.Info("running in cloud mode")
		svc.setupCloud(ctx)

		var err error
		formSecret, err = secrets.GetHexSecret(ctx, projectID, "formTokenSecret")
		if err != nil {
			log.Fatalf("could not get form token secret: %v", err)
		}
	}

	tokens, err := gate.NewFormTokens(formSecret)
	if err != nil {
		log.Fatalf("could not create form tokens: %v", err)
	}

	svc.gate = gate.New(svc.contentStore, svc.subsSvc, tokens, canonical)
	log.Info("set up content gate")
}

// setupStandalone wires the file content store and the in-process
// subscription service, seeding demo content so the gate can be exercised
// immediately.
func (svc *service) setupStandalone(ctx context.Context) {
	store, err := content.NewFileStore(svc.storePath)
	if err != nil {
		log.Fatalf("could not set up file store: %v", err)
	}
	svc.contentStore = store

	// Mail keys are optional in standalone mode; without them codes are
	// logged instead of emailed.
	var m *mailer.Mailer
	sec, err := secrets.GetSecrets(ctx, projectID, []string{"mailjetPublicKey", "mailjetPrivateKey"})
	if err == nil {
		m, err = mailer.New(mailer.WithSecrets(sec))
		if err != nil {
			log.Fatalf("could not set up mailer: %v", err)
		}
	} else {
		log.Infof("no mail secrets; verification codes will be logged: %v", err)
	}

	dev := subs.NewDevService(m)
	id := dev.Seed(&model.Subscriber{Email: "demo@coastpress.net", GivenName: "Demo"},
		model.Entitlements{model.ResourceProduct: []string{"7"}})
	log.Infof("seeded demo subscriber %s", id)
	svc.subsSvc = dev

	svc.seedArticles(ctx)
}

// setupCloud wires the datastore content store and the remote subscription
// service client. OAuth client credentials are preferred when configured;
// otherwise the static API key is required.
func (svc *service) setupCloud(ctx context.Context) {
	store, err := content.NewCloudStore(ctx, projectID, "")
	if err != nil {
		log.Fatalf("could not set up datastore: %v", err)
	}
	svc.contentStore = store

	var auth subs.ClientOption
	sec, err := secrets.GetSecrets(ctx, projectID,
		[]string{"subsOAuthID", "subsOAuthSecret", "subsOAuthTokenURL"})
	if err == nil {
		log.Info("authenticating to the subscription service with OAuth")
		auth = subs.WithOAuth(&clientcredentials.Config{
			ClientID:     sec["subsOAuthID"],
			ClientSecret: sec["subsOAuthSecret"],
			TokenURL:     sec["subsOAuthTokenURL"],
		})
	} else {
		key, err := secrets.GetSecret(ctx, projectID, "subsAPIKey")
		if err != nil {
			log.Fatalf("could not get subscription service credentials: %v", err)
		}
		auth = subs.WithAPIKey(key)
	}

	client, err := subs.NewClient(svc.subsURL, auth)
	if err != nil {
		log.Fatalf("could not set up subscription service client: %v", err)
	}
	svc.subsSvc = client
}

// seedArticles writes demo articles into an empty standalone store.
func (svc *service) seedArticles(ctx context.Context) {
	_, err := svc.contentStore.Article(ctx, "welcome")
	if err == nil {
		return
	}

	open := &model.Article{
		ID:      "welcome",
		Title:   "Welcome to CoastPress",
		Body:    "<p>This article is open to everyone.</p>",
		Created: time.Now(),
	}
	gated := &model.Article{
		ID:    "tides",
		Title: "Reading the Tides",
		Body: "<p>The first paragraph is free for everyone to read.</p>" +
			gate.MoreMarker +
			"<p>The rest is for subscribers only.</p>",
		Resource: &model.Resource{Type: model.ResourceProduct, ID: "7"},
		Created:  time.Now(),
	}
	for _, art := range []*model.Article{open, gated} {
		err = svc.contentStore.PutArticle(ctx, art)
		if err != nil {
			log.Fatalf("could not seed article %s: %v", art.ID, err)
		}
	}
	log.Info("seeded demo articles")
}
