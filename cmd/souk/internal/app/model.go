// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package app

import (
	"github.com/jredh-dev/souk/internal/client"
	"github.com/jredh-dev/souk/internal/search"
)

type appState int

const (
	stateLogin appState = iota
	stateAuthenticating
	stateBrowse
	stateGeoPicker
	stateListing
	stateCompose
	stateProfile
	stateTransactions
	stateTransaction
	stateError
)

// detailConfig parameterizes the listing detail screen. The same screen
// serves both "someone else's listing" (offer flow) and "my listing"
// (edit/delete flow); the config decides which actions are live.
type detailConfig struct {
	ownerActions bool
	returnTo     appState
}

// composeForm is the create/edit listing form. listingID zero means create.
type composeForm struct {
	listingID   int
	listingType string
	title       string
	description string
	city        string
	field       int // 0 title, 1 description, 2 city
}

const composeFieldCount = 3

// Beirut, the demo data's center of gravity. Used as the geo picker anchor
// when neither the query nor the profile carries a coordinate yet.
var fallbackAnchor = client.Coordinate{Lat: 33.8938, Lng: 35.5018}

// Model is the root bubbletea model for souk.
// Exported so tests can construct and drive it directly.
type Model struct {
	state appState

	baseURL     string
	listingType string

	width  int
	height int

	dir    Directory
	images ImageResolver

	session *client.Session
	err     error

	// Login
	phone     string
	password  string
	loginIdx  int // 0 phone, 1 password
	loginNote string

	// Browse
	query       search.Query
	searchBuf   string // text being typed; committed into query on search
	searchFocus bool
	listings    []client.Listing
	browseIdx   int
	searching   bool
	status      string
	searchSeq   int // monotonic; stale fetch results are discarded

	// Geo picker
	pickLat, pickLng float64
	pickStep         float64

	// Listing detail
	listing    client.Listing
	detail     detailConfig
	offerBuf   string // price being typed for an offer
	offerNote  string
	offerFocus bool

	// Compose (create/edit listing)
	form composeForm

	// Profile
	profile     client.User
	ownListings []client.Listing
	profileIdx  int

	// Transactions
	txs      []client.Transaction
	txIdx    int
	txSide   string // "offered" (sent) or "offering" (received)
	txStatus string
	tx       client.Transaction
	contract string
	txNote   string
}

// New creates a fresh Model. dir and images may be nil for testing
// individual screens without a live directory.
func New(baseURL, listingType string, dir Directory, images ImageResolver) Model {
	if listingType == "" {
		listingType = client.TypeAny
	}
	return Model{
		state:       stateLogin,
		baseURL:     baseURL,
		listingType: listingType,
		dir:         dir,
		images:      images,
		query:       search.NewQuery(),
		pickStep:    0.01,
		txSide:      "offered",
		txStatus:    client.StatusAny,
	}
}
