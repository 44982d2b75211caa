// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package app

import (
	"github.com/jredh-dev/souk/internal/client"
)

// --- Tea messages ---

type authResultMsg struct {
	session *client.Session
	err     error
}

// listingsMsg carries the sequence number of the search that produced it.
// Responses for a superseded sequence are dropped on arrival.
type listingsMsg struct {
	seq      int
	listings []client.Listing
	err      error
}

type imageResolvedMsg struct {
	listingID int
}

type listingSavedMsg struct {
	listing client.Listing
	err     error
}

type listingDeletedMsg struct {
	id  int
	err error
}

type profileMsg struct {
	user     client.User
	listings []client.Listing
	err      error
}

type txListMsg struct {
	side string
	txs  []client.Transaction
	err  error
}

type txDetailMsg struct {
	tx       client.Transaction
	contract string
	err      error
}

type txActionMsg struct {
	verb string
	err  error
}

type offerSentMsg struct {
	tx  client.Transaction
	err error
}
