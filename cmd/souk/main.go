// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

// souk is a terminal client for the Listing Directory Service: browse
// offers and requests by date or distance, post your own, and negotiate
// transactions.
//
// Configuration comes from the environment (or a .env file):
//
//	SOUK_API_URL       directory root (default http://localhost:8080/api/v1)
//	SOUK_TIMEOUT       per-request timeout (default 10s)
//	SOUK_LISTING_TYPE  browse filter: Any, Offer or Request (default Any)
package main

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/jredh-dev/souk/cmd/souk/internal/app"
	"github.com/jredh-dev/souk/config"
	"github.com/jredh-dev/souk/internal/client"
	"github.com/jredh-dev/souk/internal/imagecache"
)

func main() {
	cfg := config.Load()

	dir := client.New(cfg.APIBaseURL, cfg.RequestTimeout)
	images := imagecache.New(dir.ImagesByListingID)

	m := app.New(cfg.APIBaseURL, cfg.ListingType, dir, images)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "souk: %v\n", err)
		os.Exit(1)
	}
}
