// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package app

import (
	"github.com/jredh-dev/souk/internal/client"
)

// Directory is the interface for the listing directory API.
// Tests inject a mock; production uses *client.Client.
type Directory interface {
	Auth(phoneNumber, password string) (*client.Session, error)
	Logout()

	ListingsByDate(listingType string) ([]client.Listing, error)
	ListingsByDateAndSearch(query, listingType string) ([]client.Listing, error)
	ListingsByDistance(lat, lng float64, radiusKm int, listingType string) ([]client.Listing, error)
	ListingsByDistanceAndSearch(lat, lng float64, radiusKm int, listingType, query string) ([]client.Listing, error)
	ListingByID(id int) (client.Listing, error)
	ListingsByUser(userID int, listingType string) ([]client.Listing, error)
	CreateListing(listing client.Listing) (client.Listing, error)
	UpdateListing(id int, listing client.Listing) error
	DeleteListing(id int) error

	UserByID(id int) (client.User, error)

	CreateTransaction(tx client.Transaction) (client.Transaction, error)
	TransactionByID(id int) (client.Transaction, error)
	TransactionsByOfferedUser(userID int, status string) ([]client.Transaction, error)
	TransactionsByOfferingUser(userID int, status string) ([]client.Transaction, error)
	UpdateTransaction(id int, tx client.Transaction) error
	DeleteTransaction(id int) error
	TransactionContract(id int) (string, error)
}

// ImageResolver supplies the display image for a listing card.
// *imagecache.Cache satisfies this; tests inject a mock.
type ImageResolver interface {
	Resolve(listingID int) (img client.Image, ok bool)
	Peek(listingID int) (img client.Image, ok, resolved bool)
	Clear()
}
