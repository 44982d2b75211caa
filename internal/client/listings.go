package client

import (
	"fmt"
	"net/url"
	"strconv"
)

// ListingsByDate returns listings of the given type ordered newest first.
func (c *Client) ListingsByDate(listingType string) ([]Listing, error) {
	var listings []Listing
	err := c.get("/listing/date/"+url.PathEscape(listingType), &listings)
	if err != nil {
		return nil, fmt.Errorf("listings by date: %w", err)
	}
	return listings, nil
}

// ListingsByDateAndSearch returns listings matching the free-text query,
// ordered newest first.
func (c *Client) ListingsByDateAndSearch(query, listingType string) ([]Listing, error) {
	var listings []Listing
	err := c.get("/listing/date/search/"+url.PathEscape(query)+"/"+url.PathEscape(listingType), &listings)
	if err != nil {
		return nil, fmt.Errorf("listings by date and search: %w", err)
	}
	return listings, nil
}

// ListingsByDistance returns listings within radiusKm of the anchor point,
// ordered nearest first. Latitude comes first; see Coordinate.
func (c *Client) ListingsByDistance(lat, lng float64, radiusKm int, listingType string) ([]Listing, error) {
	var listings []Listing
	err := c.get(distancePath(lat, lng, radiusKm, listingType), &listings)
	if err != nil {
		return nil, fmt.Errorf("listings by distance: %w", err)
	}
	return listings, nil
}

// ListingsByDistanceAndSearch combines the distance filter with a free-text
// query. Latitude comes first; see Coordinate.
func (c *Client) ListingsByDistanceAndSearch(lat, lng float64, radiusKm int, listingType, query string) ([]Listing, error) {
	var listings []Listing
	err := c.get(distancePath(lat, lng, radiusKm, listingType)+"/"+url.PathEscape(query), &listings)
	if err != nil {
		return nil, fmt.Errorf("listings by distance and search: %w", err)
	}
	return listings, nil
}

func distancePath(lat, lng float64, radiusKm int, listingType string) string {
	return "/listing/distance/" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "/" +
		strconv.FormatFloat(lng, 'f', -1, 64) + "/" +
		strconv.Itoa(radiusKm) + "/" +
		url.PathEscape(listingType)
}

// ListingByID retrieves one listing.
func (c *Client) ListingByID(id int) (Listing, error) {
	var listing Listing
	err := c.get("/listing/listingId/"+strconv.Itoa(id), &listing)
	if err != nil {
		return Listing{}, fmt.Errorf("listing %d: %w", id, err)
	}
	return listing, nil
}

// ListingsByUser returns a user's listings, optionally filtered by type.
func (c *Client) ListingsByUser(userID int, listingType string) ([]Listing, error) {
	var listings []Listing
	err := c.get("/listing/listings/user/"+strconv.Itoa(userID)+"/"+url.PathEscape(listingType), &listings)
	if err != nil {
		return nil, fmt.Errorf("listings for user %d: %w", userID, err)
	}
	return listings, nil
}

// CreateListing posts a new listing and returns it with its assigned id.
// Requires a session.
func (c *Client) CreateListing(listing Listing) (Listing, error) {
	var created Listing
	if err := c.do("POST", "/listing/create", listing, &created); err != nil {
		return Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return created, nil
}

// UpdateListing replaces a listing's mutable fields. Requires a session
// owning the listing.
func (c *Client) UpdateListing(id int, listing Listing) error {
	if err := c.do("PUT", "/listing/update/"+strconv.Itoa(id), listing, nil); err != nil {
		return fmt.Errorf("update listing %d: %w", id, err)
	}
	return nil
}

// DeleteListing removes a listing. Requires a session owning the listing.
func (c *Client) DeleteListing(id int) error {
	if err := c.do("DELETE", "/listing/delete/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	return nil
}
