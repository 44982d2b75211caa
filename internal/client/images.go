package client

import (
	"fmt"
	"strconv"
)

// wireImage is the image payload as the directory sends it. Two historical
// forms exist: a stored file referenced by url, and an inline base64 body.
type wireImage struct {
	ImageID       int    `json:"image_id"`
	URL           string `json:"url"`
	Base64Image   string `json:"base64_image,omitempty"`
	UserID        int    `json:"user_id"`
	ListingID     int    `json:"listing_id,omitempty"`
	ShowOnProfile bool   `json:"show_on_profile"`
}

// ImagesByListingID returns the images attached to a listing, normalized so
// every Image carries a URL: inline base64 payloads become "inline:<id>"
// refs. Images with neither form are dropped.
func (c *Client) ImagesByListingID(listingID int) ([]Image, error) {
	var payload struct {
		Images []wireImage `json:"images"`
	}
	err := c.get("/image/listing/"+strconv.Itoa(listingID), &payload)
	if err != nil {
		return nil, fmt.Errorf("images for listing %d: %w", listingID, err)
	}
	return normalizeImages(payload.Images), nil
}

// ImagesByUserID returns the images shown on a user's profile.
func (c *Client) ImagesByUserID(userID int) ([]Image, error) {
	var payload struct {
		Images []wireImage `json:"images"`
	}
	err := c.get("/image/user/"+strconv.Itoa(userID), &payload)
	if err != nil {
		return nil, fmt.Errorf("images for user %d: %w", userID, err)
	}
	return normalizeImages(payload.Images), nil
}

// DeleteImage removes an image. Requires a session owning the image.
func (c *Client) DeleteImage(imageID int) error {
	if err := c.do("DELETE", "/image/"+strconv.Itoa(imageID), nil, nil); err != nil {
		return fmt.Errorf("delete image %d: %w", imageID, err)
	}
	return nil
}

func normalizeImages(raw []wireImage) []Image {
	images := make([]Image, 0, len(raw))
	for _, w := range raw {
		ref := w.URL
		if ref == "" && w.Base64Image != "" {
			ref = "inline:" + strconv.Itoa(w.ImageID)
		}
		if ref == "" {
			continue
		}
		images = append(images, Image{
			ImageID:       w.ImageID,
			URL:           ref,
			UserID:        w.UserID,
			ListingID:     w.ListingID,
			ShowOnProfile: w.ShowOnProfile,
		})
	}
	return images
}
