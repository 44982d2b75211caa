package stub

import (
	"github.com/google/uuid"

	"github.com/jredh-dev/souk/internal/client"
)

// Seed fills the store with a small demo data set around Beirut. Login with
// phone "70000001" / password "demo" (or 70000002, 70000003).
func Seed(s *Store) {
	maya := s.AddUser(client.User{
		FirstName:   "Maya",
		LastName:    "Haddad",
		PhoneNumber: "70000001",
		Profession:  "Gardener",
		Location:    client.Coordinate{Lat: 33.8938, Lng: 35.5018},
		City:        "Beirut",
		Country:     "Lebanon",
	}, "demo")
	omar := s.AddUser(client.User{
		FirstName:   "Omar",
		LastName:    "Khalil",
		PhoneNumber: "70000002",
		Profession:  "Electrician",
		Location:    client.Coordinate{Lat: 33.8547, Lng: 35.8623},
		City:        "Zahle",
		Country:     "Lebanon",
	}, "demo")
	rita := s.AddUser(client.User{
		FirstName:   "Rita",
		LastName:    "Nassar",
		PhoneNumber: "70000003",
		Profession:  "Tutor",
		Location:    client.Coordinate{Lat: 34.4346, Lng: 35.8362},
		City:        "Tripoli",
		Country:     "Lebanon",
	}, "demo")

	seedListings := []struct {
		owner       client.User
		typ         string
		title       string
		description string
		loc         client.Coordinate
		city        string
		date        string
		withImage   bool
	}{
		{maya, client.TypeOffer, "Lawn mowing and garden care",
			"Weekly lawn mowing, hedge trimming and seasonal planting.",
			client.Coordinate{Lat: 33.8938, Lng: 35.5018}, "Beirut", "2026-08-20 09:15:00", true},
		{maya, client.TypeRequest, "Need a ladder for one afternoon",
			"Borrow or rent a 4m ladder for gutter cleaning.",
			client.Coordinate{Lat: 33.8886, Lng: 35.4955}, "Beirut", "2026-08-24 17:40:00", false},
		{omar, client.TypeOffer, "Electrical repairs, certified",
			"Panels, wiring, outlets. Evenings and weekends.",
			client.Coordinate{Lat: 33.8547, Lng: 35.8623}, "Zahle", "2026-08-22 11:05:00", true},
		{omar, client.TypeRequest, "Looking for a lawn care service",
			"Small yard, twice a month, equipment provided.",
			client.Coordinate{Lat: 33.8578, Lng: 35.8701}, "Zahle", "2026-08-26 08:30:00", false},
		{rita, client.TypeOffer, "Math and physics tutoring",
			"Brevet and terminale prep, in person or online.",
			client.Coordinate{Lat: 34.4346, Lng: 35.8362}, "Tripoli", "2026-08-25 19:00:00", true},
	}

	for _, sl := range seedListings {
		l := s.AddListing(client.Listing{
			Type:        sl.typ,
			Title:       sl.title,
			Description: sl.description,
			UserID:      sl.owner.UserID,
			Location:    sl.loc,
			DateCreated: sl.date,
			City:        sl.city,
			Country:     "Lebanon",
		})
		if sl.withImage {
			s.AddImage(l.ListingID, client.Image{
				URL:    uuid.NewString() + ".png",
				UserID: sl.owner.UserID,
			})
		}
	}
}
