package client

// Listing types accepted by the directory's filter parameters. "Any"
// disables type filtering.
const (
	TypeAny     = "Any"
	TypeOffer   = "Offer"
	TypeRequest = "Request"
)

// Transaction statuses. "Any" is only valid as a query filter.
const (
	StatusAny       = "Any"
	StatusPending   = "Pending"
	StatusAccepted  = "Accepted"
	StatusCompleted = "Completed"
)

// Coordinate is a geographic point. Latitude comes first everywhere in this
// codebase: struct fields, function parameters and wire paths. The backend
// historically accepted both orders depending on the route; this client
// commits to lat-first and the stub mirrors it.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate is the unset sentinel (0, 0).
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Listing is a posted offer or request for a service, owned by one user.
type Listing struct {
	ListingID   int        `json:"listing_id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	UserID      int        `json:"user_id"`
	Username    string     `json:"username,omitempty"`
	Location    Coordinate `json:"location"`
	DateCreated string     `json:"date_created"`
	Active      bool       `json:"active"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
}

// Image is the normalized form of a listing or profile image. The wire
// carries either an opaque URL or inline base64 bytes; ImagesByListingID
// collapses both into URL (inline payloads become "inline:<image_id>" refs)
// so nothing past the client boundary has to care.
type Image struct {
	ImageID       int    `json:"image_id"`
	URL           string `json:"url"`
	UserID        int    `json:"user_id"`
	ListingID     int    `json:"listing_id,omitempty"`
	ShowOnProfile bool   `json:"show_on_profile"`
}

// User is a marketplace account.
type User struct {
	UserID      int        `json:"user_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number"`
	Profession  string     `json:"profession"`
	Location    Coordinate `json:"location"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	DateCreated string     `json:"date_created"`
}

// Name returns the user's display name.
func (u User) Name() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return "anonymous"
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Transaction is a negotiated job between two users over a listing. The
// "offered" user initiates the offer; the "offering" user owns the listing.
type Transaction struct {
	TransactionID       int     `json:"transaction_id"`
	UserOfferedID       int     `json:"user_offered_id"`
	UserOfferingID      int     `json:"user_offering_id"`
	ListingID           int     `json:"listing_id"`
	Price               float64 `json:"price_with_currency"`
	CurrencyCode        string  `json:"currency_code"`
	DateCreated         string  `json:"date_created"`
	JobStartDate        string  `json:"job_start_date"`
	JobEndDate          string  `json:"job_end_date"`
	DetailsFromOffered  string  `json:"details_from_offered"`
	DetailsFromOffering string  `json:"details_from_offering"`
	Status              string  `json:"status"`
}
