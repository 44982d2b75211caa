// Package stub is an in-memory stand-in for the Listing Directory Service.
// It serves the same wire shapes the production API does, so the client and
// the integration tests can run against it without a backend. It is a
// fixture: data lives for the life of the process.
package stub

import (
	"sort"
	"strings"
	"sync"
	"time"

	geo "github.com/paulmach/go.geo"

	"github.com/jredh-dev/souk/internal/client"
)

const dateLayout = "2006-01-02 15:04:05"

// Store holds the stub's data set. All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	users     map[int]client.User
	passwords map[int]string // user id -> password, plaintext is fine in a fixture
	listings  map[int]client.Listing
	images    map[int][]client.Image // listing id -> images
	txs       map[int]client.Transaction

	nextUserID    int
	nextListingID int
	nextImageID   int
	nextTxID      int

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:         make(map[int]client.User),
		passwords:     make(map[int]string),
		listings:      make(map[int]client.Listing),
		images:        make(map[int][]client.Image),
		txs:           make(map[int]client.Transaction),
		nextUserID:    1,
		nextListingID: 1,
		nextImageID:   1,
		nextTxID:      1,
		now:           time.Now,
	}
}

// --- users ---

// AddUser registers a user and returns it with its assigned id.
func (s *Store) AddUser(u client.User, password string) client.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.UserID = s.nextUserID
	s.nextUserID++
	if u.DateCreated == "" {
		u.DateCreated = s.now().Format(dateLayout)
	}
	s.users[u.UserID] = u
	s.passwords[u.UserID] = password
	return u
}

// Authenticate matches phone number and password.
func (s *Store) Authenticate(phoneNumber, password string) (client.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.PhoneNumber == phoneNumber && s.passwords[id] == password {
			return u, true
		}
	}
	return client.User{}, false
}

// UserByID looks up a user.
func (s *Store) UserByID(id int) (client.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// --- listings ---

// AddListing stores a listing and returns it with id, date and owner name
// filled in.
func (s *Store) AddListing(l client.Listing) client.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ListingID = s.nextListingID
	s.nextListingID++
	if l.DateCreated == "" {
		l.DateCreated = s.now().Format(dateLayout)
	}
	l.Active = true
	if u, ok := s.users[l.UserID]; ok {
		l.Username = u.Name()
	}
	s.listings[l.ListingID] = l
	return l
}

// ListingByID looks up a listing.
func (s *Store) ListingByID(id int) (client.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	return l, ok
}

// UpdateListing replaces a listing's mutable fields, keeping id, owner and
// creation date.
func (s *Store) UpdateListing(id int, l client.Listing) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.listings[id]
	if !ok {
		return false
	}
	cur.Type = l.Type
	cur.Title = l.Title
	cur.Description = l.Description
	if !l.Location.IsZero() {
		cur.Location = l.Location
	}
	if l.City != "" {
		cur.City = l.City
	}
	if l.Country != "" {
		cur.Country = l.Country
	}
	s.listings[id] = cur
	return true
}

// DeleteListing removes a listing and its images.
func (s *Store) DeleteListing(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return false
	}
	delete(s.listings, id)
	delete(s.images, id)
	return true
}

// ListingsByDate returns listings of the given type, newest first.
func (s *Store) ListingsByDate(listingType string) []client.Listing {
	return s.query(listingType, "", nil, 0)
}

// ListingsByDateAndText narrows ListingsByDate with a case-insensitive
// substring match on title and description.
func (s *Store) ListingsByDateAndText(text, listingType string) []client.Listing {
	return s.query(listingType, text, nil, 0)
}

// ListingsByDistance returns listings within radiusKm of the anchor,
// nearest first. Latitude first, as everywhere.
func (s *Store) ListingsByDistance(lat, lng float64, radiusKm int, listingType string) []client.Listing {
	anchor := geo.NewPoint(lng, lat)
	return s.query(listingType, "", anchor, radiusKm)
}

// ListingsByDistanceAndText narrows ListingsByDistance with a text match.
func (s *Store) ListingsByDistanceAndText(lat, lng float64, radiusKm int, listingType, text string) []client.Listing {
	anchor := geo.NewPoint(lng, lat)
	return s.query(listingType, text, anchor, radiusKm)
}

// ListingsByUser returns one user's listings, newest first.
func (s *Store) ListingsByUser(userID int, listingType string) []client.Listing {
	all := s.query(listingType, "", nil, 0)
	out := make([]client.Listing, 0, len(all))
	for _, l := range all {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

// query applies the type filter, the optional text filter and the optional
// distance filter, then orders: nearest first when an anchor is set, newest
// first otherwise.
func (s *Store) query(listingType, text string, anchor *geo.Point, radiusKm int) []client.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(text)
	type scored struct {
		l    client.Listing
		dist float64
	}
	var matched []scored

	for _, l := range s.listings {
		if !l.Active {
			continue
		}
		if listingType != client.TypeAny && listingType != "" && l.Type != listingType {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(l.Title), needle) &&
			!strings.Contains(strings.ToLower(l.Description), needle) {
			continue
		}
		sc := scored{l: l}
		if anchor != nil {
			// go.geo points are (x=lng, y=lat); distance in meters.
			p := geo.NewPoint(l.Location.Lng, l.Location.Lat)
			sc.dist = anchor.GeoDistanceFrom(p, true)
			if sc.dist > float64(radiusKm)*1000 {
				continue
			}
		}
		matched = append(matched, sc)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if anchor != nil {
			return matched[i].dist < matched[j].dist
		}
		if matched[i].l.DateCreated != matched[j].l.DateCreated {
			return matched[i].l.DateCreated > matched[j].l.DateCreated
		}
		return matched[i].l.ListingID > matched[j].l.ListingID
	})

	out := make([]client.Listing, len(matched))
	for i, sc := range matched {
		out[i] = sc.l
	}
	return out
}

// --- images ---

// AddImage attaches an image to a listing.
func (s *Store) AddImage(listingID int, img client.Image) client.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	img.ImageID = s.nextImageID
	s.nextImageID++
	img.ListingID = listingID
	s.images[listingID] = append(s.images[listingID], img)
	return img
}

// ImagesByListing returns a listing's images, oldest first.
func (s *Store) ImagesByListing(listingID int) []client.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	imgs := s.images[listingID]
	out := make([]client.Image, len(imgs))
	copy(out, imgs)
	return out
}

// --- transactions ---

// AddTransaction stores a new pending transaction.
func (s *Store) AddTransaction(tx client.Transaction) client.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.TransactionID = s.nextTxID
	s.nextTxID++
	tx.DateCreated = s.now().Format(dateLayout)
	if tx.Status == "" {
		tx.Status = client.StatusPending
	}
	s.txs[tx.TransactionID] = tx
	return tx
}

// TransactionByID looks up a transaction.
func (s *Store) TransactionByID(id int) (client.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	return tx, ok
}

// UpdateTransaction replaces a transaction's mutable fields.
func (s *Store) UpdateTransaction(id int, tx client.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.txs[id]
	if !ok {
		return false
	}
	if tx.Status != "" {
		cur.Status = tx.Status
	}
	if tx.JobStartDate != "" {
		cur.JobStartDate = tx.JobStartDate
	}
	if tx.JobEndDate != "" {
		cur.JobEndDate = tx.JobEndDate
	}
	if tx.DetailsFromOffered != "" {
		cur.DetailsFromOffered = tx.DetailsFromOffered
	}
	if tx.DetailsFromOffering != "" {
		cur.DetailsFromOffering = tx.DetailsFromOffering
	}
	if tx.Price != 0 {
		cur.Price = tx.Price
	}
	if tx.CurrencyCode != "" {
		cur.CurrencyCode = tx.CurrencyCode
	}
	s.txs[id] = cur
	return true
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return false
	}
	delete(s.txs, id)
	return true
}

// TransactionsByParty lists transactions where the user appears on the
// given side ("offered" = initiator, "offering" = listing owner), filtered
// by status ("Any" disables the filter). Newest first.
func (s *Store) TransactionsByParty(userID int, side, status string) []client.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []client.Transaction
	for _, tx := range s.txs {
		switch side {
		case "offered":
			if tx.UserOfferedID != userID {
				continue
			}
		case "offering":
			if tx.UserOfferingID != userID {
				continue
			}
		default:
			continue
		}
		if status != client.StatusAny && status != "" && tx.Status != status {
			continue
		}
		out = append(out, tx)
	}
	sortTxs(out)
	return out
}

// TransactionsByListing lists a listing's transactions filtered by status.
func (s *Store) TransactionsByListing(listingID int, status string) []client.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []client.Transaction
	for _, tx := range s.txs {
		if tx.ListingID != listingID {
			continue
		}
		if status != client.StatusAny && status != "" && tx.Status != status {
			continue
		}
		out = append(out, tx)
	}
	sortTxs(out)
	return out
}

func sortTxs(txs []client.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].DateCreated != txs[j].DateCreated {
			return txs[i].DateCreated > txs[j].DateCreated
		}
		return txs[i].TransactionID > txs[j].TransactionID
	})
}
