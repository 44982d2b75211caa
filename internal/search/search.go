// Package search holds the ephemeral filter state for the listing discovery
// flow and plans which directory operation a given state maps to. It is pure
// state and decision logic; no I/O happens here.
package search

// Mode selects the result ordering.
type Mode int

const (
	// ModeDate orders results newest first.
	ModeDate Mode = iota
	// ModeDistance orders results nearest to the anchor coordinate.
	ModeDistance
)

func (m Mode) String() string {
	if m == ModeDistance {
		return "distance"
	}
	return "date"
}

// Radius bounds in kilometers.
const (
	MinRadiusKm     = 0
	MaxRadiusKm     = 250
	DefaultRadiusKm = 60
)

// Query is the screen-local filter configuration. The zero value is not
// ready to use; call NewQuery.
type Query struct {
	mode     Mode
	text     string
	lat, lng float64
	hasCoord bool
	radiusKm int
}

// NewQuery returns a Query in date mode with the default radius and no text
// or coordinate set.
func NewQuery() Query {
	return Query{mode: ModeDate, radiusKm: DefaultRadiusKm}
}

// SetMode switches the ordering mode. Text and coordinate survive the
// switch so a user can flip between views without re-entering them.
func (q *Query) SetMode(m Mode) {
	if m != ModeDate && m != ModeDistance {
		return
	}
	q.mode = m
}

// SetText sets the free-text filter. Empty means no text filter.
func (q *Query) SetText(text string) {
	q.text = text
}

// SetCoordinate sets the distance anchor. Out-of-range coordinates are
// ignored; latitude first.
func (q *Query) SetCoordinate(lat, lng float64) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return
	}
	q.lat, q.lng = lat, lng
	q.hasCoord = true
}

// SetRadius sets the distance bound, clamped to [MinRadiusKm, MaxRadiusKm].
func (q *Query) SetRadius(km int) {
	if km < MinRadiusKm {
		km = MinRadiusKm
	}
	if km > MaxRadiusKm {
		km = MaxRadiusKm
	}
	q.radiusKm = km
}

// Mode returns the current ordering mode.
func (q Query) Mode() Mode { return q.mode }

// Text returns the current free-text filter.
func (q Query) Text() string { return q.text }

// Coordinate returns the distance anchor and whether one has been set.
func (q Query) Coordinate() (lat, lng float64, ok bool) {
	return q.lat, q.lng, q.hasCoord
}

// RadiusKm returns the current distance bound.
func (q Query) RadiusKm() int { return q.radiusKm }

// Op identifies one of the four retrieval operations.
type Op int

const (
	OpByDate Op = iota
	OpByDateAndText
	OpByDistance
	OpByDistanceAndText
)

func (o Op) String() string {
	switch o {
	case OpByDateAndText:
		return "date+text"
	case OpByDistance:
		return "distance"
	case OpByDistanceAndText:
		return "distance+text"
	default:
		return "date"
	}
}

// Plan is a fully resolved retrieval operation: exactly one Op plus the
// arguments it needs.
type Plan struct {
	Op          Op
	ListingType string
	Text        string
	Lat, Lng    float64
	RadiusKm    int
}

// Plan resolves the query into exactly one operation for the given listing
// type. The decision table, first matching row wins:
//
//	mode      text empty   operation
//	date      yes          by date
//	date      no           by date and text
//	distance  yes          by distance
//	distance  no           by distance and text
func (q Query) Plan(listingType string) Plan {
	p := Plan{ListingType: listingType}
	switch {
	case q.mode == ModeDate && q.text == "":
		p.Op = OpByDate
	case q.mode == ModeDate:
		p.Op = OpByDateAndText
		p.Text = q.text
	case q.text == "":
		p.Op = OpByDistance
		p.Lat, p.Lng, p.RadiusKm = q.lat, q.lng, q.radiusKm
	default:
		p.Op = OpByDistanceAndText
		p.Text = q.text
		p.Lat, p.Lng, p.RadiusKm = q.lat, q.lng, q.radiusKm
	}
	return p
}
