package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// recordingServer captures every request path and header and answers each
// with the queued body.
type recordingServer struct {
	*httptest.Server
	paths   []string
	auths   []string
	status  int
	payload interface{}
}

func newRecordingServer(t *testing.T) *recordingServer {
	t.Helper()
	rs := &recordingServer{status: http.StatusOK, payload: []Listing{}}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.paths = append(rs.paths, r.URL.EscapedPath())
		rs.auths = append(rs.auths, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rs.status)
		json.NewEncoder(w).Encode(rs.payload) //nolint:errcheck
	}))
	t.Cleanup(rs.Close)
	return rs
}

func TestDistancePath_LatitudeFirst(t *testing.T) {
	srv := newRecordingServer(t)
	c := New(srv.URL+"/api/v1", time.Second)

	if _, err := c.ListingsByDistance(33.8938, 35.5018, 60, TypeOffer); err != nil {
		t.Fatalf("ListingsByDistance: %v", err)
	}
	want := "/api/v1/listing/distance/33.8938/35.5018/60/Offer"
	if srv.paths[0] != want {
		t.Errorf("path = %q, want %q", srv.paths[0], want)
	}

	if _, err := c.ListingsByDistanceAndSearch(33.8938, 35.5018, 60, TypeAny, "lawn care"); err != nil {
		t.Fatalf("ListingsByDistanceAndSearch: %v", err)
	}
	want = "/api/v1/listing/distance/33.8938/35.5018/60/Any/lawn%20care"
	if srv.paths[1] != want {
		t.Errorf("path = %q, want %q", srv.paths[1], want)
	}
}

func TestDatePaths(t *testing.T) {
	srv := newRecordingServer(t)
	c := New(srv.URL+"/api/v1", time.Second)

	c.ListingsByDate(TypeAny)                  //nolint:errcheck
	c.ListingsByDateAndSearch("ladder", "Any") //nolint:errcheck

	want := []string{
		"/api/v1/listing/date/Any",
		"/api/v1/listing/date/search/ladder/Any",
	}
	for i, p := range want {
		if srv.paths[i] != p {
			t.Errorf("path[%d] = %q, want %q", i, srv.paths[i], p)
		}
	}
}

func TestBearerAttachedAfterAuth(t *testing.T) {
	srv := newRecordingServer(t)
	srv.payload = map[string]interface{}{
		"token": "abc.def.ghi",
		"user":  User{UserID: 3, FirstName: "Rita"},
	}
	c := New(srv.URL+"/api/v1", time.Second)

	s, err := c.Auth("70000003", "demo")
	if err != nil {
		t.Fatalf("Auth: %v", err)
	}
	if s.UserID() != 3 {
		t.Errorf("session user = %d, want 3", s.UserID())
	}
	if srv.auths[0] != "" {
		t.Errorf("auth request should carry no bearer, got %q", srv.auths[0])
	}

	srv.payload = []Listing{}
	c.ListingsByDate(TypeAny) //nolint:errcheck
	if srv.auths[1] != "Bearer abc.def.ghi" {
		t.Errorf("bearer = %q", srv.auths[1])
	}

	c.Logout()
	c.ListingsByDate(TypeAny) //nolint:errcheck
	if srv.auths[2] != "" {
		t.Errorf("bearer after logout = %q", srv.auths[2])
	}
}

func TestImageNormalization(t *testing.T) {
	srv := newRecordingServer(t)
	srv.payload = map[string]interface{}{
		"images": []map[string]interface{}{
			{"image_id": 1, "url": "stored.png"},
			{"image_id": 2, "base64_image": "aGVsbG8="},
			{"image_id": 3},
		},
	}
	c := New(srv.URL+"/api/v1", time.Second)

	images, err := c.ImagesByListingID(9)
	if err != nil {
		t.Fatalf("ImagesByListingID: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images (imageless entry dropped), got %d", len(images))
	}
	if images[0].URL != "stored.png" {
		t.Errorf("images[0].URL = %q", images[0].URL)
	}
	if images[1].URL != "inline:2" {
		t.Errorf("images[1].URL = %q, want inline ref", images[1].URL)
	}
}

func TestAPIError(t *testing.T) {
	srv := newRecordingServer(t)
	srv.status = http.StatusNotFound
	srv.payload = map[string]string{"error": "listing not found"}
	c := New(srv.URL+"/api/v1", time.Second)

	_, err := c.ListingByID(42)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for %v", err)
	}

	srv.status = http.StatusForbidden
	srv.payload = map[string]string{"error": "not the listing owner"}
	err = c.DeleteListing(42)
	if err == nil || IsNotFound(err) {
		t.Fatalf("expected non-404 API error, got %v", err)
	}
}

func TestReadError_PlainTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("something broke\n")) //nolint:errcheck
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second)

	_, err := c.ListingsByDate(TypeAny)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "something broke" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
