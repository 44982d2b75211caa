// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package app_test

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/jredh-dev/souk/cmd/souk/internal/app"
	"github.com/jredh-dev/souk/internal/client"
)

// --- Mock Directory ---

type mockDir struct {
	authErr error
	user    client.User

	calls []string

	byDate      []client.Listing
	listErr     error
	ownListings []client.Listing

	lastLat    float64
	lastLng    float64
	lastRadius int

	sentTxs   []client.Transaction
	recvTxs   []client.Transaction
	txDetail  client.Transaction
	contract  string
	createdTx *client.Transaction
	updatedTx *client.Transaction
	deletedTx []int

	savedListing    *client.Listing
	deletedListings []int
}

func (d *mockDir) call(name string) { d.calls = append(d.calls, name) }

func (d *mockDir) Auth(_, _ string) (*client.Session, error) {
	d.call("Auth")
	if d.authErr != nil {
		return nil, d.authErr
	}
	return &client.Session{Token: "tok", User: d.user}, nil
}

func (d *mockDir) Logout() {}

func (d *mockDir) ListingsByDate(_ string) ([]client.Listing, error) {
	d.call("ListingsByDate")
	return d.byDate, d.listErr
}

func (d *mockDir) ListingsByDateAndSearch(query, _ string) ([]client.Listing, error) {
	d.call("ListingsByDateAndSearch")
	if d.listErr != nil {
		return nil, d.listErr
	}
	return []client.Listing{{ListingID: 99, Title: "result for " + query, Username: "maya", City: "Beirut"}}, nil
}

func (d *mockDir) ListingsByDistance(lat, lng float64, radiusKm int, _ string) ([]client.Listing, error) {
	d.call("ListingsByDistance")
	d.lastLat, d.lastLng, d.lastRadius = lat, lng, radiusKm
	return d.byDate, d.listErr
}

func (d *mockDir) ListingsByDistanceAndSearch(lat, lng float64, radiusKm int, _, query string) ([]client.Listing, error) {
	d.call("ListingsByDistanceAndSearch")
	d.lastLat, d.lastLng, d.lastRadius = lat, lng, radiusKm
	return []client.Listing{{ListingID: 98, Title: "near match for " + query}}, d.listErr
}

func (d *mockDir) ListingByID(id int) (client.Listing, error) {
	d.call("ListingByID")
	for _, l := range d.byDate {
		if l.ListingID == id {
			return l, nil
		}
	}
	return client.Listing{}, fmt.Errorf("listing %d: not found", id)
}

func (d *mockDir) ListingsByUser(_ int, _ string) ([]client.Listing, error) {
	d.call("ListingsByUser")
	return d.ownListings, nil
}

func (d *mockDir) CreateListing(l client.Listing) (client.Listing, error) {
	d.call("CreateListing")
	l.ListingID = 7
	d.savedListing = &l
	return l, nil
}

func (d *mockDir) UpdateListing(id int, l client.Listing) error {
	d.call("UpdateListing")
	l.ListingID = id
	d.savedListing = &l
	return nil
}

func (d *mockDir) DeleteListing(id int) error {
	d.call("DeleteListing")
	d.deletedListings = append(d.deletedListings, id)
	return nil
}

func (d *mockDir) UserByID(_ int) (client.User, error) {
	d.call("UserByID")
	return d.user, nil
}

func (d *mockDir) CreateTransaction(tx client.Transaction) (client.Transaction, error) {
	d.call("CreateTransaction")
	tx.TransactionID = 5
	d.createdTx = &tx
	return tx, nil
}

func (d *mockDir) TransactionByID(_ int) (client.Transaction, error) {
	d.call("TransactionByID")
	return d.txDetail, nil
}

func (d *mockDir) TransactionsByOfferedUser(_ int, _ string) ([]client.Transaction, error) {
	d.call("TransactionsByOfferedUser")
	return d.sentTxs, nil
}

func (d *mockDir) TransactionsByOfferingUser(_ int, _ string) ([]client.Transaction, error) {
	d.call("TransactionsByOfferingUser")
	return d.recvTxs, nil
}

func (d *mockDir) UpdateTransaction(id int, tx client.Transaction) error {
	d.call("UpdateTransaction")
	tx.TransactionID = id
	d.updatedTx = &tx
	d.txDetail = tx
	return nil
}

func (d *mockDir) DeleteTransaction(id int) error {
	d.call("DeleteTransaction")
	d.deletedTx = append(d.deletedTx, id)
	return nil
}

func (d *mockDir) TransactionContract(_ int) (string, error) {
	d.call("TransactionContract")
	return d.contract, nil
}

// --- Mock ImageResolver ---

// mockImages answers Peek immediately: every id counts as resolved, and
// okIDs decides whether it has an image.
type mockImages struct {
	okIDs  map[int]bool
	clears int
}

func (m *mockImages) Resolve(listingID int) (client.Image, bool) {
	if m.okIDs[listingID] {
		return client.Image{ImageID: 1, URL: "a.png", ListingID: listingID}, true
	}
	return client.Image{}, false
}

func (m *mockImages) Peek(listingID int) (client.Image, bool, bool) {
	img, ok := m.Resolve(listingID)
	return img, ok, true
}

func (m *mockImages) Clear() { m.clears++ }

// --- Test helpers ---

// mustModel type-asserts the result of Update back to app.Model.
func mustModel(iface tea.Model) app.Model {
	return iface.(app.Model)
}

func sendKey(m app.Model, char rune) (app.Model, tea.Cmd) {
	msg := tea.KeyPressMsg{Code: char, Text: string(char)}
	next, cmd := m.Update(msg)
	return mustModel(next), cmd
}

func typeString(m app.Model, s string) app.Model {
	for _, c := range s {
		m, _ = sendKey(m, c)
	}
	return m
}

func pressEnter(m app.Model) (app.Model, tea.Cmd) {
	msg := tea.KeyPressMsg{Code: tea.KeyEnter}
	next, cmd := m.Update(msg)
	return mustModel(next), cmd
}

func pressEsc(m app.Model) (app.Model, tea.Cmd) {
	msg := tea.KeyPressMsg{Code: tea.KeyEscape}
	next, cmd := m.Update(msg)
	return mustModel(next), cmd
}

func pressTab(m app.Model) (app.Model, tea.Cmd) {
	msg := tea.KeyPressMsg{Code: tea.KeyTab}
	next, cmd := m.Update(msg)
	return mustModel(next), cmd
}

func setSize(m app.Model, w, h int) (app.Model, tea.Cmd) {
	next, cmd := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return mustModel(next), cmd
}

// runCmd executes a tea.Cmd and dispatches the resulting message into the model.
func runCmd(m app.Model, cmd tea.Cmd) (app.Model, tea.Cmd) {
	if cmd == nil {
		return m, nil
	}
	msg := cmd()
	next, nextCmd := m.Update(msg)
	return mustModel(next), nextCmd
}

// doLogin drives the model through login; the browse screen's initial
// search has already been dispatched and answered on return.
func doLogin(m app.Model) app.Model {
	m, _ = setSize(m, 120, 40)
	m = typeString(m, "70000001")
	m, _ = pressEnter(m) // → password field
	m = typeString(m, "demo")
	m, cmd := pressEnter(m) // submit, fires doAuth
	m, cmd = runCmd(m, cmd) // authResultMsg → browse, fires search
	m, _ = runCmd(m, cmd)   // listingsMsg
	return m
}

func viewContains(t *testing.T, m app.Model, want, label string) {
	t.Helper()
	v := m.View()
	if !strings.Contains(v.Content, want) {
		t.Errorf("%s: view does not contain %q", label, want)
	}
}

func countCalls(d *mockDir, name string) int {
	n := 0
	for _, c := range d.calls {
		if c == name {
			n++
		}
	}
	return n
}

func demoListings() []client.Listing {
	return []client.Listing{
		{ListingID: 1, Type: client.TypeOffer, Title: "Lawn mowing", Username: "maya", City: "Beirut", UserID: 2},
		{ListingID: 2, Type: client.TypeRequest, Title: "Need a ladder", Username: "omar", City: "Zahle", UserID: 2},
	}
}

// --- Tests ---

func TestNew_InitialView(t *testing.T) {
	m := app.New("http://localhost:8080/api/v1", "Any", nil, nil)
	m, _ = setSize(m, 80, 24)
	v := m.View()
	if !v.AltScreen {
		t.Error("expected AltScreen enabled")
	}
	if !strings.Contains(v.Content, "Phone") {
		t.Error("expected login prompt")
	}
}

func TestLogin_Success(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1, FirstName: "Maya"}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)
	viewContains(t, m, "Lawn mowing", "browse after login")
	if got := countCalls(d, "ListingsByDate"); got != 1 {
		t.Errorf("expected exactly 1 date fetch after login, got %d", got)
	}
}

func TestLogin_Failure(t *testing.T) {
	d := &mockDir{authErr: fmt.Errorf("auth: wrong password")}
	m := app.New("http://localhost:8080/api/v1", "Any", d, nil)
	m, _ = setSize(m, 80, 24)
	m = typeString(m, "70000001")
	m, _ = pressEnter(m)
	m = typeString(m, "nope")
	m, cmd := pressEnter(m)
	m, _ = runCmd(m, cmd)
	viewContains(t, m, "wrong password", "login failure note")
	viewContains(t, m, "Phone", "still on login screen")
}

func TestSearch_TextTriggersOneFetch(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)
	d.calls = nil

	m, _ = sendKey(m, '/')
	m = typeString(m, "lawn")
	m, cmd := pressEnter(m)
	m, _ = runCmd(m, cmd)

	if len(d.calls) != 1 || d.calls[0] != "ListingsByDateAndSearch" {
		t.Fatalf("expected exactly [ListingsByDateAndSearch], got %v", d.calls)
	}
	viewContains(t, m, "result for lawn", "text search results")
}

func TestSearch_StaleResponseDiscarded(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	// First search fires but its response is held back.
	m, _ = sendKey(m, '/')
	m = typeString(m, "old")
	m, cmdA := pressEnter(m)

	// Second search supersedes it before the first response lands.
	m, _ = sendKey(m, '/')
	m = typeString(m, "new")
	m, cmdB := pressEnter(m)

	m, _ = runCmd(m, cmdB)
	viewContains(t, m, "result for oldnew", "fresh results")

	// The late first response must not overwrite the fresh results.
	m, _ = runCmd(m, cmdA)
	viewContains(t, m, "result for oldnew", "results after stale response")
}

func TestSearch_FailureShowsEmptyResult(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, listErr: fmt.Errorf("connection refused")}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)
	viewContains(t, m, "no listings found", "failed fetch")
}

func TestCards_PlaceholderWhenNoImage(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	img := &mockImages{okIDs: map[int]bool{1: true}}
	m := app.New("http://localhost:8080/api/v1", "Any", d, img)
	m = doLogin(m)

	v := m.View()
	if !strings.Contains(v.Content, "▣ image") {
		t.Error("expected image marker for listing with an image")
	}
	if !strings.Contains(v.Content, "no image") {
		t.Error("expected placeholder text for listing without an image")
	}
	if img.clears == 0 {
		t.Error("expected cache clear on new result set")
	}
}

func TestModeToggle_RequiresAnchor(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)
	d.calls = nil

	// No coordinate yet: toggling to distance detours through the picker.
	m, cmd := sendKey(m, 'm')
	if cmd != nil {
		t.Fatal("expected no fetch before a coordinate is picked")
	}
	viewContains(t, m, "Pick a location", "geo picker")

	m, cmd = pressEnter(m)
	m, _ = runCmd(m, cmd)
	if len(d.calls) != 1 || d.calls[0] != "ListingsByDistance" {
		t.Fatalf("expected exactly [ListingsByDistance], got %v", d.calls)
	}
	if d.lastRadius != 60 {
		t.Errorf("expected default radius 60, got %d", d.lastRadius)
	}
}

func TestGeoPicker_RadiusClamped(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, _ = sendKey(m, 'g')
	for i := 0; i < 30; i++ {
		m, _ = sendKey(m, '+')
	}
	viewContains(t, m, "250 km", "radius upper clamp")

	for i := 0; i < 40; i++ {
		m, _ = sendKey(m, '-')
	}
	viewContains(t, m, "0 km", "radius lower clamp")
}

func TestModeToggle_PreservesText(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, _ = sendKey(m, '/')
	m = typeString(m, "lawn")
	m, cmd := pressEnter(m)
	m, _ = runCmd(m, cmd)
	d.calls = nil

	// Switch to distance via the picker; the text filter must survive.
	m, _ = sendKey(m, 'm')
	m, cmd = pressEnter(m)
	m, _ = runCmd(m, cmd)

	if len(d.calls) != 1 || d.calls[0] != "ListingsByDistanceAndSearch" {
		t.Fatalf("expected exactly [ListingsByDistanceAndSearch], got %v", d.calls)
	}
}

func TestListingDetail_OfferFlow(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, cmd := pressEnter(m) // open first listing (owned by user 2)
	m, _ = runCmd(m, cmd)
	viewContains(t, m, "make an offer", "foreign listing actions")

	m, _ = sendKey(m, 'o')
	m = typeString(m, "25.50")
	m, cmd = pressEnter(m)
	m, _ = runCmd(m, cmd)

	if d.createdTx == nil {
		t.Fatal("expected a transaction to be created")
	}
	if d.createdTx.UserOfferedID != 1 || d.createdTx.UserOfferingID != 2 {
		t.Errorf("wrong parties: offered=%d offering=%d", d.createdTx.UserOfferedID, d.createdTx.UserOfferingID)
	}
	if d.createdTx.Status != client.StatusPending {
		t.Errorf("expected Pending status, got %q", d.createdTx.Status)
	}
	viewContains(t, m, "offer sent", "offer confirmation")
}

func TestListingDetail_OwnerActions(t *testing.T) {
	own := client.Listing{ListingID: 3, Type: client.TypeOffer, Title: "Tutoring", UserID: 1}
	d := &mockDir{user: client.User{UserID: 1, FirstName: "Rita"}, ownListings: []client.Listing{own}}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, cmd := sendKey(m, 'p')
	m, _ = runCmd(m, cmd) // profileMsg
	viewContains(t, m, "Tutoring", "own listings on profile")

	m, cmd = pressEnter(m)
	m, _ = runCmd(m, cmd)
	viewContains(t, m, "[e] edit", "owner actions on own listing")

	m, cmd = sendKey(m, 'd')
	m, _ = runCmd(m, cmd) // listingDeletedMsg → profile refresh
	if len(d.deletedListings) != 1 || d.deletedListings[0] != 3 {
		t.Errorf("expected listing 3 deleted, got %v", d.deletedListings)
	}
}

func TestCompose_CreateListing(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, cmd := sendKey(m, 'p')
	m, _ = runCmd(m, cmd)
	m, _ = sendKey(m, 'n')
	viewContains(t, m, "New listing", "compose screen")

	m = typeString(m, "Bike repair")
	m, _ = pressTab(m)
	m = typeString(m, "Flats and brakes")
	m, _ = pressTab(m)
	m = typeString(m, "Beirut")
	m, cmd = pressEnter(m)
	m, _ = runCmd(m, cmd)

	if d.savedListing == nil {
		t.Fatal("expected a listing to be created")
	}
	if d.savedListing.Title != "Bike repair" || d.savedListing.City != "Beirut" {
		t.Errorf("unexpected saved listing: %+v", d.savedListing)
	}
	if d.savedListing.Type != client.TypeOffer {
		t.Errorf("expected default Offer type, got %q", d.savedListing.Type)
	}
}

func TestTransactions_AcceptReceivedOffer(t *testing.T) {
	pending := client.Transaction{
		TransactionID: 5, UserOfferedID: 2, UserOfferingID: 1,
		ListingID: 1, Price: 30, CurrencyCode: "USD", Status: client.StatusPending,
	}
	d := &mockDir{
		user:     client.User{UserID: 1},
		recvTxs:  []client.Transaction{pending},
		txDetail: pending,
		contract: "Omar Khalil agrees to pay 30.00 USD",
	}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, cmd := sendKey(m, 't')
	m, _ = runCmd(m, cmd) // sent side, empty
	m, cmd = pressTab(m)  // received side
	m, _ = runCmd(m, cmd)
	viewContains(t, m, "Pending", "received offers")

	m, cmd = pressEnter(m)
	m, _ = runCmd(m, cmd) // txDetailMsg
	viewContains(t, m, "Omar Khalil", "contract text")
	viewContains(t, m, "[a] accept", "accept action on pending offer")

	m, cmd = sendKey(m, 'a')
	m, cmd = runCmd(m, cmd) // txActionMsg → detail refresh
	m, _ = runCmd(m, cmd)
	if d.updatedTx == nil || d.updatedTx.Status != client.StatusAccepted {
		t.Fatalf("expected transaction accepted, got %+v", d.updatedTx)
	}
	viewContains(t, m, "Accepted", "detail after accept")
}

func TestTransactions_WithdrawSentOffer(t *testing.T) {
	sent := client.Transaction{
		TransactionID: 6, UserOfferedID: 1, UserOfferingID: 2,
		ListingID: 2, Price: 15, CurrencyCode: "USD", Status: client.StatusPending,
	}
	d := &mockDir{
		user:     client.User{UserID: 1},
		sentTxs:  []client.Transaction{sent},
		txDetail: sent,
	}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, cmd := sendKey(m, 't')
	m, _ = runCmd(m, cmd)
	m, cmd = pressEnter(m)
	m, _ = runCmd(m, cmd)
	viewContains(t, m, "[w] withdraw", "withdraw action on sent offer")

	m, cmd = sendKey(m, 'w')
	m, _ = runCmd(m, cmd)
	if len(d.deletedTx) != 1 || d.deletedTx[0] != 6 {
		t.Errorf("expected transaction 6 withdrawn, got %v", d.deletedTx)
	}
}

func TestBrowse_TypeCycleRefetches(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)
	d.calls = nil

	m, cmd := sendKey(m, 'f')
	m, _ = runCmd(m, cmd)
	if len(d.calls) != 1 || d.calls[0] != "ListingsByDate" {
		t.Fatalf("expected exactly [ListingsByDate], got %v", d.calls)
	}
	viewContains(t, m, "date · Offer", "browse header after type cycle")
}

func TestBrowse_EscFromDetailReturns(t *testing.T) {
	d := &mockDir{user: client.User{UserID: 1}, byDate: demoListings()}
	m := app.New("http://localhost:8080/api/v1", "Any", d, &mockImages{})
	m = doLogin(m)

	m, cmd := pressEnter(m)
	m, _ = runCmd(m, cmd)
	m, _ = pressEsc(m)
	viewContains(t, m, "Listings", "back on browse")
}
