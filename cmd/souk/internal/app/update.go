// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package app

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/jredh-dev/souk/internal/client"
	"github.com/jredh-dev/souk/internal/search"
)

// Init satisfies tea.Model. Returns nil (no initial commands).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is the bubbletea update function.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case authResultMsg:
		return m.handleAuthResult(msg)

	case listingsMsg:
		return m.handleListings(msg)

	case imageResolvedMsg:
		// The resolver finished one listing's lookup; re-render picks up
		// the cached answer via Peek.
		return m, nil

	case listingSavedMsg:
		return m.handleListingSaved(msg)

	case listingDeletedMsg:
		return m.handleListingDeleted(msg)

	case profileMsg:
		return m.handleProfile(msg)

	case txListMsg:
		return m.handleTxList(msg)

	case txDetailMsg:
		return m.handleTxDetail(msg)

	case txActionMsg:
		return m.handleTxAction(msg)

	case offerSentMsg:
		return m.handleOfferSent(msg)
	}

	return m, nil
}

// --- Key Handling ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Code == 'c' && k.Mod == tea.ModCtrl {
		return m, tea.Quit
	}

	switch m.state {
	case stateLogin:
		return m.handleLoginKey(k)
	case stateBrowse:
		return m.handleBrowseKey(k)
	case stateGeoPicker:
		return m.handleGeoPickerKey(k)
	case stateListing:
		return m.handleListingKey(k)
	case stateCompose:
		return m.handleComposeKey(k)
	case stateProfile:
		return m.handleProfileKey(k)
	case stateTransactions:
		return m.handleTransactionsKey(k)
	case stateTransaction:
		return m.handleTransactionKey(k)
	case stateError:
		if k.Code == 'q' || k.Code == tea.KeyEscape {
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) handleLoginKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEnter:
		if m.loginIdx == 0 {
			m.loginIdx = 1
			return m, nil
		}
		if m.phone == "" {
			m.loginNote = "phone number required"
			m.loginIdx = 0
			return m, nil
		}
		m.loginNote = ""
		m.state = stateAuthenticating
		return m, m.doAuth()
	case tea.KeyTab, tea.KeyDown:
		m.loginIdx = (m.loginIdx + 1) % 2
	case tea.KeyUp:
		m.loginIdx = (m.loginIdx + 1) % 2
	case tea.KeyBackspace:
		if m.loginIdx == 0 && len(m.phone) > 0 {
			m.phone = m.phone[:len(m.phone)-1]
		} else if m.loginIdx == 1 && len(m.password) > 0 {
			m.password = m.password[:len(m.password)-1]
		}
	case tea.KeyEscape:
		return m, tea.Quit
	default:
		if k.Text != "" {
			if m.loginIdx == 0 {
				m.phone += k.Text
			} else {
				m.password += k.Text
			}
		}
	}
	return m, nil
}

func (m Model) handleBrowseKey(k tea.Key) (tea.Model, tea.Cmd) {
	if m.searchFocus {
		switch k.Code {
		case tea.KeyEnter:
			m.searchFocus = false
			m.query.SetText(strings.TrimSpace(m.searchBuf))
			return m.startSearch()
		case tea.KeyEscape:
			m.searchFocus = false
			m.searchBuf = m.query.Text()
		case tea.KeyBackspace:
			if len(m.searchBuf) > 0 {
				m.searchBuf = m.searchBuf[:len(m.searchBuf)-1]
			}
		default:
			if k.Text != "" {
				m.searchBuf += k.Text
			}
		}
		return m, nil
	}

	switch k.Code {
	case tea.KeyUp, 'k':
		if m.browseIdx > 0 {
			m.browseIdx--
		}
	case tea.KeyDown, 'j':
		if m.browseIdx < len(m.listings)-1 {
			m.browseIdx++
		}
	case tea.KeyEnter:
		if m.browseIdx < len(m.listings) {
			return m.openListing(m.listings[m.browseIdx], detailConfig{returnTo: stateBrowse})
		}
	case '/':
		m.searchFocus = true
	case 'm':
		return m.toggleMode()
	case 'g':
		return m.openGeoPicker(), nil
	case '+', '=':
		m.query.SetRadius(m.query.RadiusKm() + 10)
		if m.query.Mode() == search.ModeDistance {
			return m.startSearch()
		}
	case '-':
		m.query.SetRadius(m.query.RadiusKm() - 10)
		if m.query.Mode() == search.ModeDistance {
			return m.startSearch()
		}
	case 's':
		return m.startSearch()
	case 'f':
		// Type filter swap is a fresh screen instance in spirit: new
		// fetch, same query state.
		m.listingType = nextListingType(m.listingType)
		return m.startSearch()
	case 'p':
		m.state = stateProfile
		m.profileIdx = 0
		return m, m.doProfile()
	case 't':
		m.state = stateTransactions
		m.txIdx = 0
		return m, m.doTransactions(m.txSide, m.txStatus)
	case 'q', tea.KeyEscape:
		return m, tea.Quit
	}
	return m, nil
}

// toggleMode flips between date and distance ordering. Switching to
// distance without an anchor coordinate detours through the geo picker
// first; the picker's commit finishes the switch.
func (m Model) toggleMode() (tea.Model, tea.Cmd) {
	if m.query.Mode() == search.ModeDistance {
		m.query.SetMode(search.ModeDate)
		return m.startSearch()
	}
	if _, _, ok := m.query.Coordinate(); !ok {
		return m.openGeoPicker(), nil
	}
	m.query.SetMode(search.ModeDistance)
	return m.startSearch()
}

func (m Model) openGeoPicker() Model {
	lat, lng, ok := m.query.Coordinate()
	if !ok {
		anchor := fallbackAnchor
		if m.session != nil && !m.session.User.Location.IsZero() {
			anchor = m.session.User.Location
		}
		lat, lng = anchor.Lat, anchor.Lng
	}
	m.pickLat, m.pickLng = lat, lng
	m.state = stateGeoPicker
	return m
}

func (m Model) handleGeoPickerKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyUp, 'k':
		m.pickLat += m.pickStep
	case tea.KeyDown, 'j':
		m.pickLat -= m.pickStep
	case tea.KeyLeft, 'h':
		m.pickLng -= m.pickStep
	case tea.KeyRight, 'l':
		m.pickLng += m.pickStep
	case '[':
		if m.pickStep > 0.001 {
			m.pickStep /= 10
		}
	case ']':
		if m.pickStep < 1 {
			m.pickStep *= 10
		}
	case '+', '=':
		m.query.SetRadius(m.query.RadiusKm() + 10)
	case '-':
		m.query.SetRadius(m.query.RadiusKm() - 10)
	case tea.KeyEnter:
		m.query.SetCoordinate(m.pickLat, m.pickLng)
		m.query.SetMode(search.ModeDistance)
		m.state = stateBrowse
		return m.startSearch()
	case tea.KeyEscape:
		m.state = stateBrowse
	}
	return m, nil
}

func (m Model) openListing(l client.Listing, cfg detailConfig) (tea.Model, tea.Cmd) {
	m.listing = l
	m.detail = cfg
	m.detail.ownerActions = cfg.ownerActions || (m.session != nil && l.UserID == m.session.UserID())
	m.offerBuf = ""
	m.offerNote = ""
	m.offerFocus = false
	m.state = stateListing
	return m, m.doResolveImage(l.ListingID)
}

func (m Model) handleListingKey(k tea.Key) (tea.Model, tea.Cmd) {
	if m.offerFocus {
		switch k.Code {
		case tea.KeyEnter:
			return m.submitOffer()
		case tea.KeyEscape:
			m.offerFocus = false
			m.offerBuf = ""
		case tea.KeyBackspace:
			if len(m.offerBuf) > 0 {
				m.offerBuf = m.offerBuf[:len(m.offerBuf)-1]
			}
		default:
			if k.Text != "" {
				m.offerBuf += k.Text
			}
		}
		return m, nil
	}

	switch k.Code {
	case tea.KeyEscape:
		m.state = m.detail.returnTo
	case 'o':
		if !m.detail.ownerActions {
			m.offerFocus = true
			m.offerNote = ""
		}
	case 'e':
		if m.detail.ownerActions {
			m.form = composeForm{
				listingID:   m.listing.ListingID,
				listingType: m.listing.Type,
				title:       m.listing.Title,
				description: m.listing.Description,
				city:        m.listing.City,
			}
			m.state = stateCompose
		}
	case 'd':
		if m.detail.ownerActions {
			return m, m.doDeleteListing(m.listing.ListingID)
		}
	}
	return m, nil
}

func (m Model) submitOffer() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.offerBuf)
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		m.offerNote = "enter a price, e.g. 25 or 19.50"
		return m, nil
	}
	m.offerFocus = false
	m.offerBuf = ""
	return m, m.doSendOffer(m.listing, price)
}

func (m Model) handleComposeKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEscape:
		if m.form.listingID != 0 {
			m.state = stateListing
		} else {
			m.state = stateProfile
		}
	case tea.KeyTab, tea.KeyDown:
		m.form.field = (m.form.field + 1) % composeFieldCount
	case tea.KeyUp:
		m.form.field = (m.form.field + composeFieldCount - 1) % composeFieldCount
	case tea.KeyLeft, tea.KeyRight:
		if m.form.listingType == client.TypeRequest {
			m.form.listingType = client.TypeOffer
		} else {
			m.form.listingType = client.TypeRequest
		}
	case tea.KeyEnter:
		if strings.TrimSpace(m.form.title) == "" {
			return m, nil
		}
		return m, m.doSaveListing(m.form)
	case tea.KeyBackspace:
		f := m.formField()
		if len(*f) > 0 {
			*f = (*f)[:len(*f)-1]
		}
	default:
		if k.Text != "" {
			*m.formField() += k.Text
		}
	}
	return m, nil
}

func (m *Model) formField() *string {
	switch m.form.field {
	case 1:
		return &m.form.description
	case 2:
		return &m.form.city
	default:
		return &m.form.title
	}
}

func (m Model) handleProfileKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyUp, 'k':
		if m.profileIdx > 0 {
			m.profileIdx--
		}
	case tea.KeyDown, 'j':
		if m.profileIdx < len(m.ownListings)-1 {
			m.profileIdx++
		}
	case tea.KeyEnter:
		if m.profileIdx < len(m.ownListings) {
			return m.openListing(m.ownListings[m.profileIdx], detailConfig{
				ownerActions: true,
				returnTo:     stateProfile,
			})
		}
	case 'n':
		m.form = composeForm{listingType: client.TypeOffer}
		m.state = stateCompose
	case tea.KeyEscape:
		m.state = stateBrowse
	}
	return m, nil
}

func (m Model) handleTransactionsKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyUp, 'k':
		if m.txIdx > 0 {
			m.txIdx--
		}
	case tea.KeyDown, 'j':
		if m.txIdx < len(m.txs)-1 {
			m.txIdx++
		}
	case tea.KeyTab:
		if m.txSide == "offered" {
			m.txSide = "offering"
		} else {
			m.txSide = "offered"
		}
		m.txIdx = 0
		return m, m.doTransactions(m.txSide, m.txStatus)
	case 'f':
		m.txStatus = nextStatus(m.txStatus)
		m.txIdx = 0
		return m, m.doTransactions(m.txSide, m.txStatus)
	case tea.KeyEnter:
		if m.txIdx < len(m.txs) {
			m.state = stateTransaction
			m.txNote = ""
			return m, m.doTxDetail(m.txs[m.txIdx].TransactionID)
		}
	case tea.KeyEscape:
		m.state = stateBrowse
	}
	return m, nil
}

func nextListingType(t string) string {
	switch t {
	case client.TypeAny:
		return client.TypeOffer
	case client.TypeOffer:
		return client.TypeRequest
	default:
		return client.TypeAny
	}
}

func nextStatus(s string) string {
	switch s {
	case client.StatusAny:
		return client.StatusPending
	case client.StatusPending:
		return client.StatusAccepted
	case client.StatusAccepted:
		return client.StatusCompleted
	default:
		return client.StatusAny
	}
}

func (m Model) handleTransactionKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyEscape:
		m.state = stateTransactions
		return m, m.doTransactions(m.txSide, m.txStatus)
	case 'a':
		// Accepting is the listing owner's move on a pending offer.
		if m.txSide == "offering" && m.tx.Status == client.StatusPending {
			return m, m.doUpdateTxStatus(m.tx, client.StatusAccepted)
		}
	case 'c':
		if m.txSide == "offering" && m.tx.Status == client.StatusAccepted {
			return m, m.doUpdateTxStatus(m.tx, client.StatusCompleted)
		}
	case 'w':
		// Withdrawing is the initiator's move.
		if m.txSide == "offered" {
			return m, m.doWithdrawTx(m.tx.TransactionID)
		}
	}
	return m, nil
}

// --- Search ---

// startSearch is the single entry point for listing retrieval. It empties
// the visible result set, bumps the sequence and issues exactly one fetch
// for the query's current plan. A response that arrives tagged with an
// older sequence is ignored in handleListings.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	m.listings = nil
	m.browseIdx = 0
	m.searching = true
	m.status = ""
	if m.images != nil {
		m.images.Clear()
	}
	m.searchSeq++
	return m, m.doSearch(m.searchSeq, m.query.Plan(m.listingType))
}

func (m Model) doSearch(seq int, p search.Plan) tea.Cmd {
	return func() tea.Msg {
		if m.dir == nil {
			return listingsMsg{seq: seq, err: fmt.Errorf("directory client not configured")}
		}
		var (
			listings []client.Listing
			err      error
		)
		switch p.Op {
		case search.OpByDate:
			listings, err = m.dir.ListingsByDate(p.ListingType)
		case search.OpByDateAndText:
			listings, err = m.dir.ListingsByDateAndSearch(p.Text, p.ListingType)
		case search.OpByDistance:
			listings, err = m.dir.ListingsByDistance(p.Lat, p.Lng, p.RadiusKm, p.ListingType)
		case search.OpByDistanceAndText:
			listings, err = m.dir.ListingsByDistanceAndSearch(p.Lat, p.Lng, p.RadiusKm, p.ListingType, p.Text)
		}
		return listingsMsg{seq: seq, listings: listings, err: err}
	}
}

// --- Async Commands ---

func (m Model) doAuth() tea.Cmd {
	phone, password := m.phone, m.password
	return func() tea.Msg {
		if m.dir == nil {
			return authResultMsg{err: fmt.Errorf("directory client not configured")}
		}
		s, err := m.dir.Auth(phone, password)
		return authResultMsg{session: s, err: err}
	}
}

func (m Model) doResolveImage(listingID int) tea.Cmd {
	return func() tea.Msg {
		if m.images != nil {
			m.images.Resolve(listingID)
		}
		return imageResolvedMsg{listingID: listingID}
	}
}

func (m Model) doSendOffer(l client.Listing, price float64) tea.Cmd {
	userID := m.session.UserID()
	return func() tea.Msg {
		tx := client.Transaction{
			UserOfferedID:  userID,
			UserOfferingID: l.UserID,
			ListingID:      l.ListingID,
			Price:          price,
			CurrencyCode:   "USD",
			Status:         client.StatusPending,
		}
		created, err := m.dir.CreateTransaction(tx)
		return offerSentMsg{tx: created, err: err}
	}
}

func (m Model) doSaveListing(form composeForm) tea.Cmd {
	var loc client.Coordinate
	if m.session != nil {
		loc = m.session.User.Location
	}
	return func() tea.Msg {
		l := client.Listing{
			ListingID:   form.listingID,
			Type:        form.listingType,
			Title:       strings.TrimSpace(form.title),
			Description: strings.TrimSpace(form.description),
			City:        strings.TrimSpace(form.city),
			Location:    loc,
		}
		if form.listingID == 0 {
			created, err := m.dir.CreateListing(l)
			return listingSavedMsg{listing: created, err: err}
		}
		err := m.dir.UpdateListing(form.listingID, l)
		return listingSavedMsg{listing: l, err: err}
	}
}

func (m Model) doDeleteListing(id int) tea.Cmd {
	return func() tea.Msg {
		err := m.dir.DeleteListing(id)
		return listingDeletedMsg{id: id, err: err}
	}
}

func (m Model) doProfile() tea.Cmd {
	userID := m.session.UserID()
	return func() tea.Msg {
		if m.dir == nil {
			return profileMsg{err: fmt.Errorf("directory client not configured")}
		}
		user, err := m.dir.UserByID(userID)
		if err != nil {
			return profileMsg{err: err}
		}
		listings, err := m.dir.ListingsByUser(userID, client.TypeAny)
		if err != nil {
			return profileMsg{user: user, err: err}
		}
		return profileMsg{user: user, listings: listings}
	}
}

func (m Model) doTransactions(side, status string) tea.Cmd {
	userID := m.session.UserID()
	return func() tea.Msg {
		if m.dir == nil {
			return txListMsg{side: side, err: fmt.Errorf("directory client not configured")}
		}
		var (
			txs []client.Transaction
			err error
		)
		if side == "offering" {
			txs, err = m.dir.TransactionsByOfferingUser(userID, status)
		} else {
			txs, err = m.dir.TransactionsByOfferedUser(userID, status)
		}
		return txListMsg{side: side, txs: txs, err: err}
	}
}

func (m Model) doTxDetail(id int) tea.Cmd {
	return func() tea.Msg {
		tx, err := m.dir.TransactionByID(id)
		if err != nil {
			return txDetailMsg{err: err}
		}
		// Contract rendering is best effort; the detail screen works
		// without it.
		contract, _ := m.dir.TransactionContract(id)
		return txDetailMsg{tx: tx, contract: contract}
	}
}

func (m Model) doUpdateTxStatus(tx client.Transaction, status string) tea.Cmd {
	return func() tea.Msg {
		tx.Status = status
		if err := m.dir.UpdateTransaction(tx.TransactionID, tx); err != nil {
			return txActionMsg{verb: status, err: err}
		}
		return txActionMsg{verb: status}
	}
}

func (m Model) doWithdrawTx(id int) tea.Cmd {
	return func() tea.Msg {
		if err := m.dir.DeleteTransaction(id); err != nil {
			return txActionMsg{verb: "withdraw", err: err}
		}
		return txActionMsg{verb: "withdraw"}
	}
}

// --- Message Handlers ---

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = stateLogin
		m.password = ""
		m.loginIdx = 0
		m.loginNote = msg.err.Error()
		return m, nil
	}
	m.session = msg.session
	m.state = stateBrowse
	return m.startSearch()
}

func (m Model) handleListings(msg listingsMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.searchSeq {
		// A newer search superseded this one while it was in flight.
		return m, nil
	}
	m.searching = false
	if msg.err != nil || len(msg.listings) == 0 {
		m.listings = nil
		m.status = "no listings found"
		return m, nil
	}
	m.listings = msg.listings
	m.status = fmt.Sprintf("%d listings", len(msg.listings))

	cmds := make([]tea.Cmd, 0, len(msg.listings))
	for _, l := range msg.listings {
		cmds = append(cmds, m.doResolveImage(l.ListingID))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleListingSaved(msg listingSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		return m, nil
	}
	m.state = stateProfile
	return m, m.doProfile()
}

func (m Model) handleListingDeleted(msg listingDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		return m, nil
	}
	m.state = stateProfile
	return m, m.doProfile()
}

func (m Model) handleProfile(msg profileMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		return m, nil
	}
	m.profile = msg.user
	m.ownListings = msg.listings
	if m.profileIdx >= len(m.ownListings) {
		m.profileIdx = 0
	}
	return m, nil
}

func (m Model) handleTxList(msg txListMsg) (tea.Model, tea.Cmd) {
	if msg.side != m.txSide {
		// The user flipped sides while this fetch was in flight.
		return m, nil
	}
	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		return m, nil
	}
	m.txs = msg.txs
	if m.txIdx >= len(m.txs) {
		m.txIdx = 0
	}
	return m, nil
}

func (m Model) handleTxDetail(msg txDetailMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = stateError
		m.err = msg.err
		return m, nil
	}
	m.tx = msg.tx
	m.contract = msg.contract
	return m, nil
}

func (m Model) handleTxAction(msg txActionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.txNote = msg.err.Error()
		return m, nil
	}
	if msg.verb == "withdraw" {
		m.state = stateTransactions
		return m, m.doTransactions(m.txSide, m.txStatus)
	}
	m.txNote = ""
	return m, m.doTxDetail(m.tx.TransactionID)
}

func (m Model) handleOfferSent(msg offerSentMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.offerNote = msg.err.Error()
		return m, nil
	}
	m.offerNote = fmt.Sprintf("offer sent (%.2f %s)", msg.tx.Price, msg.tx.CurrencyCode)
	return m, nil
}
