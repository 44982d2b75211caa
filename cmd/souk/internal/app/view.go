// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/jredh-dev/souk/internal/client"
	"github.com/jredh-dev/souk/internal/search"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E8A33D"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#E8A33D"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FD7AF"))

	tagOfferStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FD7AF"))

	tagRequestStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87AFFF"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E8A33D")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

// View renders the full-screen TUI.
func (m Model) View() tea.View {
	if m.width == 0 {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	var s string
	switch m.state {
	case stateLogin:
		s = m.viewLogin()
	case stateAuthenticating:
		s = m.viewAuthenticating()
	case stateBrowse:
		s = m.viewBrowse()
	case stateGeoPicker:
		s = m.viewGeoPicker()
	case stateListing:
		s = m.viewListing()
	case stateCompose:
		s = m.viewCompose()
	case stateProfile:
		s = m.viewProfile()
	case stateTransactions:
		s = m.viewTransactions()
	case stateTransaction:
		s = m.viewTransaction()
	case stateError:
		s = m.viewError()
	}

	v := tea.NewView(s)
	v.AltScreen = true
	return v
}

// --- Full-screen views ---

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  SOUK"))
	b.WriteString(dimStyle.Render("  " + m.baseURL))
	b.WriteString("\n\n")

	cursor := func(idx int) string {
		if m.loginIdx == idx {
			return "█"
		}
		return ""
	}
	b.WriteString("  Phone:    ")
	b.WriteString(m.phone)
	b.WriteString(cursor(0))
	b.WriteString("\n")
	b.WriteString("  Password: ")
	b.WriteString(strings.Repeat("*", len(m.password)))
	b.WriteString(cursor(1))
	b.WriteString("\n\n")

	if m.loginNote != "" {
		b.WriteString(errStyle.Render("  " + m.loginNote))
		b.WriteString("\n\n")
	}
	b.WriteString(dimStyle.Render("  [tab] switch field  [enter] login  [esc] quit"))
	return b.String()
}

func (m Model) viewAuthenticating() string {
	return titleStyle.Render("  SOUK") + "\n\n  Signing in..."
}

func (m Model) viewError() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  SOUK"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errStyle.Render("  ERROR: " + m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  [q/esc] quit"))
	return b.String()
}

func (m Model) viewBrowse() string {
	return m.splitView(m.renderResultsPanel, m.renderSearchPanel)
}

func (m Model) viewProfile() string {
	return m.splitView(m.renderProfilePanel, m.renderOwnListingsPanel)
}

func (m Model) viewTransactions() string {
	return m.splitView(m.renderTxListPanel, m.renderTxHelpPanel)
}

// splitView splits the terminal into two bordered panels stacked vertically.
// topFn and botFn receive the inner width available to their panel.
func (m Model) splitView(
	topFn func(innerW, maxLines int) string,
	botFn func(innerW, maxLines int) string,
) string {
	borderH := 2
	topHeight := m.height*2/3 - borderH
	if topHeight < 4 {
		topHeight = 4
	}
	botHeight := m.height - (topHeight + borderH*2) - borderH
	if botHeight < 3 {
		botHeight = 3
	}

	innerW := m.width - 4
	if innerW < 20 {
		innerW = 20
	}

	topContent := topFn(innerW, topHeight)
	botContent := botFn(innerW, botHeight)

	topBox := panelStyle.Width(innerW).Render(topContent)
	botBox := panelStyle.Width(innerW).Render(botContent)

	return topBox + "\n" + botBox
}

// --- Browse panels ---

func (m Model) renderResultsPanel(innerW, maxLines int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Listings"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s · %s", m.query.Mode(), m.listingType)))
	if m.query.Mode() == search.ModeDistance {
		lat, lng, ok := m.query.Coordinate()
		if ok {
			b.WriteString(dimStyle.Render(fmt.Sprintf(" · %.4f,%.4f r=%dkm", lat, lng, m.query.RadiusKm())))
		}
	}
	b.WriteString("\n\n")

	switch {
	case m.searching:
		b.WriteString(dimStyle.Render("Searching..."))
	case len(m.listings) == 0:
		b.WriteString(dimStyle.Render(m.status))
	default:
		// Each card takes two lines.
		avail := (maxLines - 3) / 2
		if avail < 1 {
			avail = 1
		}
		start := 0
		if m.browseIdx >= avail {
			start = m.browseIdx - avail + 1
		}
		end := start + avail
		if end > len(m.listings) {
			end = len(m.listings)
		}
		for i := start; i < end; i++ {
			b.WriteString(m.renderCard(m.listings[i], i == m.browseIdx, innerW))
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.status))
	}

	return b.String()
}

// renderCard renders one listing as a two-line card: title row with the
// type tag, then a dim byline with the image indicator.
func (m Model) renderCard(l client.Listing, selected bool, innerW int) string {
	var b strings.Builder

	marker := "  "
	if selected {
		marker = selectedStyle.Render("▸ ")
	}
	tag := tagOfferStyle.Render("[offer]")
	if l.Type == client.TypeRequest {
		tag = tagRequestStyle.Render("[request]")
	}
	title := l.Title
	if len(title) > innerW-14 {
		title = title[:innerW-17] + "..."
	}
	b.WriteString(marker)
	b.WriteString(tag)
	b.WriteString(" ")
	if selected {
		b.WriteString(selectedStyle.Render(title))
	} else {
		b.WriteString(title)
	}
	b.WriteString("\n")

	place := l.City
	if l.Country != "" {
		place += ", " + l.Country
	}
	byline := fmt.Sprintf("    %s  %s · %s · %s", m.imageIndicator(l.ListingID), l.Username, place, l.DateCreated)
	if l.Description != "" {
		byline += " · " + l.Description
	}
	if len(byline) > innerW {
		byline = byline[:innerW-3] + "..."
	}
	b.WriteString(dimStyle.Render(byline))
	b.WriteString("\n")
	return b.String()
}

// imageIndicator shows the cached image answer for a card without ever
// blocking the render on a fetch.
func (m Model) imageIndicator(listingID int) string {
	if m.images == nil {
		return "□ no image"
	}
	_, ok, resolved := m.images.Peek(listingID)
	switch {
	case !resolved:
		return "… image"
	case ok:
		return "▣ image"
	default:
		return "□ no image"
	}
}

func (m Model) renderSearchPanel(innerW, _ int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.searchBuf)
	if m.searchFocus {
		b.WriteString("█")
	}
	b.WriteString("\n\n")

	if m.searchFocus {
		b.WriteString(dimStyle.Render("[enter] search  [esc] cancel"))
	} else {
		b.WriteString(dimStyle.Render("[/] text  [m] date/distance  [g] map  [f] type  [+/-] radius  [s] refresh"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("[↑/↓] select  [enter] open  [p] profile  [t] transactions  [q] quit"))
	}
	return b.String()
}

// --- Geo picker ---

func (m Model) viewGeoPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  Pick a location"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  Latitude:  %s\n", valueStyle.Render(fmt.Sprintf("%.4f", m.pickLat))))
	b.WriteString(fmt.Sprintf("  Longitude: %s\n", valueStyle.Render(fmt.Sprintf("%.4f", m.pickLng))))
	b.WriteString(fmt.Sprintf("  Radius:    %s\n", valueStyle.Render(fmt.Sprintf("%d km", m.query.RadiusKm()))))
	b.WriteString(fmt.Sprintf("  Step:      %s\n", dimStyle.Render(fmt.Sprintf("%.3f°", m.pickStep))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [arrows/hjkl] move  [[/]] step  [+/-] radius"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [enter] search here  [esc] back"))
	return b.String()
}

// --- Listing detail ---

func (m Model) viewListing() string {
	l := m.listing
	var b strings.Builder

	tag := tagOfferStyle.Render("[offer]")
	if l.Type == client.TypeRequest {
		tag = tagRequestStyle.Render("[request]")
	}
	b.WriteString("  ")
	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(titleStyle.Render(l.Title))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  By:       %s\n", valueStyle.Render(l.Username)))
	b.WriteString(fmt.Sprintf("  Where:    %s, %s\n", valueStyle.Render(l.City), l.Country))
	b.WriteString(fmt.Sprintf("  Posted:   %s\n", valueStyle.Render(l.DateCreated)))
	b.WriteString(fmt.Sprintf("  Image:    %s\n", dimStyle.Render(m.imageIndicator(l.ListingID))))
	b.WriteString("\n")
	for _, line := range wrap(l.Description, m.width-4) {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	if m.detail.ownerActions {
		b.WriteString(dimStyle.Render("  [e] edit  [d] delete  [esc] back"))
	} else if m.offerFocus {
		b.WriteString(promptStyle.Render("  Offer price: "))
		b.WriteString(m.offerBuf)
		b.WriteString("█\n")
		b.WriteString(dimStyle.Render("  [enter] send  [esc] cancel"))
	} else {
		b.WriteString(dimStyle.Render("  [o] make an offer  [esc] back"))
	}
	if m.offerNote != "" {
		b.WriteString("\n")
		b.WriteString(valueStyle.Render("  " + m.offerNote))
	}
	return b.String()
}

// --- Compose ---

func (m Model) viewCompose() string {
	var b strings.Builder
	heading := "New listing"
	if m.form.listingID != 0 {
		heading = "Edit listing"
	}
	b.WriteString(titleStyle.Render("  " + heading))
	b.WriteString(dimStyle.Render("  ←/→ type: " + m.form.listingType))
	b.WriteString("\n\n")

	fields := []struct {
		label string
		value string
	}{
		{"Title", m.form.title},
		{"Details", m.form.description},
		{"City", m.form.city},
	}
	for i, f := range fields {
		label := fmt.Sprintf("  %-9s", f.label+":")
		if i == m.form.field {
			b.WriteString(promptStyle.Render(label))
			b.WriteString(f.value)
			b.WriteString("█")
		} else {
			b.WriteString(label)
			b.WriteString(f.value)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  [tab] next field  [enter] save  [esc] cancel"))
	return b.String()
}

// --- Profile panels ---

func (m Model) renderProfilePanel(innerW, _ int) string {
	var b strings.Builder
	u := m.profile
	b.WriteString(titleStyle.Render("Profile"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Name:       %s\n", valueStyle.Render(u.Name())))
	b.WriteString(fmt.Sprintf("Profession: %s\n", valueStyle.Render(u.Profession)))
	b.WriteString(fmt.Sprintf("Phone:      %s\n", valueStyle.Render(u.PhoneNumber)))
	b.WriteString(fmt.Sprintf("Where:      %s, %s\n", valueStyle.Render(u.City), u.Country))
	return b.String()
}

func (m Model) renderOwnListingsPanel(innerW, maxLines int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My listings"))
	b.WriteString("\n\n")

	if len(m.ownListings) == 0 {
		b.WriteString(dimStyle.Render("No listings yet."))
	} else {
		avail := maxLines - 4
		if avail < 1 {
			avail = 1
		}
		list := m.ownListings
		if len(list) > avail {
			list = list[:avail]
		}
		for i, l := range list {
			line := fmt.Sprintf("%s %s", l.Type, l.Title)
			if len(line) > innerW-4 {
				line = line[:innerW-7] + "..."
			}
			if i == m.profileIdx {
				b.WriteString(selectedStyle.Render(" ▸ " + line + " "))
			} else {
				b.WriteString("   " + line)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[↑/↓] select  [enter] open  [n] new  [esc] back"))
	return b.String()
}

// --- Transaction panels ---

func (m Model) renderTxListPanel(innerW, maxLines int) string {
	var b strings.Builder
	side := "sent"
	if m.txSide == "offering" {
		side = "received"
	}
	b.WriteString(titleStyle.Render("Transactions"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s · %s", side, m.txStatus)))
	b.WriteString("\n\n")

	if len(m.txs) == 0 {
		b.WriteString(dimStyle.Render("Nothing here."))
		return b.String()
	}

	avail := maxLines - 3
	if avail < 1 {
		avail = 1
	}
	list := m.txs
	if len(list) > avail {
		list = list[:avail]
	}
	for i, tx := range list {
		line := fmt.Sprintf("#%d  listing %d  %.2f %s  %s",
			tx.TransactionID, tx.ListingID, tx.Price, tx.CurrencyCode, tx.Status)
		if len(line) > innerW-4 {
			line = line[:innerW-7] + "..."
		}
		if i == m.txIdx {
			b.WriteString(selectedStyle.Render(" ▸ " + line + " "))
		} else {
			b.WriteString("   " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTxHelpPanel(innerW, _ int) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("[tab] sent/received  [f] status filter  [↑/↓] select"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[enter] open  [esc] back"))
	return b.String()
}

func (m Model) viewTransaction() string {
	tx := m.tx
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("  Transaction #%d", tx.TransactionID)))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  Status:  %s\n", valueStyle.Render(tx.Status)))
	b.WriteString(fmt.Sprintf("  Price:   %s\n", valueStyle.Render(fmt.Sprintf("%.2f %s", tx.Price, tx.CurrencyCode))))
	b.WriteString(fmt.Sprintf("  Listing: %s\n", valueStyle.Render(fmt.Sprintf("#%d", tx.ListingID))))
	if tx.JobStartDate != "" {
		b.WriteString(fmt.Sprintf("  Job:     %s → %s\n", tx.JobStartDate, tx.JobEndDate))
	}
	if m.contract != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  Contract:"))
		b.WriteString("\n")
		for _, line := range wrap(m.contract, m.width-4) {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")

	if m.txNote != "" {
		b.WriteString(errStyle.Render("  " + m.txNote))
		b.WriteString("\n")
	}
	switch {
	case m.txSide == "offering" && tx.Status == client.StatusPending:
		b.WriteString(dimStyle.Render("  [a] accept  [esc] back"))
	case m.txSide == "offering" && tx.Status == client.StatusAccepted:
		b.WriteString(dimStyle.Render("  [c] mark completed  [esc] back"))
	case m.txSide == "offered":
		b.WriteString(dimStyle.Render("  [w] withdraw  [esc] back"))
	default:
		b.WriteString(dimStyle.Render("  [esc] back"))
	}
	return b.String()
}

// --- Formatting helpers ---

func wrap(text string, width int) []string {
	if width < 10 {
		width = 10
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
