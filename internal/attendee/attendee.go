// Package attendee projects raw registration records into the normalized
// shape the badge renderers consume. Projection is pure and total: missing
// fields degrade to sensible defaults, never to errors.
package attendee

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/confab/badgeforge/internal/layout"
)

// Record is the raw attendee row as stored, keyed by an opaque user id
// under an event.
type Record struct {
	ID               string
	Name             string
	Work             string
	LinkedInUsername string
	Role             string
	TicketType       string
	Tags             []string
	QRCodeURL        string
	TicketURL        string
}

// Projected is the render-ready view of one attendee. It is recomputed on
// every render and never persisted.
type Projected struct {
	ID             string
	DisplayName    string
	Company        string
	LinkedInHandle string
	Role           layout.RoleCategory
	QRPayload      string
}

// Project normalizes a raw record. publicBaseURL is used for the generated
// connect-link fallback when the record carries no usable QR URL.
func Project(rec Record, eventID, publicBaseURL string) Projected {
	name := FormatName(rec.Name)
	if name == "" {
		name = "Guest"
	}
	var linkedin string
	if strings.TrimSpace(rec.LinkedInUsername) != "" {
		linkedin = NormalizeLinkedIn(rec.LinkedInUsername)
	}
	return Projected{
		ID:             rec.ID,
		DisplayName:    name,
		Company:        FormatCompany(rec.Work),
		LinkedInHandle: linkedin,
		Role:           DeriveRole(rec.Role, rec.TicketType, rec.Tags),
		QRPayload:      QRPayload(rec, eventID, publicBaseURL),
	}
}

// FormatName title-cases each whitespace-separated token and rejoins with
// single spaces. Idempotent.
func FormatName(name string) string {
	tokens := strings.Fields(name)
	for i, tok := range tokens {
		runes := []rune(tok)
		tokens[i] = strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(tokens, " ")
}

// FormatCompany sentence-cases the company field; empty input stays empty
// so the renderer can omit the line entirely.
func FormatCompany(work string) string {
	work = strings.TrimSpace(work)
	if work == "" {
		return ""
	}
	runes := []rune(work)
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}

var linkedinPrefix = regexp.MustCompile(`(?i)^(https?://)?(www\.)?linkedin\.com/(in/)?`)

// NormalizeLinkedIn reduces any accepted LinkedIn spelling to the canonical
// linkedin.com/in/<handle> form. Applying it twice is a no-op.
func NormalizeLinkedIn(raw string) string {
	handle := strings.TrimSpace(raw)
	handle = linkedinPrefix.ReplaceAllString(handle, "")
	handle = strings.TrimSuffix(handle, "/")
	return "linkedin.com/in/" + handle
}

// DeriveRole resolves the badge category with a three-tier fallback:
// explicit role field, substring of the ticket type, substring of any tag.
// Substring matching is deliberately loose; existing registration data
// relies on it. Callers only ever see the closed RoleCategory set.
func DeriveRole(role, ticketType string, tags []string) layout.RoleCategory {
	if r := strings.ToLower(strings.TrimSpace(role)); r != "" {
		for _, cat := range layout.RoleOrder {
			if r == string(cat) {
				return cat
			}
		}
	}
	if t := strings.ToLower(ticketType); t != "" {
		for _, cat := range layout.RoleOrder {
			if strings.Contains(t, string(cat)) {
				return cat
			}
		}
	}
	for _, cat := range layout.RoleOrder {
		for _, tag := range tags {
			if strings.Contains(strings.ToLower(tag), string(cat)) {
				return cat
			}
		}
	}
	return layout.RoleAttendee
}

// QRURLCorrupted reports whether a stored QR URL carries credential-shaped
// fragments or is not a URL at all. The rule set is the union of every
// heuristic the cleanup tooling has needed so far; keep additions here so
// projection and cleanup stay in agreement.
func QRURLCorrupted(url string) bool {
	if url == "" {
		return true
	}
	if strings.Contains(url, "sk-") || strings.Contains(url, "API_KEY") {
		return true
	}
	return !strings.HasPrefix(url, "http")
}

// ConnectURL is the canonical generated QR payload for an attendee.
func ConnectURL(publicBaseURL, userID, eventID string) string {
	return fmt.Sprintf("%s/connect?to=%s&event=%s", strings.TrimSuffix(publicBaseURL, "/"), userID, eventID)
}

// QRPayload picks the attendee's QR string: the stored QR URL, then the
// ticket URL, then the generated connect link. Corrupted URLs are skipped,
// never echoed onto a badge.
func QRPayload(rec Record, eventID, publicBaseURL string) string {
	if rec.QRCodeURL != "" && !QRURLCorrupted(rec.QRCodeURL) {
		return rec.QRCodeURL
	}
	if rec.TicketURL != "" && !QRURLCorrupted(rec.TicketURL) {
		return rec.TicketURL
	}
	return ConnectURL(publicBaseURL, rec.ID, eventID)
}
