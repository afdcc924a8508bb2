package attendee

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/confab/badgeforge/internal/layout"
)

func TestFormatNameIdempotent(t *testing.T) {
	cases := []string{
		"jane doe",
		"JANE DOE",
		"  jane   van  der   doe ",
		"jean-luc picard",
		"x",
	}
	for _, c := range cases {
		once := FormatName(c)
		assert.Equal(t, once, FormatName(once), "input %q", c)
	}
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "Jane Doe", FormatName("jane doe"))
	assert.Equal(t, "Jane Doe", FormatName("JANE DOE"))
	assert.Equal(t, "Jane Van Der Doe", FormatName("  jane   van der doe "))
	assert.Equal(t, "", FormatName("   "))
}

func TestNormalizeLinkedInIdempotent(t *testing.T) {
	cases := []string{
		"janedoe",
		"linkedin.com/in/janedoe",
		"https://linkedin.com/in/janedoe",
		"https://www.linkedin.com/in/janedoe/",
		"http://linkedin.com/janedoe",
	}
	for _, c := range cases {
		once := NormalizeLinkedIn(c)
		assert.Equal(t, once, NormalizeLinkedIn(once), "input %q", c)
		assert.Equal(t, "linkedin.com/in/janedoe", once, "input %q", c)
	}
}

func TestDeriveRoleExplicitWinsOverTags(t *testing.T) {
	got := DeriveRole("speaker", "", []string{"vip"})
	assert.Equal(t, layout.RoleSpeaker, got)
}

func TestDeriveRoleTicketTypeFallback(t *testing.T) {
	got := DeriveRole("", "VIP Pass", nil)
	assert.Equal(t, layout.RoleVIP, got)
}

func TestDeriveRoleTagFallback(t *testing.T) {
	got := DeriveRole("", "General Admission", []string{"helper", "Staff-2026"})
	assert.Equal(t, layout.RoleStaff, got)
}

func TestDeriveRoleDefault(t *testing.T) {
	assert.Equal(t, layout.RoleAttendee, DeriveRole("", "", nil))
	assert.Equal(t, layout.RoleAttendee, DeriveRole("unicorn", "General", []string{"x"}))
}

func TestDeriveRolePrecedenceWithinTicketType(t *testing.T) {
	// "organizer" precedes "staff" in enumeration order.
	got := DeriveRole("", "organizer and staff combo", nil)
	assert.Equal(t, layout.RoleOrganizer, got)
}

func TestProjectMinimalAttendee(t *testing.T) {
	rec := Record{ID: "u1", Name: "", Work: "", LinkedInUsername: ""}
	p := Project(rec, "ev1", "https://confab.events")

	assert.Equal(t, "Guest", p.DisplayName)
	assert.Empty(t, p.Company)
	assert.Empty(t, p.LinkedInHandle)
	assert.Equal(t, layout.RoleAttendee, p.Role)
	assert.Equal(t, "https://confab.events/connect?to=u1&event=ev1", p.QRPayload)
}

func TestProjectFullAttendee(t *testing.T) {
	rec := Record{
		ID:               "u2",
		Name:             "jane doe",
		Work:             "ACME ROCKETS",
		LinkedInUsername: "https://www.linkedin.com/in/janedoe",
		Role:             "Speaker",
		QRCodeURL:        "https://confab.events/connect?to=u2&event=ev1",
	}
	p := Project(rec, "ev1", "https://confab.events")

	assert.Equal(t, "Jane Doe", p.DisplayName)
	assert.Equal(t, "Acme rockets", p.Company)
	assert.Equal(t, "linkedin.com/in/janedoe", p.LinkedInHandle)
	assert.Equal(t, layout.RoleSpeaker, p.Role)
	assert.Equal(t, rec.QRCodeURL, p.QRPayload)
}

func TestQRURLCorrupted(t *testing.T) {
	assert.True(t, QRURLCorrupted("https://x.example/qr?token=sk-abc123"))
	assert.True(t, QRURLCorrupted("https://x.example/qr?API_KEY=zzz"))
	assert.True(t, QRURLCorrupted("not a url at all"))
	assert.True(t, QRURLCorrupted(""))
	assert.False(t, QRURLCorrupted("https://confab.events/connect?to=u1&event=ev1"))
}

func TestQRPayloadSkipsCorruptedURLs(t *testing.T) {
	rec := Record{
		ID:        "u3",
		QRCodeURL: "https://bad.example/qr?key=sk-abc123",
		TicketURL: "https://tickets.example/t/42",
	}
	assert.Equal(t, "https://tickets.example/t/42", QRPayload(rec, "ev1", "https://confab.events"))

	rec.TicketURL = "API_KEY=leaked"
	assert.Equal(t, "https://confab.events/connect?to=u3&event=ev1",
		QRPayload(rec, "ev1", "https://confab.events"))
}

func TestQRPayloadPriority(t *testing.T) {
	rec := Record{
		ID:        "u4",
		QRCodeURL: "https://stored.example/qr",
		TicketURL: "https://tickets.example/t/1",
	}
	assert.Equal(t, "https://stored.example/qr", QRPayload(rec, "ev1", "https://confab.events"))
}
