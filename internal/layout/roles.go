package layout

// RoleCategory is the closed set of badge categories. Each one maps to a
// single brand color used by the role chip in both the PDF and the preview.
type RoleCategory string

const (
	RoleOrganizer RoleCategory = "organizer"
	RoleSpeaker   RoleCategory = "speaker"
	RoleSponsor   RoleCategory = "sponsor"
	RoleVIP       RoleCategory = "vip"
	RoleStaff     RoleCategory = "staff"
	RoleAttendee  RoleCategory = "attendee"
)

// RoleOrder fixes the precedence used by substring matching on ticket types
// and tags. Earlier entries win.
var RoleOrder = []RoleCategory{
	RoleOrganizer,
	RoleSpeaker,
	RoleSponsor,
	RoleVIP,
	RoleStaff,
	RoleAttendee,
}

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B int
}

var roleColors = map[RoleCategory]RGB{
	RoleOrganizer: {R: 124, G: 58, B: 237},
	RoleSpeaker:   {R: 37, G: 99, B: 235},
	RoleSponsor:   {R: 217, G: 119, B: 6},
	RoleVIP:       {R: 234, G: 179, B: 8},
	RoleStaff:     {R: 5, G: 150, B: 105},
	RoleAttendee:  {R: 71, G: 85, B: 105},
}

// RoleColor returns the chip color for a category, defaulting to the
// attendee color for anything outside the closed set.
func RoleColor(role RoleCategory) RGB {
	if c, ok := roleColors[role]; ok {
		return c
	}
	return roleColors[RoleAttendee]
}

// Hex renders the color as a #rrggbb string for the HTML preview.
func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []int{c.R, c.G, c.B} {
		b[1+2*i] = digits[(v>>4)&0xf]
		b[2+2*i] = digits[v&0xf]
	}
	return string(b)
}
