package preview_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/confab/badgeforge/internal/attendee"
	"github.com/confab/badgeforge/internal/badge"
	"github.com/confab/badgeforge/internal/layout"
	"github.com/confab/badgeforge/internal/preview"
)

func sampleProjected() attendee.Projected {
	return attendee.Projected{
		ID:             "u1",
		DisplayName:    "Jane Doe",
		Company:        "Acme rockets",
		LinkedInHandle: "linkedin.com/in/janedoe",
		Role:           layout.RoleSpeaker,
		QRPayload:      "https://confab.events/connect?to=u1&event=ev1",
	}
}

func sampleTheme() preview.Theme {
	return preview.Theme{
		BackgroundURL:  "https://img.example/bg.jpg",
		LogoURL:        "https://img.example/logo.png",
		OverlayOpacity: 0.25,
		HeaderColorHex: "#7a1e3a",
		BrandWord:      "CONFAB",
	}
}

// The preview and PDF paths must resolve the identical layout at render
// time; any divergence between the two is a correctness bug.
func TestPreviewAndPDFShareOneLayout(t *testing.T) {
	pdfSpec := badge.NewRenderer(zap.NewNop()).Spec()
	assert.Equal(t, pdfSpec, preview.Spec())
}

func TestRenderGeometryMatchesSpec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, sampleProjected(), sampleTheme()))
	html := buf.String()

	s := preview.Spec()
	px := func(mm float64) string {
		return fmt.Sprintf("%.2fpx", layout.MmToUnits(mm))
	}
	assert.Contains(t, html, "width:"+px(s.Badge.WidthMm))
	assert.Contains(t, html, "height:"+px(s.Badge.HeightMm))
	assert.Contains(t, html, "height:"+px(s.Header.HeightMm))
	assert.Contains(t, html, "width:"+px(s.QR.TileSizeMm))
	assert.Contains(t, html, "width:"+px(s.QR.CodeSizeMm))
}

func TestRenderContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, sampleProjected(), sampleTheme()))
	html := buf.String()

	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "Acme rockets")
	assert.Contains(t, html, "linkedin.com/in/janedoe")
	assert.Contains(t, html, "SPEAKER")
	assert.Contains(t, html, layout.RoleColor(layout.RoleSpeaker).Hex())
	assert.Contains(t, html, "data:image/png;base64,")
}

// Missing remote images must hide themselves rather than break layout.
func TestRenderDegradesOnBrokenImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, sampleProjected(), sampleTheme()))
	assert.Contains(t, buf.String(), "onerror=\"this.style.display='none'\"")
}

func TestRenderOmitsEmptyLines(t *testing.T) {
	att := sampleProjected()
	att.Company = ""
	att.LinkedInHandle = ""

	var buf bytes.Buffer
	theme := sampleTheme()
	theme.BackgroundURL = ""
	theme.LogoURL = ""
	require.NoError(t, preview.Render(&buf, att, theme))
	html := buf.String()

	assert.NotContains(t, html, "badge-company")
	assert.NotContains(t, html, "badge-linkedin")
	assert.False(t, strings.Contains(html, "object-fit:cover"), "no background image expected")
}

func TestRenderTypeSizesComeFromSpec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, sampleProjected(), sampleTheme()))
	html := buf.String()

	s := preview.Spec()
	assert.Contains(t, html, fmt.Sprintf("font-size:%.2fpx", s.Type.BrandSize))
	assert.Contains(t, html, fmt.Sprintf("font-size:%.2fpx", s.Type.CompanySize))
	assert.Contains(t, html, fmt.Sprintf("font-size:%.2fpx", s.Type.LinkedinSize))
	assert.Contains(t, html, fmt.Sprintf("font-size:%.2fpx", s.Type.ChipSize))
}

func TestRenderUnencodableQRPayload(t *testing.T) {
	att := sampleProjected()
	att.QRPayload = strings.Repeat("x", 3000)

	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, att, sampleTheme()))
	html := buf.String()

	assert.Contains(t, html, "QR unavailable")
	assert.NotContains(t, html, "data:image/png;base64,")
}

func TestRenderNameUsesSharedFitText(t *testing.T) {
	s := preview.Spec()
	long := sampleProjected()
	long.DisplayName = strings.Repeat("Wide Name ", 6)

	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, long, sampleTheme()))

	contentW := layout.MmToUnits(s.Badge.WidthMm - 2*s.Badge.PaddingMm)
	want := layout.FitText(long.DisplayName, contentW,
		s.Type.NameMaxSize, s.Type.NameMinSize, s.Type.NameStepSize, s.Type.CharWidthRatio)
	assert.Contains(t, buf.String(), fmt.Sprintf("font-size:%.2fpx", want))
}
