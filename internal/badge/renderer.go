// Package badge rasterizes projected attendees into print-ready PDF
// documents: a 4-up A4 sheet with crop marks for cutting, and a 1-up
// variant whose page is exactly the badge. Both share the layout spec with
// the HTML preview; geometry lives in internal/layout, never here.
package badge

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/confab/badgeforge/internal/assets"
	"github.com/confab/badgeforge/internal/attendee"
	"github.com/confab/badgeforge/internal/layout"
)

// photoAlpha is the fixed opacity of the background photo itself; the
// caller-configurable dimming happens in the overlay rectangle above it.
const photoAlpha = 0.9

// Theme is the per-render visual configuration shared by every badge in a
// document.
type Theme struct {
	Background     *assets.Image
	Logo           *assets.Image
	OverlayOpacity float64
	HeaderColor    layout.RGB
	BrandWord      string
}

// DefaultTheme returns the house style used when the caller supplies no
// theme knobs.
func DefaultTheme() Theme {
	return Theme{
		OverlayOpacity: 0.25,
		HeaderColor:    layout.RGB{R: 122, G: 30, B: 58},
		BrandWord:      "CONFAB",
	}
}

// ParseHexColor parses #rrggbb (leading # optional).
func ParseHexColor(s string) (layout.RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return layout.RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	var c layout.RGB
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return layout.RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	return c, nil
}

// Renderer draws badge documents against one layout spec.
type Renderer struct {
	spec layout.Spec
	log  *zap.Logger
}

func NewRenderer(log *zap.Logger) *Renderer {
	return &Renderer{spec: layout.Default, log: log}
}

// Spec exposes the layout the renderer resolves at render time, so callers
// can assert it matches the preview path's.
func (r *Renderer) Spec() layout.Spec {
	return r.spec
}

// RenderSheet produces the 4-up A4 document: attendees paginated into
// groups of four, each drawn at its fixed grid position with crop marks.
// Page order follows input order.
func (r *Renderer) RenderSheet(atts []attendee.Projected, theme Theme) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	if err := r.registerTheme(pdf, theme); err != nil {
		return nil, err
	}

	seq := 0
	for _, group := range paginate(atts, len(r.spec.Positions)) {
		pdf.AddPage()
		for slot, att := range group {
			r.drawBadge(pdf, r.spec.Positions[slot], att, theme, true, seq)
			seq++
		}
	}
	return output(pdf)
}

// RenderSingle produces the 1-up document: one page per attendee, page size
// equal to the badge, no crop marks since the page edge is the cut line.
func (r *Renderer) RenderSingle(atts []attendee.Projected, theme Theme) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size: gofpdf.SizeType{
			Wd: r.spec.Badge.WidthMm,
			Ht: r.spec.Badge.HeightMm,
		},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	if err := r.registerTheme(pdf, theme); err != nil {
		return nil, err
	}

	for seq, att := range atts {
		pdf.AddPage()
		r.drawBadge(pdf, layout.Point{}, att, theme, false, seq)
	}
	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to output PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// registerTheme registers the shared images once per document. The
// background is cover-cropped to the badge box so every page reuses one
// raster.
func (r *Renderer) registerTheme(pdf *gofpdf.Fpdf, theme Theme) error {
	if theme.Background != nil {
		bg, err := assets.CoverCrop(theme.Background, r.spec.Badge.WidthMm, r.spec.Badge.HeightMm)
		if err != nil {
			return fmt.Errorf("failed to prepare background: %w", err)
		}
		opt := gofpdf.ImageOptions{ImageType: bg.Format}
		pdf.RegisterImageOptionsReader("badge-bg", opt, bytes.NewReader(bg.Bytes))
	}
	if theme.Logo != nil {
		opt := gofpdf.ImageOptions{ImageType: theme.Logo.Format}
		pdf.RegisterImageOptionsReader("badge-logo", opt, bytes.NewReader(theme.Logo.Bytes))
	}
	return nil
}

func paginate(atts []attendee.Projected, perPage int) [][]attendee.Projected {
	var pages [][]attendee.Projected
	for start := 0; start < len(atts); start += perPage {
		end := start + perPage
		if end > len(atts) {
			end = len(atts)
		}
		pages = append(pages, atts[start:end])
	}
	return pages
}

// drawBadge renders one badge with its top-left corner at origin, layering
// back to front: base fill, photo, overlay, header, text block, role chip,
// QR tile, crop marks.
func (r *Renderer) drawBadge(pdf *gofpdf.Fpdf, origin layout.Point, att attendee.Projected, theme Theme, cropMarks bool, seq int) {
	s := r.spec
	x, y := origin.X, origin.Y
	w, h := s.Badge.WidthMm, s.Badge.HeightMm
	contentX := x + s.Badge.PaddingMm
	contentW := w - 2*s.Badge.PaddingMm

	pdf.SetFillColor(250, 250, 250)
	pdf.Rect(x, y, w, h, "F")

	hasPhoto := theme.Background != nil
	if hasPhoto {
		pdf.ClipRect(x, y, w, h, false)
		pdf.SetAlpha(photoAlpha, "Normal")
		opt := gofpdf.ImageOptions{ImageType: "JPG"}
		pdf.ImageOptions("badge-bg", x, y, w, h, false, opt, 0, "")
		pdf.SetAlpha(1, "Normal")
		pdf.ClipEnd()

		pdf.SetAlpha(theme.OverlayOpacity, "Normal")
		pdf.SetFillColor(17, 24, 39)
		pdf.Rect(x, y, w, h, "F")
		pdf.SetAlpha(1, "Normal")
	}

	// Header band.
	pdf.SetFillColor(theme.HeaderColor.R, theme.HeaderColor.G, theme.HeaderColor.B)
	pdf.Rect(x, y, w, s.Header.HeightMm, "F")
	if theme.Logo != nil {
		opt := gofpdf.ImageOptions{ImageType: theme.Logo.Format}
		logoY := y + (s.Header.HeightMm-s.Header.LogoHeightMm)/2
		pdf.ImageOptions("badge-logo", contentX, logoY, s.Header.LogoWidthMm, s.Header.LogoHeightMm, false, opt, 0, "")
	}
	pdf.SetFont("Helvetica", "B", s.Type.BrandSize)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(contentX, y)
	pdf.CellFormat(contentW, s.Header.HeightMm, theme.BrandWord, "", 0, "RM", false, 0, "")

	// Name, auto-shrunk to the content width.
	nameSize := layout.FitText(att.DisplayName, layout.MmToUnits(contentW),
		s.Type.NameMaxSize, s.Type.NameMinSize, s.Type.NameStepSize, s.Type.CharWidthRatio)
	if hasPhoto {
		pdf.SetTextColor(255, 255, 255)
	} else {
		pdf.SetTextColor(30, 41, 59)
	}
	pdf.SetFont("Helvetica", "B", nameSize)
	nameY := y + s.Content.NameTopMm
	pdf.SetXY(contentX, nameY)
	pdf.CellFormat(contentW, layout.UnitsToMm(nameSize), att.DisplayName, "", 0, "CM", false, 0, "")

	lineY := nameY + layout.UnitsToMm(nameSize)
	if att.Company != "" {
		lineY += s.Content.CompanyGapMm
		pdf.SetFont("Helvetica", "", s.Type.CompanySize)
		pdf.SetXY(contentX, lineY)
		pdf.CellFormat(contentW, 6, att.Company, "", 0, "CM", false, 0, "")
	}
	if att.LinkedInHandle != "" {
		lineY += s.Content.LinkedinGapMm
		pdf.SetFont("Helvetica", "", s.Type.LinkedinSize)
		pdf.SetXY(contentX, lineY)
		pdf.CellFormat(contentW, 5, att.LinkedInHandle, "", 0, "CM", false, 0, "")
	}

	r.drawRoleChip(pdf, origin, att.Role)
	r.drawQRTile(pdf, origin, att, seq)

	if cropMarks {
		pdf.SetDrawColor(100, 100, 100)
		pdf.SetLineWidth(s.CropMarks.ThicknessMm)
		for _, seg := range layout.CropMarkSegments(s, origin) {
			pdf.Line(seg.X1, seg.Y1, seg.X2, seg.Y2)
		}
	}
}

func (r *Renderer) drawRoleChip(pdf *gofpdf.Fpdf, origin layout.Point, role layout.RoleCategory) {
	s := r.spec
	label := strings.ToUpper(string(role))
	textMm := layout.UnitsToMm(float64(utf8.RuneCountInString(label)) * s.Type.CharWidthRatio * s.Type.ChipSize)
	chipW := textMm + 2*s.RoleChip.PaddingHMm
	chipX := origin.X + s.Badge.WidthMm - s.RoleChip.MarginRightMm - chipW
	chipY := origin.Y + s.Header.HeightMm + s.RoleChip.MarginTopMm

	c := layout.RoleColor(role)
	pdf.SetFillColor(c.R, c.G, c.B)
	pdf.RoundedRect(chipX, chipY, chipW, s.RoleChip.HeightMm, s.RoleChip.RadiusMm, "1234", "F")
	pdf.SetFont("Helvetica", "B", s.Type.ChipSize)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(chipX, chipY)
	pdf.CellFormat(chipW, s.RoleChip.HeightMm, label, "", 0, "CM", false, 0, "")
}

// drawQRTile draws the white tile backing and the attendee's QR code. A QR
// encode failure is the one soft failure inside a render: the tile gets an
// unavailable marker and the rest of the document proceeds.
func (r *Renderer) drawQRTile(pdf *gofpdf.Fpdf, origin layout.Point, att attendee.Projected, seq int) {
	s := r.spec
	tileX := origin.X + s.Badge.WidthMm - s.QR.MarginMm - s.QR.TileSizeMm
	tileY := origin.Y + s.Badge.HeightMm - s.QR.MarginMm - s.QR.TileSizeMm

	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(tileX, tileY, s.QR.TileSizeMm, s.QR.TileSizeMm, "F")

	png, err := encodeQR(att.QRPayload, s.QR.QuietZoneModules)
	if err != nil {
		r.log.Warn("QR encode failed, rendering placeholder",
			zap.String("attendee", att.ID), zap.Error(err))
		pdf.SetDrawColor(156, 163, 175)
		pdf.SetLineWidth(0.3)
		pdf.Rect(tileX+s.QR.PaddingMm, tileY+s.QR.PaddingMm, s.QR.CodeSizeMm, s.QR.CodeSizeMm, "D")
		pdf.SetFont("Helvetica", "", 6)
		pdf.SetTextColor(107, 114, 128)
		pdf.SetXY(tileX, tileY)
		pdf.CellFormat(s.QR.TileSizeMm, s.QR.TileSizeMm, "QR unavailable", "", 0, "CM", false, 0, "")
		return
	}

	name := fmt.Sprintf("qr-%d", seq)
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(png))
	pdf.ImageOptions(name, tileX+s.QR.PaddingMm, tileY+s.QR.PaddingMm, s.QR.CodeSizeMm, s.QR.CodeSizeMm, false, opt, 0, "")
}

// encodeQR renders the payload at high error correction. go-qrcode's quiet
// zone is fixed at 4 modules when enabled, so quietZoneModules only selects
// border on/off; a nonzero spec value smaller than 4 still gets the
// 4-module border.
func encodeQR(payload string, quietZoneModules int) ([]byte, error) {
	q, err := qrcode.New(payload, qrcode.High)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = quietZoneModules == 0
	return q.PNG(512)
}
