// Package preview renders a single badge as an HTML fragment for
// admin-side visual verification before generating the real PDF. Every
// pixel dimension is a layout.Spec millimeter value multiplied by
// layout.UnitsPerMm, the same constant the PDF path uses; the two outputs
// share one geometry source and cannot drift.
package preview

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/confab/badgeforge/internal/attendee"
	"github.com/confab/badgeforge/internal/layout"
)

// Theme mirrors badge.Theme for the preview path, with images supplied as
// URLs since the browser fetches them itself.
type Theme struct {
	BackgroundURL  string
	LogoURL        string
	OverlayOpacity float64
	HeaderColorHex string
	BrandWord      string
}

type viewModel struct {
	BadgeW, BadgeH float64
	Padding        float64
	HeaderH        float64
	LogoW, LogoH   float64
	NameTop        float64
	NameSize       float64
	CompanyTop     float64
	LinkedinTop    float64
	ChipH          float64
	ChipPadH       float64
	ChipRadius     float64
	ChipTop        float64
	ChipRight      float64
	ChipColor      string
	BrandSize      float64
	CompanySize    float64
	LinkedinSize   float64
	ChipSize       float64
	TileSize       float64
	QRSize         float64
	QRMargin       float64
	OverlayOpacity float64
	HeaderColor    string
	BrandWord      string
	BackgroundURL  string
	LogoURL        string
	DisplayName    string
	Company        string
	LinkedInHandle string
	RoleLabel      string
	QRDataURI      template.URL
	QRUnavailable  bool
	TextColor      string
}

// Spec returns the layout the preview path resolves at render time.
func Spec() layout.Spec {
	return layout.Default
}

// Render writes the badge preview fragment for one projected attendee.
func Render(w io.Writer, att attendee.Projected, theme Theme) error {
	s := Spec()
	px := layout.MmToUnits

	vm := viewModel{
		BadgeW:         px(s.Badge.WidthMm),
		BadgeH:         px(s.Badge.HeightMm),
		Padding:        px(s.Badge.PaddingMm),
		HeaderH:        px(s.Header.HeightMm),
		LogoW:          px(s.Header.LogoWidthMm),
		LogoH:          px(s.Header.LogoHeightMm),
		NameTop:        px(s.Content.NameTopMm),
		ChipH:          px(s.RoleChip.HeightMm),
		ChipPadH:       px(s.RoleChip.PaddingHMm),
		ChipRadius:     px(s.RoleChip.RadiusMm),
		ChipTop:        px(s.Header.HeightMm + s.RoleChip.MarginTopMm),
		ChipRight:      px(s.RoleChip.MarginRightMm),
		ChipColor:      layout.RoleColor(att.Role).Hex(),
		BrandSize:      s.Type.BrandSize,
		CompanySize:    s.Type.CompanySize,
		LinkedinSize:   s.Type.LinkedinSize,
		ChipSize:       s.Type.ChipSize,
		TileSize:       px(s.QR.TileSizeMm),
		QRSize:         px(s.QR.CodeSizeMm),
		QRMargin:       px(s.QR.MarginMm),
		OverlayOpacity: theme.OverlayOpacity,
		HeaderColor:    theme.HeaderColorHex,
		BrandWord:      theme.BrandWord,
		BackgroundURL:  theme.BackgroundURL,
		LogoURL:        theme.LogoURL,
		DisplayName:    att.DisplayName,
		Company:        att.Company,
		LinkedInHandle: att.LinkedInHandle,
		RoleLabel:      strings.ToUpper(string(att.Role)),
		TextColor:      "#1e293b",
	}
	if theme.BackgroundURL != "" {
		vm.TextColor = "#ffffff"
	}

	// The name uses the same fitText heuristic as the PDF; font size is in
	// the shared unit space, which the preview treats as CSS pixels.
	contentW := px(s.Badge.WidthMm - 2*s.Badge.PaddingMm)
	vm.NameSize = layout.FitText(att.DisplayName, contentW,
		s.Type.NameMaxSize, s.Type.NameMinSize, s.Type.NameStepSize, s.Type.CharWidthRatio)

	// Same vertical stacking as the PDF: name baseline block, then the
	// company and LinkedIn lines spaced by the content gaps.
	lineTop := vm.NameTop + vm.NameSize
	if att.Company != "" {
		lineTop += px(s.Content.CompanyGapMm)
		vm.CompanyTop = lineTop
	}
	if att.LinkedInHandle != "" {
		lineTop += px(s.Content.LinkedinGapMm)
		vm.LinkedinTop = lineTop
	}

	if png, err := qrcode.Encode(att.QRPayload, qrcode.High, 256); err != nil {
		vm.QRUnavailable = true
	} else {
		vm.QRDataURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}

	return badgeTemplate.Execute(w, vm)
}

var badgeTemplate = template.Must(template.New("badge-preview").Funcs(template.FuncMap{
	"pxf": func(v float64) template.CSS { return template.CSS(fmt.Sprintf("%.2fpx", v)) },
}).Parse(`<div class="badge-preview" style="position:relative;overflow:hidden;width:{{pxf .BadgeW}};height:{{pxf .BadgeH}};background:#fafafa;color:{{.TextColor}};font-family:Helvetica,Arial,sans-serif;">
{{- if .BackgroundURL}}
  <img src="{{.BackgroundURL}}" onerror="this.style.display='none'" style="position:absolute;inset:0;width:100%;height:100%;object-fit:cover;opacity:0.9;" alt="">
  <div style="position:absolute;inset:0;background:#111827;opacity:{{.OverlayOpacity}};"></div>
{{- end}}
  <div style="position:absolute;top:0;left:0;width:100%;height:{{pxf .HeaderH}};background:{{.HeaderColor}};display:flex;align-items:center;justify-content:space-between;padding:0 {{pxf .Padding}};box-sizing:border-box;">
{{- if .LogoURL}}
    <img src="{{.LogoURL}}" onerror="this.style.display='none'" style="width:{{pxf .LogoW}};height:{{pxf .LogoH}};object-fit:contain;" alt="">
{{- else}}
    <span></span>
{{- end}}
    <span style="color:#fff;font-weight:bold;font-size:{{pxf .BrandSize}};">{{.BrandWord}}</span>
  </div>
  <div style="position:absolute;top:{{pxf .NameTop}};left:{{pxf .Padding}};right:{{pxf .Padding}};text-align:center;font-weight:bold;font-size:{{pxf .NameSize}};line-height:1.1;">{{.DisplayName}}</div>
{{- if .Company}}
  <div class="badge-company" style="position:absolute;top:{{pxf .CompanyTop}};left:{{pxf .Padding}};right:{{pxf .Padding}};text-align:center;font-size:{{pxf .CompanySize}};">{{.Company}}</div>
{{- end}}
{{- if .LinkedInHandle}}
  <div class="badge-linkedin" style="position:absolute;top:{{pxf .LinkedinTop}};left:{{pxf .Padding}};right:{{pxf .Padding}};text-align:center;font-size:{{pxf .LinkedinSize}};">{{.LinkedInHandle}}</div>
{{- end}}
  <div class="badge-chip" style="position:absolute;top:{{pxf .ChipTop}};right:{{pxf .ChipRight}};height:{{pxf .ChipH}};padding:0 {{pxf .ChipPadH}};border-radius:{{pxf .ChipRadius}};background:{{.ChipColor}};color:#fff;font-weight:bold;font-size:{{pxf .ChipSize}};display:flex;align-items:center;">{{.RoleLabel}}</div>
  <div class="badge-qr" style="position:absolute;bottom:{{pxf .QRMargin}};right:{{pxf .QRMargin}};width:{{pxf .TileSize}};height:{{pxf .TileSize}};background:#fff;display:flex;align-items:center;justify-content:center;">
{{- if .QRUnavailable}}
    <span style="color:#6b7280;font-size:6px;">QR unavailable</span>
{{- else}}
    <img src="{{.QRDataURI}}" style="width:{{pxf .QRSize}};height:{{pxf .QRSize}};" alt="QR">
{{- end}}
  </div>
</div>
`))
