// Package layout is the single source of truth for badge geometry.
// Every dimension is expressed in millimeters; the PDF renderers and the
// HTML preview both consume the same Spec value and the same conversion
// constant, so the two outputs cannot drift apart.
package layout

import "unicode/utf8"

// UnitsPerMm converts millimeters to PDF points (and to preview pixels).
const UnitsPerMm = 2.83465

// MmToUnits converts a millimeter length to points.
func MmToUnits(mm float64) float64 {
	return mm * UnitsPerMm
}

// UnitsToMm converts a point length back to millimeters.
func UnitsToMm(units float64) float64 {
	return units / UnitsPerMm
}

// Point is an x/y offset in millimeters from the page's top-left corner.
type Point struct {
	X float64
	Y float64
}

// Segment is a straight stroke in millimeter page coordinates.
type Segment struct {
	X1, Y1 float64
	X2, Y2 float64
}

type PageSpec struct {
	WidthMm  float64
	HeightMm float64
	MarginMm float64
}

type GridSpec struct {
	Cols     int
	Rows     int
	GutterMm float64
}

type BadgeSpec struct {
	WidthMm   float64
	HeightMm  float64
	PaddingMm float64
}

type HeaderSpec struct {
	HeightMm     float64
	LogoWidthMm  float64
	LogoHeightMm float64
}

type RoleChipSpec struct {
	HeightMm    float64
	PaddingHMm  float64
	RadiusMm    float64
	MarginTopMm float64
	// MarginRightMm is measured from the badge's right edge.
	MarginRightMm float64
}

type QRSpec struct {
	TileSizeMm float64
	CodeSizeMm float64
	PaddingMm  float64
	MarginMm   float64
	// QuietZoneModules is the white border around the code. The encoder's
	// border width is fixed at 4 modules; zero disables it entirely and any
	// other value enables it.
	QuietZoneModules int
}

type ContentSpec struct {
	NameTopMm     float64
	CompanyGapMm  float64
	LinkedinGapMm float64
}

type CropMarkSpec struct {
	LengthMm    float64
	OffsetMm    float64
	ThicknessMm float64
}

// TypographySpec carries every font size the badge face uses. Sizes are in
// the shared unit space (PDF points, preview pixels); keeping them here is
// what stops the PDF and preview paths drifting apart.
type TypographySpec struct {
	NameMaxSize    float64
	NameMinSize    float64
	NameStepSize   float64
	CharWidthRatio float64
	BrandSize      float64
	CompanySize    float64
	LinkedinSize   float64
	ChipSize       float64
}

// Spec describes one badge sheet. Positions holds the top-left corner of
// every badge slot in row-major order; for the 2x2 sheet that is top-left,
// top-right, bottom-left, bottom-right.
type Spec struct {
	Page      PageSpec
	Grid      GridSpec
	Badge     BadgeSpec
	Positions []Point
	Header    HeaderSpec
	RoleChip  RoleChipSpec
	QR        QRSpec
	Content   ContentSpec
	CropMarks CropMarkSpec
	Type      TypographySpec
}

// Default is the production A4 2x2 sheet. The grid tiles the page exactly:
// 90*2 + 10 + 2*10 = 210 and 133.5*2 + 10 + 2*10 = 297.
var Default = func() Spec {
	s := Spec{
		Page:  PageSpec{WidthMm: 210, HeightMm: 297, MarginMm: 10},
		Grid:  GridSpec{Cols: 2, Rows: 2, GutterMm: 10},
		Badge: BadgeSpec{WidthMm: 90, HeightMm: 133.5, PaddingMm: 6},
		Header: HeaderSpec{
			HeightMm:     28,
			LogoWidthMm:  18,
			LogoHeightMm: 10,
		},
		RoleChip: RoleChipSpec{
			HeightMm:      8,
			PaddingHMm:    4,
			RadiusMm:      2.5,
			MarginTopMm:   4,
			MarginRightMm: 6,
		},
		QR: QRSpec{
			TileSizeMm:       26,
			CodeSizeMm:       22,
			PaddingMm:        2,
			MarginMm:         5,
			QuietZoneModules: 2,
		},
		Content: ContentSpec{
			NameTopMm:     44,
			CompanyGapMm:  9,
			LinkedinGapMm: 7,
		},
		CropMarks: CropMarkSpec{LengthMm: 4, OffsetMm: 1, ThicknessMm: 0.2},
		Type: TypographySpec{
			NameMaxSize:    44,
			NameMinSize:    26,
			NameStepSize:   2,
			CharWidthRatio: 0.52,
			BrandSize:      13,
			CompanySize:    12,
			LinkedinSize:   9,
			ChipSize:       9,
		},
	}
	s.Positions = GridPositions(s)
	return s
}()

// GridPositions enumerates the Rows*Cols badge origins in row-major order.
// Each origin satisfies margin <= x and x+badgeWidth <= pageWidth-margin,
// and analogously for y, because the badge dimensions are derived from the
// page-tiling invariant.
func GridPositions(s Spec) []Point {
	positions := make([]Point, 0, s.Grid.Rows*s.Grid.Cols)
	for row := 0; row < s.Grid.Rows; row++ {
		for col := 0; col < s.Grid.Cols; col++ {
			positions = append(positions, Point{
				X: s.Page.MarginMm + float64(col)*(s.Badge.WidthMm+s.Grid.GutterMm),
				Y: s.Page.MarginMm + float64(row)*(s.Badge.HeightMm+s.Grid.GutterMm),
			})
		}
	}
	return positions
}

// FitText finds the largest font size, stepping down from maxSize, at which
// text is estimated to fit maxWidthUnits. The estimate is the fixed
// charWidthRatio heuristic rather than glyph metrics; at minSize the text is
// allowed to overflow, so minSize is a floor, not a guarantee.
func FitText(text string, maxWidthUnits, maxSize, minSize, stepSize, charWidthRatio float64) float64 {
	chars := float64(utf8.RuneCountInString(text))
	size := maxSize
	for size > minSize {
		estimated := chars * charWidthRatio * size
		if estimated <= maxWidthUnits {
			return size
		}
		size -= stepSize
	}
	return minSize
}

// CropMarkSegments emits the eight cutting guides for one badge: a
// horizontal and a vertical stroke per corner, offset outward so that no
// segment touches the badge rectangle itself.
func CropMarkSegments(s Spec, origin Point) []Segment {
	left := origin.X
	right := origin.X + s.Badge.WidthMm
	top := origin.Y
	bottom := origin.Y + s.Badge.HeightMm
	off := s.CropMarks.OffsetMm
	length := s.CropMarks.LengthMm

	return []Segment{
		// top-left
		{X1: left - off - length, Y1: top, X2: left - off, Y2: top},
		{X1: left, Y1: top - off - length, X2: left, Y2: top - off},
		// top-right
		{X1: right + off, Y1: top, X2: right + off + length, Y2: top},
		{X1: right, Y1: top - off - length, X2: right, Y2: top - off},
		// bottom-left
		{X1: left - off - length, Y1: bottom, X2: left - off, Y2: bottom},
		{X1: left, Y1: bottom + off, X2: left, Y2: bottom + off + length},
		// bottom-right
		{X1: right + off, Y1: bottom, X2: right + off + length, Y2: bottom},
		{X1: right, Y1: bottom + off, X2: right, Y2: bottom + off + length},
	}
}
