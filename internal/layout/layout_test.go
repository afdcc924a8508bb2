package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitConversionRoundTrip(t *testing.T) {
	for v := 0.0; v <= 300; v += 0.37 {
		got := UnitsToMm(MmToUnits(v))
		assert.InDelta(t, v, got, 1e-4, "round trip for %v", v)
	}
}

func TestGridTilesPageExactly(t *testing.T) {
	s := Default
	width := s.Badge.WidthMm*float64(s.Grid.Cols) +
		s.Grid.GutterMm*float64(s.Grid.Cols-1) + 2*s.Page.MarginMm
	height := s.Badge.HeightMm*float64(s.Grid.Rows) +
		s.Grid.GutterMm*float64(s.Grid.Rows-1) + 2*s.Page.MarginMm
	assert.InDelta(t, s.Page.WidthMm, width, 1e-9)
	assert.InDelta(t, s.Page.HeightMm, height, 1e-9)
}

func TestGridPositionsRowMajor(t *testing.T) {
	s := Default
	require.Len(t, s.Positions, 4)
	assert.Equal(t, Point{X: 10, Y: 10}, s.Positions[0])
	assert.Equal(t, Point{X: 110, Y: 10}, s.Positions[1])
	assert.Equal(t, Point{X: 10, Y: 153.5}, s.Positions[2])
	assert.Equal(t, Point{X: 110, Y: 153.5}, s.Positions[3])
}

func TestGridPositionsStayInsideMargins(t *testing.T) {
	s := Default
	for i, p := range s.Positions {
		assert.GreaterOrEqual(t, p.X, s.Page.MarginMm, "position %d x", i)
		assert.LessOrEqual(t, p.X+s.Badge.WidthMm, s.Page.WidthMm-s.Page.MarginMm+1e-9, "position %d right edge", i)
		assert.GreaterOrEqual(t, p.Y, s.Page.MarginMm, "position %d y", i)
		assert.LessOrEqual(t, p.Y+s.Badge.HeightMm, s.Page.HeightMm-s.Page.MarginMm+1e-9, "position %d bottom edge", i)
	}
}

func TestCropMarksLieOutsideBadge(t *testing.T) {
	s := Default
	for _, origin := range s.Positions {
		left, top := origin.X, origin.Y
		right := origin.X + s.Badge.WidthMm
		bottom := origin.Y + s.Badge.HeightMm

		segments := CropMarkSegments(s, origin)
		require.Len(t, segments, 8)
		outside := func(x, y float64) bool {
			return x < left || x > right || y < top || y > bottom
		}
		for i, seg := range segments {
			assert.True(t, outside(seg.X1, seg.Y1) || outside(seg.X2, seg.Y2),
				"segment %d of badge at %v touches the badge rectangle", i, origin)
		}
	}
}

func TestFitTextReturnsMaxForShortText(t *testing.T) {
	size := FitText("Al", 500, 44, 26, 2, 0.52)
	assert.Equal(t, 44.0, size)
}

func TestFitTextFloorsAtMin(t *testing.T) {
	long := "Wijekoon Rajakeerthi Rathnayake Mudiyanselage Dinitha"
	size := FitText(long, 100, 44, 26, 2, 0.52)
	assert.Equal(t, 26.0, size)
}

func TestFitTextMonotonicInWidth(t *testing.T) {
	text := "Alexandra Featherstonehaugh"
	prev := math.Inf(-1)
	for width := 50.0; width <= 800; width += 10 {
		size := FitText(text, width, 44, 26, 2, 0.52)
		assert.GreaterOrEqual(t, size, prev, "width %v shrank the font", width)
		prev = size
	}
}

func TestFitTextCountsRunesNotBytes(t *testing.T) {
	// Accented characters must not double-count against the width budget.
	ascii := FitText("Olafur Ragnarsson", 300, 44, 26, 2, 0.52)
	accented := FitText("Ólafur Ragnarsson", 300, 44, 26, 2, 0.52)
	assert.Equal(t, ascii, accented)
}

func TestRoleColorDefaultsToAttendee(t *testing.T) {
	assert.Equal(t, RoleColor(RoleAttendee), RoleColor(RoleCategory("something-else")))
}

func TestRGBHex(t *testing.T) {
	assert.Equal(t, "#7c3aed", RGB{R: 124, G: 58, B: 237}.Hex())
	assert.Equal(t, "#000000", RGB{}.Hex())
	assert.Equal(t, "#ffffff", RGB{R: 255, G: 255, B: 255}.Hex())
}
