package ui

import "math"

// Layout constants, in layout points.
const (
	// TargetCellSide is the baseline carousel cell side.
	TargetCellSide = 100.0
	// MinItemsPerPage is the fewest tiles a carousel page shows.
	MinItemsPerPage = 4
	// ExactFitGutter is taken off the cell side when tiles fill the row exactly.
	ExactFitGutter = 5.0
	// CarouselMargin is subtracted from the container width for cell sizing.
	CarouselMargin = 10.0
	// EstimatedRowHeight is used for rows whose height cannot be measured.
	EstimatedRowHeight = 65.0
	// HighlightsHeaderHeight is the height of the section 1 header.
	HighlightsHeaderHeight = 24.0
)

// Size is a width and height in layout points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CarouselCellSize returns the tile size for a container of the given width.
// It sizes against the width minus CarouselMargin, unlike ItemsPerPage.
func CarouselCellSize(containerWidth float64) Size {
	width := containerWidth - CarouselMargin
	side := TargetCellSide
	count := width / side
	if int(count) <= MinItemsPerPage-1 {
		count = MinItemsPerPage
		side = width / count
	}
	if math.Floor(count) == count {
		side -= ExactFitGutter
	}
	return Size{Width: width / math.Floor(count), Height: side}
}

// ItemsPerPage returns how many tiles fit on one carousel page.
func ItemsPerPage(containerWidth float64) int {
	count := containerWidth / TargetCellSide
	if int(count) <= MinItemsPerPage-1 {
		count = MinItemsPerPage
	}
	return int(count)
}

// Units converts layout points to terminal cells.
type Units struct {
	PointsPerColumn float64
	PointsPerLine   float64
}

// DefaultUnits returns 8 points per column and 16 points per line.
func DefaultUnits() Units {
	return Units{PointsPerColumn: 8, PointsPerLine: 16}
}

func (u Units) normalized() Units {
	def := DefaultUnits()
	if u.PointsPerColumn <= 0 {
		u.PointsPerColumn = def.PointsPerColumn
	}
	if u.PointsPerLine <= 0 {
		u.PointsPerLine = def.PointsPerLine
	}
	return u
}

// Columns converts a width in points to whole columns, rounding down.
func (u Units) Columns(points float64) int {
	u = u.normalized()
	if points <= 0 {
		return 0
	}
	return int(points / u.PointsPerColumn)
}

// Lines converts a height in points to lines, rounding to nearest. Any
// positive height is at least one line.
func (u Units) Lines(points float64) int {
	u = u.normalized()
	if points <= 0 {
		return 0
	}
	n := int(math.Round(points / u.PointsPerLine))
	if n < 1 {
		n = 1
	}
	return n
}

// Points converts a column count to a width in points.
func (u Units) Points(columns int) float64 {
	return float64(columns) * u.normalized().PointsPerColumn
}
