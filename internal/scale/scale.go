// Package scale converts captured frames to the destination geometry.
package scale

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Filter selects the interpolation used when source and destination
// geometries differ.
type Filter string

const (
	FilterNearest    Filter = "nearest"    // fastest, blocky on upscale
	FilterBilinear   Filter = "bilinear"   // approximate bilinear, good default for live mirroring
	FilterCatmullRom Filter = "catmullrom" // sharpest, heaviest
)

// ValidFilters returns all filters ParseFilter accepts.
func ValidFilters() []Filter {
	return []Filter{FilterNearest, FilterBilinear, FilterCatmullRom}
}

// ParseFilter validates a filter name from configuration or flags.
func ParseFilter(name string) (Filter, error) {
	switch Filter(name) {
	case FilterNearest, FilterBilinear, FilterCatmullRom:
		return Filter(name), nil
	}
	return "", fmt.Errorf("unknown scale filter %q, must be one of %v", name, ValidFilters())
}

// Scaler resizes frames with a fixed interpolation filter.
type Scaler struct {
	filter Filter
	interp draw.Interpolator
}

// New returns a Scaler for the given filter. Unknown filters fall back
// to nearest neighbour.
func New(filter Filter) *Scaler {
	s := &Scaler{filter: filter}
	switch filter {
	case FilterBilinear:
		s.interp = draw.ApproxBiLinear
	case FilterCatmullRom:
		s.interp = draw.CatmullRom
	default:
		s.filter = FilterNearest
		s.interp = draw.NearestNeighbor
	}
	return s
}

// Filter returns the active interpolation filter.
func (s *Scaler) Filter() Filter {
	return s.filter
}

// Apply renders src into dst, resizing when the geometries differ.
// Equal geometries take a straight copy instead of a resample.
func (s *Scaler) Apply(dst, src *image.RGBA) {
	if dst.Bounds().Size() == src.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return
	}
	s.interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}
