// Package grid describes the fixed geometry shared by the PET raster and the
// land/water mask.
//
// The full raster covers 360° of longitude and the 140° band between 80°N
// and 60°S at 1/120° per pixel. The mask covers the whole globe at a lower
// resolution, so reading it for a raster row means skipping the cropped
// northern band first.
package grid

import (
	"fmt"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
)

// Default dimensions of the MOD16A3 product and the ocean mask.
const (
	DefaultWidth          = 43200
	DefaultHeight         = 16800
	DefaultMaskWidth      = 10800
	DefaultMaskHeight     = 5400
	DefaultCropTopDegrees = 10
	DefaultCropBotDegrees = 30
)

// Geometry is an immutable description of raster and mask dimensions.
// It is passed by value into every component constructor.
type Geometry struct {
	Width      int
	Height     int
	MaskWidth  int
	MaskHeight int

	// CropTopDegrees is the latitude band missing from the top of the raster
	// relative to the mask.
	CropTopDegrees int
	// CropBottomDegrees is the band missing from the bottom.
	CropBottomDegrees int
}

// Default returns the production geometry.
func Default() Geometry {
	return Geometry{
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		MaskWidth:         DefaultMaskWidth,
		MaskHeight:        DefaultMaskHeight,
		CropTopDegrees:    DefaultCropTopDegrees,
		CropBottomDegrees: DefaultCropBotDegrees,
	}
}

// Validate checks that the dimensions are positive and that the mask
// downsamples the raster by a whole factor.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: raster %dx%d", errs.ErrInvalidGeometry, g.Width, g.Height)
	}
	if g.MaskWidth <= 0 || g.MaskHeight <= 0 {
		return fmt.Errorf("%w: mask %dx%d", errs.ErrInvalidGeometry, g.MaskWidth, g.MaskHeight)
	}
	if g.Width%g.MaskWidth != 0 {
		return fmt.Errorf("%w: width %d is not a multiple of mask width %d", errs.ErrInvalidGeometry, g.Width, g.MaskWidth)
	}
	if g.CropTopDegrees < 0 || g.CropBottomDegrees < 0 || g.CropTopDegrees+g.CropBottomDegrees >= 180 {
		return fmt.Errorf("%w: crop %d/%d degrees", errs.ErrInvalidGeometry, g.CropTopDegrees, g.CropBottomDegrees)
	}

	return nil
}

// HorizontalFactor is the number of raster columns per mask column.
func (g Geometry) HorizontalFactor() int {
	return g.Width / g.MaskWidth
}

// VerticalFactor is the number of raster rows per mask row. Pixels are
// square in both products, so it equals the horizontal factor.
func (g Geometry) VerticalFactor() int {
	return g.HorizontalFactor()
}

// CroppedTopOffset is the byte offset of the first mask cell that lines up
// with raster row 0.
func (g Geometry) CroppedTopOffset() int64 {
	return int64(g.MaskWidth) * int64(g.MaskHeight) * int64(g.CropTopDegrees) / 180
}

// MaskSize is the expected byte length of the mask file.
func (g Geometry) MaskSize() int64 {
	return int64(g.MaskWidth) * int64(g.MaskHeight)
}

// Pixels is width*height.
func (g Geometry) Pixels() int64 {
	return int64(g.Width) * int64(g.Height)
}

// RawSize is the byte length of a raw raster payload.
func (g Geometry) RawSize() int64 {
	return g.Pixels() * format.RawSampleSize
}

// QuantizedPayloadSize is the byte length of a quantized raster without its header.
func (g Geometry) QuantizedPayloadSize() int64 {
	return g.Pixels() * format.QuantizedSampleSize
}

// LatitudeSpan is the number of degrees covered by the raster rows.
func (g Geometry) LatitudeSpan() int {
	return 180 - g.CropTopDegrees - g.CropBottomDegrees
}

// Contains reports whether (x, y) lies inside the raster.
func (g Geometry) Contains(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}
