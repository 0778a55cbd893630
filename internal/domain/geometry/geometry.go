// Package geometry maps pixel-space hole positions into target-relative
// unit coordinates and back.
//
// The target center is fixed at the geometric center of the source image and
// the normalization scale is half the shorter image side, so a shot on the
// target edge lands at distance ~1 from the origin.
package geometry

import (
	"github.com/mjelle/shotgroup/internal/domain/model"
)

// halfDivisor converts a full image dimension into its center/radius.
const halfDivisor = 2.0

// Frame captures the geometry of one target photo. Width and Height are the
// source image dimensions in pixels.
type Frame struct {
	Width  float64
	Height float64
}

// NewFrame validates the image dimensions and returns a Frame.
// Returns ErrInvalidGeometry when either dimension is zero or negative.
func NewFrame(width, height float64) (Frame, error) {
	if width <= 0 || height <= 0 {
		return Frame{}, ErrInvalidGeometry
	}
	return Frame{Width: width, Height: height}, nil
}

// center returns the target center in pixel space.
func (f Frame) center() (cx, cy float64) {
	return f.Width / halfDivisor, f.Height / halfDivisor
}

// radius returns the normalization scale in pixels.
func (f Frame) radius() float64 {
	if f.Width < f.Height {
		return f.Width / halfDivisor
	}
	return f.Height / halfDivisor
}

// Normalize maps a pixel-space shot into target-relative unit space.
func (f Frame) Normalize(s model.Shot) model.NormalizedShot {
	cx, cy := f.center()
	r := f.radius()
	return model.NormalizedShot{
		U: (s.X - cx) / r,
		V: (s.Y - cy) / r,
	}
}

// Denormalize is the exact inverse of Normalize up to floating-point
// rounding.
func (f Frame) Denormalize(n model.NormalizedShot) model.Shot {
	cx, cy := f.center()
	r := f.radius()
	return model.Shot{
		X: n.U*r + cx,
		Y: n.V*r + cy,
	}
}

// NormalizeAll maps a whole sequence of shots through the frame.
func (f Frame) NormalizeAll(shots []model.Shot) []model.NormalizedShot {
	out := make([]model.NormalizedShot, len(shots))
	for i, s := range shots {
		out[i] = f.Normalize(s)
	}
	return out
}
