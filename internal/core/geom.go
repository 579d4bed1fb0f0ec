// Package core provides the rectangle value type shared by the collision
// engine, scene files and snapshot storage.
package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimension is returned when a width or height is negative, or
// when the right or bottom edge would not fit in an int.
var ErrInvalidDimension = errors.New("invalid dimension")

// Rect represents an axis-aligned bounding box used for collision detection.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
// Returns ErrInvalidDimension if w or h is negative or an edge overflows.
func NewRect(x, y, w, h int) (Rect, error) {
	if err := checkSize(x, y, w, h); err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, W: w, H: h}, nil
}

// MustRect is like NewRect but panics on invalid dimensions.
// Intended for literals in tests and defaults.
func MustRect(x, y, w, h int) Rect {
	r, err := NewRect(x, y, w, h)
	if err != nil {
		panic(err)
	}
	return r
}

func checkSize(x, y, w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("size %dx%d: %w", w, h, ErrInvalidDimension)
	}
	if x > math.MaxInt-w || y > math.MaxInt-h {
		return fmt.Errorf("size %dx%d at (%d,%d) overflows: %w", w, h, x, y, ErrInvalidDimension)
	}
	return nil
}

// Validate reports whether the rectangle has a non-negative size and edges
// that fit in an int. Rects built as struct literals or moved with
// SetPosition and MoveBy bypass NewRect, so consumers that accept arbitrary
// values call this first.
func (r Rect) Validate() error {
	return checkSize(r.X, r.Y, r.W, r.H)
}

// Copy returns an independent copy of the rectangle.
func (r Rect) Copy() Rect {
	return r
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Position returns the top-left corner.
func (r Rect) Position() (int, int) {
	return r.X, r.Y
}

// SetPosition moves the top-left corner to (x, y).
func (r *Rect) SetPosition(x, y int) {
	r.X = x
	r.Y = y
}

// SetX sets the left edge.
func (r *Rect) SetX(x int) {
	r.X = x
}

// SetY sets the top edge.
func (r *Rect) SetY(y int) {
	r.Y = y
}

// MoveBy offsets the rectangle by (dx, dy).
func (r *Rect) MoveBy(dx, dy int) {
	r.X += dx
	r.Y += dy
}

// Size returns the width and height.
func (r Rect) Size() (int, int) {
	return r.W, r.H
}

// SetSize changes the width and height. The rectangle is left untouched
// and ErrInvalidDimension is returned if either value is negative or an
// edge would overflow.
func (r *Rect) SetSize(w, h int) error {
	if err := checkSize(r.X, r.Y, w, h); err != nil {
		return err
	}
	r.W = w
	r.H = h
	return nil
}

// Center returns the center point of the rectangle.
// Integer division truncates, so odd sizes round toward the top-left.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// SetCenter moves the rectangle so that Center returns (cx, cy).
// Size is unchanged.
func (r *Rect) SetCenter(cx, cy int) {
	r.X = cx - r.W/2
	r.Y = cy - r.H/2
}

// Overlaps returns true if this rectangle overlaps with another.
// Rectangles that only share an edge or a corner do not overlap.
// Both rectangles must pass Validate.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() && r.Right() > other.X &&
		r.Y < other.Bottom() && r.Bottom() > other.Y
}

// Overlaps is the standard AABB separating-axis test. It is symmetric.
func Overlaps(a, b Rect) bool {
	return a.Overlaps(b)
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}
