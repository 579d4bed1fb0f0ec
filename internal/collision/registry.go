// Package collision keeps the fixed and dynamic rectangles of a simulation
// and answers overlap queries between them.
//
// A Registry is not safe for concurrent use. Hosts that share one between
// goroutines must guard every call with their own lock.
package collision

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hitbox/internal/core"
)

// DefaultCapacity is the per-category limit used by the engine config
// when none is given.
const DefaultCapacity = 256

var (
	// ErrNotFound is returned when a handle was never issued in a category.
	ErrNotFound = errors.New("not found")
	// ErrCapacityExceeded is returned when a category is full.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrUnknownCategory is returned for a Category value other than Fixed or Dynamic.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidDimension is returned for negative widths or heights.
	ErrInvalidDimension = core.ErrInvalidDimension
)

// Category partitions registered rectangles.
type Category int

const (
	// Fixed rectangles are static geometry such as terrain.
	Fixed Category = iota
	// Dynamic rectangles are expected to move between steps.
	Dynamic
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Fixed:
		return "fixed"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory converts "fixed" or "dynamic" (any case) to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return Fixed, nil
	case "dynamic":
		return Dynamic, nil
	default:
		return 0, fmt.Errorf("collision: %q: %w", s, ErrUnknownCategory)
	}
}

// Handle identifies a rectangle within its category. Handles start at 0
// and are never reused.
type Handle int

// Ref identifies a rectangle across both categories.
type Ref struct {
	Category Category
	Handle   Handle
}

// String returns e.g. "dynamic#3".
func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Category, r.Handle)
}

// ParseRef parses the form produced by Ref.String, e.g. "fixed#0".
func ParseRef(s string) (Ref, error) {
	cat, num, ok := strings.Cut(s, "#")
	if !ok {
		return Ref{}, fmt.Errorf("collision: ref %q: expected category#handle", s)
	}
	c, err := ParseCategory(cat)
	if err != nil {
		return Ref{}, err
	}
	h, err := strconv.Atoi(num)
	if err != nil || h < 0 {
		return Ref{}, fmt.Errorf("collision: ref %q: bad handle", s)
	}
	return Ref{Category: c, Handle: Handle(h)}, nil
}

// Option configures a Registry.
type Option func(*Registry)

// WithCapacity limits each category to n rectangles. n <= 0 means unbounded.
func WithCapacity(n int) Option {
	return func(r *Registry) {
		if n < 0 {
			n = 0
		}
		r.capacity = n
	}
}

// WithLogger sets the logger used for debug tracing of registry mutations.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithPolicy sets the policy returned by Policy and used by Collisions.
func WithPolicy(p Policy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// Registry owns the fixed and dynamic rectangles.
// Handles are dense, so each category is stored as a slice indexed by handle.
type Registry struct {
	fixed    []core.Rect
	dynamic  []core.Rect
	capacity int
	policy   Policy
	logger   *log.Logger
}

// NewRegistry creates an empty registry. Without options it is unbounded
// and uses DefaultPolicy.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{policy: DefaultPolicy}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Capacity returns the per-category limit, 0 if unbounded.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Policy returns the registry's default pair policy.
func (r *Registry) Policy() Policy {
	return r.policy
}

func (r *Registry) store(c Category) (*[]core.Rect, error) {
	switch c {
	case Fixed:
		return &r.fixed, nil
	case Dynamic:
		return &r.dynamic, nil
	default:
		return nil, fmt.Errorf("collision: %s: %w", c, ErrUnknownCategory)
	}
}

// Register adds a rectangle to the category and returns its handle.
func (r *Registry) Register(c Category, x, y, w, h int) (Handle, error) {
	return r.RegisterRect(c, core.Rect{X: x, Y: y, W: w, H: h})
}

// RegisterRect adds a copy of rect to the category and returns its handle.
// On error the registry is unchanged.
func (r *Registry) RegisterRect(c Category, rect core.Rect) (Handle, error) {
	s, err := r.store(c)
	if err != nil {
		return 0, err
	}
	if err := rect.Validate(); err != nil {
		return 0, fmt.Errorf("collision: register %s: %w", c, err)
	}
	if r.capacity > 0 && len(*s) >= r.capacity {
		return 0, fmt.Errorf("collision: register %s (limit %d): %w", c, r.capacity, ErrCapacityExceeded)
	}

	h := Handle(len(*s))
	*s = append(*s, rect)

	r.debug("registered", "ref", Ref{c, h}, "rect", rect)
	return h, nil
}

// Get returns a copy of the rectangle stored under handle.
func (r *Registry) Get(c Category, h Handle) (core.Rect, error) {
	s, err := r.store(c)
	if err != nil {
		return core.Rect{}, err
	}
	if h < 0 || int(h) >= len(*s) {
		return core.Rect{}, notFound(Ref{c, h})
	}
	return (*s)[h], nil
}

// Update replaces the rectangle stored under handle.
func (r *Registry) Update(c Category, h Handle, rect core.Rect) error {
	s, err := r.store(c)
	if err != nil {
		return err
	}
	if h < 0 || int(h) >= len(*s) {
		return notFound(Ref{c, h})
	}
	if err := rect.Validate(); err != nil {
		return fmt.Errorf("collision: update %s: %w", Ref{c, h}, err)
	}

	(*s)[h] = rect
	r.debug("updated", "ref", Ref{c, h}, "rect", rect)
	return nil
}

// Lookup is Get addressed by Ref.
func (r *Registry) Lookup(ref Ref) (core.Rect, error) {
	return r.Get(ref.Category, ref.Handle)
}

// Len returns how many rectangles the category holds. Unknown categories hold none.
func (r *Registry) Len(c Category) int {
	s, err := r.store(c)
	if err != nil {
		return 0
	}
	return len(*s)
}

// Entries iterates a category in ascending handle order.
func (r *Registry) Entries(c Category) iter.Seq2[Handle, core.Rect] {
	return func(yield func(Handle, core.Rect) bool) {
		s, err := r.store(c)
		if err != nil {
			return
		}
		for i, rect := range *s {
			if !yield(Handle(i), rect) {
				return
			}
		}
	}
}

// Overlaps reports whether a and b overlap. Edge or corner contact is not overlap.
func Overlaps(a, b core.Rect) bool {
	return core.Overlaps(a, b)
}

func notFound(ref Ref) error {
	return fmt.Errorf("collision: %s: %w", ref, ErrNotFound)
}

func (r *Registry) debug(msg string, keyvals ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keyvals...)
	}
}
