package collision

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/vovakirdan/hitbox/internal/core"
)

// Policy selects which category combinations QueryCollisions tests.
type Policy uint8

const (
	// DynamicFixed tests every dynamic rectangle against every fixed one.
	DynamicFixed Policy = 1 << iota
	// DynamicDynamic tests dynamic rectangles against each other.
	DynamicDynamic
	// FixedFixed tests fixed rectangles against each other.
	FixedFixed
)

// DefaultPolicy is what a game step usually needs: moving things against
// the world and against each other.
const DefaultPolicy = DynamicFixed | DynamicDynamic

// Has reports whether every flag in f is set.
func (p Policy) Has(f Policy) bool {
	return p&f == f
}

func (p Policy) String() string {
	if p == 0 {
		return "none"
	}
	var parts []string
	if p.Has(DynamicFixed) {
		parts = append(parts, "dynamic-fixed")
	}
	if p.Has(DynamicDynamic) {
		parts = append(parts, "dynamic-dynamic")
	}
	if p.Has(FixedFixed) {
		parts = append(parts, "fixed-fixed")
	}
	return strings.Join(parts, "|")
}

// ParsePolicy parses a comma or pipe separated list of "dynamic-fixed",
// "dynamic-dynamic", "fixed-fixed", "all" or "none".
func ParsePolicy(s string) (Policy, error) {
	var p Policy
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' })
	for _, f := range fields {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "dynamic-fixed":
			p |= DynamicFixed
		case "dynamic-dynamic":
			p |= DynamicDynamic
		case "fixed-fixed":
			p |= FixedFixed
		case "all":
			p |= DynamicFixed | DynamicDynamic | FixedFixed
		case "none", "":
		default:
			return 0, fmt.Errorf("collision: unknown pair policy %q", f)
		}
	}
	return p, nil
}

// Pair is one colliding pair. For mixed pairs A is the dynamic rectangle;
// for same-category pairs A has the lower handle.
type Pair struct {
	A, B Ref
}

func (p Pair) String() string {
	return p.A.String() + " <-> " + p.B.String()
}

// QueryCollisions returns the overlapping pairs selected by p.
//
// Dynamic rectangles are visited in ascending handle order. For each one,
// fixed partners come first (ascending), then dynamic partners with a
// higher handle. Fixed-fixed pairs, if requested, follow last.
// The sequence reads the registry each time it is ranged over.
func (r *Registry) QueryCollisions(p Policy) iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		fixed, dynamic := r.fixed, r.dynamic

		for d, dr := range dynamic {
			a := Ref{Dynamic, Handle(d)}
			if p.Has(DynamicFixed) {
				for f, fr := range fixed {
					if dr.Overlaps(fr) && !yield(Pair{a, Ref{Fixed, Handle(f)}}) {
						return
					}
				}
			}
			if p.Has(DynamicDynamic) {
				for j := d + 1; j < len(dynamic); j++ {
					if dr.Overlaps(dynamic[j]) && !yield(Pair{a, Ref{Dynamic, Handle(j)}}) {
						return
					}
				}
			}
		}

		if !p.Has(FixedFixed) {
			return
		}
		for i, ir := range fixed {
			for j := i + 1; j < len(fixed); j++ {
				if ir.Overlaps(fixed[j]) && !yield(Pair{Ref{Fixed, Handle(i)}, Ref{Fixed, Handle(j)}}) {
					return
				}
			}
		}
	}
}

// Collisions collects QueryCollisions for the registry's own policy.
func (r *Registry) Collisions() []Pair {
	return slices.Collect(r.QueryCollisions(r.policy))
}

// CollisionsWith returns every other rectangle, of either category, that
// overlaps the one at ref. Fixed matches come first, then dynamic, each in
// ascending handle order. The rectangle at ref is read when iteration starts.
func (r *Registry) CollisionsWith(ref Ref) (iter.Seq[Ref], error) {
	if _, err := r.Lookup(ref); err != nil {
		return nil, err
	}

	return func(yield func(Ref) bool) {
		target, err := r.Lookup(ref)
		if err != nil {
			return
		}
		for _, c := range [...]Category{Fixed, Dynamic} {
			for h, rect := range r.Entries(c) {
				other := Ref{c, h}
				if other == ref || !core.Overlaps(target, rect) {
					continue
				}
				if !yield(other) {
					return
				}
			}
		}
	}, nil
}
