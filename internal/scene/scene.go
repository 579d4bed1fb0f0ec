// Package scene reads and writes YAML scene files: named sets of fixed and
// dynamic rectangles that can be loaded into a collision registry.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/hitbox/internal/collision"
	"github.com/vovakirdan/hitbox/internal/core"
)

// YAMLScene represents the YAML structure for a scene file.
type YAMLScene struct {
	Name     string            `yaml:"name"`
	Fixed    []YAMLBox         `yaml:"fixed,omitempty"`
	Dynamic  []YAMLBox         `yaml:"dynamic,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// YAMLBox represents a single rectangle in YAML format.
type YAMLBox struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Scene is a parsed scene ready to load into a registry.
type Scene struct {
	Name     string
	Fixed    []core.Rect
	Dynamic  []core.Rect
	Metadata map[string]string
	FilePath string
}

// Parse parses a YAML scene file.
func Parse(data []byte) (Scene, error) {
	var ys YAMLScene
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return Scene{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	fixed, err := toRects(collision.Fixed, ys.Fixed)
	if err != nil {
		return Scene{}, err
	}
	dynamic, err := toRects(collision.Dynamic, ys.Dynamic)
	if err != nil {
		return Scene{}, err
	}

	return Scene{
		Name:     ys.Name,
		Fixed:    fixed,
		Dynamic:  dynamic,
		Metadata: ys.Metadata,
	}, nil
}

func toRects(c collision.Category, boxes []YAMLBox) ([]core.Rect, error) {
	rects := make([]core.Rect, 0, len(boxes))
	for i, b := range boxes {
		r, err := core.NewRect(b.X, b.Y, b.W, b.H)
		if err != nil {
			return nil, fmt.Errorf("%s box %d: %w", c, i, err)
		}
		rects = append(rects, r)
	}
	return rects, nil
}

// LoadFile loads a single scene file.
func LoadFile(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("reading file %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return Scene{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	s.FilePath = path
	return s, nil
}

// LoadDir loads every .yaml/.yml scene in dir (not recursive), sorted by name.
// A file that fails to load does not stop the others: the scenes that did
// load are returned together with the joined per-file errors.
func LoadDir(dir string) ([]Scene, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var scenes []Scene
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
		default:
			continue
		}
		s, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenes = append(scenes, s)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, errors.Join(errs...)
}

// Apply registers the scene's fixed boxes, then its dynamic boxes, in file
// order. It returns the refs registered so far and stops at the first error,
// so a capacity failure leaves earlier boxes in the registry.
func (s Scene) Apply(reg *collision.Registry) ([]collision.Ref, error) {
	refs := make([]collision.Ref, 0, len(s.Fixed)+len(s.Dynamic))

	for _, group := range []struct {
		category collision.Category
		rects    []core.Rect
	}{
		{collision.Fixed, s.Fixed},
		{collision.Dynamic, s.Dynamic},
	} {
		for i, r := range group.rects {
			h, err := reg.RegisterRect(group.category, r)
			if err != nil {
				return refs, fmt.Errorf("scene %s: %s box %d: %w", s.Name, group.category, i, err)
			}
			refs = append(refs, collision.Ref{Category: group.category, Handle: h})
		}
	}
	return refs, nil
}

// Registry builds a new registry from opts and applies the scene to it.
func (s Scene) Registry(opts ...collision.Option) (*collision.Registry, error) {
	reg := collision.NewRegistry(opts...)
	if _, err := s.Apply(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// FromRegistry captures the current contents of reg as a scene.
// Rectangles are listed in handle order, so applying the scene to an empty
// registry reproduces the same handles.
func FromRegistry(name string, reg *collision.Registry) Scene {
	s := Scene{Name: name}
	for _, r := range reg.Entries(collision.Fixed) {
		s.Fixed = append(s.Fixed, r)
	}
	for _, r := range reg.Entries(collision.Dynamic) {
		s.Dynamic = append(s.Dynamic, r)
	}
	return s
}

// Marshal encodes the scene as YAML.
func (s Scene) Marshal() ([]byte, error) {
	ys := YAMLScene{
		Name:     s.Name,
		Fixed:    toBoxes(s.Fixed),
		Dynamic:  toBoxes(s.Dynamic),
		Metadata: s.Metadata,
	}
	return yaml.Marshal(ys)
}

func toBoxes(rects []core.Rect) []YAMLBox {
	boxes := make([]YAMLBox, len(rects))
	for i, r := range rects {
		boxes[i] = YAMLBox{X: r.X, Y: r.Y, W: r.W, H: r.H}
	}
	return boxes
}
