package scene

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/hitbox/internal/collision"
	"github.com/vovakirdan/hitbox/internal/core"
)

const groundScene = `
name: ground-test
fixed:
  - {x: 0, y: 0, w: 100, h: 20}
dynamic:
  - {x: 10, y: 15, w: 10, h: 10}
  - {x: 200, y: 0, w: 5, h: 5}
metadata:
  author: test
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(groundScene))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if s.Name != "ground-test" {
		t.Errorf("Name = %q, expected ground-test", s.Name)
	}
	if len(s.Fixed) != 1 || len(s.Dynamic) != 2 {
		t.Fatalf("got %d fixed, %d dynamic; expected 1, 2", len(s.Fixed), len(s.Dynamic))
	}
	if s.Fixed[0] != core.MustRect(0, 0, 100, 20) {
		t.Errorf("Fixed[0] = %v", s.Fixed[0])
	}
	if s.Metadata["author"] != "test" {
		t.Errorf("Metadata = %v", s.Metadata)
	}
}

func TestParseRejectsNegativeSize(t *testing.T) {
	_, err := Parse([]byte("dynamic:\n  - {x: 0, y: 0, w: -1, h: 5}\n"))
	if !errors.Is(err, core.ErrInvalidDimension) {
		t.Errorf("Parse() error = %v, expected ErrInvalidDimension", err)
	}

	if _, err := Parse([]byte("fixed: [oops")); err == nil {
		t.Error("Parse() of malformed YAML should fail")
	}
}

func TestApply(t *testing.T) {
	s, err := Parse([]byte(groundScene))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	reg := collision.NewRegistry()
	refs, err := s.Apply(reg)
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	expected := []collision.Ref{
		{Category: collision.Fixed, Handle: 0},
		{Category: collision.Dynamic, Handle: 0},
		{Category: collision.Dynamic, Handle: 1},
	}
	if !slices.Equal(refs, expected) {
		t.Errorf("Apply() refs = %v, expected %v", refs, expected)
	}

	pairs := reg.Collisions()
	if len(pairs) != 1 {
		t.Errorf("Collisions() = %v, expected one pair", pairs)
	}
}

func TestApplyCapacity(t *testing.T) {
	s, _ := Parse([]byte(groundScene))

	reg := collision.NewRegistry(collision.WithCapacity(1))
	refs, err := s.Apply(reg)
	if !errors.Is(err, collision.ErrCapacityExceeded) {
		t.Fatalf("Apply() error = %v, expected ErrCapacityExceeded", err)
	}
	if len(refs) != 2 {
		t.Errorf("Apply() registered %d before failing, expected 2", len(refs))
	}
}

func TestFromRegistryRoundTrip(t *testing.T) {
	s, _ := Parse([]byte(groundScene))
	reg, err := s.Registry()
	if err != nil {
		t.Fatalf("Registry() failed: %v", err)
	}
	reg.Update(collision.Dynamic, 1, core.MustRect(1, 1, 1, 1))

	data, err := FromRegistry("moved", reg).Marshal()
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if back.Name != "moved" {
		t.Errorf("Name = %q, expected moved", back.Name)
	}
	if !slices.Equal(back.Fixed, s.Fixed) {
		t.Errorf("Fixed = %v, expected %v", back.Fixed, s.Fixed)
	}
	expectedDynamic := []core.Rect{core.MustRect(10, 15, 10, 10), core.MustRect(1, 1, 1, 1)}
	if !slices.Equal(back.Dynamic, expectedDynamic) {
		t.Errorf("Dynamic = %v, expected %v", back.Dynamic, expectedDynamic)
	}
}

func TestLoadFileAndDir(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() failed: %v", err)
		}
	}
	write("b.yaml", groundScene)
	write("a.yml", "fixed:\n  - {x: 0, y: 0, w: 1, h: 1}\n")
	write("broken.yaml", "dynamic:\n  - {x: 0, y: 0, w: -1, h: 1}\n")
	write("notes.txt", "ignored")

	s, err := LoadFile(filepath.Join(dir, "a.yml"))
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if s.Name != "a" {
		t.Errorf("unnamed scene Name = %q, expected file stem a", s.Name)
	}
	if s.FilePath != filepath.Join(dir, "a.yml") {
		t.Errorf("FilePath = %q", s.FilePath)
	}

	scenes, err := LoadDir(dir)
	if err == nil || !strings.Contains(err.Error(), "broken.yaml") {
		t.Errorf("LoadDir() error = %v, expected it to name broken.yaml", err)
	}
	if !errors.Is(err, core.ErrInvalidDimension) {
		t.Errorf("LoadDir() error = %v, expected ErrInvalidDimension", err)
	}
	var names []string
	for _, sc := range scenes {
		names = append(names, sc.Name)
	}
	if !slices.Equal(names, []string{"a", "ground-test"}) {
		t.Errorf("LoadDir() names = %v", names)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() of missing file should fail")
	}
}
