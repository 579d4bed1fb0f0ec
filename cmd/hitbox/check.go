package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/hitbox/internal/collision"
	"github.com/vovakirdan/hitbox/internal/scene"
)

var (
	flagPairs string
	flagWith  string
)

var checkCmd = &cobra.Command{
	Use:   "check <scene.yaml|dir>",
	Short: "Show colliding pairs in a scene",
	Long: `Load a scene file into a fresh registry and list every overlapping pair.
Given a directory, every .yaml/.yml scene in it is checked in name order;
files that fail to load are reported and skipped.

Pair policies (comma separated):
  dynamic-fixed    - moving boxes against static geometry
  dynamic-dynamic  - moving boxes against each other
  fixed-fixed      - static geometry against itself
  all / none

Without --pairs the policy comes from the engine config.

Examples:
  hitbox check scenes/ground.yaml
  hitbox check scenes/
  hitbox check scenes/ground.yaml --pairs fixed-fixed
  hitbox check scenes/ground.yaml --with dynamic#0`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&flagPairs, "pairs", "", "Pair policy override")
	checkCmd.Flags().StringVar(&flagWith, "with", "", "Only list boxes overlapping this ref (e.g. dynamic#0)")
}

// loadScene builds a registry from the engine config and fills it from path.
func loadScene(path string) (scene.Scene, *collision.Registry, error) {
	s, err := scene.LoadFile(path)
	if err != nil {
		return scene.Scene{}, nil, err
	}

	reg, err := sceneRegistry(s)
	if err != nil {
		return scene.Scene{}, nil, err
	}
	return s, reg, nil
}

func sceneRegistry(s scene.Scene) (*collision.Registry, error) {
	reg, err := s.Registry(engineCfg.RegistryOptions(logger)...)
	if err != nil {
		return nil, err
	}
	logger.Debug("scene loaded", "name", s.Name, "fixed", reg.Len(collision.Fixed), "dynamic", reg.Len(collision.Dynamic))
	return reg, nil
}

// loadScenes loads path as a single scene file or as a directory of scenes.
// Directory entries that fail to load are logged and skipped.
func loadScenes(path string) ([]scene.Scene, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		s, err := scene.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return []scene.Scene{s}, nil
	}

	scenes, err := scene.LoadDir(path)
	if err != nil {
		if len(scenes) == 0 {
			return nil, err
		}
		logger.Warn("skipped scenes", "dir", path, "err", err)
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes in %s", path)
	}
	return scenes, nil
}

func runCheck(_ *cobra.Command, args []string) error {
	scenes, err := loadScenes(args[0])
	if err != nil {
		return err
	}

	policy := engineCfg.Policy()
	if flagPairs != "" {
		if policy, err = collision.ParsePolicy(flagPairs); err != nil {
			return err
		}
	}

	var with *collision.Ref
	if flagWith != "" {
		ref, err := collision.ParseRef(flagWith)
		if err != nil {
			return err
		}
		with = &ref
	}

	out := newPrinter()
	for i, s := range scenes {
		if i > 0 {
			fmt.Fprintln(out.w)
		}
		reg, err := sceneRegistry(s)
		if err != nil {
			return err
		}
		if err := checkScene(out, s, reg, policy, with); err != nil {
			return err
		}
	}
	return nil
}

func checkScene(out *printer, s scene.Scene, reg *collision.Registry, policy collision.Policy, with *collision.Ref) error {
	out.header("Scene %s: %d fixed, %d dynamic", s.Name, reg.Len(collision.Fixed), reg.Len(collision.Dynamic))
	out.entries(reg)
	fmt.Fprintln(out.w)

	if with != nil {
		seq, err := reg.CollisionsWith(*with)
		if err != nil {
			return err
		}
		var pairs []collision.Pair
		for other := range seq {
			pairs = append(pairs, collision.Pair{A: *with, B: other})
		}
		out.pairs(reg, pairs)
		return nil
	}

	out.muted("Policy: %s", policy)
	out.pairs(reg, slices.Collect(reg.QueryCollisions(policy)))
	return nil
}
