package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/hitbox/internal/storage"
)

var (
	flagSnapshotName  string
	flagSnapshotLimit int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored registry snapshots",
	Long: `Snapshots store every rectangle of a registry, with its handle, plus the
collision pairs found when it was saved.

Examples:
  hitbox snapshot save scenes/ground.yaml --name before-jump
  hitbox snapshot list
  hitbox snapshot show 3f2c...
  hitbox snapshot delete 3f2c...`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <scene.yaml>",
	Short: "Save a scene and its collisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a snapshot's rectangles and saved collisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotSaveCmd.Flags().StringVar(&flagSnapshotName, "name", "", "Snapshot name (default: scene name)")
	snapshotListCmd.Flags().IntVar(&flagSnapshotLimit, "limit", 20, "Maximum snapshots to list")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
}

func openStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened snapshot database", "path", flagDBPath)
	return store, nil
}

func runSnapshotSave(_ *cobra.Command, args []string) error {
	s, reg, err := loadScene(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name := flagSnapshotName
	if name == "" {
		name = s.Name
	}

	snap, err := store.SaveSnapshot(name, reg, reg.Collisions())
	if err != nil {
		return err
	}

	logger.Info("snapshot saved", "id", snap.ID, "name", snap.Name, "pairs", snap.PairCount)
	fmt.Println(snap.ID)
	return nil
}

func runSnapshotList(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.Snapshots(flagSnapshotLimit)
	if err != nil {
		return err
	}

	out := newPrinter()
	if len(snaps) == 0 {
		out.muted("No snapshots stored yet.")
		return nil
	}

	out.header("  %-36s  %-20s  %5s  %7s  %5s  %s", "ID", "Name", "Fixed", "Dynamic", "Pairs", "Date")
	for _, snap := range snaps {
		fmt.Fprintf(out.w, "  %-36s  %-20s  %5d  %7d  %5d  %s\n",
			snap.ID, snap.Name, snap.FixedCount, snap.DynamicCount, snap.PairCount,
			snap.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runSnapshotShow(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id := args[0]
	snap, err := store.SnapshotByID(id)
	if err != nil {
		return err
	}
	reg, err := store.LoadSnapshot(id, engineCfg.RegistryOptions(logger)...)
	if err != nil {
		return err
	}
	report, err := store.Report(id)
	if err != nil {
		return err
	}

	out := newPrinter()
	out.header("Snapshot %s (%s), saved %s", snap.Name, snap.ID, snap.CreatedAt.Format("2006-01-02 15:04"))
	out.entries(reg)
	fmt.Fprintln(out.w)
	out.pairs(reg, report)

	// The saved report used the policy at save time.
	if current := reg.Collisions(); len(current) != len(report) {
		out.muted("Current policy (%s) finds %d pair(s).", reg.Policy(), len(current))
	}
	return nil
}

func runSnapshotDelete(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteSnapshot(args[0]); err != nil {
		return err
	}
	logger.Info("snapshot deleted", "id", args[0])
	return nil
}
