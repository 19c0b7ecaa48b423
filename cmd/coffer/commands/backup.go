package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/coffer/internal/engine"
)

var (
	backupKind    string
	backupStorage string
)

func init() {
	backupCmd.Flags().StringVar(&backupKind, "kind", "",
		"backup kind: full, incremental, differential (default: per-group setting)")
	backupCmd.Flags().StringVar(&backupStorage, "storage", "",
		"storage backend override by name")
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup [group ...]",
	Short: "Back up configured groups",
	Long: `Run the backup pipeline for the named groups, or every configured
group when none are named.

Incremental runs select only files that changed since their last backup;
a run with no changes is a successful no-op and uploads nothing.`,
	Example: `  # Back up every configured group
  coffer backup

  # Back up one group, forcing a full run
  coffer backup documents --kind full

  # Send this run to a different backend
  coffer backup documents --storage offsite`,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	groups, err := a.groupsFor(args)
	if err != nil {
		return err
	}

	opts := engine.BackupOptions{Kind: backupKind, Storage: backupStorage}

	var firstErr error
	for _, group := range groups {
		result, err := a.engine.Backup(cmd.Context(), group, opts)
		if err != nil {
			fmt.Printf("%s: failed: %v\n", group.Name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if result.Skipped {
			fmt.Printf("%s: no changes\n", group.Name)
			continue
		}
		fmt.Printf("%s: %d file(s), %s -> %s\n",
			group.Name, result.FilesBackedUp, formatBytes(result.SizeBytes), result.ArtifactPath)
	}
	return firstErr
}
