package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/coffer/internal/engine"
	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

var restoreTarget string

func init() {
	restoreCmd.Flags().StringVar(&restoreTarget, "target", "",
		"directory to restore into (default: the group's source directory)")
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore <group> [artifact]",
	Short: "Restore a group's backup",
	Long: `Restore the named artifact, or the group's most recent backup when no
artifact is named.

A differential artifact restores its base backup first, then applies its
own payload on top. Encrypted artifacts prompt for the password unless
COFFER_PASSWORD is set.`,
	Example: `  # Restore the latest backup into the group's source directory
  coffer restore documents

  # Restore into a scratch directory
  coffer restore documents --target /tmp/restored

  # Restore a specific artifact
  coffer restore documents backup_documents_3f2a..._20260830120000.zip`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	groupName := args[0]
	var artifact string
	if len(args) == 2 {
		artifact = args[1]
	}

	target := restoreTarget
	if target == "" {
		group, ok := a.cfg.Group(groupName)
		if !ok {
			return cferrors.NewUserError(
				cferrors.NotFoundf("unknown group %q", groupName),
				"name a configured group, or pass --target explicitly")
		}
		target = group.Source
	}

	result, err := a.engine.Restore(cmd.Context(), groupName, engine.RestoreOptions{
		Artifact: artifact,
		Target:   target,
	})
	if err != nil {
		return err
	}

	for _, base := range result.BaseArtifacts {
		fmt.Printf("restored base %s\n", base)
	}
	fmt.Printf("restored %s -> %s\n", result.ArtifactPath, result.Target)
	return nil
}
