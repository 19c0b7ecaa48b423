package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	cferrors "github.com/thoreinstein/coffer/internal/errors"
)

func init() {
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune [group ...]",
	Short: "Apply the retention policy now",
	Long: `Delete backups that fall outside the configured retention policy
(keep_last and/or max_age_days) and drop their history records.

Retention also runs automatically after every backup; prune exists for
applying a tightened policy to existing history.`,
	Example: `  # Prune every group with recorded backups
  coffer prune

  # Prune one group
  coffer prune documents`,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if !a.cfg.Retention.Enabled() {
		return cferrors.NewUserError(
			cferrors.Configurationf("retention is not configured"),
			"set retention.keep_last or retention.max_age_days in your config file")
	}

	groups := args
	if len(groups) == 0 {
		groups = a.state.Groups()
	}
	if len(groups) == 0 {
		fmt.Println("No backups recorded")
		return nil
	}

	var firstErr error
	for _, group := range groups {
		removed, err := a.engine.Prune(cmd.Context(), group)
		if err != nil {
			fmt.Printf("%s: failed: %v\n", group, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fmt.Printf("%s: pruned %d backup(s)\n", group, removed)
	}
	return firstErr
}
