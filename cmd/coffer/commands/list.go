package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [group]",
	Short: "List backup history",
	Long:  `Show recorded backups, newest first, for one group or all of them.`,
	Example: `  # All groups
  coffer list

  # One group
  coffer list documents`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(_ *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	groups := a.state.Groups()
	if len(args) == 1 {
		groups = []string{args[0]}
	}

	shown := 0
	for _, group := range groups {
		records := a.state.Records(group)
		if len(records) == 0 {
			continue
		}
		fmt.Printf("%s:\n", group)
		for i := len(records) - 1; i >= 0; i-- {
			r := records[i]
			kind := "full/incr"
			if r.Differential {
				kind = "diff"
			}
			fmt.Printf("  %s  %-9s  %8s  %s\n",
				r.Timestamp.Format("2006-01-02 15:04:05"),
				kind,
				formatBytes(r.SizeBytes),
				filepath.Base(r.ArtifactPath))
			shown++
		}
	}

	if shown == 0 {
		fmt.Println("No backups recorded")
	}
	return nil
}
