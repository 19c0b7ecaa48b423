package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backup status",
	Long: `Summarize the current state: configured groups and their history,
storage backends, encryption, and where the state document lives.`,
	RunE: runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	if last := a.state.LastBackupTime(); last.IsZero() {
		fmt.Println("Last backup: never")
	} else {
		fmt.Printf("Last backup: %s\n", last.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Printf("State file:  %s (%d tracked file(s))\n", a.state.Path(), a.state.FileCount())

	encryption := "disabled"
	if a.cfg.Encryption.Enabled {
		encryption = "enabled"
	}
	fmt.Printf("Encryption:  %s\n", encryption)

	fmt.Println()
	fmt.Println("Groups:")
	if len(a.cfg.Groups) == 0 {
		fmt.Println("  (none configured)")
	}
	for _, group := range a.cfg.Groups {
		records := a.state.Records(group.Name)
		storageName, _, _ := a.cfg.StorageFor(group, "")
		fmt.Printf("  %-20s %s  kind=%s  storage=%s  backups=%d\n",
			group.Name, group.Source, group.BackupKind(), storageName, len(records))
	}

	fmt.Println()
	fmt.Println("Storage backends:")
	if len(a.cfg.Storage) == 0 {
		fmt.Println("  (none configured)")
	}
	for name, sc := range a.cfg.Storage {
		marker := ""
		if name == a.cfg.DefaultStorage {
			marker = " (default)"
		}
		fmt.Printf("  %-12s type=%s%s\n", name, sc.Type, marker)
	}
	return nil
}
