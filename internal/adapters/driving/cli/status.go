package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show registry and index state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	report, err := syncService.Status(context.Background())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	cmd.Printf("Registered documents: %d\n", report.RegisteredDocuments)
	cmd.Printf("Registered entries:   %d\n", report.TotalEntries)
	cmd.Printf("Index entries:        %d\n", report.IndexCount)

	if len(report.Documents) == 0 {
		return nil
	}

	cmd.Println()
	for _, doc := range report.Documents {
		hash := doc.ContentHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		cmd.Printf("  %s  v%d  %d entries, %d pages  %s  synced %s\n",
			doc.SourceID, doc.Version, doc.EntryCount, doc.PageCount,
			hash, doc.LastSyncedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
