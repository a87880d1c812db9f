package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

var syncDeleteMissing bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the index with the source documents",
	Long: `Walks the source directory and brings the search index in step with
it: new documents are indexed, changed documents are re-indexed, and
with --delete-missing, documents that disappeared are removed.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDeleteMissing, "delete-missing", false, "remove documents whose source file disappeared")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	cmd.Println("Synchronising documents...")

	outcome, err := syncService.Sync(context.Background(), syncDeleteMissing)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printOutcome(cmd, outcome)
	return nil
}

func printOutcome(cmd *cobra.Command, outcome *domain.SyncOutcome) {
	if !outcome.HasChanges() && len(outcome.Errors) == 0 {
		cmd.Printf("Up to date (%d unchanged).\n", outcome.UnchangedDocuments)
		return
	}

	cmd.Printf("Done: %d new, %d updated, %d unchanged, %d deleted.\n",
		outcome.NewDocuments, outcome.UpdatedDocuments,
		outcome.UnchangedDocuments, outcome.DeletedDocuments)
	cmd.Printf("Entries: %d added, %d removed.\n", outcome.EntriesAdded, outcome.EntriesRemoved)

	if len(outcome.Errors) > 0 {
		cmd.Printf("%d documents failed:\n", len(outcome.Errors))
		for _, msg := range outcome.Errors {
			cmd.Printf("  - %s\n", msg)
		}
	}
}
