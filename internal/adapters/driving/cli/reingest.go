package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reingestCmd = &cobra.Command{
	Use:   "reingest [source-id]",
	Short: "Force re-ingestion of documents",
	Long: `Re-indexes a document even when its content is unchanged. With a
source ID only that document is re-ingested; without one the whole
registry and index are cleared and rebuilt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReingest,
}

func init() {
	rootCmd.AddCommand(reingestCmd)
}

func runReingest(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	sourceID := ""
	if len(args) > 0 {
		sourceID = args[0]
		cmd.Printf("Re-ingesting %s...\n", sourceID)
	} else {
		cmd.Println("Re-ingesting all documents...")
	}

	outcome, err := syncService.ForceReingest(context.Background(), sourceID)
	if err != nil {
		return fmt.Errorf("reingest failed: %w", err)
	}

	printOutcome(cmd, outcome)
	return nil
}
