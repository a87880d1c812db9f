package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/planora-cli/internal/core/domain"
)

var (
	askObjectsPath string
	askStream      bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Answers a natural-language question from the indexed documents,
optionally combined with drawing objects loaded from a JSON file
(--objects). With --stream the answer is printed as it is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askObjectsPath, "objects", "", "JSON file with session drawing objects")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream the answer as it is generated")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}
	if !hasGenerator {
		return errors.New("OPENAI_API_KEY is not set")
	}

	objects, err := loadObjects(askObjectsPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	question := args[0]

	if askStream {
		return streamAnswer(ctx, cmd, question, objects)
	}

	answer, err := answerService.Answer(ctx, question, objects)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	return printAnswer(cmd, answer)
}

func streamAnswer(ctx context.Context, cmd *cobra.Command, question string, objects []domain.DrawingObject) error {
	var answer *domain.Answer
	streamed := false

	for event := range answerService.AnswerStream(ctx, question, objects) {
		switch event.Type {
		case domain.StreamChunk:
			cmd.Print(event.Text)
			streamed = true
		case domain.StreamDone:
			answer = event.Answer
		case domain.StreamError:
			return fmt.Errorf("answer failed: %s", event.Message)
		}
	}
	if answer == nil {
		return errors.New("stream ended without a result")
	}

	// Guard and not-found answers arrive whole in the done event.
	if !streamed {
		cmd.Print(answer.Text)
	}
	cmd.Println()
	printAnswerDetail(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) error {
	if askJSON {
		out, err := json.MarshalIndent(map[string]any{
			"text":    answer.Text,
			"mode":    answer.Mode,
			"summary": answer.Summary,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode answer: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Println(answer.Text)
	printAnswerDetail(cmd, answer)
	return nil
}

func printAnswerDetail(cmd *cobra.Command, answer *domain.Answer) {
	if !verbose {
		return
	}
	if answer.Mode != "" {
		cmd.Printf("\n[mode: %s]\n", answer.Mode)
	}
	if answer.Summary != nil && len(answer.Summary.Limitations) > 0 {
		cmd.Printf("[limitations: %s]\n", strings.Join(answer.Summary.Limitations, "; "))
	}
}

// loadObjects reads drawing objects from a JSON file holding either a
// bare array or an {"objects": [...]} wrapper.
func loadObjects(path string) ([]domain.DrawingObject, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read objects file: %w", err)
	}

	var objects []domain.DrawingObject
	if err := json.Unmarshal(data, &objects); err == nil {
		return objects, nil
	}

	var wrapper struct {
		Objects []domain.DrawingObject `json:"objects"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse objects file: %w", err)
	}
	return wrapper.Objects, nil
}
