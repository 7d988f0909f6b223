package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

var (
	askJSON         bool
	askYAML         bool
	askConversation string
	askUser         string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the knowledge base",
	Long: `Embeds the question, retrieves the most relevant article chunks from the
vector index and asks the LLM to answer using them as context.

Chunks scoring below kb.min_relevance_score are not used. Without relevant
chunks the model answers from the question alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askYAML, "yaml", false, "output the answer as YAML")
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "conversation ID to continue")
	askCmd.Flags().StringVar(&askUser, "user", "", "user ID recorded with the interaction")
	askCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	svc, err := rt.Answer(cmd.Context())
	if err != nil {
		return err
	}

	answer, err := svc.Ask(cmd.Context(), domain.AskRequest{
		Query:          args[0],
		ConversationID: askConversation,
		UserID:         askUser,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	switch {
	case askJSON:
		return outputJSON(cmd, answer)
	case askYAML:
		return outputYAML(cmd, answer)
	default:
		outputAnswerText(cmd, answer)
		return nil
	}
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Answer)
	if len(answer.ContextSources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.ContextSources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Title, src.Score)
		if url, _ := src.Metadata["url"].(string); url != "" {
			cmd.Printf("      %s\n", url)
		}
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputYAML prints v as YAML using its JSON field names.
func outputYAML(cmd *cobra.Command, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Print(buf.String())
	return nil
}
