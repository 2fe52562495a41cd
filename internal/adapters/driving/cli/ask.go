package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askModel   string
	askStyle   string
	askK       int
	askJSON    bool
	askContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about a document",
	Long: `Retrieves the passages of a document closest to the question and asks the
model to answer from them. The question and answer are added to your history.

If the question is omitted it is read from stdin.

Models:
  openai/gpt-3.5-turbo, anthropic/claude-3-haiku,
  meta-llama/llama-3-8b-instruct, google/gemini-pro

Styles:
  concise, technical, casual`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model id (default from settings)")
	askCmd.Flags().StringVarP(&askStyle, "style", "s", "", "answer style")
	askCmd.Flags().IntVarP(&askK, "top-k", "k", 0, "number of passages to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answer as JSON")
	askCmd.Flags().BoolVar(&askContext, "show-context", false, "print the retrieved passages")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return notConfigured("answer")
	}

	question := ""
	if len(args) == 2 {
		question = args[1]
	} else {
		question = readQuestion(cmd)
	}

	answer, err := answerService.Answer(cmd.Context(), domain.AnswerRequest{
		OwnerID:    currentOwner(),
		DocumentID: args[0],
		Question:   question,
		Model:      askModel,
		Style:      domain.PromptStyle(askStyle),
		K:          askK,
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if askContext {
		cmd.Println()
		cmd.Printf("Context (%s):\n", answer.Model)
		for i, c := range answer.Context {
			cmd.Printf("  [%d] %s\n", i+1, c.Text)
		}
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	passages := make([]string, len(answer.Context))
	for i, c := range answer.Context {
		passages[i] = c.Text
	}
	data, err := json.MarshalIndent(map[string]any{
		"answer":  answer.Text,
		"model":   answer.Model,
		"context": passages,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readQuestion(cmd *cobra.Command) string {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cmd.Print("Question: ")
	}
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(input)
}
