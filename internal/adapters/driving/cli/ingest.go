package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	ingestID    string
	ingestTitle string
	ingestType  string
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document",
	Long: `Extracts the text of a file and stores it as a document, ready for questions.

Plain text, Markdown, HTML and PDF files are supported. Use "-" to read
plain text from stdin. Ingesting again with the same --id replaces the
previous version of the document.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document id (default: generated)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (default: from the file)")
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "MIME type (default: detected)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}

	raw, err := readRawDocument(cmd, args[0])
	if err != nil {
		return err
	}

	title, text, err := extractText(cmd.Context(), raw)
	if err != nil {
		return err
	}
	if ingestTitle != "" {
		title = ingestTitle
	}

	result, err := ingestService.IngestDocument(cmd.Context(), currentOwner(), ingestID, title, text)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", args[0], err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Ingested %s\n", result.DocumentID)
	cmd.Printf("  Title: %s\n", title)
	cmd.Printf("  Chunks: %d\n", result.Chunks)
	if result.Indexed {
		cmd.Println("  Index: built")
	}
	return nil
}

func readRawDocument(cmd *cobra.Command, path string) (*domain.RawDocument, error) {
	if path == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		mimeType := ingestType
		if mimeType == "" {
			mimeType = "text/plain"
		}
		return &domain.RawDocument{URI: "stdin", MIMEType: mimeType, Content: content}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.RawDocument{
		URI:      filepath.Clean(path),
		MIMEType: ingestType,
		Content:  content,
	}, nil
}

// extractText runs raw through the normaliser registry, or treats it as
// plain text when no registry is configured.
func extractText(ctx context.Context, raw *domain.RawDocument) (title, text string, err error) {
	if normaliserRegistry == nil {
		return raw.FallbackTitle(), string(raw.Content), nil
	}
	result, err := normaliserRegistry.Normalise(ctx, raw)
	if err != nil {
		return "", "", fmt.Errorf("extract %s: %w", raw.URI, err)
	}
	return result.Title, result.Content, nil
}
