package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc"},
	Short:   "Manage ingested documents",
	Long:    `List, view, summarise, or delete the documents you have ingested.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print the extracted document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print the document's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentSummaryCmd = &cobra.Command{
	Use:   "summary [doc-id]",
	Short: "Summarise a document",
	Long:  `Prints the cached summary, generating one with the selected model when none exists.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSummary,
}

var documentEntitiesCmd = &cobra.Command{
	Use:   "entities [doc-id]",
	Short: "Extract an entity graph as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentEntities,
}

var (
	documentModel string
	summaryForce  bool
)

func init() {
	documentSummaryCmd.Flags().StringVarP(&documentModel, "model", "m", "", "model to summarise with (default from settings)")
	documentSummaryCmd.Flags().BoolVar(&summaryForce, "force", false, "regenerate even when a summary is cached")
	documentEntitiesCmd.Flags().StringVarP(&documentModel, "model", "m", "", "model to extract with (default from settings)")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentSummaryCmd)
	documentCmd.AddCommand(documentEntitiesCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	owner := currentOwner()
	docs, err := documentService.List(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents for %s. Add one with 'docqa ingest FILE'.\n", owner)
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		cmd.Printf("    Updated: %s\n", docs[i].UpdatedAt.Format("2006-01-02 15:04"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), currentOwner(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID: %s\n", doc.ID)
	cmd.Printf("Title: %s\n", doc.Title)
	cmd.Printf("Characters: %d\n", len([]rune(doc.Content)))
	cmd.Printf("Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	if doc.Summary != "" {
		cmd.Println()
		cmd.Println("Summary:")
		cmd.Println(doc.Summary)
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), currentOwner(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	cmd.Println(doc.Content)
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	chunks, err := documentService.Chunks(cmd.Context(), currentOwner(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	for _, c := range chunks {
		cmd.Printf("--- chunk %d (%d chars) ---\n", c.Ordinal, len([]rune(c.Text)))
		cmd.Println(c.Text)
	}
	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	if err := documentService.Delete(cmd.Context(), currentOwner(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runDocumentSummary(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	summary, err := documentService.Summarize(
		cmd.Context(), currentOwner(), args[0], domain.Model(strings.TrimSpace(documentModel)), summaryForce,
	)
	if err != nil {
		return fmt.Errorf("failed to summarise document: %w", err)
	}
	cmd.Println(summary)
	return nil
}

func runDocumentEntities(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return notConfigured("document")
	}

	graph, err := documentService.Entities(
		cmd.Context(), currentOwner(), args[0], domain.Model(strings.TrimSpace(documentModel)),
	)
	if err != nil {
		return fmt.Errorf("failed to extract entities: %w", err)
	}

	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entities: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
