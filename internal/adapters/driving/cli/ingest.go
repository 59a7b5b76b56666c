package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

var (
	ingestLimit  int
	ingestPath   string
	ingestDelete bool
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector index from stored articles",
	Long: `Split stored articles into chunks, embed them, and save the vector index.

Articles that fail are reported and skipped; the rest are still indexed.
With --delete, remove the index file after confirmation.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestLimit, "limit", "n", 1, "number of articles to index")
	ingestCmd.Flags().StringVar(&ingestPath, "path", domain.DefaultIndexPath, "vector index file")
	ingestCmd.Flags().BoolVar(&ingestDelete, "delete", false, "delete the vector index")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the batch report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := ingestPath
	if settings := currentSettings(); settings != nil && !cmd.Flags().Changed("path") && settings.Index.Path != "" {
		path = settings.Index.Path
	}

	if ingestDelete {
		return runIngestDelete(cmd, path)
	}

	report, err := ingestService.Ingest(cmd.Context(), driving.IngestOptions{
		Limit: ingestLimit,
		Path:  path,
		OnArticle: func(a domain.Article) {
			if !ingestJSON {
				cmd.Printf("Processing article: %s\n", a.Title)
			}
		},
	})
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No articles found in the database.")
		return nil
	}
	if errors.Is(err, domain.ErrNothingIndexed) && report != nil {
		if !ingestJSON {
			printFailures(cmd, report)
		}
		return fmt.Errorf("ingest failed, existing index kept: %w", err)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Indexed %d chunks from %d articles.\n", report.Chunks, len(report.Succeeded))
	printFailures(cmd, report)
	return nil
}

func printFailures(cmd *cobra.Command, report *domain.BatchReport) {
	for _, f := range report.Failed {
		cmd.Printf("Failed: %s: %s\n", f.Item, f.Reason)
	}
}

func runIngestDelete(cmd *cobra.Command, path string) error {
	if !ingestService.IndexExists(path) {
		cmd.Println("Vector database not found.")
		return nil
	}

	cmd.Printf("Are you sure you want to delete %s? (yes/no) ", path)
	answer := readLine(bufio.NewReader(cmd.InOrStdin()))
	if !strings.EqualFold(answer, "yes") {
		cmd.Println("Deletion cancelled.")
		return nil
	}

	deleted, err := ingestService.DeleteIndex(path)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	if !deleted {
		cmd.Println("Vector database not found.")
		return nil
	}
	cmd.Println("Vector database file deleted.")
	return nil
}
