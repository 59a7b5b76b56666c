package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
)

var (
	datasetLimit  int
	datasetSubset string
	datasetName   string
	datasetList   bool
	datasetDelete bool
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Load, list, or delete stored articles",
	Long: `Load articles from the Hugging Face datasets server into the local database.

With --list, print the stored articles. With --delete, remove all of them.

Examples:
  wikichat dataset --limit 10
  wikichat dataset --subset 20220301.en --limit 5
  wikichat dataset --list
  wikichat dataset --delete`,
	Args: cobra.NoArgs,
	RunE: runDataset,
}

func init() {
	datasetCmd.Flags().IntVarP(&datasetLimit, "limit", "n", 10, "number of articles to load")
	datasetCmd.Flags().StringVar(&datasetSubset, "subset", domain.DefaultDatasetSubset, "dataset subset")
	datasetCmd.Flags().StringVar(&datasetName, "dataset", domain.DefaultDatasetName, "dataset name")
	datasetCmd.Flags().BoolVar(&datasetList, "list", false, "list stored articles")
	datasetCmd.Flags().BoolVar(&datasetDelete, "delete", false, "delete all stored articles")
	datasetCmd.MarkFlagsMutuallyExclusive("list", "delete")
	rootCmd.AddCommand(datasetCmd)
}

func runDataset(cmd *cobra.Command, _ []string) error {
	if articleService == nil {
		return errors.New("article service not configured")
	}

	ctx := cmd.Context()

	switch {
	case datasetList:
		articles, err := articleService.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list articles: %w", err)
		}
		if len(articles) == 0 {
			cmd.Println("No articles found in the database.")
			return nil
		}
		for i := range articles {
			cmd.Printf("%s: %s (%s)\n", articles[i].ID, articles[i].Title, articles[i].URL)
		}
		return nil

	case datasetDelete:
		n, err := articleService.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete articles: %w", err)
		}
		cmd.Printf("Deleted %d articles.\n", n)
		return nil
	}

	name, subset := datasetName, datasetSubset
	if settings := currentSettings(); settings != nil {
		if !cmd.Flags().Changed("dataset") && settings.Dataset.Name != "" {
			name = settings.Dataset.Name
		}
		if !cmd.Flags().Changed("subset") && settings.Dataset.Subset != "" {
			subset = settings.Dataset.Subset
		}
	}

	cmd.Printf("Loading dataset with subset '%s' and limit %d...\n", subset, datasetLimit)
	n, err := articleService.Load(ctx, driving.LoadOptions{
		Dataset: name,
		Subset:  subset,
		Limit:   datasetLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	cmd.Printf("Successfully saved %d articles.\n", n)
	return nil
}
