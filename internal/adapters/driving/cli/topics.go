package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

var (
	topicsQuery    string
	topicsK        int
	topicsPerTopic int
	topicsOutput   string
	topicsNoSave   bool
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Suggest topics and generate questions from the index",
	Long: `Search the vector index for the dominant topics and turn each into
questions using the configured templates. Questions are written one per
line to the output file.`,
	Args: cobra.NoArgs,
	RunE: runTopics,
}

func init() {
	topicsCmd.Flags().StringVarP(&topicsQuery, "query", "q", domain.DefaultTopicQuery, "exploration query")
	topicsCmd.Flags().IntVarP(&topicsK, "k", "k", domain.DefaultTopicK, "number of chunks to search")
	topicsCmd.Flags().IntVar(&topicsPerTopic, "per-topic", domain.DefaultTopicPerTopic, "questions per topic")
	topicsCmd.Flags().StringVarP(&topicsOutput, "output", "o", domain.DefaultQuestionsPath, "questions file")
	topicsCmd.Flags().BoolVar(&topicsNoSave, "no-save", false, "print questions without writing the file")
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	if topicService == nil {
		return errors.New("topic service not configured")
	}

	query, k, perTopic, output := topicsQuery, topicsK, topicsPerTopic, topicsOutput
	if settings := currentSettings(); settings != nil {
		flags := cmd.Flags()
		if !flags.Changed("query") && settings.Topics.Query != "" {
			query = settings.Topics.Query
		}
		if !flags.Changed("k") && settings.Topics.K > 0 {
			k = settings.Topics.K
		}
		if !flags.Changed("per-topic") && settings.Topics.PerTopic > 0 {
			perTopic = settings.Topics.PerTopic
		}
		if !flags.Changed("output") && settings.Topics.OutputPath != "" {
			output = settings.Topics.OutputPath
		}
	}

	topics, err := topicService.SuggestTopics(cmd.Context(), query, k)
	if err != nil {
		return fmt.Errorf("failed to suggest topics: %w", err)
	}
	if len(topics) == 0 {
		cmd.Println("No topics found.")
		return nil
	}

	cmd.Println("Topics:")
	for i, t := range topics {
		cmd.Printf("  %d. %s\n", i+1, t)
	}

	questions := topicService.GenerateQuestions(topics, perTopic)
	cmd.Println()
	cmd.Println("Questions:")
	for _, q := range questions {
		cmd.Printf("  %s\n", q)
	}

	if topicsNoSave {
		return nil
	}
	if err := topicService.SaveQuestions(output, questions); err != nil {
		return fmt.Errorf("failed to save questions: %w", err)
	}
	cmd.Println()
	cmd.Printf("Saved %d questions to %s.\n", len(questions), output)
	return nil
}
