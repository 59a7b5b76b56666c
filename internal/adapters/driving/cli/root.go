// Package cli implements the wikichat command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driving"
	"github.com/custodia-labs/wikichat/internal/logger"
)

var version = "dev"

var verbose bool

// Services holds the driving ports the commands run against.
// Any of them may be nil; commands that need a missing one fail with
// "<name> service not configured".
type Services struct {
	Articles  driving.ArticleService
	Ingest    driving.IngestService
	Chat      driving.ChatService
	Retrieval driving.RetrievalService
	Topics    driving.TopicService
	Settings  driving.SettingsService
}

var (
	articleService   driving.ArticleService
	ingestService    driving.IngestService
	chatService      driving.ChatService
	retrievalService driving.RetrievalService
	topicService     driving.TopicService
	settingsService  driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "wikichat",
	Short: "Chat with Wikipedia articles",
	Long: `wikichat answers questions about Wikipedia articles.

Articles are loaded from a public dataset into a local database, split into
chunks, embedded, and indexed. Questions are answered by a language model
grounded on the nearest chunks, with a running memory of the conversation.

Typical workflow:
  wikichat dataset --limit 10   # load articles
  wikichat ingest --limit 10    # build the vector index
  wikichat chat                 # ask questions
  wikichat serve                # or serve the web chat`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	articleService = s.Articles
	ingestService = s.Ingest
	chatService = s.Chat
	retrievalService = s.Retrieval
	topicService = s.Topics
	settingsService = s.Settings
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentSettings returns the resolved settings, or nil when no settings
// service is configured or they cannot be read.
func currentSettings() *domain.AppSettings {
	if settingsService == nil {
		return nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("reading settings: %v", err)
		return nil
	}
	return settings
}
