package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

var (
	settingsProvider  string
	settingsModel     string
	settingsAPIKey    string
	settingsBackend   string
	settingsBudget    int
	settingsRedisAddr string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, conversation memory, and other options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to index and search chunks.

Without --provider the choice is prompted for. API keys are read without
echo unless passed with --api-key.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long: `Configure the language model that answers questions and summarises
older conversation turns.`,
	RunE: runSettingsLLM,
}

var settingsMemoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Configure conversation memory",
	Long: `Configure where conversation memory is kept and how long the rendered
history may grow before older turns are summarised.

Backends:
  memory - in process, sessions expire when idle
  redis  - shared between server instances`,
	RunE: runSettingsMemory,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&settingsProvider, "provider", "", "provider name")
		c.Flags().StringVar(&settingsModel, "model", "", "model name")
		c.Flags().StringVar(&settingsAPIKey, "api-key", "", "API key")
	}
	settingsMemoryCmd.Flags().StringVar(&settingsBackend, "backend", "", "memory backend (memory or redis)")
	settingsMemoryCmd.Flags().IntVar(&settingsBudget, "budget", 0, "history budget in characters")
	settingsMemoryCmd.Flags().StringVar(&settingsRedisAddr, "redis-addr", "", "Redis host:port")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsMemoryCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f/s (burst %d)\n",
			settings.Embedding.RequestsPerSecond, settings.Embedding.Burst)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Chunker]")
	cmd.Printf("  Size: %d\n", settings.Chunker.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunker.Overlap)
	cmd.Printf("  Separator: %q\n", settings.Chunker.Separator)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  K: %d\n", settings.Retrieval.K)
	cmd.Printf("  Index: %s\n", settings.Index.Path)
	cmd.Println()

	cmd.Println("[Memory]")
	cmd.Printf("  Backend: %s\n", settings.Memory.Backend)
	cmd.Printf("  Budget: %d characters\n", settings.Memory.Budget)
	cmd.Printf("  Session TTL: %s\n", settings.Memory.SessionTTL)
	if settings.Memory.Backend == domain.MemoryBackendRedis {
		cmd.Printf("  Redis: %s (db %d)\n", settings.Memory.RedisAddr, settings.Memory.RedisDB)
	}
	cmd.Println()

	cmd.Println("[Dataset]")
	cmd.Printf("  Name: %s\n", settings.Dataset.Name)
	cmd.Printf("  Subset: %s\n", settings.Dataset.Subset)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	if settings.Server.LogFile != "" {
		cmd.Printf("  Log file: %s\n", settings.Server.LogFile)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'wikichat settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("wikichat Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure Conversation Memory")
	cmd.Println("-------------------------------------")
	if err := configureMemory(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if settingsProvider != "" {
		return applyProvider(cmd, settingsService.SetEmbeddingProvider,
			domain.DefaultEmbeddingModels(), settingsService.ValidateEmbeddingConfig, "embedding")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if settingsProvider != "" {
		return applyProvider(cmd, settingsService.SetLLMProvider,
			domain.DefaultLLMModels(), settingsService.ValidateLLMConfig, "LLM")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

// applyProvider configures a provider from flags, prompting only for a
// missing API key.
func applyProvider(
	cmd *cobra.Command,
	set func(domain.AIProvider, string, string) error,
	defaults map[domain.AIProvider]string,
	validate func() error,
	label string,
) error {
	provider := domain.AIProvider(strings.ToLower(settingsProvider))
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider: %s", settingsProvider)
	}

	model := settingsModel
	if model == "" {
		model = defaults[provider]
	}

	apiKey := settingsAPIKey
	if provider.RequiresAPIKey() && apiKey == "" {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, bufio.NewReader(cmd.InOrStdin()))
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := set(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", label, err)
	}

	cmd.Print("Validating configuration... ")
	if err := validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", label, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", label, provider.Description(), model)
	return nil
}

func runSettingsMemory(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if settingsBackend == "" && settingsBudget == 0 && settingsRedisAddr == "" {
		reader := bufio.NewReader(cmd.InOrStdin())
		return configureMemory(cmd, reader)
	}

	backend := domain.MemoryBackend(strings.ToLower(settingsBackend))
	if backend == "" {
		backend = domain.MemoryBackendLocal
		if current := currentSettings(); current != nil {
			backend = current.Memory.Backend
		}
	}

	if err := settingsService.SetMemory(backend, settingsBudget, settingsRedisAddr); err != nil {
		return fmt.Errorf("failed to configure memory: %w", err)
	}
	cmd.Printf("Memory configured: %s\n", backend)
	return nil
}

func configureMemory(cmd *cobra.Command, reader *bufio.Reader) error {
	backends := []domain.MemoryBackend{domain.MemoryBackendLocal, domain.MemoryBackendRedis}
	cmd.Println("Select Memory Backend")
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	backend := backends[idx-1]

	var redisAddr string
	if backend == domain.MemoryBackendRedis {
		cmd.Print("Enter Redis address [localhost:6379]: ")
		redisAddr = readLine(reader)
		if redisAddr == "" {
			redisAddr = "localhost:6379"
		}
	}

	cmd.Printf("Enter history budget in characters [%d]: ", domain.DefaultMemoryBudget)
	budget := domain.DefaultMemoryBudget
	if input := readLine(reader); input != "" {
		n, err := strconv.Atoi(input)
		if err != nil || n <= 0 {
			return errors.New("budget must be a positive number")
		}
		budget = n
	}

	if err := settingsService.SetMemory(backend, budget, redisAddr); err != nil {
		return fmt.Errorf("failed to configure memory: %w", err)
	}
	cmd.Printf("Memory configured: %s, budget %d\n\n", backend, budget)
	return nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when the command's input is a
// terminal, and a plain line from reader otherwise.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
