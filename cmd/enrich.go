package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/celebware/starspot/internal/ai"
	"github.com/celebware/starspot/internal/config"
	"github.com/celebware/starspot/internal/store/mysql"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Generate missing celebrity biographies using AI",
	Long: `Generate biographies for celebrity profiles that do not have one yet.
The command finds every profile without a biography, asks an AI provider
for a short factual biography plus the person's professions, and stores
the result.

Examples:
  # Fill in missing biographies with OpenAI
  starspot enrich

  # Preview generated biographies without saving them
  starspot enrich --dry-run

  # Use a local model instead of a paid API
  starspot enrich --provider ollama`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().Bool("dry-run", false, "Preview generated biographies without saving them")
	enrichCmd.Flags().Int("limit", 0, "Limit number of profiles to process (0 = no limit)")
	enrichCmd.Flags().String("provider", "openai", "AI provider to use: openai, gemini, ollama, llamacpp")
}

// newProfileProvider builds the selected AI backend with its pricing table.
func newProfileProvider(ctx context.Context, cfg *config.Config, providerName string) (ai.Provider, error) {
	switch providerName {
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		pricing := cfg.GetModelPricing("gpt-4.1-mini")
		return ai.NewOpenAIProvider(cfg.OpenAI.Token,
			ai.RequestPricing{Input: pricing.Input, Output: pricing.Output},
		), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		pricing := cfg.GetModelPricing("gemini-2.5-flash")
		provider, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey,
			ai.RequestPricing{Input: pricing.Input, Output: pricing.Output},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return provider, nil
	case "ollama":
		return ai.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	case "llamacpp":
		provider, err := ai.NewLlamaCppProvider(cfg.LlamaCpp.URL, cfg.LlamaCpp.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, gemini, ollama, llamacpp)", providerName)
	}
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	dryRun := mustGetBool(cmd, "dry-run")
	limit := mustGetInt(cmd, "limit")
	providerName := mustGetString(cmd, "provider")

	if cfg.Profile.DatabaseURL == "" {
		return errors.New("PROFILE_DATABASE_URL environment variable is required")
	}

	provider, err := newProfileProvider(context.Background(), cfg, providerName)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	fmt.Println("Connecting to MySQL...")
	pool, err := mysql.NewPool(cfg.Profile.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer pool.Close()

	if err := pool.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare profile schema: %w", err)
	}
	profiles := mysql.NewProfileRepository(pool)

	missing, err := profiles.MissingBiography(ctx)
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}

	if len(missing) == 0 {
		fmt.Println("All profiles already have biographies!")
		return nil
	}

	fmt.Printf("Provider: %s\n", provider.Name())
	fmt.Printf("Profiles missing a biography: %d\n", len(missing))
	if dryRun {
		fmt.Println("Mode: DRY RUN (no changes will be applied)")
	}
	fmt.Println()

	bar := progressbar.NewOptions(len(missing),
		progressbar.OptionSetDescription("Generating biographies"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("profiles"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	type preview struct {
		name  string
		draft *ai.ProfileDraft
	}

	var generated int
	var previews []preview
	var failures []error

	for _, profile := range missing {
		draft, err := provider.GenerateProfile(ctx, profile.Name)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			failures = append(failures, fmt.Errorf("%s: %w", profile.Name, err))
			bar.Add(1)
			continue
		}

		if dryRun {
			previews = append(previews, preview{name: profile.Name, draft: draft})
		} else if err := profiles.SetBiography(ctx, profile.ID, draft.Biography, draft.Professions); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", profile.Name, err))
			bar.Add(1)
			continue
		}

		generated++
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("\nCompleted: %d biographies generated, %d errors\n", generated, len(failures))

	usage := provider.GetUsage()
	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		fmt.Printf("\nAPI Usage:\n")
		fmt.Printf("  Input tokens: %d\n", usage.InputTokens)
		fmt.Printf("  Output tokens: %d\n", usage.OutputTokens)
		fmt.Printf("  Total cost: $%.4f\n", usage.TotalCost)
	}

	if len(failures) > 0 {
		fmt.Printf("\nErrors: %d\n", len(failures))
		for _, err := range failures {
			fmt.Printf("  - %v\n", err)
		}
	}

	if len(previews) > 0 {
		fmt.Println("\nGenerated profiles:")
		for _, p := range previews {
			fmt.Printf("  %s:\n", p.name)
			if len(p.draft.Professions) > 0 {
				fmt.Printf("    Professions: %s\n", strings.Join(p.draft.Professions, ", "))
			}
			fmt.Printf("    Biography: %s\n", p.draft.Biography)
		}
	}

	return nil
}
