// Command cli is a terminal client for the card service internals: generate
// cards without running the HTTP server, or inspect call telemetry.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/card"
	"github.com/kidscience/card-service/internal/config"
	"github.com/kidscience/card-service/internal/llm"
	"github.com/kidscience/card-service/internal/model"
	"github.com/kidscience/card-service/internal/service"
	"github.com/kidscience/card-service/internal/storage"
)

var (
	configPath string
	asJSON     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "card-cli",
		Short: "Generate knowledge cards and inspect provider telemetry",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ./config.yaml, env CARD_*)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON instead of formatted text")

	rootCmd.AddCommand(askCmd(), mockCmd(), statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Generate a card through the configured provider chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger := zap.NewNop()

			timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
			var clients []llm.Client
			for _, name := range cfg.Providers.Order {
				var (
					c    llm.Client
					cerr error
				)
				switch name {
				case "glm":
					c, cerr = llm.NewGLMClient(cfg.Providers.GLM, timeout)
				case "gemini":
					c, cerr = llm.NewGeminiClient(cmd.Context(), cfg.Providers.Gemini, timeout)
				case "anthropic":
					c, cerr = llm.NewAnthropicClient(cfg.Providers.Anthropic, timeout)
				default:
					cerr = fmt.Errorf("unknown provider %q", name)
				}
				if cerr != nil {
					fmt.Fprintf(os.Stderr, "skipping %s: %v\n", name, cerr)
					continue
				}
				clients = append(clients, c)
			}

			normalizer := card.NewNormalizer(card.Policy{
				PointMin: cfg.Normalizer.PointMin,
				PointMax: cfg.Normalizer.PointMax,
			})
			svc := service.NewCardService(clients, normalizer, cfg.Providers.RatePerMinute, nil, logger)

			result, _, err := svc.Generate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printCard(result)
		},
	}
}

func mockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mock <question>",
		Short: "Generate a card from the offline templates, no network needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCard(card.GenerateMock(args[0]))
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-provider call counts from the telemetry database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			repo := storage.NewProviderCallRepository(db)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			total, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			stats, err := repo.StatsByProvider(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"total_calls": total,
					"providers":   stats,
				})
			}

			fmt.Printf("total calls: %d\n", total)
			for _, s := range stats {
				fmt.Printf("  %-12s total=%-6d succeeded=%d\n", s.Provider, s.Total, s.Succeeded)
			}
			return nil
		},
	}
}

func printCard(c model.KnowledgeCard) error {
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(c)
	}

	fmt.Println(c.Title)
	fmt.Println()
	fmt.Println(c.Introduction)
	for _, p := range c.Points {
		fmt.Printf("\n%s\n%s\n", p.Title, p.Content)
	}
	fmt.Printf("\n%s\n", c.Summary)
	fmt.Printf("\n(source: %s)\n", c.Source)
	return nil
}
