package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperforge/paperforge/config"
	"github.com/paperforge/paperforge/internal/domain"
	"github.com/paperforge/paperforge/internal/infrastructure/cache"
	"github.com/paperforge/paperforge/internal/infrastructure/kaggle"
	"github.com/paperforge/paperforge/internal/infrastructure/openai"
	"github.com/paperforge/paperforge/internal/infrastructure/paperpdf"
	"github.com/paperforge/paperforge/internal/pipeline"
	"github.com/paperforge/paperforge/internal/usecase"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:     "paperforge",
		Short:   "Turn a research paper into a dataset profile and a code scaffold",
		Long:    "paperforge reads a research paper, finds the dataset it uses on Kaggle,\ndownloads and profiles it, and renders a PyTorch training scaffold.",
		Version: version,
	}
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		paperSource  string
		outDir       string
		skipDownload bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full paper-to-scaffold pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log.Printf("Starting paperforge v%s", version)
			log.Printf("Paper: %s", paperSource)
			log.Printf("Output dir: %s", outDir)

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}

			// Infrastructure layer
			memoryCache := cache.NewMemoryCache()
			kaggleClient := kaggle.NewClient(cfg.Kaggle.Username, cfg.Kaggle.Key, cfg.Kaggle.BaseURL, cfg.RateLimit.Kaggle)

			var extractor domain.ChatExtractor
			if cfg.LLM.APIKey != "" {
				extractor = openai.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, outDir)
				log.Printf("LLM extraction enabled: model=%s", cfg.LLM.Model)
			} else {
				log.Printf("WARNING: no LLM API key configured; mention and method extraction will use URL scraping and defaults only")
			}

			// Usecase layer
			mentions := usecase.NewMentionService(extractor, usecase.MentionConfig{})
			resolver := usecase.NewResolverService(kaggleClient, memoryCache, usecase.ResolverConfig{
				MaxChecksPerName: cfg.Resolver.MaxChecksPerName,
				CacheTTL:         cfg.Cache.TTL,
			})
			selector := usecase.NewSelectorService(usecase.SelectorConfig{
				ScoreBandWidth: cfg.Resolver.ScoreBandWidth,
			})
			methods := usecase.NewMethodsService(extractor, usecase.MethodsConfig{})

			p := pipeline.New(paperpdf.NewLoader(), mentions, resolver, selector, methods, kaggleClient)

			_, err = p.Run(cmd.Context(), pipeline.Options{
				PaperSource:  paperSource,
				OutDir:       outDir,
				SkipDownload: skipDownload,
				PerClass:     cfg.Sampling.PerClass,
				MaxTotal:     cfg.Sampling.MaxTotal,
			})
			switch {
			case err == nil:
				log.Printf("Pipeline complete")
				return nil
			case domain.IsTerminalStop(err):
				// A paper without a resolvable dataset is a reported
				// outcome, not a command failure.
				log.Printf("Pipeline stopped: %v (see report.txt)", err)
				return nil
			default:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&paperSource, "paper", "", "path or URL of the paper PDF (required)")
	cmd.Flags().StringVar(&outDir, "out", "out", "directory for generated artifacts")
	cmd.Flags().BoolVar(&skipDownload, "skip-download", false, "stop after selection without downloading the dataset")
	cmd.MarkFlagRequired("paper")

	return cmd
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
