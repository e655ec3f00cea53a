// Command hotbench runs an essay contest evaluation pass: it loads the
// contest configuration and essay corpus, dispatches every essay to the
// configured judge panel, consolidates and ranks the scores, runs the
// cross-judge meta-analysis, and writes the final report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/hotbench/hotbench/infrastructure/judges"
	"github.com/hotbench/hotbench/infrastructure/llm"
	"github.com/hotbench/hotbench/infrastructure/middleware"
	"github.com/hotbench/hotbench/internal/application"
	"github.com/hotbench/hotbench/internal/domain"
	"github.com/hotbench/hotbench/internal/ports"
)

// apiKeyEnvVars maps provider names to the environment variable holding
// their API key.
var apiKeyEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GEMINI_API_KEY",
}

func main() {
	var (
		configPath = flag.String("config", "contest.yaml", "Path to the contest configuration file")
		essaysDir  = flag.String("essays", "essays", "Directory containing essay .txt files")
		outputPath = flag.String("output", "report.json", "Path for the JSON report (use - for stdout)")
		skipMeta   = flag.Bool("skip-meta", false, "Skip the meta-analysis pass")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *essaysDir, *outputPath, *skipMeta, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, essaysDir, outputPath string, skipMeta bool, logger *slog.Logger) error {
	cfg, err := application.LoadConfig(configPath)
	if err != nil {
		return err
	}

	essays, err := loadEssays(essaysDir, cfg.MaxWordCount)
	if err != nil {
		return err
	}
	logger.Info("corpus loaded", "dir", essaysDir, "essays", len(essays))

	metrics := middleware.NewPrometheusMetrics()

	panel, err := buildJudges(cfg, metrics)
	if err != nil {
		return err
	}

	var meta ports.MetaAnalyzer
	if !skipMeta {
		meta, err = buildMetaAnalyzer(metrics)
		if err != nil {
			// The meta-analysis is an enrichment pass; a missing API key
			// must not block scoring.
			logger.Warn("meta-analysis unavailable", "error", err)
		}
	}

	engine, err := application.NewEngine(cfg, panel, meta, metrics, logger)
	if err != nil {
		return err
	}

	report, err := engine.Run(context.Background(), essays)
	if err != nil {
		return err
	}

	if err := writeReport(report, outputPath); err != nil {
		return err
	}

	printSummary(report)
	return nil
}

// loadEssays reads every .txt file in dir as one submission. The file
// stem carries the student name; files over the word limit are loaded as
// disqualified rather than truncated or dropped.
func loadEssays(dir string, maxWords int) ([]domain.Essay, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read essays directory %s: %w", dir, err)
	}

	var essays []domain.Essay
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read essay %s: %w", entry.Name(), err)
		}
		stem := strings.TrimSuffix(entry.Name(), ".txt")
		essays = append(essays, domain.NewEssay(stem, string(body), maxWords))
	}

	if len(essays) == 0 {
		return nil, fmt.Errorf("%w: no .txt files in %s", domain.ErrNoEssays, dir)
	}

	sort.Slice(essays, func(i, j int) bool { return essays[i].ID < essays[j].ID })
	return essays, nil
}

// buildJudges resolves the configured roster into live judges, each
// backed by a provider client with its middleware chain.
func buildJudges(cfg application.Config, metrics ports.MetricsCollector) ([]ports.Judge, error) {
	registry := judges.NewRegistry()

	panel := make([]ports.Judge, 0, len(cfg.Judges))
	for _, spec := range cfg.Judges {
		client, err := buildClient(spec, cfg, metrics)
		if err != nil {
			return nil, fmt.Errorf("judge %s: %w", spec.ID, err)
		}

		judge, err := registry.New(judges.Config{
			ID:          spec.ID,
			Type:        spec.Type,
			Provider:    spec.Provider,
			Model:       spec.Model,
			Persona:     spec.Persona,
			Temperature: spec.Temperature,
			MaxTokens:   spec.MaxTokens,
		}, client)
		if err != nil {
			return nil, fmt.Errorf("judge %s: %w", spec.ID, err)
		}
		panel = append(panel, judge)
	}
	return panel, nil
}

// buildClient constructs a provider client for one judge with rate
// limiting, per-request timeout, metrics, and tracing applied
// outermost-first.
func buildClient(spec application.JudgeSpec, cfg application.Config, metrics ports.MetricsCollector) (ports.LLMClient, error) {
	apiKey, err := providerAPIKey(spec.Provider)
	if err != nil {
		return nil, err
	}

	var chain []llm.Middleware
	if spec.RequestsPerSecond > 0 {
		burst := spec.Burst
		if burst < 1 {
			burst = 1
		}
		chain = append(chain, llm.RateLimitMiddleware(rate.Limit(spec.RequestsPerSecond), burst))
	}
	chain = append(chain,
		llm.TimeoutMiddleware(cfg.RequestTimeout()),
		llm.MetricsMiddleware(metrics),
		llm.TracingMiddleware("hotbench"),
	)

	return llm.NewClient(spec.Provider, llm.ClientConfig{
		APIKey:     apiKey,
		Model:      spec.Model,
		Middleware: chain,
	})
}

// buildMetaAnalyzer creates the meta-analysis pass on its own OpenAI
// client with metrics and tracing.
func buildMetaAnalyzer(metrics ports.MetricsCollector) (ports.MetaAnalyzer, error) {
	apiKey, err := providerAPIKey("openai")
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient("openai", llm.ClientConfig{
		APIKey: apiKey,
		Model:  llm.OpenAIDefaultModel,
		Middleware: []llm.Middleware{
			llm.MetricsMiddleware(metrics),
			llm.TracingMiddleware("hotbench"),
		},
	})
	if err != nil {
		return nil, err
	}
	return judges.NewMetaAnalyzer(client)
}

func providerAPIKey(provider string) (string, error) {
	envVar, ok := apiKeyEnvVars[provider]
	if !ok {
		return "", fmt.Errorf("unknown provider %q", provider)
	}
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("%s is not set", envVar)
	}
	return key, nil
}

func writeReport(report *domain.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func printSummary(report *domain.RunReport) {
	fmt.Printf("Evaluated %d essays (%d incomplete, %d disqualified)\n",
		len(report.Ranked)+len(report.Incomplete), len(report.Incomplete), len(report.Disqualified))

	fmt.Println("\nWinners:")
	for _, winner := range report.Winners {
		fmt.Printf("  %d. %s (combined %.1f)\n", winner.Rank, winner.EssayID, winner.Combined)
	}

	if len(report.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, warning := range report.Warnings {
			fmt.Printf("  - %s\n", warning)
		}
	}
}
