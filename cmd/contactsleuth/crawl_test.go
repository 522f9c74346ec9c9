package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contactsleuth/contactsleuth/internal/config"
	"github.com/contactsleuth/contactsleuth/internal/model"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [url]" {
			t.Errorf("expected use 'crawl [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has depth flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("depth")
		if flag == nil {
			t.Fatal("expected depth flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has rate flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("global-rate") == nil {
			t.Error("expected global-rate flag")
		}
		if cmd.Flags().Lookup("domain-rate") == nil {
			t.Error("expected domain-rate flag")
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has list flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list")
		if flag == nil {
			t.Fatal("expected list flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has report format flags", func(t *testing.T) {
		t.Parallel()
		jsonFlag := cmd.Flags().Lookup("json")
		if jsonFlag == nil {
			t.Fatal("expected json flag")
		}
		if jsonFlag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", jsonFlag.Shorthand)
		}
		if cmd.Flags().Lookup("csv") == nil {
			t.Error("expected csv flag")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
	})

	t.Run("has no-db flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-db") == nil {
			t.Error("expected no-db flag")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewCrawlCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		crawlCmd, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatalf("failed to find crawl command: %v", err)
		}

		result := getVerboseFlag(crawlCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "example.com" {
			t.Errorf("expected seeds [example.com], got %v", cfg.Seeds)
		}
		if cfg.MaxDepth != config.DefaultMaxDepth {
			t.Errorf("expected MaxDepth %d, got %d", config.DefaultMaxDepth, cfg.MaxDepth)
		}
		if cfg.GlobalRate != config.DefaultGlobalRate {
			t.Errorf("expected GlobalRate %d, got %d", config.DefaultGlobalRate, cfg.GlobalRate)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true by default")
		}
	})

	t.Run("builds config with custom depth", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("depth", "5")
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxDepth != 5 {
			t.Errorf("expected MaxDepth 5, got %d", cfg.MaxDepth)
		}
	})

	t.Run("builds config with custom rates", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("global-rate", "20")
		_ = cmd.Flags().Set("domain-rate", "2")
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.GlobalRate != 20 {
			t.Errorf("expected GlobalRate 20, got %d", cfg.GlobalRate)
		}
		if cfg.DomainRate != 2 {
			t.Errorf("expected DomainRate 2, got %d", cfg.DomainRate)
		}
	})

	t.Run("builds config with custom batch size", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("batch", "8")
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BatchSize != 8 {
			t.Errorf("expected BatchSize 8, got %d", cfg.BatchSize)
		}
	})

	t.Run("builds config with CSV flag", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("csv", "true")
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.CSVReport {
			t.Error("expected CSVReport to be true")
		}
	})

	t.Run("disables persistence with no-db", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("no-db", "true")
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-db")
		}
	})

	t.Run("builds config with multiple seeds", func(t *testing.T) {
		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"a.example", "b.example", "c.example"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Seeds) != 3 {
			t.Errorf("expected 3 seeds, got %d", len(cfg.Seeds))
		}
	})

	t.Run("appends seeds from list file", func(t *testing.T) {
		tmpDir := t.TempDir()
		listPath := filepath.Join(tmpDir, "seeds.txt")

		content := []byte("# comment line\nexample.org\n\nexample.net\n")
		if err := os.WriteFile(listPath, content, 0o600); err != nil {
			t.Fatalf("failed to write seed list: %v", err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("list", listPath)
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"example.com", "example.org", "example.net"}
		if len(cfg.Seeds) != len(want) {
			t.Fatalf("expected %d seeds, got %d", len(want), len(cfg.Seeds))
		}
		for i, seed := range want {
			if cfg.Seeds[i] != seed {
				t.Errorf("seed[%d]: expected %q, got %q", i, seed, cfg.Seeds[i])
			}
		}
	})

	t.Run("returns error for missing list file", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("list", filepath.Join(t.TempDir(), "missing.txt"))
		_, err := buildConfig(cmd, []string{"example.com"})
		if err == nil {
			t.Fatal("expected error for missing seed list")
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "contactsleuth.yaml")

		content := []byte(`
defaults:
  depth: 2
sites:
  example.com:
    cookie: session=xyz
    maxPages: 10
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SiteConfigs == nil {
			t.Fatal("expected SiteConfigs to be loaded")
		}
		if cfg.SiteConfigs.Defaults.Depth != 2 {
			t.Errorf("expected default depth 2, got %d", cfg.SiteConfigs.Defaults.Depth)
		}
		site := cfg.SiteConfigs.GetSiteConfig("example.com")
		if site.Cookie != "session=xyz" {
			t.Errorf("expected cookie 'session=xyz', got %q", site.Cookie)
		}
		if site.MaxPages != 10 {
			t.Errorf("expected maxPages 10, got %d", site.MaxPages)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{"example.com"})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := buildConfig(cmd, []string{"example.com"})
		if err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewCrawlCmd()
		_ = cmd.Flags().Set("output", "/tmp/report.json")
		cfg, err := buildConfig(cmd, []string{"example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.json" {
			t.Errorf("expected ReportFile '/tmp/report.json', got %q", cfg.ReportFile)
		}
	})
}

// TestCreatePipelineForSeed tests pipeline assembly from configuration.
func TestCreatePipelineForSeed(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("builds crawl and aggregate steps without database", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		p := createPipelineForSeed(cfg, config.SiteConfig{}, nil, logger)

		names := p.StepNames()
		if len(names) != 2 {
			t.Fatalf("expected 2 steps, got %d (%v)", len(names), names)
		}
		if names[0] != "crawl" || names[1] != "aggregate" {
			t.Errorf("expected [crawl aggregate], got %v", names)
		}
	})

	t.Run("site config overrides do not panic", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		siteConfig := config.SiteConfig{
			Cookie:     "session=abc",
			Headers:    map[string]string{"X-Test": "1"},
			Depth:      1,
			MaxPages:   5,
			DomainRate: 1,
		}
		p := createPipelineForSeed(cfg, siteConfig, nil, logger)
		if p.StepCount() != 2 {
			t.Errorf("expected 2 steps, got %d", p.StepCount())
		}
	})
}

// TestRunCrawlNoSeeds tests that runCrawl returns error when no seeds provided.
func TestRunCrawlNoSeeds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.NewConfig()
	cfg.Seeds = []string{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	err := runCrawl(ctx, cfg, logger)
	if err == nil {
		t.Error("expected error for no seeds")
	}
}

// TestRunCrawlWithContextCancellation tests that a cancelled context
// stops the sequential crawl loop.
func TestRunCrawlWithContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.NewConfig()
	cfg.Seeds = []string{"example.com"}
	cfg.BatchSize = 1
	cfg.FetchTimeout = 1 * time.Second
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	err := runCrawl(ctx, cfg, logger)
	if err == nil {
		t.Error("expected error due to cancelled context")
	}
}

// TestOutputReport tests the report output functionality.
func TestOutputReport(t *testing.T) {
	newTestReport := func() *model.CrawlReport {
		crawlReport := model.NewCrawlReport("http://example.com", "example.com")
		crawlReport.AddFacts([]model.Fact{
			{
				Type:       model.FactEmail,
				Value:      "info@example.com",
				Confidence: 1.0,
				SourceURL:  "http://example.com/contact",
			},
		})
		crawlReport.Facts = []model.AggregatedFact{
			{
				Type:       model.FactEmail,
				Value:      "info@example.com",
				Confidence: 1.0,
				SourceURL:  "http://example.com/contact",
			},
		}
		return crawlReport
	}

	t.Run("outputs JSON report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		if err := outputReport(cfg, newTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var result map[string]interface{}
		if err := json.Unmarshal(content, &result); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		if err := outputReport(cfg, newTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created in nested directory")
		}
	})

	t.Run("outputs CSV report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "facts.csv")

		cfg := &config.Config{
			CSVReport:  true,
			ReportFile: outputPath,
		}

		if err := outputReport(cfg, newTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !bytes.Contains(content, []byte("info@example.com")) {
			t.Error("expected CSV to contain the email fact")
		}
	})

	t.Run("outputs Markdown report to file by default", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.md")

		cfg := &config.Config{
			ReportFile: outputPath,
		}

		if err := outputReport(cfg, newTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !bytes.Contains(content, []byte("example.com")) {
			t.Error("expected report to contain the domain")
		}
	})

	t.Run("outputs to stdout when no file specified", func(t *testing.T) {
		cfg := &config.Config{}

		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := outputReport(cfg, newTestReport())

		w.Close()
		os.Stdout = oldStdout

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		if buf.Len() == 0 {
			t.Error("expected non-empty output")
		}
	})
}

// TestReadSeedList tests seed list file parsing.
func TestReadSeedList(t *testing.T) {
	t.Parallel()

	t.Run("skips comments and blank lines", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "seeds.txt")
		content := []byte("# seeds\nexample.com\n\n  example.org  \n# trailing comment\n")
		if err := os.WriteFile(path, content, 0o600); err != nil {
			t.Fatalf("failed to write seed list: %v", err)
		}

		seeds, err := readSeedList(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seeds) != 2 {
			t.Fatalf("expected 2 seeds, got %d (%v)", len(seeds), seeds)
		}
		if seeds[0] != "example.com" || seeds[1] != "example.org" {
			t.Errorf("unexpected seeds: %v", seeds)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		t.Parallel()
		_, err := readSeedList(filepath.Join(t.TempDir(), "missing.txt"))
		if err == nil {
			t.Error("expected error for missing file")
		}
	})
}
