package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/contactsleuth/contactsleuth/internal/config"
	"github.com/contactsleuth/contactsleuth/internal/database"
	"github.com/contactsleuth/contactsleuth/internal/report"
)

// NewHistoryCmd creates the history command for inspecting stored crawls.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Inspect stored crawl results",
		Long: `History inspects the local crawl database.

With no arguments it lists every crawled domain. With a domain argument
it lists the stored crawls for that domain, newest first.

Examples:
  # List all crawled domains
  contactsleuth history

  # List crawls for a domain
  contactsleuth history example.com

  # Show the aggregated facts from the latest crawl of a domain
  contactsleuth history --facts example.com

  # Show only email facts
  contactsleuth history --facts --type email example.com

  # Print a stored report by ID as JSON
  contactsleuth history --report 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("facts", false,
		"Show stored facts for the domain instead of crawl metadata")
	cmd.Flags().String("type", "",
		"Filter facts by type (email, name, phone, title, linkedin, organization)")
	cmd.Flags().Int64("report", 0,
		"Print the stored report with the given ID as JSON")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON instead of text")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// The history command never creates a database; an empty one would
	// have nothing to show anyway.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	reportID, err := cmd.Flags().GetInt64("report")
	if err != nil {
		return err
	}
	if reportID > 0 {
		return showStoredReport(ctx, db, reportID)
	}

	if len(args) == 0 {
		return listDomains(ctx, db, jsonOutput)
	}

	domain := args[0]

	showFacts, err := cmd.Flags().GetBool("facts")
	if err != nil {
		return err
	}
	if showFacts {
		factType, err := cmd.Flags().GetString("type")
		if err != nil {
			return err
		}
		return listFacts(ctx, db, domain, factType, jsonOutput)
	}

	return listHistory(ctx, db, domain, jsonOutput)
}

// listDomains prints every domain with at least one stored crawl.
func listDomains(ctx context.Context, db *database.CrawlDB, jsonOutput bool) error {
	domains, err := db.ListCrawledDomains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(domains)
	}

	if len(domains) == 0 {
		fmt.Println("No crawled domains found.")
		return nil
	}

	fmt.Printf("Crawled domains (%d):\n", len(domains))
	for _, domain := range domains {
		fmt.Printf("  %s\n", domain)
	}

	return nil
}

// listHistory prints the stored crawls for a domain, newest first.
func listHistory(ctx context.Context, db *database.CrawlDB, domain string, jsonOutput bool) error {
	history, err := db.GetCrawlHistory(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	if len(history) == 0 {
		fmt.Printf("No crawls found for %s.\n", domain)
		return nil
	}

	fmt.Printf("Crawl history for %s (%d crawls):\n\n", domain, len(history))
	for _, meta := range history {
		fmt.Printf("  [%d] %s  %s\n", meta.ID, meta.Timestamp.Format(time.RFC3339), meta.SeedURL)
		fmt.Printf("      facts: %s\n", formatFactSummary(meta.FactSummary))
	}

	return nil
}

// listFacts prints the aggregated facts stored for a domain.
func listFacts(ctx context.Context, db *database.CrawlDB, domain, factType string, jsonOutput bool) error {
	facts, err := db.QueryFacts(ctx, domain, factType)
	if err != nil {
		return fmt.Errorf("failed to query facts: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(facts)
	}

	if len(facts) == 0 {
		fmt.Printf("No facts found for %s.\n", domain)
		return nil
	}

	fmt.Printf("Facts for %s (%d):\n\n", domain, len(facts))
	for _, fact := range facts {
		fmt.Printf("  [%s] %s (%.2f)\n", fact.Type, fact.Value, fact.Confidence)
		if fact.SourceURL != "" {
			fmt.Printf("      source: %s\n", fact.SourceURL)
		}
	}

	return nil
}

// showStoredReport prints a stored crawl report as pretty-printed JSON.
func showStoredReport(ctx context.Context, db *database.CrawlDB, id int64) error {
	crawlReport, err := db.GetReportByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load report %d: %w", id, err)
	}

	writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	_, err = writer.Write(crawlReport)
	return err
}

// formatFactSummary renders a fact-count map as "email=3 name=2".
func formatFactSummary(summary map[string]int) string {
	if len(summary) == 0 {
		return "none"
	}

	types := make([]string, 0, len(summary))
	for t := range summary {
		types = append(types, t)
	}
	sort.Strings(types)

	out := ""
	for i, t := range types {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", t, summary[t])
	}
	return out
}
