// Package main provides the entry point for the ContactSleuth CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ContactSleuth.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contactsleuth",
		Short: "Contact discovery crawler for seed domains",
		Long: `ContactSleuth crawls a seed domain and extracts publicly listed contact
information: email addresses, personal names, phone numbers, job titles,
and organization details.

Crawling stays within the seed's domain, follows contact-relevant links
first, and respects global and per-domain rate limits.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
