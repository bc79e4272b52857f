package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"cratedocs/internal/registry"
)

var (
	cratesCategory string
	cratesKeyword  string
	cratesSort     string
	cratesPerPage  int
)

var cratesCmd = &cobra.Command{
	Use:   "crates <query>",
	Short: "Search crates.io for crates",
	Example: `  cratedocs crates "async http client"
  cratedocs crates parser --sort downloads`,
	Args: cobra.ExactArgs(1),
	Run:  runCrates,
}

func init() {
	cratesCmd.Flags().StringVar(&cratesCategory, "category", "", "filter by category slug")
	cratesCmd.Flags().StringVar(&cratesKeyword, "keyword", "", "filter by keyword tag")
	cratesCmd.Flags().StringVar(&cratesSort, "sort", "", "sort order (relevance, downloads, recent-downloads, recent-updates, alphabetical)")
	cratesCmd.Flags().IntVar(&cratesPerPage, "limit", 10, "max results")
	rootCmd.AddCommand(cratesCmd)
}

func runCrates(cmd *cobra.Command, args []string) {
	a, err := newApp()
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	result, err := a.crates.Search(context.Background(), registry.SearchParams{
		Query:    args[0],
		Category: cratesCategory,
		Keyword:  cratesKeyword,
		Sort:     cratesSort,
		Page:     1,
		PerPage:  cratesPerPage,
	})
	if err != nil {
		log.Fatalf("searching crates.io: %v", err)
	}

	fmt.Printf("%d crates (showing %d)\n", result.Meta.Total, len(result.Crates))
	for _, c := range result.Crates {
		version := ""
		if c.MaxStableVersion != nil {
			version = *c.MaxStableVersion
		}
		fmt.Printf("%-24s %-12s %10d downloads\n", c.Name, version, c.Downloads)
		if c.Description != nil && *c.Description != "" {
			fmt.Printf("  %s\n", *c.Description)
		}
	}
}
