package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"cratedocs/internal/rustdoc"
)

var (
	searchVersion      string
	searchKind         string
	searchModulePrefix string
	searchLimit        int
)

var searchCmd = &cobra.Command{
	Use:   "search <crate> <query>",
	Short: "Search a crate's API for items by name",
	Example: `  cratedocs search tokio spawn
  cratedocs search serde deserialize --kind trait
  cratedocs search tokio send --module-prefix tokio::sync`,
	Args: cobra.ExactArgs(2),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchVersion, "version", "", "crate version (default: latest stable)")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "filter by item kind (struct, enum, trait, fn, ...)")
	searchCmd.Flags().StringVar(&searchModulePrefix, "module-prefix", "", "restrict to items under this module path")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	crateName, query := args[0], args[1]

	a, err := newApp()
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	ctx := context.Background()
	doc, version, err := a.fetchDoc(ctx, crateName, searchVersion)
	if err != nil {
		log.Fatalf("fetching docs: %v", err)
	}

	limit := searchLimit
	if limit == 0 {
		limit = a.cfg.Tools.DefaultLimit
	}
	results := rustdoc.SearchItems(doc, query, rustdoc.SearchOptions{
		Kind:         searchKind,
		ModulePrefix: searchModulePrefix,
		Limit:        limit,
	})

	if len(results) == 0 {
		fmt.Printf("no items matching %q in %s %s\n", query, crateName, version)
		return
	}
	for _, r := range results {
		fmt.Printf("%3d  %-8s %s\n", r.Score, r.Kind, r.Path)
		if r.Signature != "" {
			fmt.Printf("     %s\n", r.Signature)
		}
		if r.DocSummary != "" {
			fmt.Printf("     %s\n", r.DocSummary)
		}
	}
}
