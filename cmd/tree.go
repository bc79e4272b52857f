package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cratedocs/internal/rustdoc"
)

var (
	treeVersion string
	treeItems   bool
)

var treeCmd = &cobra.Command{
	Use:   "tree <crate>",
	Short: "Show a crate's module tree",
	Example: `  cratedocs tree tokio
  cratedocs tree serde --items`,
	Args: cobra.ExactArgs(1),
	Run:  runTree,
}

func init() {
	treeCmd.Flags().StringVar(&treeVersion, "version", "", "crate version (default: latest stable)")
	treeCmd.Flags().BoolVar(&treeItems, "items", false, "list items within each module")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) {
	crateName := args[0]

	a, err := newApp()
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	ctx := context.Background()
	doc, version, err := a.fetchDoc(ctx, crateName, treeVersion)
	if err != nil {
		log.Fatalf("fetching docs: %v", err)
	}

	tree, err := rustdoc.BuildModuleTree(doc, treeItems)
	if err != nil {
		log.Fatalf("building module tree: %v", err)
	}

	fmt.Printf("%s %s\n", crateName, version)
	printModule(tree, 0)
}

func printModule(node *rustdoc.ModuleNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s%s\n", indent, node.Path, countSuffix(node.ItemCounts))
	if node.DocSummary != "" {
		fmt.Printf("%s  %s\n", indent, node.DocSummary)
	}
	for _, item := range node.Items {
		fmt.Printf("%s  - %s\n", indent, item.Signature)
	}
	for _, child := range node.Children {
		printModule(child, depth+1)
	}
}

func countSuffix(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k))
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}
