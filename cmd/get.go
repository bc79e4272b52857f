package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"cratedocs/internal/rustdoc"
)

var getVersion string

var getCmd = &cobra.Command{
	Use:   "get <item-path>",
	Short: "Show documentation for an item by fully-qualified path",
	Example: `  cratedocs get tokio::sync::Mutex
  cratedocs get serde::Deserialize --version 1.0.200`,
	Args: cobra.ExactArgs(1),
	Run:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&getVersion, "version", "", "crate version (default: latest stable)")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) {
	itemPath := args[0]
	crateName := itemPath
	if idx := strings.Index(itemPath, "::"); idx >= 0 {
		crateName = itemPath[:idx]
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	ctx := context.Background()
	doc, version, err := a.fetchDoc(ctx, crateName, getVersion)
	if err != nil {
		log.Fatalf("fetching docs: %v", err)
	}

	id, err := doc.FindItemByPath(crateName+" "+version, itemPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	item, ok := doc.Index[id]
	if !ok {
		log.Fatalf("item %q is re-exported from an external crate; its definition is not in the %s docs", itemPath, crateName)
	}

	fmt.Println(rustdoc.ItemSignature(&item, doc))
	if docs := item.DocText(); docs != "" {
		fmt.Println()
		fmt.Println(docs)
	}

	methods := rustdoc.InherentMethods(doc, &item)
	if item.Inner.Kind == rustdoc.KindTrait {
		methods = rustdoc.TraitMethods(doc, &item)
	}
	if len(methods) > 0 {
		fmt.Println()
		fmt.Println("Methods:")
		for _, m := range methods {
			fmt.Printf("  %s\n", m.Signature)
		}
	}
}
