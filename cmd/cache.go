package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"cratedocs/internal/config"
	"cratedocs/internal/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache and catalog statistics",
	Run:   runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached responses and catalog entries",
	Run:   runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) {
	a, err := newApp()
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	st := a.cache.Stats()
	fmt.Printf("http cache: %s\n", st.Dir)
	fmt.Printf("  entries: %d\n", st.Entries)
	fmt.Printf("  size:    %d bytes\n", st.TotalBytes)
	fmt.Printf("  ttl:     %s\n", a.cfg.TTL())

	catalog, err := storage.Open(config.CatalogPath())
	if err != nil {
		log.Printf("catalog unavailable: %v", err)
		return
	}
	defer catalog.Close()

	cst, err := catalog.Stats()
	if err != nil {
		log.Fatalf("reading catalog: %v", err)
	}
	fmt.Printf("catalog: %s\n", config.CatalogPath())
	fmt.Printf("  crates:   %d\n", cst.Crates)
	fmt.Printf("  versions: %d\n", cst.Versions)
	fmt.Printf("  items:    %d\n", cst.TotalItems)

	records, err := catalog.List("")
	if err != nil {
		log.Fatalf("listing catalog: %v", err)
	}
	for _, r := range records {
		fmt.Printf("  %s %s  %d items  last used %s\n",
			r.Name, r.Version, r.ItemCount, r.LastUsedAt.Format("2006-01-02 15:04"))
	}
}

func runCacheClear(cmd *cobra.Command, args []string) {
	a, err := newApp()
	if err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	if err := a.cache.Clear(); err != nil {
		log.Fatalf("clearing http cache: %v", err)
	}
	a.docs.Purge()

	if catalog, err := storage.Open(config.CatalogPath()); err == nil {
		defer catalog.Close()
		if err := catalog.Clear(); err != nil {
			log.Fatalf("clearing catalog: %v", err)
		}
	}

	fmt.Println("cache cleared")
}
