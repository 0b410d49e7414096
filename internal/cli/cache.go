package cmd

import (
	"fmt"
	"os"

	"github.com/rohmanhakim/news-harvester/internal/collector"
	"github.com/spf13/cobra"
)

// cacheCmd groups the store maintenance commands. They operate on the
// configured cache directory without running a collection.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the cache footprint (entry count and size on disk)",
	Run: func(cmd *cobra.Command, args []string) {
		c := cacheCollector()
		sizeByte, entryCount, err := c.CacheReport()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cache entries: %d\n", entryCount)
		fmt.Printf("Cache size: %.2f MB (%d bytes)\n", float64(sizeByte)/(1024*1024), sizeByte)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cache entries older than the configured TTL",
	Run: func(cmd *cobra.Command, args []string) {
		c := cacheCollector()
		purged, err := c.PurgeExpiredEntries()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("Purged %d expired entries\n", purged)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry regardless of age",
	Run: func(cmd *cobra.Command, args []string) {
		c := cacheCollector()
		if err := c.ClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared")
	},
}

// cacheCollector builds a collector for store maintenance. The base URL
// is irrelevant to the store, so a placeholder is used when none is given.
func cacheCollector() collector.Collector {
	if baseURL == "" && cfgFile == "" {
		baseURL = "https://localhost"
	}
	cfg := InitConfig()
	return collector.NewCollector(cfg)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
