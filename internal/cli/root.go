package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rohmanhakim/news-harvester/internal/build"
	"github.com/rohmanhakim/news-harvester/internal/collector"
	"github.com/rohmanhakim/news-harvester/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	baseURL      string
	maxPages     int
	fetchContent bool
	useCache     bool
	cacheTTL     time.Duration
	cacheDir     string
	outputFile   string
	contentDir   string
	dryRun       bool
	userAgent    string
	timeout      time.Duration
	baseDelay    time.Duration
	jitter       time.Duration
	randomSeed   int64
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "news-harvester",
	Short:   "A polite news headline collector with a local response cache.",
	Version: build.FullVersion(),
	Long: `news-harvester is a CLI application that walks the listing pages of a
news site, collects headlines with their article links, and exports them
as CSV. Optionally it follows each link and stores the article body as
clean Markdown.

Fetched pages are cached on disk, so repeated runs against the same site
serve unchanged pages locally instead of re-downloading them.`,
	Run: func(cmd *cobra.Command, args []string) {
		if baseURL == "" && cfgFile == "" {
			fmt.Fprintf(os.Stderr, "Error: --base-url is required. Please provide the listing URL to harvest.\n")
			cmd.Usage()
			os.Exit(1)
		}

		cfg := InitConfig()

		c := collector.NewCollector(cfg)
		report, err := c.Run(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		printReport(report, cfg)
	},
}

func printReport(report collector.RunReport, cfg config.Config) {
	fmt.Printf("Run finished in %v\n", report.Duration().Round(time.Millisecond))
	fmt.Printf("Pages processed: %d\n", report.PagesProcessed())
	fmt.Printf("Items collected: %d\n", report.ItemsCollected())
	fmt.Printf("Errors: %d\n", report.TotalErrors())
	if !cfg.DryRun() {
		fmt.Printf("Output: %s\n", report.OutputFile())
	}

	if cfg.UseCache() {
		stats := report.CacheStats()
		fmt.Printf("Cache: %d hits, %d misses (%.1f%% hit rate)\n",
			stats.Hits(), stats.Misses(), stats.HitRatePercent())
		fmt.Printf("Cache store: %d entries, %.2f MB at %s\n",
			report.CacheEntryCount(), report.CacheSizeMB(), cfg.CacheDir())
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "listing URL the pagination walk starts from")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of listing pages to walk (0 for default)")
	rootCmd.PersistentFlags().BoolVar(&fetchContent, "fetch-content", false, "follow each item link and store the article as Markdown")
	rootCmd.PersistentFlags().BoolVar(&useCache, "use-cache", true, "serve unchanged pages from the local response cache")
	rootCmd.PersistentFlags().DurationVar(&cacheTTL, "cache-ttl", 0, "how long cached responses stay fresh (e.g. 24h)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory holding the response cache")
	rootCmd.PersistentFlags().StringVar(&outputFile, "output-file", "", "CSV file the collected items are written to")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content-dir", "", "directory article Markdown is written to")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "collect without writing output")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "base delay between HTTP requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
}

// InitConfig builds the run configuration from the config file or flags.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the run configuration, returning any errors.
// This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		fmt.Printf("Initializing config from file: %s\n", cfgFile)
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	parsedBase, err := url.Parse(baseURL)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: error parsing base URL %s: %v", config.ErrInvalidConfig, baseURL, err)
	}

	// Start with default config and apply overrides using method chaining
	configBuilder := config.WithDefault(*parsedBase)

	if maxPages > 0 {
		configBuilder = configBuilder.WithMaxPages(maxPages)
	}

	if fetchContent {
		configBuilder = configBuilder.WithFetchContent(fetchContent)
	}

	// The flag defaults to true; only disabling is an override
	if !useCache {
		configBuilder = configBuilder.WithUseCache(false)
	}

	if cacheTTL > 0 {
		configBuilder = configBuilder.WithCacheTTL(cacheTTL)
	}

	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}

	if outputFile != "" {
		configBuilder = configBuilder.WithOutputFile(outputFile)
	}

	if contentDir != "" {
		configBuilder = configBuilder.WithContentDir(contentDir)
	}

	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	baseURL = ""
	maxPages = 0
	fetchContent = false
	useCache = true
	cacheTTL = 0
	cacheDir = ""
	outputFile = ""
	contentDir = ""
	dryRun = false
	userAgent = ""
	timeout = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetBaseURLForTest(rawUrl string) {
	baseURL = rawUrl
}

func SetMaxPagesForTest(pages int) {
	maxPages = pages
}

func SetFetchContentForTest(fetch bool) {
	fetchContent = fetch
}

func SetUseCacheForTest(use bool) {
	useCache = use
}

func SetCacheTTLForTest(ttl time.Duration) {
	cacheTTL = ttl
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetOutputFileForTest(file string) {
	outputFile = file
}

func SetContentDirForTest(dir string) {
	contentDir = dir
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetBaseDelayForTest(delay time.Duration) {
	baseDelay = delay
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}
