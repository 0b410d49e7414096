package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	//===============
	//  Collection scope
	//===============
	// Listing page the pagination loop starts from.
	baseURL url.URL
	// Maximum number of listing pages to walk before stopping.
	maxPages int
	// Whether to follow each item link and collect the full article body.
	fetchContent bool

	//===============
	// Cache
	//===============
	// Whether fetches consult and populate the response cache at all.
	// When false every fetch is a network call and the store is never touched.
	useCache bool
	// Freshness window: entries older than this are treated as absent.
	cacheTTL time.Duration
	// Root directory holding one file per cached response.
	cacheDir string

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time enforced between two HTTP requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent that will be used in the request header. In raw string
	userAgent string

	//===============
	// Output
	//===============
	// Path of the CSV file holding the collected items
	outputFile string
	// Directory in which to store converted article Markdown
	contentDir string
	// Whether the program simulates what it would do without
	// actually performing any irreversible or side-effecting actions
	dryRun bool
}

type configDTO struct {
	BaseURL                string        `json:"baseUrl"`
	MaxPages               int           `json:"maxPages,omitempty"`
	FetchContent           bool          `json:"fetchContent,omitempty"`
	UseCache               *bool         `json:"useCache,omitempty"`
	TTLHours               float64       `json:"ttlHours,omitempty"`
	CacheDir               string        `json:"cacheDir,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	OutputFile             string        `json:"outputFile,omitempty"`
	ContentDir             string        `json:"contentDir,omitempty"`
	DryRun                 bool          `json:"dryRun,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	parsedBase, err := url.Parse(dto.BaseURL)
	if err != nil || parsedBase.Host == "" {
		return Config{}, fmt.Errorf("%w: baseUrl is missing or malformed", ErrInvalidConfig)
	}

	// Start with default config
	cfg, err := WithDefault(*parsedBase).Build()
	if err != nil {
		return Config{}, err
	}

	// Only override when a non-zero value is provided
	if dto.MaxPages != 0 {
		cfg.maxPages = dto.MaxPages
	}
	// FetchContent and DryRun are booleans whose zero value means "off"
	cfg.fetchContent = dto.FetchContent
	cfg.dryRun = dto.DryRun

	// UseCache defaults to true, so absence must be distinguishable from false
	if dto.UseCache != nil {
		cfg.useCache = *dto.UseCache
	}
	if dto.TTLHours != 0 {
		cfg.cacheTTL = time.Duration(dto.TTLHours * float64(time.Hour))
	}
	if dto.CacheDir != "" {
		cfg.cacheDir = dto.CacheDir
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = dto.BaseDelay
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.OutputFile != "" {
		cfg.outputFile = dto.OutputFile
	}
	if dto.ContentDir != "" {
		cfg.contentDir = dto.ContentDir
	}

	return cfg, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided base listing URL and
// default values for all other fields. baseURL is mandatory and must carry a
// host - Build will return an error if it does not.
func WithDefault(baseURL url.URL) *Config {
	defaultConfig := Config{
		baseURL:                baseURL,
		maxPages:               10,
		fetchContent:           false,
		useCache:               true,
		cacheTTL:               24 * time.Hour,
		cacheDir:               ".cache",
		baseDelay:              time.Second,
		jitter:                 time.Millisecond * 500,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 100 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		timeout:                time.Second * 30,
		userAgent:              "news-harvester/1.0",
		outputFile:             "news.csv",
		contentDir:             "content",
		dryRun:                 false,
	}
	return &defaultConfig
}

func (c *Config) WithBaseURL(baseURL url.URL) *Config {
	c.baseURL = baseURL
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithFetchContent(fetchContent bool) *Config {
	c.fetchContent = fetchContent
	return c
}

func (c *Config) WithUseCache(useCache bool) *Config {
	c.useCache = useCache
	return c
}

func (c *Config) WithCacheTTL(ttl time.Duration) *Config {
	c.cacheTTL = ttl
	return c
}

func (c *Config) WithCacheDir(dir string) *Config {
	c.cacheDir = dir
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithOutputFile(outputFile string) *Config {
	c.outputFile = outputFile
	return c
}

func (c *Config) WithContentDir(contentDir string) *Config {
	c.contentDir = contentDir
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) Build() (Config, error) {
	if c.baseURL.Host == "" {
		return Config{}, fmt.Errorf("%w: baseURL must carry a host", ErrInvalidConfig)
	}
	if c.maxPages < 1 {
		return Config{}, fmt.Errorf("%w: maxPages must be at least 1", ErrInvalidConfig)
	}
	if c.cacheTTL < 0 {
		return Config{}, fmt.Errorf("%w: cacheTTL cannot be negative", ErrInvalidConfig)
	}

	return *c, nil
}

func (c Config) BaseURL() url.URL {
	return c.baseURL
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) FetchContent() bool {
	return c.fetchContent
}

func (c Config) UseCache() bool {
	return c.useCache
}

func (c Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) CacheDir() string {
	return c.cacheDir
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) OutputFile() string {
	return c.outputFile
}

func (c Config) ContentDir() string {
	return c.contentDir
}

func (c Config) DryRun() bool {
	return c.dryRun
}
