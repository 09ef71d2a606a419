// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// AllLetters is the crawl.letters shorthand for the full A-Z range.
const AllLetters = "ALL"

// EnvPrefix namespaces environment overrides, e.g. FIGHTERS_CRAWL_LETTERS=A,B.
const EnvPrefix = "FIGHTERS"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourceConfig describes the statistics site and the headers sent to it.
type SourceConfig struct {
	Domain         string `mapstructure:"domain"`
	UserAgent      string `mapstructure:"user_agent"`
	Accept         string `mapstructure:"accept"`
	AcceptLanguage string `mapstructure:"accept_language"`
}

// HTTPConfig configures request timeout and transport retry behavior.
type HTTPConfig struct {
	TimeoutSeconds  int `mapstructure:"timeout_seconds"`
	MaxRetries      int `mapstructure:"max_retries"`
	BackoffFactorMs int `mapstructure:"backoff_factor_ms"`
	BackoffMaxMs    int `mapstructure:"backoff_max_ms"`
	MaxBodyBytes    int `mapstructure:"max_body_bytes"`
}

// CrawlConfig governs which listing pages are visited and how they are paced.
type CrawlConfig struct {
	Letters          []string `mapstructure:"letters"`
	DelayMs          int      `mapstructure:"delay_ms"`
	CandidatePauseMs int      `mapstructure:"candidate_pause_ms"`
}

// OutputConfig sets where the CSV and debug pages are written.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	File       string `mapstructure:"file"`
	SampleRows int    `mapstructure:"sample_rows"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith builds a Config using a caller-supplied Viper instance, which lets
// the CLI bind flags before values are resolved.
func LoadWith(v *viper.Viper, path string) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	letters, err := normalizeLetters(cfg.Crawl.Letters)
	if err != nil {
		return Config{}, err
	}
	cfg.Crawl.Letters = letters

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SetDefaults registers the shipped defaults. The default letter set is a
// two-page trial run; set crawl.letters to ALL for the whole directory.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.domain", "ufcstats.com")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("source.accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	v.SetDefault("source.accept_language", "en-US,en;q=0.9")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_factor_ms", 800)
	v.SetDefault("http.backoff_max_ms", 120000)
	v.SetDefault("http.max_body_bytes", 0)
	v.SetDefault("crawl.letters", []string{"S", "A"})
	v.SetDefault("crawl.delay_ms", 800)
	v.SetDefault("crawl.candidate_pause_ms", 500)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.file", "ufc_fighters.csv")
	v.SetDefault("output.sample_rows", 5)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.Domain) == "" {
		return fmt.Errorf("source.domain is required")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.BackoffFactorMs < 0 || c.HTTP.BackoffMaxMs < 0 {
		return fmt.Errorf("http backoff values must be >= 0")
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http.max_body_bytes must be >= 0")
	}
	if len(c.Crawl.Letters) == 0 {
		return fmt.Errorf("crawl.letters must not be empty")
	}
	if c.Crawl.DelayMs < 0 || c.Crawl.CandidatePauseMs < 0 {
		return fmt.Errorf("crawl delays must be >= 0")
	}
	if strings.TrimSpace(c.Output.File) == "" {
		return fmt.Errorf("output.file is required")
	}
	if filepath.Base(c.Output.File) != c.Output.File {
		return fmt.Errorf("output.file must be a bare file name, got %q", c.Output.File)
	}
	if c.Output.SampleRows < 0 {
		return fmt.Errorf("output.sample_rows must be >= 0")
	}
	return nil
}

// RequestTimeout is the per-request budget handed to the collector.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffFactor is the base delay of the retry schedule.
func (c Config) BackoffFactor() time.Duration {
	return time.Duration(c.HTTP.BackoffFactorMs) * time.Millisecond
}

// BackoffMax caps a single retry delay.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.HTTP.BackoffMaxMs) * time.Millisecond
}

// KeyDelay is the politeness pause between listing pages.
func (c Config) KeyDelay() time.Duration {
	return time.Duration(c.Crawl.DelayMs) * time.Millisecond
}

// CandidatePause is the pause after a transport failure before the next endpoint.
func (c Config) CandidatePause() time.Duration {
	return time.Duration(c.Crawl.CandidatePauseMs) * time.Millisecond
}

// normalizeLetters upper-cases keys, expands ALL and rejects anything that is
// not a single letter. Order is preserved; repeated keys are kept once.
func normalizeLetters(raw []string) ([]string, error) {
	var expanded []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if part == AllLetters {
				for r := 'A'; r <= 'Z'; r++ {
					expanded = append(expanded, string(r))
				}
				continue
			}
			if utf8.RuneCountInString(part) != 1 || !unicode.IsLetter([]rune(part)[0]) {
				return nil, fmt.Errorf("crawl.letters: %q is not a single letter", part)
			}
			expanded = append(expanded, part)
		}
	}
	seen := make(map[string]struct{}, len(expanded))
	letters := make([]string, 0, len(expanded))
	for _, l := range expanded {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		letters = append(letters, l)
	}
	return letters, nil
}
