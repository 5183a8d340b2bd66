package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Reddit    Reddit    `yaml:"reddit"`
	Fetch     Fetch     `yaml:"fetch"`
	Cache     Cache     `yaml:"cache"`
	Analytics Analytics `yaml:"analytics"`
	RateLimit RateLimit `yaml:"rate_limit"`
	CORS      CORS      `yaml:"cors"`
	Log       Log       `yaml:"log"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string        `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port           string        `yaml:"port" env:"PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"3m"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"150s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Reddit holds Reddit API configuration.
// ClientIDs, ClientSecrets and UserAgents are parallel lists: entry i of each forms one credential set.
type Reddit struct {
	ClientIDs         []string      `yaml:"client_ids" env:"CLIENT_IDS" env-separator:","`
	ClientSecrets     []string      `yaml:"client_secrets" env:"CLIENT_SECRETS" env-separator:","`
	UserAgents        []string      `yaml:"user_agents" env:"USER_AGENTS" env-separator:","`
	TokenURL          string        `yaml:"token_url" env:"REDDIT_TOKEN_URL" env-default:"https://www.reddit.com/api/v1/access_token"`
	APIURL            string        `yaml:"api_url" env:"REDDIT_API_URL" env-default:"https://oauth.reddit.com"`
	WebURL            string        `yaml:"web_url" env:"REDDIT_WEB_URL" env-default:"https://reddit.com"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"REDDIT_REQUESTS_PER_MINUTE" env-default:"100"`
	HTTPTimeout       time.Duration `yaml:"http_timeout" env:"REDDIT_HTTP_TIMEOUT" env-default:"30s"`
}

// Fetch holds listing walk configuration
type Fetch struct {
	PageSize int           `yaml:"page_size" env:"FETCH_PAGE_SIZE" env-default:"100"`
	MaxPages int           `yaml:"max_pages" env:"FETCH_MAX_PAGES" env-default:"20"`
	Timeout  time.Duration `yaml:"timeout" env:"FETCH_TIMEOUT" env-default:"2m"`
}

// Cache holds response cache configuration
type Cache struct {
	TTL             time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"30m"`
	MaxEntries      int           `yaml:"max_entries" env:"CACHE_MAX_ENTRIES" env-default:"300"`
	MaxBytes        int64         `yaml:"max_bytes" env:"CACHE_MAX_BYTES" env-default:"20971520"`
	JanitorInterval time.Duration `yaml:"janitor_interval" env:"CACHE_JANITOR_INTERVAL" env-default:"1m"`
}

// Analytics holds activity analysis configuration
type Analytics struct {
	StopWords          []string `yaml:"stop_words" env:"STOP_WORDS" env-separator:","`
	Timezone           string   `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
	TopSubreddits      int      `yaml:"top_subreddits" env:"TOP_SUBREDDITS" env-default:"10"`
	DailyTopSubreddits int      `yaml:"daily_top_subreddits" env:"DAILY_TOP_SUBREDDITS" env-default:"5"`
	TopComments        int      `yaml:"top_comments" env:"TOP_COMMENTS" env-default:"10"`
	TopWords           int      `yaml:"top_words" env:"TOP_WORDS" env-default:"10"`
}

// Location resolves the configured time zone
func (a Analytics) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}

// RateLimit holds inbound rate limiting configuration
type RateLimit struct {
	Enabled  bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"60"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

// CORS holds cross-origin configuration
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Log holds logging configuration
type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// SlogLevel parses the configured level, defaulting to info
func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks settings that cannot be expressed as defaults
func (c Config) Validate() error {
	r := c.Reddit
	if len(r.ClientIDs) == 0 {
		return fmt.Errorf("CLIENT_IDS must list at least one client id")
	}
	if len(r.ClientIDs) != len(r.ClientSecrets) || len(r.ClientIDs) != len(r.UserAgents) {
		return fmt.Errorf("CLIENT_IDS (%d), CLIENT_SECRETS (%d) and USER_AGENTS (%d) must have the same length",
			len(r.ClientIDs), len(r.ClientSecrets), len(r.UserAgents))
	}
	if c.Fetch.PageSize < 1 || c.Fetch.PageSize > 100 {
		return fmt.Errorf("FETCH_PAGE_SIZE must be between 1 and 100, got %d", c.Fetch.PageSize)
	}
	if c.Fetch.MaxPages < 1 {
		return fmt.Errorf("FETCH_MAX_PAGES must be positive, got %d", c.Fetch.MaxPages)
	}
	for name, v := range map[string]int{
		"TOP_SUBREDDITS":       c.Analytics.TopSubreddits,
		"DAILY_TOP_SUBREDDITS": c.Analytics.DailyTopSubreddits,
		"TOP_COMMENTS":         c.Analytics.TopComments,
		"TOP_WORDS":            c.Analytics.TopWords,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if _, err := c.Analytics.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Analytics.StopWords = normalizeList(cfg.Analytics.StopWords)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	cfg.Analytics.StopWords = normalizeList(cfg.Analytics.StopWords)
	return cfg, cfg.Validate()
}

// normalizeList trims entries and drops empty ones
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
