package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" validate:"omitempty,oneof=development production prod"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Content     ContentConfig   `toml:"content"`
	Storage     StorageConfig   `toml:"storage"`
	Scan        ScanConfig      `toml:"scan"`
	Logging     LoggingConfig   `toml:"logging"`
	WebSocket   WebSocketConfig `toml:"websocket"`
	GitHub      GitHubConfig    `toml:"github"`
	Analysis    AnalysisConfig  `toml:"analysis"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

// ContentConfig locates the content roots. A file's kind (post or page)
// comes from the root it lives under.
type ContentConfig struct {
	PostsDir   string   `toml:"posts_dir" validate:"required"` // Root for dated posts
	PagesDir   string   `toml:"pages_dir" validate:"required"` // Root for standalone pages
	Extensions []string `toml:"extensions"`                    // File extensions to scan (default: [".md"])
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// ScanConfig controls when the content roots are rescanned
type ScanConfig struct {
	Enabled   bool   `toml:"enabled"`    // Enable the periodic rescan job
	Schedule  string `toml:"schedule"`   // Cron schedule format (with seconds field)
	OnStartup bool   `toml:"on_startup"` // Run a full scan before serving
}

type LoggingConfig struct {
	Level         string   `toml:"level" validate:"omitempty,oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Format        string   `toml:"format"`                                                 // "json" or "text"
	Output        []string `toml:"output"`                                                 // "stdout", "file"
	TimeFormat    string   `toml:"time_format"`                                            // Time format for logs (default: "15:04:05.000")
	MinEventLevel string   `toml:"min_event_level"`                                        // Minimum log level to publish as events ("debug", "info", "warn", "error")
}

// WebSocketConfig contains configuration for WebSocket event streaming
type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level"`        // Minimum log level to broadcast ("debug", "info", "warn", "error")
	ExcludePatterns []string `toml:"exclude_patterns"` // Log message patterns to exclude from broadcasting
	// Whitelist of event types to broadcast via WebSocket. Empty list allows all events.
	// Example: ["content_updated", "scan_completed"]
	AllowedEvents []string `toml:"allowed_events"`
	// Throttle intervals for high-frequency events. Map of event type to duration string.
	// Example: {"scan_progress": "1s"}
	ThrottleIntervals map[string]string `toml:"throttle_intervals"`
}

// GitHubConfig points at a repository holding the content tree. Sync pulls
// the content path at ref into the local content roots.
type GitHubConfig struct {
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
	Ref   string `toml:"ref"`   // Branch, tag or SHA (default: "main")
	Path  string `toml:"path"`  // Repo subdirectory holding the content tree (default: "content")
	Token string `toml:"token"` // Optional token; unauthenticated requests hit low rate limits
}

// AnalysisConfig tunes derived body metadata
type AnalysisConfig struct {
	WordsPerMinute int `toml:"words_per_minute" validate:"min=1"` // Reading speed for reading-time estimates
	ExcerptLength  int `toml:"excerpt_length" validate:"min=1"`   // Max excerpt length in characters
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in folio.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development", // Default to development mode
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Content: ContentConfig{
			PostsDir:   "./content/posts",
			PagesDir:   "./content/pages",
			Extensions: []string{".md"}, // Default: only markdown files
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Scan: ScanConfig{
			Enabled:   true,
			Schedule:  "0 */5 * * * *", // Every 5 minutes (cron format with seconds)
			OnStartup: true,            // Catalog is empty until the first scan
		},
		Logging: LoggingConfig{
			Level:         "info",                     // Info level for production (debug|info|warn|error)
			Format:        "text",                     // Human-readable text format (text|json)
			Output:        []string{"stdout", "file"}, // Log to both console and file
			MinEventLevel: "info",                     // Publish info and above as events
		},
		WebSocket: WebSocketConfig{
			MinLevel: "info", // Default: info level and above
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
				"HTTP response",
				"Publishing Event",
			},
			// Empty AllowedEvents allows all events
			AllowedEvents: []string{},
			// Throttle high-frequency events to prevent WebSocket flooding during large scans
			ThrottleIntervals: map[string]string{
				"scan_progress": "1s", // Max 1 scan progress update per second
			},
		},
		GitHub: GitHubConfig{
			Path: "content", // Conventional content directory in blog repos
		},
		Analysis: AnalysisConfig{
			WordsPerMinute: 200, // Common reading-speed assumption
			ExcerptLength:  280,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
// Priority system: CLI flags > Environment variables > Config file > Defaults
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files. Priority system: CLI flags > Environment variables > Last config file > ... > First config file > Defaults
// Example: LoadFromFiles("base.toml", "override.toml") - override.toml settings take precedence over base.toml
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: FOLIO_ENV, fallback: GO_ENV)
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("FOLIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FOLIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Content configuration
	if postsDir := os.Getenv("FOLIO_CONTENT_POSTS_DIR"); postsDir != "" {
		config.Content.PostsDir = postsDir
	}
	if pagesDir := os.Getenv("FOLIO_CONTENT_PAGES_DIR"); pagesDir != "" {
		config.Content.PagesDir = pagesDir
	}
	if extensions := os.Getenv("FOLIO_CONTENT_EXTENSIONS"); extensions != "" {
		// Split comma-separated extensions
		exts := []string{}
		for _, e := range strings.Split(extensions, ",") {
			trimmed := strings.TrimSpace(e)
			if trimmed != "" {
				exts = append(exts, trimmed)
			}
		}
		if len(exts) > 0 {
			config.Content.Extensions = exts
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("FOLIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Scan configuration
	if enabled := os.Getenv("FOLIO_SCAN_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scan.Enabled = e
		}
	}
	if schedule := os.Getenv("FOLIO_SCAN_SCHEDULE"); schedule != "" {
		config.Scan.Schedule = schedule
	}
	if onStartup := os.Getenv("FOLIO_SCAN_ON_STARTUP"); onStartup != "" {
		if s, err := strconv.ParseBool(onStartup); err == nil {
			config.Scan.OnStartup = s
		}
	}

	// Logging configuration
	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("FOLIO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("FOLIO_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
	if minEventLevel := os.Getenv("FOLIO_LOG_MIN_EVENT_LEVEL"); minEventLevel != "" {
		config.Logging.MinEventLevel = minEventLevel
	}

	// WebSocket configuration
	if minLevel := os.Getenv("FOLIO_WEBSOCKET_MIN_LEVEL"); minLevel != "" {
		config.WebSocket.MinLevel = minLevel
	}
	if allowedEvents := os.Getenv("FOLIO_WEBSOCKET_ALLOWED_EVENTS"); allowedEvents != "" {
		// Split comma-separated event types
		events := []string{}
		for _, e := range strings.Split(allowedEvents, ",") {
			trimmed := strings.TrimSpace(e)
			if trimmed != "" {
				events = append(events, trimmed)
			}
		}
		if len(events) > 0 {
			config.WebSocket.AllowedEvents = events
		}
	}
	if scanProgressThrottle := os.Getenv("FOLIO_WEBSOCKET_THROTTLE_SCAN_PROGRESS"); scanProgressThrottle != "" {
		// Parse duration string (e.g., "2s", "1500ms")
		if _, err := time.ParseDuration(scanProgressThrottle); err == nil {
			if config.WebSocket.ThrottleIntervals == nil {
				config.WebSocket.ThrottleIntervals = make(map[string]string)
			}
			config.WebSocket.ThrottleIntervals["scan_progress"] = scanProgressThrottle
		}
	}

	// GitHub configuration
	if owner := os.Getenv("FOLIO_GITHUB_OWNER"); owner != "" {
		config.GitHub.Owner = owner
	}
	if repo := os.Getenv("FOLIO_GITHUB_REPO"); repo != "" {
		config.GitHub.Repo = repo
	}
	if ref := os.Getenv("FOLIO_GITHUB_REF"); ref != "" {
		config.GitHub.Ref = ref
	}
	if path := os.Getenv("FOLIO_GITHUB_PATH"); path != "" {
		config.GitHub.Path = path
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	}
	if token := os.Getenv("FOLIO_GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token // FOLIO_ prefix takes priority
	}

	// Analysis configuration
	if wpm := os.Getenv("FOLIO_ANALYSIS_WORDS_PER_MINUTE"); wpm != "" {
		if w, err := strconv.Atoi(wpm); err == nil && w > 0 {
			config.Analysis.WordsPerMinute = w
		}
	}
	if excerptLength := os.Getenv("FOLIO_ANALYSIS_EXCERPT_LENGTH"); excerptLength != "" {
		if el, err := strconv.Atoi(excerptLength); err == nil && el > 0 {
			config.Analysis.ExcerptLength = el
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration after all override layers are applied.
// Returns an error if any required fields are missing or invalid.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Scan.Enabled && c.Scan.Schedule != "" {
		if err := ValidateScanSchedule(c.Scan.Schedule); err != nil {
			return fmt.Errorf("invalid scan schedule: %w", err)
		}
	}
	return nil
}

// ValidateScanSchedule validates a cron schedule expression (with seconds field)
// and rejects sub-minute intervals
func ValidateScanSchedule(schedule string) error {
	// Parse the cron expression
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 6 {
		return fmt.Errorf("invalid cron format: expected 6 fields")
	}

	// A wildcard or stepped seconds field would fire more than once a minute
	secondField := parts[0]
	if secondField == "*" || strings.HasPrefix(secondField, "*/") {
		return fmt.Errorf("schedule must not fire more than once a minute")
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
