package driven

import "time"

// Well-known configuration keys.
const (
	ConfigKeyAPIBaseURL      = "api.base_url"
	ConfigKeyAPIToken        = "api.token"
	ConfigKeyCacheTTL        = "cache.ttl"
	ConfigKeyCacheSize       = "cache.max_entries"
	ConfigKeyDebounceWindow  = "debounce.window"
	ConfigKeyCurrentMetaText = "workspace.metatext"
)

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetDuration retrieves a duration configuration value stored as a
	// string (e.g. "800ms", "5m"). Returns 0 if the key doesn't exist
	// or doesn't parse.
	GetDuration(key string) time.Duration

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Delete removes a configuration value and persists immediately.
	Delete(key string) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
