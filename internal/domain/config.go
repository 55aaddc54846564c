package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Download     DownloadConfig     `mapstructure:"download"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	BasePath string `mapstructure:"base_path"` // prefix for public URLs, e.g. "/ytgrab"
	// ExposeEngineErrors adds raw engine diagnostics to failed info responses.
	ExposeEngineErrors bool `mapstructure:"expose_engine_errors"`
	// EnableLogAPI mounts /api/v1/logs, which serves raw engine stderr.
	EnableLogAPI bool `mapstructure:"enable_log_api"`
}

// EngineConfig contains extraction engine configuration
type EngineConfig struct {
	Backend         string        `mapstructure:"backend"` // script, ytdlp
	Binary          string        `mapstructure:"binary"`
	Args            []string      `mapstructure:"args"` // prepended to every invocation
	InfoTimeout     time.Duration `mapstructure:"info_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// CacheConfig contains thumbnail cache configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	TempDir string `mapstructure:"temp_dir"` // empty means the OS temp dir
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	Dir        string `mapstructure:"dir"`         // category log files
}

// Engine backends
const (
	BackendScript = "script"
	BackendYTDLP  = "ytdlp"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "localhost",
			Port:               8080,
			BasePath:           "",
			ExposeEngineErrors: false,
			EnableLogAPI:       false,
		},
		Engine: EngineConfig{
			Backend:         BackendYTDLP,
			Binary:          "yt-dlp",
			Args:            []string{},
			InfoTimeout:     60 * time.Second,
			DownloadTimeout: 10 * time.Minute,
		},
		Cache: CacheConfig{
			Dir: "$HOME/.ytgrab/images/cache",
		},
		Download: DownloadConfig{
			TempDir: "",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			Dir:        "$HOME/.ytgrab/logs",
		},
	}
}
