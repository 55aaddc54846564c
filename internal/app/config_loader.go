package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yourusername/ytgrab-go/internal/domain"
)

// EnvPrefix is the prefix of environment overrides, e.g. YTGRAB_SERVER_PORT
const EnvPrefix = "YTGRAB"

// DotEnvFile is loaded from the working directory when present
const DotEnvFile = ".env"

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.ytgrab")
		v.AddConfigPath("/etc/ytgrab")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults registers every key so environment overrides apply even
// when the config file omits the key
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("server.host", config.Server.Host)
	v.SetDefault("server.port", config.Server.Port)
	v.SetDefault("server.base_path", config.Server.BasePath)
	v.SetDefault("server.expose_engine_errors", config.Server.ExposeEngineErrors)
	v.SetDefault("server.enable_log_api", config.Server.EnableLogAPI)

	v.SetDefault("engine.backend", config.Engine.Backend)
	v.SetDefault("engine.binary", config.Engine.Binary)
	v.SetDefault("engine.args", config.Engine.Args)
	v.SetDefault("engine.info_timeout", config.Engine.InfoTimeout)
	v.SetDefault("engine.download_timeout", config.Engine.DownloadTimeout)

	v.SetDefault("cache.dir", config.Cache.Dir)
	v.SetDefault("download.temp_dir", config.Download.TempDir)

	v.SetDefault("notification.enabled", config.Notification.Enabled)
	v.SetDefault("notification.sound", config.Notification.Sound)
	v.SetDefault("notification.method", config.Notification.Method)

	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
	v.SetDefault("logging.dir", config.Logging.Dir)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Cache.Dir = expandPath(config.Cache.Dir)
	config.Download.TempDir = expandPath(config.Download.TempDir)
	config.Logging.Dir = expandPath(config.Logging.Dir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// $HOME first so it resolves even when the variable is unset
	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.BasePath != "" && !strings.HasPrefix(config.Server.BasePath, "/") {
		return fmt.Errorf("base path must start with /: %q", config.Server.BasePath)
	}
	config.Server.BasePath = strings.TrimRight(config.Server.BasePath, "/")

	switch config.Engine.Backend {
	case domain.BackendScript, domain.BackendYTDLP:
	default:
		return fmt.Errorf("unknown engine backend: %q", config.Engine.Backend)
	}

	if config.Engine.Binary == "" {
		return fmt.Errorf("engine binary not configured")
	}

	if config.Engine.InfoTimeout <= 0 {
		return fmt.Errorf("engine info timeout must be positive")
	}

	if config.Engine.DownloadTimeout <= 0 {
		return fmt.Errorf("engine download timeout must be positive")
	}

	if config.Cache.Dir == "" {
		return fmt.Errorf("cache directory not configured")
	}

	if config.Logging.Dir == "" {
		return fmt.Errorf("logs directory not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("server", map[string]interface{}{
		"host":                 config.Server.Host,
		"port":                 config.Server.Port,
		"base_path":            config.Server.BasePath,
		"expose_engine_errors": config.Server.ExposeEngineErrors,
		"enable_log_api":       config.Server.EnableLogAPI,
	})
	v.Set("engine", map[string]interface{}{
		"backend":          config.Engine.Backend,
		"binary":           config.Engine.Binary,
		"args":             config.Engine.Args,
		"info_timeout":     config.Engine.InfoTimeout.String(),
		"download_timeout": config.Engine.DownloadTimeout.String(),
	})
	v.Set("cache", map[string]interface{}{
		"dir": config.Cache.Dir,
	})
	v.Set("download", map[string]interface{}{
		"temp_dir": config.Download.TempDir,
	})
	v.Set("notification", map[string]interface{}{
		"enabled": config.Notification.Enabled,
		"sound":   config.Notification.Sound,
		"method":  config.Notification.Method,
	})
	v.Set("logging", map[string]interface{}{
		"level":       config.Logging.Level,
		"format":      config.Logging.Format,
		"output_path": config.Logging.OutputPath,
		"dir":         config.Logging.Dir,
	})

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
