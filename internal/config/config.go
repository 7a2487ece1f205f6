package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/contourai-mcp-server/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. CONTOUR_LOGGING_LEVEL.
const EnvPrefix = "CONTOUR"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// NewManager creates a new configuration manager. An empty configFile
// searches the default locations; a missing file there is not an error.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from defaults, file and environment
func (m *Manager) loadConfig() error {
	v := viper.New()

	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/contourai/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.Export.Dir = ExpandHome(config.Export.Dir)

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Engine defaults
	v.SetDefault("engine.cache_enabled", true)
	v.SetDefault("engine.cache_size", 512)
	v.SetDefault("engine.batch_concurrency", 8)
	v.SetDefault("engine.validate_input", true)

	// Export defaults
	v.SetDefault("export.dir", DefaultExportDir())
	v.SetDefault("export.format", "yaml")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.filename", "")

	// MCP defaults
	v.SetDefault("mcp.server_name", "contourai-mcp-server")
	v.SetDefault("mcp.server_version", "1.0.0")
	v.SetDefault("mcp.transport_type", "stdio")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetLoggingConfig returns logging configuration
func (m *Manager) GetLoggingConfig() *domain.LoggingConfig {
	return &m.config.Logging
}

// GetEngineConfig returns engine configuration
func (m *Manager) GetEngineConfig() *domain.EngineConfig {
	return &m.config.Engine
}

// GetExportConfig returns export configuration
func (m *Manager) GetExportConfig() *domain.ExportConfig {
	return &m.config.Export
}

// GetMCPConfig returns MCP server configuration
func (m *Manager) GetMCPConfig() *domain.MCPConfig {
	return &m.config.MCP
}

// ConfigFileUsed returns the file the configuration was read from, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Engine.CacheEnabled && config.Engine.CacheSize <= 0 {
		return fmt.Errorf("invalid cache size: %d", config.Engine.CacheSize)
	}
	if config.Engine.BatchConcurrency <= 0 {
		return fmt.Errorf("invalid batch concurrency: %d", config.Engine.BatchConcurrency)
	}

	switch config.Export.Format {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("invalid export format: %s", config.Export.Format)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	if config.Logging.Output == "file" && config.Logging.Filename == "" {
		return fmt.Errorf("logging filename is required for file output")
	}

	if config.MCP.TransportType != "stdio" {
		return fmt.Errorf("unsupported MCP transport: %s (only stdio is available)", config.MCP.TransportType)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

var _ domain.ConfigManager = (*Manager)(nil)
