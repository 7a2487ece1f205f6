package domain

// Config represents the main application configuration
type Config struct {
	Environment string        `mapstructure:"environment"`
	Engine      EngineConfig  `mapstructure:"engine"`
	Export      ExportConfig  `mapstructure:"export"`
	Logging     LoggingConfig `mapstructure:"logging"`
	MCP         MCPConfig     `mapstructure:"mcp"`
}

// EngineConfig controls the recommendation service around the rule engine
type EngineConfig struct {
	CacheEnabled     bool `mapstructure:"cache_enabled"`
	CacheSize        int  `mapstructure:"cache_size"`
	BatchConcurrency int  `mapstructure:"batch_concurrency"`
	ValidateInput    bool `mapstructure:"validate_input"`
}

// ExportConfig represents report export configuration
type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"` // "json", "yaml", "text"
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"` // "json", "text"
	Output   string `mapstructure:"output"` // "stderr", "stdout", "file"
	Filename string `mapstructure:"filename"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
	TransportType string `mapstructure:"transport_type"` // "stdio" only; no network transport
}
