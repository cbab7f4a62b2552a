package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 4250,
			Host: "localhost",
		},
		API: APIConfig{
			AssetsURL:  "http://localhost:8081/api/assets",
			FinanceURL: "http://localhost:8081/api/finance",
			Timeout:    "10s",
			Market:     "USD",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/finance",
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}
