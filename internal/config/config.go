// Package config provides configuration structures and loading for biograph.
package config

// Config represents the complete application configuration.
type Config struct {
	Neo4j        Neo4jConfig             `yaml:"neo4j" mapstructure:"neo4j"`
	RootDir      string                  `yaml:"root_dir" mapstructure:"root_dir"`
	RunMode      string                  `yaml:"run_mode" mapstructure:"run_mode"`
	Sources      map[string]SourceConfig `yaml:"sources" mapstructure:"sources"`
	Processing   ProcessingConfig        `yaml:"processing" mapstructure:"processing"`
	Verification VerificationConfig      `yaml:"verification" mapstructure:"verification"`
	Logging      LoggingConfig           `yaml:"logging" mapstructure:"logging"`
}

// Neo4jConfig represents a Neo4j database connection configuration.
type Neo4jConfig struct {
	URI                string `yaml:"uri" mapstructure:"uri"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	ConnectTimeoutSecs int    `yaml:"connect_timeout_seconds" mapstructure:"connect_timeout_seconds"`
}

// SourceConfig represents a datasource configuration.
type SourceConfig struct {
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
	Version string   `yaml:"version" mapstructure:"version"` // pinned version, empty = latest remote
	TaxIDs  []string `yaml:"taxids" mapstructure:"taxids"`
	BaseURL string   `yaml:"base_url" mapstructure:"base_url"` // override download location (mirrors)
}

// ProcessingConfig represents batch processing settings.
type ProcessingConfig struct {
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	DedupPolicy string `yaml:"dedup_policy" mapstructure:"dedup_policy"` // "overwrite" or "reject"
}

// VerificationConfig represents post-merge verification settings.
type VerificationConfig struct {
	Method           string `yaml:"method" mapstructure:"method"` // "count" or "none"
	SkipVerification bool   `yaml:"skip_verification" mapstructure:"skip_verification"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:                "bolt://localhost:7687",
			User:               "neo4j",
			Database:           "neo4j",
			MaxConnections:     10,
			ConnectTimeoutSecs: 30,
		},
		RootDir: "/download",
		RunMode: "prod",
		Processing: ProcessingConfig{
			BatchSize:   1000,
			DedupPolicy: "overwrite",
		},
		Verification: VerificationConfig{
			Method:           "count",
			SkipVerification: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// GetSource retrieves a datasource configuration by name. Sources absent
// from the configuration default to enabled with no version pin.
func (c *Config) GetSource(name string) SourceConfig {
	if src, exists := c.Sources[name]; exists {
		return src
	}
	return SourceConfig{Enabled: true}
}

// SourceEnabled reports whether a datasource should be downloaded and parsed.
func (c *Config) SourceEnabled(name string) bool {
	src, exists := c.Sources[name]
	if !exists {
		return true
	}
	return src.Enabled
}

// ListSources returns all source names defined in the configuration.
func (c *Config) ListSources() []string {
	sources := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		sources = append(sources, name)
	}
	return sources
}

// ApplyOverrides applies CLI flag overrides to the global configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, batchSize int, skipVerify bool) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if batchSize > 0 {
		c.Processing.BatchSize = batchSize
	}
	if skipVerify {
		c.Verification.SkipVerification = true
	}
}
