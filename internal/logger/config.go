package logger

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
	FileCompress   bool   `yaml:"file_compress"`
}

// DefaultConfig returns console-only INFO logging
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		ConsoleFormat:  "text",
		FileEnabled:    false,
		FilePath:       "logs/dungeond.log",
		FileFormat:     "json",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// overlay mirrors Config with pointer fields so unset keys keep their defaults
type overlay struct {
	Level          *string `yaml:"level"`
	ConsoleEnabled *bool   `yaml:"console_enabled"`
	ConsoleFormat  *string `yaml:"console_format"`
	FileEnabled    *bool   `yaml:"file_enabled"`
	FilePath       *string `yaml:"file_path"`
	FileFormat     *string `yaml:"file_format"`
	FileMaxSizeMB  *int    `yaml:"file_max_size_mb"`
	FileMaxBackups *int    `yaml:"file_max_backups"`
	FileMaxAgeDays *int    `yaml:"file_max_age_days"`
	FileCompress   *bool   `yaml:"file_compress"`
}

// UnmarshalYAML merges only the keys present in the document
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var o overlay
	if err := node.Decode(&o); err != nil {
		return err
	}
	setIf(&c.Level, o.Level)
	setIf(&c.ConsoleEnabled, o.ConsoleEnabled)
	setIf(&c.ConsoleFormat, o.ConsoleFormat)
	setIf(&c.FileEnabled, o.FileEnabled)
	setIf(&c.FilePath, o.FilePath)
	setIf(&c.FileFormat, o.FileFormat)
	setIf(&c.FileMaxSizeMB, o.FileMaxSizeMB)
	setIf(&c.FileMaxBackups, o.FileMaxBackups)
	setIf(&c.FileMaxAgeDays, o.FileMaxAgeDays)
	setIf(&c.FileCompress, o.FileCompress)
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// LoadConfig reads the logging block of a YAML file and applies environment overrides.
// A missing file yields defaults; a malformed one is an error.
func LoadConfig(configPath string) (Config, error) {
	wrapper := struct {
		Logging Config `yaml:"logging"`
	}{Logging: DefaultConfig()}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &wrapper); err != nil {
				return DefaultConfig(), fmt.Errorf("failed to parse logging config: %w", err)
			}
		case !os.IsNotExist(err):
			return DefaultConfig(), fmt.Errorf("failed to read logging config: %w", err)
		}
	}

	config := wrapper.Logging
	ApplyEnv(&config)
	return config, nil
}

// ApplyEnv applies LOG_* environment variable overrides
func ApplyEnv(config *Config) {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Level = logLevel
	}

	if consoleFormat := os.Getenv("LOG_CONSOLE_FORMAT"); consoleFormat != "" {
		config.ConsoleFormat = consoleFormat
	}

	if fileEnabled := os.Getenv("LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			config.FileEnabled = enabled
		}
	}

	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		config.FilePath = filePath
	}
}
