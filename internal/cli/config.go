package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Output formats.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputTree = "tree"
)

// Config holds the settings shared by every command. Values come from flags,
// JSONFORMS_* environment variables and jsonforms.yaml, in that order.
type Config struct {
	Schema    string        `mapstructure:"schema"`
	UISchema  string        `mapstructure:"ui-schema"`
	UIDir     string        `mapstructure:"ui-dir"`
	Form      string        `mapstructure:"form"`
	Data      string        `mapstructure:"data"`
	Operation string        `mapstructure:"operation"`
	Component string        `mapstructure:"component"`
	Output    string        `mapstructure:"output"`
	LogLevel  string        `mapstructure:"log-level"`
	AllowHTTP bool          `mapstructure:"allow-http"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

func bindPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default ./jsonforms.yaml)")
	flags.String("schema", "", "data schema path or URL")
	flags.String("ui-schema", "", "UI schema path or URL (generated when empty)")
	flags.String("ui-dir", "", "directory of named UI schemas, used with --form")
	flags.String("form", "", "UI schema id inside --ui-dir (file path without extension)")
	flags.String("data", "", "data instance path or URL (- reads stdin)")
	flags.String("operation", "", "treat --schema as OpenAPI and use this operation's request body")
	flags.String("component", "", "treat --schema as OpenAPI and use this component schema")
	flags.StringP("output", "o", OutputJSON, "output format: json, yaml or tree")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Bool("allow-http", false, "allow loading documents and $refs over HTTP")
	flags.Duration("timeout", 10*time.Second, "timeout for remote documents")
}

func loadConfig(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetDefault("output", OutputJSON)
	v.SetDefault("log-level", "info")
	v.SetDefault("timeout", 10*time.Second)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("jsonforms")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("JSONFORMS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return Config{}, fmt.Errorf("cli: bind flags: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("cli: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("cli: decode config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Output {
	case OutputJSON, OutputYAML, OutputTree:
	default:
		return fmt.Errorf("cli: unknown output format %q", c.Output)
	}
	if c.Operation != "" && c.Component != "" {
		return errors.New("cli: --operation and --component are mutually exclusive")
	}
	if c.UIDir != "" && c.UISchema != "" {
		return errors.New("cli: --ui-dir and --ui-schema are mutually exclusive")
	}
	if (c.UIDir == "") != (c.Form == "") {
		return errors.New("cli: --ui-dir and --form must be used together")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("cli: invalid log level %q", c.LogLevel)
	}
	return level, nil
}
