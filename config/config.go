// Package config loads the settings of the IIDM XML tooling from a YAML file
// and IIDM_ prefixed environment variables.
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/toolink/iidm"
	"github.com/toolink/iidm/anonymizer"
	"github.com/toolink/iidm/iidmxml"
)

// EnvPrefix prefixes the environment variables overriding file values, e.g.
// IIDM_EXPORT_VERSION or IIDM_ANONYMIZER_STORAGE_TYPE.
const EnvPrefix = "IIDM"

// RedisConfig locates the redis server of the redis anonymizer storage.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// Config holds the whole configuration.
type Config struct {
	LogLevel   string                `mapstructure:"log_level" yaml:"log_level"`
	Export     iidmxml.ExportOptions `mapstructure:"export" yaml:"export"`
	Import     iidmxml.ImportOptions `mapstructure:"import" yaml:"import"`
	Anonymizer anonymizer.Config     `mapstructure:"anonymizer" yaml:"anonymizer"`
	Redis      RedisConfig           `mapstructure:"redis" yaml:"redis"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", zerolog.InfoLevel.String())
	v.SetDefault("export.version", iidmxml.CurrentVersion.String())
	v.SetDefault("export.indent", true)
	v.SetDefault("export.anonymized", false)
	v.SetDefault("export.skip_extensions", false)
	v.SetDefault("export.fail_if_extension_not_found", false)
	v.SetDefault("import.fail_if_extension_not_found", false)
	v.SetDefault("anonymizer.storage_type", anonymizer.StorageMemory)
	v.SetDefault("anonymizer.key_prefix", "")
	v.SetDefault("anonymizer.mapping_file", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("config file loaded")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if path != "" {
		versions, err := extensionVersions(path)
		if err != nil {
			return nil, err
		}
		c.Export.ExtensionVersions = versions
	}
	if err := c.ValidateAndPrepare(); err != nil {
		return nil, err
	}
	return &c, nil
}

// extensionVersions reads export.extension_versions straight from the file.
// Viper lowercases map keys and extension names are case sensitive.
func extensionVersions(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var raw struct {
		Export struct {
			ExtensionVersions map[string]string `yaml:"extension_versions"`
		} `yaml:"export"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return raw.Export.ExtensionVersions, nil
}

// ValidateAndPrepare checks every section and fills the defaults a zero
// Config lacks.
func (c *Config) ValidateAndPrepare() error {
	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: invalid log_level %q", iidm.ErrValidation, c.LogLevel)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.Anonymizer.ValidateAndPrepare(); err != nil {
		return fmt.Errorf("anonymizer: %w", err)
	}
	if c.Anonymizer.StorageType == anonymizer.StorageRedis && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required by the redis anonymizer storage", iidm.ErrValidation)
	}
	return nil
}

// ConfigureLogging sets the global zerolog level.
func (c *Config) ConfigureLogging() error {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// RedisClient returns a client for the redis section, or nil when the
// anonymizer keeps its mapping in memory.
func (c *Config) RedisClient() *redis.Client {
	if c.Anonymizer.StorageType != anonymizer.StorageRedis {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
}

// ExportOptions returns the export section with an anonymizer attached when
// anonymized export is on.
func (c *Config) ExportOptions(ctx context.Context, client redis.Cmdable) (iidmxml.ExportOptions, error) {
	opts := c.Export
	if !opts.Anonymized {
		return opts, nil
	}
	a, err := c.Anonymizer.New(ctx, client)
	if err != nil {
		return opts, err
	}
	opts.Anonymizer = a
	return opts, nil
}

// ImportOptions returns the import section. When a mapping file is set the
// options carry an anonymizer restoring the original identifiers.
func (c *Config) ImportOptions(ctx context.Context, client redis.Cmdable) (iidmxml.ImportOptions, error) {
	opts := c.Import
	if c.Anonymizer.MappingFile == "" && c.Anonymizer.StorageType != anonymizer.StorageRedis {
		return opts, nil
	}
	a, err := c.Anonymizer.New(ctx, client)
	if err != nil {
		return opts, err
	}
	opts.Anonymizer = a
	return opts, nil
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
