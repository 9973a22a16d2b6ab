package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/meigma/fsop"
	"github.com/meigma/fsop/charset"
	fsopcore "github.com/meigma/fsop/core"
	"github.com/meigma/fsop/manifest"
)

// configName is the base name of the optional config file
// (fsop.yaml, fsop.toml or fsop.json).
const configName = "fsop"

// Config holds the settings shared by every command.
type Config struct {
	Encoding  EncodingConfig `mapstructure:"encoding"`
	Extension string         `mapstructure:"extension"`
	Manifest  string         `mapstructure:"manifest"`
	Format    string         `mapstructure:"format"`
	Workers   int            `mapstructure:"workers"`
	Overwrite bool           `mapstructure:"overwrite"`
	Discover  bool           `mapstructure:"discover"`
	Verbose   bool           `mapstructure:"verbose"`
}

// EncodingConfig names the entry name encodings tried in auto mode.
type EncodingConfig struct {
	Default   string `mapstructure:"default"`
	Alternate string `mapstructure:"alternate"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	enc := charset.DefaultConfig()
	return Config{
		Encoding: EncodingConfig{
			Default:   enc.Default.String(),
			Alternate: enc.Alternate.String(),
		},
		Extension: fsopcore.DefaultExtension,
		Manifest:  manifest.DefaultName,
		Format:    fsopcore.FormatAuto.String(),
		Discover:  true,
	}
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"encoding.default":   "encoding",
	"encoding.alternate": "alt-encoding",
	"extension":          "ext",
	"manifest":           "manifest",
	"format":             "format",
	"workers":            "workers",
	"overwrite":          "force",
	"discover":           "discover",
	"verbose":            "verbose",
}

// loadConfig merges defaults, the config file, FSOP_* environment variables
// and flags, in increasing order of precedence. An explicit cfgFile must
// exist; otherwise a missing config file is not an error.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("encoding.default", defaults.Encoding.Default)
	v.SetDefault("encoding.alternate", defaults.Encoding.Alternate)
	v.SetDefault("extension", defaults.Extension)
	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("overwrite", defaults.Overwrite)
	v.SetDefault("discover", defaults.Discover)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix("FSOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Options turns the settings into library options.
func (c *Config) Options(logger *slog.Logger) ([]fsop.Option, error) {
	def, err := charset.Parse(c.Encoding.Default)
	if err != nil {
		return nil, fmt.Errorf("encoding.default: %w", err)
	}
	alt, err := charset.Parse(c.Encoding.Alternate)
	if err != nil {
		return nil, fmt.Errorf("encoding.alternate: %w", err)
	}
	resolver, err := charset.NewResolver(charset.Config{Default: def, Alternate: alt})
	if err != nil {
		return nil, err
	}
	format, ok := fsopcore.ParseFormat(c.Format)
	if !ok {
		return nil, fmt.Errorf("format: unknown container format %q", c.Format)
	}
	if _, err := manifest.FormatFromPath(c.Manifest); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	opts := []fsop.Option{
		fsop.WithLogger(logger),
		fsop.WithResolver(resolver),
		fsop.WithFormat(format),
		fsop.WithExtension(c.Extension),
		fsop.WithManifestName(c.Manifest),
		fsop.WithOverwrite(c.Overwrite),
		fsop.WithDiscover(c.Discover),
		fsop.WithUpdateManifest(c.Discover),
	}
	if c.Workers > 0 {
		opts = append(opts, fsop.WithWorkers(c.Workers))
	}
	return opts, nil
}
