package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/ensemblops/secret"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ENSEMBLOPS_"

// Format names a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q: use .yaml, .yml, .toml or .json", ErrUnsupportedFormat, ext)
	}
}

// Load reads path over Default. An empty path returns Default.
// Environment overrides are not applied; see ApplyEnv.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data, format)
}

// Parse decodes data over Default. Unknown keys are rejected.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config: parsing YAML: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config: parsing TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("config: parsing TOML: unknown key %s", undecoded[0])
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing JSON: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from ENSEMBLOPS_* variables read through lookup,
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	integer := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}
	duration := func(name string, dst *Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		return nil
	}

	str("BASE_URL", &c.Upstream.BaseURL)
	str("SERVER", &c.Upstream.Server)
	str("LOG_LEVEL", &c.Observe.Logging.Level)
	str("LOG_FORMAT", &c.Observe.Logging.Format)
	str("ADMIN_ADDR", &c.Admin.Addr)
	str("ADMIN_JWT_SECRET", &c.Admin.JWT.Secret)
	if v, ok := lookup(EnvPrefix + "ADMIN_API_KEY"); ok && v != "" {
		c.Admin.APIKeys = append(c.Admin.APIKeys, APIKeyConfig{ID: "env", Key: v, Roles: []string{"admin"}})
	}

	for _, err := range []error{
		duration("TIMEOUT", &c.Upstream.Timeout),
		duration("MIN_INTERVAL", &c.RateLimit.MinInterval),
		integer("MAX_RETRIES", &c.Retry.MaxRetries),
		integer("CACHE_ENTRIES", &c.Cache.MaxEntries),
		integer("CHUNK_SIZE", &c.Batch.ChunkSize),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// ResolveSecrets replaces ${VAR} and secretref: references in upstream
// headers, admin API keys and the JWT secret. Providers come from
// secret.NewDefaultRegistry configured by the secrets section.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	resolver, err := secret.NewDefaultRegistry().Build(c.Secrets.Strict, c.Secrets.Providers)
	if err != nil {
		return fmt.Errorf("config: secrets: %w", err)
	}
	defer func() { _ = resolver.Close() }()

	headers, err := resolver.ResolveMap(ctx, c.Upstream.Headers)
	if err != nil {
		return fmt.Errorf("config: upstream.headers: %w", err)
	}
	c.Upstream.Headers = headers

	for i := range c.Admin.APIKeys {
		key, err := resolver.ResolveValue(ctx, c.Admin.APIKeys[i].Key)
		if err != nil {
			return fmt.Errorf("config: admin.api_keys[%d]: %w", i, err)
		}
		c.Admin.APIKeys[i].Key = key
	}

	if c.Admin.JWT.Secret != "" {
		s, err := resolver.ResolveValue(ctx, c.Admin.JWT.Secret)
		if err != nil {
			return fmt.Errorf("config: admin.jwt.secret: %w", err)
		}
		c.Admin.JWT.Secret = s
	}
	return nil
}

// LoadAll loads path, applies the environment, resolves secrets and
// validates the result.
func LoadAll(ctx context.Context, path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.ResolveSecrets(ctx); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
