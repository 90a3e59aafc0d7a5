package cli

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/ensemblops/config"
)

const redacted = "REDACTED"

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configValidateCommand())
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := redact(c.cfg)
			switch config.Format(format) {
			case config.FormatYAML:
				enc := yaml.NewEncoder(c.out)
				enc.SetIndent(2)
				if err := enc.Encode(cfg); err != nil {
					return err
				}
				return enc.Close()
			case config.FormatTOML:
				return toml.NewEncoder(c.out).Encode(cfg)
			case config.FormatJSON:
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			default:
				return fmt.Errorf("%w: %q", config.ErrUnsupportedFormat, format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatYAML), "output format: yaml, toml or json")
	return cmd
}

func (c *CLI) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load, resolve and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The root command already failed on an invalid config.
			_, err := fmt.Fprintln(c.out, "configuration is valid")
			return err
		},
	}
}

// redact hides resolved secrets. Upstream headers are redacted wholesale
// because they commonly carry tokens.
func redact(cfg config.Config) config.Config {
	if len(cfg.Upstream.Headers) > 0 {
		headers := make(map[string]string, len(cfg.Upstream.Headers))
		for k := range cfg.Upstream.Headers {
			headers[k] = redacted
		}
		cfg.Upstream.Headers = headers
	}
	if len(cfg.Admin.APIKeys) > 0 {
		keys := make([]config.APIKeyConfig, len(cfg.Admin.APIKeys))
		for i, k := range cfg.Admin.APIKeys {
			k.Key = redacted
			keys[i] = k
		}
		cfg.Admin.APIKeys = keys
	}
	if cfg.Admin.JWT.Secret != "" {
		cfg.Admin.JWT.Secret = redacted
	}
	return cfg
}
