package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		redacted := *cfg
		redacted.Serper.Key = redactSecret(redacted.Serper.Key)
		redacted.Firecrawl.Key = redactSecret(redacted.Firecrawl.Key)
		redacted.BrowserUse.Key = redactSecret(redacted.BrowserUse.Key)
		redacted.Anthropic.Key = redactSecret(redacted.Anthropic.Key)
		redacted.GitHub.Token = redactSecret(redacted.GitHub.Token)

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close() //nolint:errcheck
		return eris.Wrap(enc.Encode(redacted), "encode config")
	},
}

// redactSecret keeps the first four characters so keys remain
// identifiable in support conversations without being usable.
func redactSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
