// Package commands implements the CLI commands for pharmscrape.
package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/pharmscrape/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "pharmscrape",
	Short: "Scrape drug product pages listed in a pharmacy sitemap",
	Long: `Pharmscrape walks the 1mg sitemap index, picks the drug sitemaps and
scrapes each listed product page for its name, marketer, salt composition
and prescription status. Rows are written to CSV (or JSON, JSONL, YAML).

Examples:
  # Standard run: first page of every drug sitemap into 1mg_drugs.csv
  pharmscrape scrape

  # Ten pages per sitemap, half a second apart
  pharmscrape scrape --limit 10 --delay 500ms

  # Every page, rendered in a headless browser when needed
  pharmscrape scrape --limit 0 --fetch-mode auto -o drugs.jsonl`,
	Version: version.String(),
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.pharmscrape.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".pharmscrape")
		viper.SetConfigType("yaml")
	}

	bindEnv(viper.GetViper())

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// bindEnv maps PHARMSCRAPE_SITEMAP_URL, PHARMSCRAPE_LIMIT, ... onto v.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("PHARMSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
