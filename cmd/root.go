// ABOUTME: Root command for the fuelwise CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"github.com/fuelwise/fuelwise-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	apiURL       string
	jsonOutput   bool
	configDir    string
	storeBackend string
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "fuelwise",
	Short: "CLI for the FuelWise fleet fuel control system",
	Long: `fuelwise is a command-line and terminal client for the FuelWise fleet API.

It signs users in, lists and edits fleet vehicles, and exports the fleet as CSV or PDF.
Run "fuelwise tui" for the interactive interface.

Environment Variables:
  FUELWISE_API_URL       Backend API URL (default: http://localhost:3000)
  FUELWISE_CONFIG_DIR    Directory for the session, history and debug log
  FUELWISE_STORE         Session store backend: file or redis (default: file)
  FUELWISE_REDIS_URL     Redis URL when the store is redis
  FUELWISE_LOG_LEVEL     debug, info, warn or error
  FUELWISE_EXPORT_DIR    Directory for exported files`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides FUELWISE_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides FUELWISE_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Session store backend: file or redis (overrides FUELWISE_STORE)")
}

// loadConfig resolves settings with flags taking priority
func loadConfig() (*config.Config, error) {
	return config.Load(config.Options{
		ConfigDir: configDir,
		APIURL:    apiURL,
		Store:     storeBackend,
	})
}

// GetAPIURL returns the API URL from flag, env, config file, or default (in priority order)
func GetAPIURL() string {
	cfg, err := loadConfig()
	if err != nil {
		if apiURL != "" {
			return apiURL
		}
		return config.Default().APIURL
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
