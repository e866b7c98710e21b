package cmd

import (
	"SmartCanteen-Backend/internal/utils"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "smartcanteen",
	Short: "SmartCanteen kitchen planning backend",
	Long: `smartcanteen serves the SmartCanteen API: demand forecasts for tomorrow's menu,
production plans, the waste ledger and the order flow between students and the kitchen.
Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, newForecastCmd())
}

func initConfig() {
	utils.SetConfigPath(cfgFile)
	utils.LoadConfig()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
