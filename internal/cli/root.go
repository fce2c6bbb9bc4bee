package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ammd",
	Short: "ammd - constant-product AMM pool daemon",
	Long: `ammd keeps the books of constant-product liquidity pools: it creates
AMMs and pools, takes deposits, pays out withdrawals and executes swaps
against a persistent ledger, serving a signed JSON-RPC API.

Running ammd without a subcommand starts the server. The other
subcommands are clients of a running server.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (ammd.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
}

// initConfig loads a .env file from the working directory, if present, so
// its AMMD_ variables reach the config loader and the client flags.
func initConfig() {
	_ = godotenv.Load()
}
