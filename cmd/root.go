package cmd

import (
	"fmt"
	"os"

	"invoiceflow/config"
	"invoiceflow/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "invoiceflow",
	Short: "InvoiceFlow - invoicing API with promotional schemes and shipping documents",
	Long: `InvoiceFlow computes receivable and payable invoices, expands
"buy X get Y free" schemes into free lines and prints invoices,
packing lists and shipping labels.

Run "invoiceflow serve" to start the HTTP API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		return logger.Setup(logger.LogConfig{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			TimeFormat: cfg.Log.TimeFormat,
			Output:     cfg.Log.Output,
		})
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default configs/config.yaml)")
}
