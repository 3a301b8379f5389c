// Package main provides the filesentry command line tool.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "filesentry",
		Short: "Scan uploaded files for threats and PII",
		Long: `FileSentry scans files for malware signatures, known-bad hashes,
behavioral indicators, and PII, decides a response policy, and executes the
decided actions.`,
		Version: Version + " (built " + BuildTime + ")",
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is built-in configuration)")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
