package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "voicenav",
	Short: "Voice commands for the stocks and dogs site",
	Long: `voicenav listens for spoken or typed utterances, matches them against the
site's command phrases and runs the bound page action.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (defaults and environment only when empty)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(commandsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
