package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"voicenav/internal/domain"
)

var commandsPage string

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the voice commands",
	Long: `commands prints the registered phrase patterns. With --page only the commands
active on that page are listed, in the order they are tried.`,
	Args: cobra.NoArgs,
	RunE: runCommands,
}

func init() {
	commandsCmd.Flags().StringVarP(&commandsPage, "page", "p", "", "only commands active on this page (home, stocks, dogs)")
}

func runCommands(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tSCOPE")

	if commandsPage == "" {
		for _, e := range a.registry.Entries() {
			fmt.Fprintf(tw, "%s\t%s\n", e.Pattern, scopeLabel(e.Global()))
		}
		return tw.Flush()
	}

	page, ok := domain.DestinationFor(commandsPage)
	if !ok {
		return fmt.Errorf("unknown page %q", commandsPage)
	}
	for e := range a.registry.CommandsFor(domain.ContextFor(page)) {
		fmt.Fprintf(tw, "%s\t%s\n", e.Pattern, scopeLabel(e.Global()))
	}
	return tw.Flush()
}

func scopeLabel(global bool) string {
	if global {
		return "global"
	}
	return "page"
}
