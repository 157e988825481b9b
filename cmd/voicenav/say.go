package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voicenav/internal/voice"
)

var sayShowPage bool

var sayCmd = &cobra.Command{
	Use:   "say <utterance>...",
	Short: "Dispatch utterances as if they had been spoken",
	Long: `say loads the start page, then dispatches each argument as one utterance in
order, so later utterances see the page earlier ones navigated to.`,
	Example: `  voicenav say "navigate to stocks" "look up stock msft"`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSay,
}

func init() {
	sayCmd.Flags().BoolVar(&sayShowPage, "page", true, "print the resulting page state as JSON")
}

func runSay(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a.session.Load(ctx)

	out := cmd.OutOrStdout()
	for _, utterance := range args {
		res := a.dispatcher.Dispatch(ctx, utterance, a.session.Context())
		switch {
		case !res.Matched:
			fmt.Fprintf(out, "%q: no command\n", res.Utterance)
		case res.Err != nil:
			fmt.Fprintf(out, "%q -> %s: %v\n", res.Utterance, res.Pattern, res.Err)
		default:
			fmt.Fprintf(out, "%q -> %s%s\n", res.Utterance, res.Pattern, formatBinding(res.Binding))
		}
	}

	if !sayShowPage {
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.session.Snapshot()); err != nil {
		return fmt.Errorf("writing page state: %w", err)
	}
	return nil
}

// formatBinding renders captures as " name=value", in pattern order.
func formatBinding(b voice.Binding) string {
	var sb strings.Builder
	values := b.Values()
	for i, name := range b.Names() {
		fmt.Fprintf(&sb, " %s=%q", name, values[i])
	}
	return sb.String()
}
