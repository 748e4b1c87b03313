package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConsentCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Inspect the consent log",
	}
	cmd.AddCommand(newConsentListCmd(opts), newConsentExportCmd(opts))
	return cmd
}

func newConsentListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List logged consent events",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			records, err := a.funnel.Compliance().PersistedLog()
			if err != nil {
				return err
			}
			return opts.emit(cmd, records, func(w io.Writer) {
				if len(records) == 0 {
					fmt.Fprintln(w, "No consent events.")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIMESTAMP\tTYPE\tID")
				for _, r := range records {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Timestamp.Format("2006-01-02 15:04:05"), r.Type, r.ID)
				}
				tw.Flush()
			})
		}),
	}
}

func newConsentExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the consent log to a JSON Lines file",
		Args:  cobra.ExactArgs(1),
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			n, err := a.funnel.Compliance().Export(args[0])
			if err != nil {
				return err
			}
			out := struct {
				Path    string `json:"path"`
				Records int    `json:"records"`
			}{args[0], n}
			return opts.emit(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d consent events to %s\n", n, args[0])
			})
		}),
	}
}
