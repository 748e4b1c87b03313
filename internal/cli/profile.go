package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// maxValueWidth truncates long stored values in human output.
const maxValueWidth = 60

func newProfileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the raw values stored in the profile",
		Long: "List every profile key the funnel writes with its stored value.\n" +
			"Keys that were never written are omitted.",
		Args: cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			values := make(map[string]string, len(types.ProfileKeys))
			for _, key := range types.ProfileKeys {
				v, ok, err := a.store.Get(key)
				if err != nil {
					return fmt.Errorf("read %s: %w", key, err)
				}
				if ok {
					values[key] = v
				}
			}
			return opts.emit(cmd, values, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tVALUE")
				for _, key := range types.ProfileKeys {
					v, ok := values[key]
					if !ok {
						continue
					}
					if len(v) > maxValueWidth {
						v = v[:maxValueWidth-3] + "..."
					}
					fmt.Fprintf(tw, "%s\t%s\n", key, v)
				}
				tw.Flush()
			})
		}),
	}
}
