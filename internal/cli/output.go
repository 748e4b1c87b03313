package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/leadfunnel/internal/funnel"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// emit writes v as indented JSON in --json mode, otherwise calls human.
func (o *options) emit(cmd *cobra.Command, v any, human func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if o.jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return sysErr(fmt.Errorf("encode output: %w", err))
		}
		return nil
	}
	human(w)
	return nil
}

func (o *options) emitState(cmd *cobra.Command, st funnel.State) error {
	return o.emit(cmd, st, func(w io.Writer) { printState(w, st) })
}

func printState(w io.Writer, st funnel.State) {
	fmt.Fprintf(w, "Session:   %s\n", st.SessionID)
	fmt.Fprintf(w, "Step:      %d/%d (%s)\n", st.Step, types.TotalSteps, st.StepName)
	if st.Completed {
		fmt.Fprintln(w, "Completed: yes")
	}

	names := make([]string, 0, len(st.Record))
	for name := range st.Record {
		if name == "sessionId" || name == "lastUpdated" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	fmt.Fprintln(w, "\nFields:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, formatValue(st.Record[name]))
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		if t == "" {
			return `""`
		}
		return t
	case []string:
		return strings.Join(t, ", ")
	case float64:
		return types.FormRecord{"v": t}.String("v")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// printValidation lists the field errors of a failed submit.
func printValidation(w io.Writer, verr *funnel.ValidationError) {
	names := make([]string, 0, len(verr.Fields))
	for name := range verr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(w, "Step %d (%s) needs attention:\n", verr.Step, types.StepName(verr.Step))
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, verr.Fields[name])
	}
}
