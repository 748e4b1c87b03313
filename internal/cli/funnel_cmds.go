package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/leadfunnel/internal/funnel"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// parseAssignments turns name=value pairs into a record, converting each
// value to its field's declared kind.
func parseAssignments(sets []string) (types.FormRecord, error) {
	rec := make(types.FormRecord, len(sets))
	for _, set := range sets {
		name, raw, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, userErr(fmt.Errorf("expected name=value, got %q", set))
		}
		v, err := types.ParseFieldValue(name, raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		rec[name] = v
	}
	return rec, nil
}

// statusView is the status output: the funnel state plus any contact
// details captured from an abandoned form.
type statusView struct {
	funnel.State
	AbandonEmail string `json:"abandonEmail,omitempty"`
	AbandonPhone string `json:"abandonPhone,omitempty"`
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current step and collected fields",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			email, phone, err := a.funnel.Store().Abandonment()
			if err != nil {
				return err
			}
			view := statusView{State: a.funnel.State(), AbandonEmail: email, AbandonPhone: phone}
			return opts.emit(cmd, view, func(w io.Writer) {
				printState(w, view.State)
				if email != "" || phone != "" {
					fmt.Fprintln(w, "\nAbandonment contact:")
					fmt.Fprintf(w, "  email: %s\n", formatValue(email))
					fmt.Fprintf(w, "  phone: %s\n", formatValue(phone))
				}
			})
		}),
	}
}

func newSubmitCmd(opts *options) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the current step with the given fields",
		Example: `  funnel submit --set firstName=Jane --set lastName=Doe --set email=jane@example.com \
    --set phone=5551234567 --set zipCode=90210
  funnel submit --set hasDebt=no`,
		Args: cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			fields, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			if _, err := a.funnel.Submit(fields); err != nil {
				var verr *funnel.ValidationError
				if errors.As(err, &verr) && !opts.jsonMode {
					printValidation(cmd.ErrOrStderr(), verr)
				}
				return err
			}
			return opts.emitState(cmd, a.funnel.State())
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment name=value (repeatable)")
	return cmd
}

func newFieldCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "field <name> <value>",
		Short: "Save one field without submitting the step",
		Args:  cobra.ExactArgs(2),
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			v, err := types.ParseFieldValue(args[0], args[1])
			if err != nil {
				return fmt.Errorf("field %q: %w", args[0], err)
			}
			if err := a.funnel.SaveField(args[0], v); err != nil {
				return err
			}
			return opts.emitState(cmd, a.funnel.State())
		}),
	}
}

func newBackCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Go back one step",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if _, err := a.funnel.Back(); err != nil {
				return err
			}
			return opts.emitState(cmd, a.funnel.State())
		}),
	}
}

func newRestartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Return to the first step, keeping collected fields",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if _, err := a.funnel.Restart(); err != nil {
				return err
			}
			return opts.emitState(cmd, a.funnel.State())
		}),
	}
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear collected fields and return to the first step",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.funnel.Reset(); err != nil {
				return err
			}
			return opts.emitState(cmd, a.funnel.State())
		}),
	}
}

func newGotoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <step>",
		Short: "Jump to a step without submitting",
		Args:  cobra.ExactArgs(1),
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			step, err := strconv.Atoi(args[0])
			if err != nil {
				return userErr(fmt.Errorf("step must be a number, got %q", args[0]))
			}
			if err := a.funnel.GoTo(step); err != nil {
				return err
			}
			return opts.emitState(cmd, a.funnel.State())
		}),
	}
}

func newLinkCmd(opts *options) *cobra.Command {
	var qr bool
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print a continuation link for the current step",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			var (
				link string
				err  error
			)
			step := a.funnel.Current()
			if qr {
				link, err = a.funnel.Continuity().QRCodeData(step)
			} else {
				link, err = a.funnel.ContinuationLink()
			}
			if err != nil {
				return err
			}
			out := struct {
				Link string `json:"link"`
				Step int    `json:"step"`
			}{link, step}
			return opts.emit(cmd, out, func(w io.Writer) { fmt.Fprintln(w, link) })
		}),
	}
	cmd.Flags().BoolVar(&qr, "qr", false, "print the QR code payload instead")
	return cmd
}

func newResumeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <url>",
		Short: "Resume a session from a continuation link",
		Args:  cobra.ExactArgs(1),
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if _, err := a.funnel.Resume(args[0]); err != nil {
				return err
			}
			return opts.emitState(cmd, a.funnel.State())
		}),
	}
}

func newNextCmd(opts *options) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "next <step>",
		Short: "Show which step follows <step> for the current fields",
		Long: "Show which step follows <step> given the collected fields, optionally\n" +
			"overridden with --set. Nothing is saved.",
		Args: cobra.ExactArgs(1),
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			step, err := strconv.Atoi(args[0])
			if err != nil {
				return userErr(fmt.Errorf("step must be a number, got %q", args[0]))
			}
			overrides, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			rec := a.funnel.Store().Record()
			for name, v := range overrides {
				rec[name] = v
			}

			next := funnel.NextStep(step, rec)
			out := struct {
				From int    `json:"from"`
				Next int    `json:"next"`
				Name string `json:"name"`
			}{step, next, types.StepName(next)}
			return opts.emit(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "%d -> %d (%s)\n", step, next, types.StepName(next))
			})
		}),
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field override name=value (repeatable)")
	return cmd
}

func newDownloadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Record the toolkit download on the final step",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			rec, err := a.funnel.Download()
			if err != nil {
				return err
			}
			return opts.emit(cmd, rec, func(w io.Writer) {
				fmt.Fprintf(w, "Download recorded (consent %s)\n", rec.ID)
			})
		}),
	}
}

func newExitCmd(opts *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "exit",
		Short: "Record an exit attempt",
		Args:  cobra.NoArgs,
		RunE: withFunnel(opts, func(cmd *cobra.Command, a *app, args []string) error {
			n, err := a.funnel.Exit(email)
			if err != nil {
				return err
			}
			out := struct {
				ExitAttempts int `json:"exitAttempts"`
			}{n}
			return opts.emit(cmd, out, func(w io.Writer) {
				fmt.Fprintf(w, "Exit attempts: %d\n", n)
			})
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "partially entered email to keep")
	return cmd
}
