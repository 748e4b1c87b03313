// Package cli implements the funnel command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/leadfunnel/internal/funnel"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// options holds global flag values for one root command.
type options struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userErr(err error) error { return &exitError{code: exitUserError, err: err} }
func sysErr(err error) error  { return &exitError{code: exitSysError, err: err} }

// userErrors are failures caused by input rather than the environment.
var userErrors = []error{
	funnel.ErrFunnelComplete,
	funnel.ErrNotAtFinalStep,
	funnel.ErrUnknownStep,
	funnel.ErrInvalidConsentType,
	types.ErrTypeMismatch,
	types.ErrInvalidFieldName,
	types.ErrInvalidFieldValue,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrSyncStrategyUnknown,
	types.ErrBatchSizeInvalid,
	types.ErrBatchIntervalInvalid,
}

// classify attaches an exit code to err.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	var verr *funnel.ValidationError
	if errors.As(err, &verr) {
		return userErr(err)
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userErr(err)
		}
	}
	return sysErr(err)
}

// exitCode returns the process exit code for err. Errors without a code
// come from flag and argument parsing.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "funnel" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "funnel",
		Short: "Run the lead-capture funnel against a local profile",
		Long: "funnel drives a twelve-step lead-capture form from the command line.\n" +
			"Progress, the session id, and consent events persist in a local profile.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "configuration directory (env FUNNEL_CONFIG_DIR)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "profile data directory (env FUNNEL_DATA_DIR)")
	root.PersistentFlags().BoolVar(&opts.jsonMode, "json", false, "output as JSON")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(opts),
		newStatusCmd(opts),
		newSubmitCmd(opts),
		newFieldCmd(opts),
		newBackCmd(opts),
		newRestartCmd(opts),
		newResetCmd(opts),
		newGotoCmd(opts),
		newLinkCmd(opts),
		newResumeCmd(opts),
		newNextCmd(opts),
		newDownloadCmd(opts),
		newExitCmd(opts),
		newConsentCmd(opts),
		newProfileCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "funnel:", err)
		os.Exit(exitCode(err))
	}
}

// newLogger builds the command's logger on w at the configured level.
func (o *options) newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(o.logLevel))); err != nil {
		return nil, userErr(fmt.Errorf("invalid --log-level %q", o.logLevel))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
