package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/leadfunnel/internal/paths"
	"github.com/mesh-intelligence/leadfunnel/pkg/sqlite"
)

func newInitCmd(opts *options) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the configuration and profile store",
		Long: "Create the configuration directory with a default config.yaml, then\n" +
			"initialize the profile store in the data directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				cfgDir, dataDir, err := paths.LocalDirs()
				if err != nil {
					return sysErr(err)
				}
				if opts.configDir == "" {
					opts.configDir = cfgDir
				}
				if opts.dataDir == "" {
					opts.dataDir = dataDir
				}
			}

			configDir, err := paths.ResolveConfigDir(opts.configDir)
			if err != nil {
				return sysErr(fmt.Errorf("resolve config dir: %w", err))
			}
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return sysErr(fmt.Errorf("create config directory: %w", err))
			}

			// Persist an explicit data dir so later commands find the profile.
			var persistDir string
			if opts.dataDir != "" {
				if persistDir, err = filepath.Abs(opts.dataDir); err != nil {
					return sysErr(err)
				}
			}
			created, err := writeConfigIfMissing(configDir, persistDir)
			if err != nil {
				return sysErr(fmt.Errorf("write config: %w", err))
			}

			s, err := loadSettings(configDir)
			if err != nil {
				return userErr(err)
			}
			dataDir, err := paths.ResolveDataDir(opts.dataDir, s.DataDir)
			if err != nil {
				return sysErr(fmt.Errorf("resolve data dir: %w", err))
			}

			store := sqlite.NewBackend()
			if err := store.Attach(s.storeConfig(dataDir)); err != nil {
				return classify(fmt.Errorf("initialize profile: %w", err))
			}
			if err := store.Detach(); err != nil {
				return sysErr(fmt.Errorf("finalize profile: %w", err))
			}

			out := struct {
				ConfigDir     string `json:"configDir"`
				DataDir       string `json:"dataDir"`
				ConfigCreated bool   `json:"configCreated"`
			}{configDir, dataDir, created}
			return opts.emit(cmd, out, func(w io.Writer) {
				fmt.Fprintln(w, "Funnel initialized successfully")
				fmt.Fprintln(w, "  config:", configDir)
				fmt.Fprintln(w, "  data:  ", dataDir)
			})
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "use .funnel and .funnel-db in the current directory")
	return cmd
}
