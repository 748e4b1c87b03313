package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/leadfunnel/internal/funnel"
	"github.com/mesh-intelligence/leadfunnel/internal/memstore"
	"github.com/mesh-intelligence/leadfunnel/internal/paths"
	"github.com/mesh-intelligence/leadfunnel/pkg/sqlite"
	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

// app is one attached profile with its funnel services.
type app struct {
	configDir string
	dataDir   string
	settings  settings
	store     types.LocalStore
	funnel    *funnel.Funnel
	logger    *slog.Logger
}

// openApp resolves directories, attaches the profile store, and wires the
// funnel services over it. The caller must call close.
func openApp(cmd *cobra.Command, opts *options) (*app, error) {
	logger, err := opts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	configDir, err := paths.ResolveConfigDir(opts.configDir)
	if err != nil {
		return nil, sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	s, err := loadSettings(configDir)
	if err != nil {
		return nil, userErr(err)
	}
	dataDir, err := paths.ResolveDataDir(opts.dataDir, s.DataDir)
	if err != nil {
		return nil, sysErr(fmt.Errorf("resolve data dir: %w", err))
	}

	store := sqlite.NewBackend()
	if err := store.Attach(s.storeConfig(dataDir)); err != nil {
		return nil, classify(fmt.Errorf("attach profile: %w", err))
	}
	logger.Debug("profile attached", "data_dir", dataDir, "sync", s.SyncStrategy)

	cont, err := funnel.NewContinuity(store, memstore.New(), funnel.ContinuityOptions{
		Origin: s.Origin,
		Logger: logger,
	})
	if err != nil {
		_ = store.Detach()
		return nil, sysErr(err)
	}
	comp := funnel.NewCompliance(store, funnel.ComplianceOptions{
		Brand:     s.Brand,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		Location:  s.Location,
		Logger:    logger,
	})
	fs := funnel.NewFormStore(cont, logger)

	return &app{
		configDir: configDir,
		dataDir:   dataDir,
		settings:  s,
		store:     store,
		funnel:    funnel.New(store, fs, cont, comp, logger),
		logger:    logger,
	}, nil
}

func (a *app) close() error {
	if err := a.store.Detach(); err != nil {
		return sysErr(fmt.Errorf("detach profile: %w", err))
	}
	return nil
}

// withFunnel opens the profile, restores the funnel position, and runs fn.
func withFunnel(opts *options, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, a.close())
			if err != nil {
				err = classify(err)
			}
		}()

		if _, err := a.funnel.Resume(""); err != nil {
			return sysErr(err)
		}
		return classify(fn(cmd, a, args))
	}
}
