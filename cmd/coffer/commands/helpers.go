package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/thoreinstein/coffer/internal/config"
	"github.com/thoreinstein/coffer/internal/engine"
	cferrors "github.com/thoreinstein/coffer/internal/errors"
	"github.com/thoreinstein/coffer/internal/password"
	"github.com/thoreinstein/coffer/internal/state"
)

// app bundles the pieces every operational command needs.
type app struct {
	cfg    *config.Config
	state  *state.State
	engine *engine.Engine
}

// loadApp validates configuration and wires up state and the engine.
func loadApp() (*app, error) {
	if configLoadErr != nil {
		return nil, cferrors.NewUserError(configLoadErr, "run 'coffer init' to create a configuration")
	}
	cfg := loadedCfg

	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, cferrors.NewUserError(
			cferrors.Validationf("invalid configuration: %s", strings.Join(msgs, "; ")),
			"fix the reported problems in your config file")
	}

	st := state.New(cfg.StateFile, slog.Default())
	st.Load()

	provider := &password.Terminal{}
	return &app{
		cfg:    cfg,
		state:  st,
		engine: engine.New(cfg, st, provider, slog.Default()),
	}, nil
}

// groupsFor resolves group name arguments against the configuration.
// No arguments selects every configured group.
func (a *app) groupsFor(args []string) ([]config.GroupConfig, error) {
	if len(args) == 0 {
		if len(a.cfg.Groups) == 0 {
			return nil, cferrors.NewUserError(
				cferrors.Configurationf("no backup groups configured"),
				"add groups to your config file, or run 'coffer init'")
		}
		return a.cfg.Groups, nil
	}

	groups := make([]config.GroupConfig, 0, len(args))
	for _, name := range args {
		g, ok := a.cfg.Group(name)
		if !ok {
			return nil, cferrors.NewUserError(
				cferrors.NotFoundf("unknown group %q", name),
				"run 'coffer status' to see configured groups")
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// formatBytes renders a byte count with a binary-unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
