package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/chaser/internal"
	"github.com/starford/chaser/internal/syncservice"
	"github.com/starford/chaser/internal/targetfile"
	pkgconfig "github.com/starford/chaser/pkg/config"
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("config", "config.yaml")
	}
	return filepath.Join(dir, "chaser", "config.yaml")
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// loadConfig reads the config file, writing the defaults first if it is missing.
func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()
	created, err := pkgconfig.LoadOrCreate(path, cfg)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config: %w", err)
	}
	if created {
		fmt.Fprintf(output(cmd), "Created default config at %s\n", path)
	}
	return cfg, path, nil
}

// editConfig loads the config, applies fn and saves when fn reports a change.
func editConfig(cmd *cli.Command, fn func(*internal.Config) (string, bool, error)) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	msg, changed, err := fn(cfg)
	if err != nil {
		return err
	}
	if changed {
		if err := pkgconfig.Save(path, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	fmt.Fprintln(output(cmd), msg)
	return nil
}

func requireArgs(cmd *cli.Command, n int) ([]string, error) {
	if cmd.Args().Len() != n {
		return nil, fmt.Errorf("%s: expected %d argument(s): %s", cmd.Name, n, cmd.ArgsUsage)
	}
	return cmd.Args().Slice(), nil
}

func setupLogger(cfg *internal.Config) (*slog.Logger, func()) {
	logger, closer := internal.NewLogger(cfg)
	slog.SetDefault(logger)
	return logger, func() { _ = closer.Close() }
}

func addWatchPath(_ context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	return editConfig(cmd, func(cfg *internal.Config) (string, bool, error) {
		if !cfg.Sync.AddWatchPath(args[0]) {
			return "Watch path already present: " + args[0], false, nil
		}
		return "Added watch path: " + args[0], true, nil
	})
}

func removeWatchPath(_ context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	return editConfig(cmd, func(cfg *internal.Config) (string, bool, error) {
		if !cfg.Sync.RemoveWatchPath(args[0]) {
			return "Watch path not found: " + args[0], false, nil
		}
		return "Removed watch path: " + args[0], true, nil
	})
}

func listWatchPaths(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Fprint(output(cmd), renderWatchPaths(cfg))
	return nil
}

func showConfig(_ context.Context, cmd *cli.Command) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	w := output(cmd)
	fmt.Fprintln(w, titleStyle.Render("Config file: "+path))
	_, err = w.Write(data)
	return err
}

func setRecursive(_ context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	on, err := internal.ParseBool(args[0])
	if err != nil {
		return err
	}
	return editConfig(cmd, func(cfg *internal.Config) (string, bool, error) {
		cfg.Sync.Recursive = on
		return fmt.Sprintf("Recursive watching: %t", on), true, nil
	})
}

func addIgnorePattern(_ context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	return editConfig(cmd, func(cfg *internal.Config) (string, bool, error) {
		if !cfg.Sync.AddIgnorePattern(args[0]) {
			return "Ignore pattern already present: " + args[0], false, nil
		}
		return "Added ignore pattern: " + args[0], true, nil
	})
}

func resetConfig(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := pkgconfig.Save(path, internal.NewDefaultConfig()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(output(cmd), "Configuration reset to defaults")
	return nil
}

func addTarget(_ context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	loc := args[0]
	if !strings.ContainsAny(loc, "*?[{") {
		if _, err := targetfile.FormatFromPath(loc); err != nil {
			return err
		}
	}
	return editConfig(cmd, func(cfg *internal.Config) (string, bool, error) {
		if !cfg.Sync.AddTarget(loc) {
			return "Target already present: " + loc, false, nil
		}
		return "Added target: " + loc, true, nil
	})
}

func removeTarget(_ context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	return editConfig(cmd, func(cfg *internal.Config) (string, bool, error) {
		if !cfg.Sync.RemoveTarget(args[0]) {
			return "Target not found: " + args[0], false, nil
		}
		return "Removed target: " + args[0], true, nil
	})
}

func listTargets(_ context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	locs, err := targetfile.Expand(cfg.Sync.Targets)
	if err != nil {
		return err
	}
	fmt.Fprint(output(cmd), renderTargetList(locs))
	return nil
}

func showStatus(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, done := setupLogger(cfg)
	defer done()

	eng, err := internal.OpenEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Fprint(output(cmd), renderStatus(eng.Service.Status(ctx)))
	return nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, done := setupLogger(cfg)
	defer done()

	if !cmd.Bool("once") {
		fmt.Fprintln(output(cmd), "Watching for changes. Press Ctrl+C to stop.")
		return internal.RunMonitor(ctx, internal.WithConfig(cfg), internal.WithLogger(logger))
	}

	eng, err := internal.OpenEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	fmt.Fprint(output(cmd), renderSummary(eng.Service.Status(ctx)))
	return nil
}

func renamePath(ctx context.Context, cmd *cli.Command) error {
	args, err := requireArgs(cmd, 2)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, done := setupLogger(cfg)
	defer done()

	eng, err := internal.OpenEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	res, err := eng.Service.SyncPathChange(ctx, syncservice.RenameRequest{Old: args[0], New: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprint(output(cmd), renderSyncResult(res))
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, done := setupLogger(cfg)
	defer done()

	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithLogger(logger)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	cfg := internal.NewDefaultConfig()
	// stdout belongs to the protocol, so the config is never announced here.
	if _, err := pkgconfig.LoadOrCreate(path, cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, done := setupLogger(cfg)
	defer done()

	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogger(logger),
		internal.WithVersion(version))
}
