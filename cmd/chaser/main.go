package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "chaser",
		Usage:   "Keep path references in JSON, YAML, TOML and CSV files in step with the filesystem",
		Version: version,
		Action:  runSync,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "<user config dir>/chaser/config.yaml",
				Value:       defaultConfigPath(),
				Sources:     cli.EnvVars("CHASER_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a watch path",
				ArgsUsage: "<path>",
				Action:    addWatchPath,
			},
			{
				Name:      "remove",
				Usage:     "Remove a watch path",
				ArgsUsage: "<path>",
				Action:    removeWatchPath,
			},
			{
				Name:   "list",
				Usage:  "List watch paths",
				Action: listWatchPaths,
			},
			{
				Name:   "config",
				Usage:  "Show the configuration",
				Action: showConfig,
			},
			{
				Name:      "recursive",
				Usage:     "Turn recursive watching on or off",
				ArgsUsage: "<true|false>",
				Action:    setRecursive,
			},
			{
				Name:      "ignore",
				Usage:     "Add an ignore pattern",
				ArgsUsage: "<pattern>",
				Action:    addIgnorePattern,
			},
			{
				Name:   "reset",
				Usage:  "Restore the default configuration",
				Action: resetConfig,
			},
			{
				Name:      "add-target",
				Usage:     "Add a target file or glob",
				ArgsUsage: "<file>",
				Action:    addTarget,
			},
			{
				Name:      "remove-target",
				Usage:     "Remove a target file or glob",
				ArgsUsage: "<file>",
				Action:    removeTarget,
			},
			{
				Name:   "list-targets",
				Usage:  "List target files",
				Action: listTargets,
			},
			{
				Name:   "status",
				Usage:  "Show watch roots and tracked paths",
				Action: showStatus,
			},
			{
				Name:  "sync",
				Usage: "Load every target file and watch for changes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Load and report, then exit",
					},
				},
				Action: runSync,
			},
			{
				Name:      "rename",
				Usage:     "Propagate a path rename to every target file",
				ArgsUsage: "<old> <new>",
				Action:    renamePath,
			},
			{
				Name:   "serve",
				Usage:  "Watch and serve the HTTP API with server-sent events",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Watch and serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
