package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/macrotrack-backend/internal/app"
	"github.com/heartmarshall/macrotrack-backend/internal/config"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "macrotrack",
		Short:         "Meal, macro and goal tracking API",
		Version:       app.BuildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("macrotrack {{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"YAML config file (default: $CONFIG_PATH or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env",
		"dotenv file loaded before the config; missing files are ignored")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newCacheCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// load reads the dotenv file, the config and builds the logger. Variables
// already set in the environment win over the dotenv file.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	return cfg, app.NewLogger(cfg.Log, cmd.ErrOrStderr()), nil
}
