package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"shacheck/internal/config"
	apperrors "shacheck/internal/errors"
	"shacheck/internal/logging"
)

// globalFlags are accepted by every command that reads configuration.
type globalFlags struct {
	configPath string
	logLevel   string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// load resolves configuration and builds the stderr logger.
func (g *globalFlags) load(fs *pflag.FlagSet, errOut io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("%w: %w", err, apperrors.ErrUsage)
	}
	logger := logging.New(errOut, level)
	logger.Debug("configuration loaded", "config", g.configPath, "oracles", cfg.Oracles, "jobs", cfg.Jobs)
	return cfg, logger, nil
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// parseFlags parses args into fs. It returns done=true when help was
// requested and already printed.
func (r *RootCommand) parseFlags(fs *pflag.FlagSet, args []string, usage string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			if _, werr := fmt.Fprintf(r.out, "%s\n\nFlags:\n%s", usage, fs.FlagUsages()); werr != nil {
				return true, fmt.Errorf("write help output: %w", werr)
			}
			return true, nil
		}
		return false, fmt.Errorf("parse %s flags: %w: %w", fs.Name(), err, apperrors.ErrUsage)
	}
	return false, nil
}

func writeJSON(w io.Writer, v any) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}
