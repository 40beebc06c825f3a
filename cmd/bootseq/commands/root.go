package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mkock/bootseq/v3/internal/config"
)

const Version = "3.0.0"

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bootseq",
		Short: "bootseq - dependency-ordered startup and shutdown of components",
		Long: `bootseq starts a graph of components in dependency order and stops them in
reverse order. The CLI runs sequences of simulated components described in a
YAML file, which makes it easy to inspect ordering, failures and timing.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the bootseq command line.
func Execute() error {
	return newRootCmd().Execute()
}

// setupLog builds a logrus logger writing to w. The level and format flags take priority over the
// values of the sequence file. Defaults are info and text.
func setupLog(w io.Writer, cfg config.LogConfig, levelFlag, formatFlag string) (*logrus.Logger, error) {
	level := firstNonEmpty(levelFlag, cfg.Level, "info")
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", level)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	switch format := strings.ToLower(firstNonEmpty(formatFlag, cfg.Format, "text")); format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format: %s (must be one of: text, json)", format)
	}

	return logger, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
