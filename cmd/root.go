package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/rhythmdrill/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rhythmdrill",
	Short: "Random rhythm exercises with a metronome",
	Long: `Generates randomized single-voice rhythm exercises, prints them as notation
and plays them back with a click track.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Transport.LogLevel = logLevel
		}
		cfg = c
		logger = newLogger(c.Transport.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from RHYTHMDRILL_LOG_LEVEL)")
}

func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "rhythmdrill"})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		l.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// commandContext carries the logger to everything a command starts.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.WithContext(ctx, logger)
}

func Execute() {
	cobra.CheckErr(rootCmd.ExecuteContext(context.Background()))
}
