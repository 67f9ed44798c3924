package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mgpai22/freespeech/internal/config"
	"github.com/mgpai22/freespeech/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "freespeech",
	Short: "Caption editor for timed text over video",
	Long: `Freespeech edits time-synchronized captions stored in .fsw documents.

A document references one or more candidate videos and holds parallel
tracks of timed texts. Texts can be placed, retimed, resized word by word,
played back against the video, exported to subtitle formats and filled in
by AI transcription or translation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		opts := logging.Options{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			File:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
		if verbose {
			opts.Level = "debug"
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger.Debugw("Loaded config", "path", path, "exists", exists)
		return nil
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.config/freespeech/config.toml or ./freespeech.toml)")
}
