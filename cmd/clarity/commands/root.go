package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/utils"
)

var (
	verbose    bool
	jsonOutput bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "clarity",
	Short: "Transcribe images of text from the command line",
	Long: `clarity runs the capture, crop and extraction pipeline against local image
files or the configured network camera, and reads the transcription history.

Settings come from the same .env / environment variables as the API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.LoadConfig()
		utils.InitLogger(cfg.Env)
		if !verbose {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// Execute runs the root command; Ctrl+C cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
