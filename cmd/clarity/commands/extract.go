package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/app"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/crop"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/media"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/pipeline"
)

var (
	extractFlow    string
	extractTimeout time.Duration
	cropArgs       crop.Region
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Transcribe a local image file",
	Long: `Transcribe a local image file (4MB at most). The annotated flow also explains
the document and lists clarifications for words it could not read with
confidence; the analysis flow describes the image and suggests searches.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a frame from the configured camera and transcribe it",
	Args:  cobra.NoArgs,
	RunE:  runCapture,
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, captureCmd} {
		c.Flags().StringVarP(&extractFlow, "flow", "f", "annotated", "text, annotated, analysis or suggestions")
		c.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "give up after this long")
		c.Flags().Float64Var(&cropArgs.X, "x", 0, "crop X in display pixels")
		c.Flags().Float64Var(&cropArgs.Y, "y", 0, "crop Y in display pixels")
		c.Flags().Float64Var(&cropArgs.Width, "width", 0, "crop width in display pixels")
		c.Flags().Float64Var(&cropArgs.Height, "height", 0, "crop height in display pixels")
		c.Flags().Float64Var(&cropArgs.ScaleX, "scale-x", 1, "native/display width ratio")
		c.Flags().Float64Var(&cropArgs.ScaleY, "scale-y", 1, "native/display height ratio")
		rootCmd.AddCommand(c)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, func(ctx context.Context, a *app.App) (*media.CapturedImage, error) {
		return a.Adapter.FromFile(ctx, args[0])
	})
}

func runCapture(cmd *cobra.Command, args []string) error {
	return runPipeline(cmd, func(ctx context.Context, a *app.App) (*media.CapturedImage, error) {
		return a.Adapter.FromCamera(ctx)
	})
}

func runPipeline(cmd *cobra.Command, acquire func(context.Context, *app.App) (*media.CapturedImage, error)) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	flow, err := ocr.ParseFlow(extractFlow)
	if err != nil {
		return err
	}

	a, err := app.NewFromEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	img, err := acquire(ctx, a)
	if err != nil {
		return err
	}

	out, err := a.Pipeline.Run(ctx, pipeline.Request{Image: img, Crop: cropRegion(cmd), Flow: flow})
	if err != nil {
		return err
	}
	if out.HistoryErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: transcription was not saved to history: %v\n", out.HistoryErr)
	}

	if jsonOutput {
		return printJSON(cmd, ocr.Wrap(out.Result))
	}
	printResult(cmd, out.Result)
	return nil
}

// cropRegion is nil unless a crop flag was given
func cropRegion(cmd *cobra.Command) *crop.Region {
	for _, name := range []string{"x", "y", "width", "height", "scale-x", "scale-y"} {
		if cmd.Flags().Changed(name) {
			r := cropArgs
			return &r
		}
	}
	return nil
}
