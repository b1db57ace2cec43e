package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/history"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/kvstore"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/core/ocr"
	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

var (
	historyLimit  int
	qrOutput      string
	qrSize        int
	clarifyWord   string
	clarifyChoice string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Read the transcription history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transcriptions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			records, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if historyLimit > 0 && historyLimit < len(records) {
				records = records[:historyLimit]
			}
			if jsonOutput {
				return printJSON(cmd, records)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tTEXT")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Timestamp.Local().Format(time.DateTime), preview(r.Text, 60))
			}
			return tw.Flush()
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one transcription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			rec, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, rec)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Text)
			return nil
		})
	},
}

var historyQRCmd = &cobra.Command{
	Use:   "qr <id>",
	Short: "Write a transcription as a QR code PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			rec, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := qrOutput
			if out == "" {
				out = rec.ID + ".png"
			}
			if err := qrcode.WriteFile(rec.Text, qrcode.Medium, qrSize, out); err != nil {
				return fmt.Errorf("write qr code: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "QR code saved to %s\n", out)
			return nil
		})
	},
}

var historyClarifyCmd = &cobra.Command{
	Use:   "clarify <id>",
	Short: "Print a transcription with one clarification applied",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(store *history.Store) error {
			rec, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ocr.ApplyClarification(rec.Text, clarifyWord, clarifyChoice))
			return nil
		})
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most this many records")
	historyQRCmd.Flags().StringVarP(&qrOutput, "output", "o", "", "output file (default <id>.png)")
	historyQRCmd.Flags().IntVar(&qrSize, "size", 256, "image size in pixels")
	historyClarifyCmd.Flags().StringVar(&clarifyWord, "word", "", "word to replace (required)")
	historyClarifyCmd.Flags().StringVar(&clarifyChoice, "with", "", "replacement (required)")
	historyClarifyCmd.MarkFlagRequired("word")
	historyClarifyCmd.MarkFlagRequired("with")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyQRCmd, historyClarifyCmd)
	rootCmd.AddCommand(historyCmd)
}

// withHistory opens only the storage backend; no model credentials are needed
func withHistory(cmd *cobra.Command, fn func(*history.Store) error) error {
	kv, err := kvstore.Open(cmd.Context(), cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return apperror.Persistence("history storage is unavailable", err)
	}
	defer kv.Close()

	return fn(history.NewStore(kv, history.WithKey(cfg.HistoryKey), history.WithLimit(cfg.HistoryLimit)))
}

func preview(text string, max int) string {
	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			runes = runes[:i]
			break
		}
	}
	if len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return string(runes)
}
