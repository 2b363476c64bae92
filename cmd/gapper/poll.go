package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ternarybob/gapper/internal/app"
	"github.com/ternarybob/gapper/internal/models"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run one poll cycle and print the ranking",
	Long:  `Fetches the configured sources once, scores every candidate, writes the scores and news payloads to the cache and prints the top candidates.`,
	RunE:  runPoll,
}

func runPoll(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	summary, err := application.Pipeline.Poll(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "cycle %s  generated %s  %d candidates  %d news  (%s)\n",
		summary.CycleID, summary.GeneratedAt.Format("15:04:05"), summary.Candidates, summary.NewsItems, summary.Duration.Round(time.Millisecond))
	if !summary.ScoresWritten {
		fmt.Fprintln(out, "a newer result was already cached; this cycle was discarded")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tSCORE\tDECISION\tGAP%\tRVOL\tCATALYST")
	for _, c := range summary.Top {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\t%s\n",
			c.Ticker, c.ActionScore, c.Decision, optional(c.GapPct), optional(c.RelativeVolume), catalyst(c.TopCatalyst))
	}
	return tw.Flush()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func catalyst(tag models.CatalystTag) string {
	if tag == models.CatalystNone {
		return "-"
	}
	return string(tag)
}
