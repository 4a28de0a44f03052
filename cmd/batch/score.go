package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"yield-advisor/internal/services"
	"yield-advisor/pkg/logging"
)

var (
	scoreInput       string
	scoreOutput      string
	scoreConcurrency int
)

// scoreCmd scores a CSV file of prediction records
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a CSV of prediction records",
	Long: `Read prediction records from CSV and write one JSON line per record.

The header must name location, sublocation, season, crop, crop_year,
temperature, humidity, soil_moisture and area. The aliases state,
district and year are accepted. Rows that fail validation are reported
as rejected; rows the predictor could not score are reported as failed.
Neither stops the run.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "input", "i", "-", "CSV input file, - for stdin")
	scoreCmd.Flags().StringVarP(&scoreOutput, "output", "o", "-", "JSON lines output file, - for stdout")
	scoreCmd.Flags().IntVar(&scoreConcurrency, "concurrency", 0, "parallel predictor calls (defaults to batch.concurrency)")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := setup(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	in, closeIn, err := openInput(scoreInput)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(scoreOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	concurrency := infra.Config.Batch.Concurrency
	if scoreConcurrency > 0 {
		concurrency = scoreConcurrency
	}

	batch := services.NewBatchService(infra.Predictions, concurrency, infra.Logger, infra.Metrics)
	result, err := batch.ScoreCSV(ctx, in, out)
	if err != nil {
		return err
	}

	infra.Logger.Info(ctx, "[BATCH_SUMMARY] Scoring finished", logging.Fields{
		"input":       scoreInput,
		"total":       result.TotalRecords,
		"scored":      result.ScoredRecords,
		"rejected":    result.RejectedRecords,
		"failed":      result.FailedRecords,
		"duration_ms": result.Duration.Milliseconds(),
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "scored %d of %d records (%d rejected, %d failed) in %s\n",
		result.ScoredRecords, result.TotalRecords, result.RejectedRecords, result.FailedRecords, result.Duration)
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
