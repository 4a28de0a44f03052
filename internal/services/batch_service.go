package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"yield-advisor/internal/models"
	"yield-advisor/pkg/logging"
	"yield-advisor/pkg/metrics"
)

// Batch record outcomes.
const (
	OutcomeScored   = "scored"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// columnAliases maps accepted CSV header names to request fields.
var columnAliases = map[string]string{
	"location":      "location",
	"state":         "location",
	"sublocation":   "sublocation",
	"sub_location":  "sublocation",
	"district":      "sublocation",
	"season":        "season",
	"crop":          "crop",
	"crop_year":     "crop_year",
	"year":          "crop_year",
	"temperature":   "temperature",
	"humidity":      "humidity",
	"soil_moisture": "soil_moisture",
	"area":          "area",
}

var requiredColumns = []string{
	"location", "sublocation", "season", "crop", "crop_year",
	"temperature", "humidity", "soil_moisture", "area",
}

// BatchService scores CSV files of prediction requests
type BatchService struct {
	predictions *PredictionService
	concurrency int
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// BatchResult contains batch run statistics
type BatchResult struct {
	TotalRecords    int
	ScoredRecords   int
	RejectedRecords int
	FailedRecords   int
	Duration        time.Duration
	Errors          []string
}

// BatchRecord is one line of batch output
type BatchRecord struct {
	Row    int                        `json:"row"`
	Status string                     `json:"status"`
	Result *models.PredictionResponse `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// NewBatchService creates a new batch service
func NewBatchService(predictions *PredictionService, concurrency int, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchService{
		predictions: predictions,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// ScoreCSV reads requests from in and writes one JSON line per data row to out,
// in input order. Bad rows are reported in the output and do not stop the run.
func (s *BatchService) ScoreCSV(ctx context.Context, in io.Reader, out io.Writer) (*BatchResult, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[BATCH_START] Starting batch scoring", logging.Fields{
		"concurrency": s.concurrency,
		"stage":       "INITIALIZATION",
	})

	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	s.logger.Info(ctx, "[BATCH_RECORDS] Records read", logging.Fields{
		"record_count": len(rows),
		"stage":        "PARSING",
	})

	records := make([]BatchRecord, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			// Rows are numbered as in the file, header being row 1.
			records[i] = s.scoreRow(gctx, i+2, row, columns)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	result := &BatchResult{
		TotalRecords: len(rows),
		Errors:       make([]string, 0),
	}

	enc := json.NewEncoder(out)
	for _, rec := range records {
		switch rec.Status {
		case OutcomeScored:
			result.ScoredRecords++
		case OutcomeRejected:
			result.RejectedRecords++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rec.Row, rec.Error))
		case OutcomeFailed:
			result.FailedRecords++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", rec.Row, rec.Error))
		}
		s.metrics.RecordBatchRecord(rec.Status)

		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", rec.Row, err)
		}
	}

	result.Duration = time.Since(startTime)
	s.metrics.BatchDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[BATCH_COMPLETE] Batch scoring completed", logging.Fields{
		"total_records":    result.TotalRecords,
		"scored_records":   result.ScoredRecords,
		"rejected_records": result.RejectedRecords,
		"failed_records":   result.FailedRecords,
		"duration_seconds": result.Duration.Seconds(),
		"stage":            "COMPLETE",
	})

	return result, nil
}

func (s *BatchService) scoreRow(ctx context.Context, rowNum int, row []string, columns map[string]int) BatchRecord {
	rec := BatchRecord{Row: rowNum}

	req, err := parseRow(row, columns)
	if err == nil {
		rec.Result, err = s.predictions.Predict(ctx, req)
	}

	switch {
	case err == nil:
		rec.Status = OutcomeScored
	case isTransient(err):
		rec.Status = OutcomeFailed
		rec.Error = err.Error()
	default:
		rec.Status = OutcomeRejected
		rec.Error = err.Error()
	}

	if err != nil {
		s.logger.Warn(ctx, "[BATCH_ROW_ERROR] Row not scored", logging.Fields{
			"row":     rowNum,
			"outcome": rec.Status,
			"error":   err.Error(),
		})
	}

	return rec
}

// mapColumns resolves header names, accepting aliases, to column positions.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.TrimPrefix(key, "\ufeff")
		if field, ok := columnAliases[key]; ok {
			if _, dup := columns[field]; dup {
				return nil, fmt.Errorf("column %q given more than once", field)
			}
			columns[field] = i
		}
	}

	var missing []string
	for _, field := range requiredColumns {
		if _, ok := columns[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	return columns, nil
}

func parseRow(row []string, columns map[string]int) (*models.PredictionRequest, error) {
	get := func(field string) string {
		i := columns[field]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	number := func(field string) (float64, error) {
		v, err := strconv.ParseFloat(get(field), 64)
		if err != nil {
			return 0, &models.ValidationError{Field: field, Value: get(field), Message: field + " is not a number"}
		}
		return v, nil
	}

	req := &models.PredictionRequest{
		Location:    get("location"),
		SubLocation: get("sublocation"),
		Season:      get("season"),
		Crop:        get("crop"),
	}

	year, err := strconv.Atoi(get("crop_year"))
	if err != nil {
		return nil, &models.ValidationError{Field: "crop_year", Value: get("crop_year"), Message: "crop_year is not an integer"}
	}
	req.CropYear = year

	if req.Temperature, err = number("temperature"); err != nil {
		return nil, err
	}
	if req.Humidity, err = number("humidity"); err != nil {
		return nil, err
	}
	if req.SoilMoisture, err = number("soil_moisture"); err != nil {
		return nil, err
	}
	if req.Area, err = number("area"); err != nil {
		return nil, err
	}

	return req, nil
}

// isTransient reports whether err may succeed on retry.
func isTransient(err error) bool {
	var t interface{ IsTransient() bool }
	return errors.As(err, &t) && t.IsTransient()
}
