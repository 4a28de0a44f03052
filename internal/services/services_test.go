package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yield-advisor/internal/advisory"
	"yield-advisor/internal/catalog"
	"yield-advisor/internal/config"
	"yield-advisor/internal/encoding"
	"yield-advisor/internal/features"
	"yield-advisor/internal/models"
	"yield-advisor/internal/predictor"
	"yield-advisor/internal/repository"
	"yield-advisor/pkg/logging"
	"yield-advisor/pkg/metrics"
)

type harness struct {
	svc     *PredictionService
	metrics *metrics.Collector
	seen    *features.Vector
}

// newHarness wires a PredictionService around a predictor that returns yield.
func newHarness(t *testing.T, yield float64, predErr error) *harness {
	t.Helper()
	h := &harness{metrics: metrics.NewCollector("yield_test", prometheus.NewRegistry())}
	p := predictor.Func(func(ctx context.Context, v features.Vector) (float64, error) {
		h.seen = &v
		return yield, predErr
	})
	h.svc = NewPredictionService(
		encoding.NewEncoder(catalog.Builtin(), encoding.OrderSorted),
		p,
		advisory.Default(),
		time.Second,
		logging.NewNop(),
		h.metrics,
	)
	return h
}

func request() *models.PredictionRequest {
	return &models.PredictionRequest{
		Location:     "Andhra Pradesh",
		SubLocation:  "GUNTUR",
		Season:       "Kharif",
		Crop:         "Rice",
		CropYear:     2024,
		Temperature:  37,
		Humidity:     60,
		SoilMoisture: 45,
		Area:         12,
	}
}

func TestPredictionService_Predict(t *testing.T) {
	h := newHarness(t, 3.75, nil)

	resp, err := h.svc.Predict(context.Background(), request())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 3.75, resp.Yield)
	assert.Equal(t, "3.75 Tons", resp.Display)
	assert.Equal(t, models.YieldUnit, resp.Unit)
	assert.Equal(t, advisory.CategoryHigh, resp.Advisory.Category)
	require.Len(t, resp.Advisory.Environmental, 1)
	assert.Equal(t, advisory.KindTemperatureHigh, resp.Advisory.Environmental[0].Kind)
	assert.Equal(t, 2024, resp.Inputs.CropYear)

	require.NotNil(t, h.seen)
	assert.Equal(t, features.Vector{37, 60, 45, 12, 3, 0, 11, 1}, *h.seen)
	assert.Equal(t, 3.0, resp.Features["crop_index"])

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.PredictionsTotal.WithLabelValues(advisory.CategoryHigh)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.EnvironmentalAdvisories.WithLabelValues(advisory.KindTemperatureHigh)))
}

func TestPredictionService_PredictErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.PredictionRequest)
		predErr error
		check   func(*testing.T, error)
	}{
		{
			name:   "out of range",
			mutate: func(r *models.PredictionRequest) { r.Humidity = 150 },
			check: func(t *testing.T, err error) {
				var ve *models.ValidationError
				assert.True(t, errors.As(err, &ve))
			},
		},
		{
			name:   "unknown crop",
			mutate: func(r *models.PredictionRequest) { r.Crop = "Coffee" },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, encoding.ErrUnknownCategory)
			},
		},
		{
			name:   "sub-location of another location",
			mutate: func(r *models.PredictionRequest) { r.SubLocation = "Baksa" },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, encoding.ErrInvalidHierarchy)
			},
		},
		{
			name:    "predictor failure",
			mutate:  func(r *models.PredictionRequest) {},
			predErr: errors.New("model crashed"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, predictor.ErrUnavailable)
				assert.True(t, isTransient(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 2, tt.predErr)
			req := request()
			tt.mutate(req)

			resp, err := h.svc.Predict(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, resp)
			tt.check(t, err)
		})
	}
}

func TestPredictionService_PredictRecordsEncodingErrors(t *testing.T) {
	h := newHarness(t, 2, nil)
	req := request()
	req.SubLocation = "Baksa"

	_, err := h.svc.Predict(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, h.seen, "predictor must not run on encoding failure")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.EncodingErrorsTotal.WithLabelValues("sublocation", "invalid_hierarchy")))
}

func TestPredictionService_PredictTimeout(t *testing.T) {
	m := metrics.NewCollector("yield_test", prometheus.NewRegistry())
	slow := predictor.Func(func(ctx context.Context, v features.Vector) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	svc := NewPredictionService(
		encoding.NewEncoder(catalog.Builtin(), encoding.OrderSorted),
		slow, advisory.Default(), 20*time.Millisecond, logging.NewNop(), m,
	)

	_, err := svc.Predict(context.Background(), request())
	require.ErrorIs(t, err, predictor.ErrUnavailable)
	assert.Equal(t, "timeout", predictor.Reason(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictorFailuresTotal.WithLabelValues("timeout")))
}

func TestPredictionService_Advise(t *testing.T) {
	h := newHarness(t, 0, nil)

	resp, err := h.svc.Advise(context.Background(), &models.AdviseRequest{
		Yield: 1.2, Crop: "Dragonfruit", Temperature: 20, Humidity: 85, SoilMoisture: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, advisory.CategoryLow, resp.Advisory.Category)
	assert.Equal(t, advisory.HarvestFallback, resp.Advisory.HarvestWindow)
	assert.Len(t, resp.Advisory.Environmental, 2)
	assert.Equal(t, "1.20 Tons", resp.Display)
	assert.Nil(t, h.seen, "advise must not call the predictor")
}

const batchCSV = `State,District,Season,Crop,Crop_Year,Temperature,Humidity,Soil_Moisture,Area
Andhra Pradesh,GUNTUR,Kharif,Rice,2024,30,60,45,12
Assam,Barpeta,Rabi,Wheat,2023,25,50,40,4
Bihar,Baksa,Kharif,Rice,2024,30,60,45,12
Delhi,East Delhi,Summer,Maize,2024,hot,60,45,12
Chhattisgarh,Bastar,Kharif,Rice,2024,30,60,45,12
`

func decodeRecords(t *testing.T, out *bytes.Buffer) []BatchRecord {
	t.Helper()
	var recs []BatchRecord
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var r BatchRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		recs = append(recs, r)
	}
	return recs
}

func TestBatchService_ScoreCSV(t *testing.T) {
	h := newHarness(t, 2.5, nil)
	batch := NewBatchService(h.svc, 3, logging.NewNop(), h.metrics)

	var out bytes.Buffer
	result, err := batch.ScoreCSV(context.Background(), strings.NewReader(batchCSV), &out)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRecords)
	assert.Equal(t, 3, result.ScoredRecords)
	assert.Equal(t, 2, result.RejectedRecords)
	assert.Equal(t, 0, result.FailedRecords)
	assert.Len(t, result.Errors, 2)

	recs := decodeRecords(t, &out)
	require.Len(t, recs, 5)
	for i, r := range recs {
		assert.Equal(t, i+2, r.Row, "output keeps input order")
	}
	assert.Equal(t, OutcomeScored, recs[0].Status)
	assert.Equal(t, advisory.CategoryModerate, recs[0].Result.Advisory.Category)
	assert.Equal(t, OutcomeRejected, recs[2].Status)
	assert.Contains(t, recs[2].Error, "Baksa")
	assert.Equal(t, OutcomeRejected, recs[3].Status)
	assert.Contains(t, recs[3].Error, "temperature")

	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.BatchRecordsTotal.WithLabelValues(OutcomeScored)))
}

func TestBatchService_PredictorFailuresAreNotFatal(t *testing.T) {
	var calls atomic.Int32
	m := metrics.NewCollector("yield_test", prometheus.NewRegistry())
	flaky := predictor.Func(func(ctx context.Context, v features.Vector) (float64, error) {
		if calls.Add(1)%2 == 0 {
			return 0, &predictor.UnavailableError{Reason: "status"}
		}
		return 1, nil
	})
	svc := NewPredictionService(encoding.NewEncoder(catalog.Builtin(), encoding.OrderSorted),
		flaky, advisory.Default(), time.Second, logging.NewNop(), m)
	batch := NewBatchService(svc, 1, logging.NewNop(), m)

	csv := "location,sublocation,season,crop,crop_year,temperature,humidity,soil_moisture,area\n" +
		strings.Repeat("Assam,Baksa,Kharif,Rice,2024,30,60,45,12\n", 4)

	var out bytes.Buffer
	result, err := batch.ScoreCSV(context.Background(), strings.NewReader(csv), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ScoredRecords)
	assert.Equal(t, 2, result.FailedRecords)
}

func TestBatchService_BadHeader(t *testing.T) {
	h := newHarness(t, 2, nil)
	batch := NewBatchService(h.svc, 2, logging.NewNop(), h.metrics)

	_, err := batch.ScoreCSV(context.Background(), strings.NewReader("crop,area\nRice,2\n"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
}

func TestBatchService_Cancelled(t *testing.T) {
	h := newHarness(t, 2, nil)
	batch := NewBatchService(h.svc, 1, logging.NewNop(), h.metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := batch.ScoreCSV(ctx, strings.NewReader(batchCSV), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

type stubRepo struct {
	spec catalog.Spec
	err  error
}

func (s stubRepo) LoadSpec(ctx context.Context) (catalog.Spec, error) { return s.spec, s.err }
func (s stubRepo) SchemaVersion(ctx context.Context) (uint, bool, error) {
	return 2, false, nil
}
func (s stubRepo) HealthCheck(ctx context.Context) error { return nil }

func TestLoadCatalog(t *testing.T) {
	ctx := context.Background()
	log := logging.NewNop()

	c, err := LoadCatalog(ctx, config.CatalogConfig{Source: config.CatalogSourceBuiltin}, nil, log)
	require.NoError(t, err)
	assert.True(t, c.Has(catalog.FieldCrop, "Turmeric"))

	c, err = LoadCatalog(ctx, config.CatalogConfig{Source: config.CatalogSourceFile, File: "../catalog/testdata/catalog.yaml"}, nil, log)
	require.NoError(t, err)
	assert.True(t, c.Has(catalog.FieldCrop, "Coffee"))

	repo := stubRepo{spec: catalog.Spec{
		Locations: []catalog.LocationSpec{{Name: "Kerala", SubLocations: []string{"Idukki"}}},
		Seasons:   []string{"Kharif"},
		Crops:     []string{"Pepper"},
	}}
	c, err = LoadCatalog(ctx, config.CatalogConfig{Source: config.CatalogSourcePostgres}, repo, log)
	require.NoError(t, err)
	assert.True(t, c.Has(catalog.FieldCrop, "Pepper"))

	_, err = LoadCatalog(ctx, config.CatalogConfig{Source: config.CatalogSourcePostgres}, stubRepo{err: &repository.NotFoundError{Resource: "catalog"}}, log)
	var nf *repository.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = LoadCatalog(ctx, config.CatalogConfig{Source: config.CatalogSourcePostgres}, nil, log)
	assert.Error(t, err)
}

func TestCatalogService(t *testing.T) {
	svc := NewCatalogService(encoding.NewEncoder(catalog.Builtin(), encoding.OrderSorted), logging.NewNop())

	desc := svc.Describe()
	assert.Equal(t, "sorted", desc.Order)
	assert.Equal(t, "Banana", desc.Crops[0])
	assert.Equal(t, []string{"Baksa", "Barpeta"}, desc.SubLocations["Assam"])
	assert.Contains(t, desc.Ranges, "area")

	subs, err := svc.SubLocations("Delhi")
	require.NoError(t, err)
	assert.Equal(t, []string{"Central Delhi", "East Delhi"}, subs.SubLocations)

	_, err = svc.SubLocations("Goa")
	assert.ErrorIs(t, err, encoding.ErrUnknownCategory)
}
