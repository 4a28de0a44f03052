package services

import (
	"context"
	"errors"
	"time"

	"yield-advisor/internal/advisory"
	"yield-advisor/internal/catalog"
	"yield-advisor/internal/encoding"
	"yield-advisor/internal/features"
	"yield-advisor/internal/models"
	"yield-advisor/internal/predictor"
	"yield-advisor/pkg/id"
	"yield-advisor/pkg/logging"
	"yield-advisor/pkg/metrics"
)

// PredictionService runs the encode, assemble, predict and advise pipeline
type PredictionService struct {
	encoder   *encoding.Encoder
	predictor predictor.Predictor
	engine    *advisory.Engine
	timeout   time.Duration
	logger    *logging.StructuredLogger
	metrics   *metrics.Collector
}

// NewPredictionService creates a new prediction service. A zero timeout leaves
// deadline handling to the caller's context.
func NewPredictionService(
	encoder *encoding.Encoder,
	p predictor.Predictor,
	engine *advisory.Engine,
	timeout time.Duration,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *PredictionService {
	return &PredictionService{
		encoder:   encoder,
		predictor: p,
		engine:    engine,
		timeout:   timeout,
		logger:    logger,
		metrics:   metricsCollector,
	}
}

// Predict validates req, estimates its yield and derives the advisory
func (s *PredictionService) Predict(ctx context.Context, req *models.PredictionRequest) (*models.PredictionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	indices, err := s.encoder.EncodeSelection(req.Selection())
	if err != nil {
		s.recordEncodingError(err)
		s.logger.Warn(ctx, "[PREDICT_ENCODE_ERROR] Categorical input rejected", logging.Fields{
			"location":    req.Location,
			"sublocation": req.SubLocation,
			"season":      req.Season,
			"crop":        req.Crop,
			"error":       err.Error(),
		})
		return nil, err
	}

	vector, err := features.AssembleFrom(req.Readings(), indices)
	if err != nil {
		return nil, err
	}

	yield, err := s.estimate(ctx, vector)
	if err != nil {
		return nil, err
	}

	result := s.engine.Advise(yield, req.Crop, req.Readings())
	s.metrics.RecordPrediction(result.Category)
	for _, a := range result.Environmental {
		s.metrics.RecordEnvironmentalAdvisory(a.Kind)
	}

	resp := &models.PredictionResponse{
		ID:       id.New(),
		Yield:    yield,
		Unit:     models.YieldUnit,
		Display:  models.FormatYield(yield),
		Features: vector.Named(),
		Advisory: result,
		Inputs:   *req,
	}

	s.logger.Info(ctx, "[PREDICT] Yield predicted", logging.Fields{
		"prediction_id": resp.ID,
		"crop":          req.Crop,
		"location":      req.Location,
		"yield":         yield,
		"category":      result.Category,
		"environmental": len(result.Environmental),
	})

	return resp, nil
}

// Advise runs the rule engine alone on a yield obtained elsewhere
func (s *PredictionService) Advise(ctx context.Context, req *models.AdviseRequest) (*models.AdviseResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := s.engine.Advise(req.Yield, req.Crop, req.Readings())

	s.logger.Debug(ctx, "[ADVISE] Advisory derived", logging.Fields{
		"crop":     req.Crop,
		"yield":    req.Yield,
		"category": result.Category,
	})

	return &models.AdviseResponse{
		Yield:    req.Yield,
		Display:  models.FormatYield(req.Yield),
		Advisory: result,
	}, nil
}

// estimate calls the predictor under the service timeout. Every failure comes
// back as a *predictor.UnavailableError.
func (s *PredictionService) estimate(ctx context.Context, v features.Vector) (float64, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	timer := s.metrics.NewTimer(s.metrics.PredictorLatency)
	yield, err := s.predictor.Predict(ctx, v)
	duration := timer.ObserveDuration()

	if err != nil {
		if !errors.Is(err, predictor.ErrUnavailable) {
			reason := "error"
			if errors.Is(err, context.DeadlineExceeded) {
				reason = "timeout"
			}
			err = &predictor.UnavailableError{Reason: reason, Err: err}
		}
		s.metrics.RecordPredictorFailure(predictor.Reason(err))
		s.logger.Error(ctx, "[PREDICTOR_ERROR] Yield predictor failed", logging.Fields{
			"reason":      predictor.Reason(err),
			"duration_ms": duration.Milliseconds(),
		}, err)
		return 0, err
	}

	s.logger.Debug(ctx, "[PREDICTOR_CALL] Yield predictor answered", logging.Fields{
		"duration_ms": duration.Milliseconds(),
		"features":    v.Named(),
	})

	return yield, nil
}

func (s *PredictionService) recordEncodingError(err error) {
	var unknown *encoding.UnknownCategoryError
	var hierarchy *encoding.InvalidHierarchyError

	switch {
	case errors.As(err, &unknown):
		s.metrics.RecordEncodingError(string(unknown.Field), "unknown_category")
	case errors.As(err, &hierarchy):
		s.metrics.RecordEncodingError(string(catalog.FieldSubLocation), "invalid_hierarchy")
	}
}
