// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/mjelle/shotgroup/internal/adapters/repository"
	"github.com/mjelle/shotgroup/internal/domain/aggregate"
	"github.com/mjelle/shotgroup/internal/domain/classify"
	"github.com/mjelle/shotgroup/internal/domain/geometry"
	"github.com/mjelle/shotgroup/internal/domain/groupstats"
	"github.com/mjelle/shotgroup/internal/domain/insight"
	"github.com/mjelle/shotgroup/internal/domain/model"
	"github.com/mjelle/shotgroup/internal/domain/types"
	"github.com/mjelle/shotgroup/pkg/logger"
	"github.com/mjelle/shotgroup/pkg/metrics"
)

// Service wires the analysis engines to the history store and implements
// the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	history    repository.Store
	thumbnails repository.ThumbnailStore
	analyzer   *groupstats.Analyzer
	confidence *classify.ConfidenceClassifier
	labeler    *classify.Labeler
	aggregator *aggregate.Aggregator
	insights   *insight.Generator

	// Calibration carried until Start builds the engines.
	analyzerOpts   []groupstats.Option
	confidenceOpts []classify.ConfidenceOption
	labelerOpts    []classify.LabelerOption
	aggregatorOpts []aggregate.Option
	insightOpts    []insight.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistoryStore sets the history store backend. Defaults to the
// in-memory store.
func WithHistoryStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.history = store
		}
	}
}

// WithThumbnailStore sets the external thumbnail collaborator. Optional;
// the engine never requires it.
func WithThumbnailStore(store repository.ThumbnailStore) Option {
	return func(s *Service) {
		s.thumbnails = store
	}
}

// WithAnalyzerOptions forwards calibration to the group statistics engine.
func WithAnalyzerOptions(opts ...groupstats.Option) Option {
	return func(s *Service) {
		s.analyzerOpts = append(s.analyzerOpts, opts...)
	}
}

// WithConfidenceOptions forwards sample-size boundaries to the classifier.
func WithConfidenceOptions(opts ...classify.ConfidenceOption) Option {
	return func(s *Service) {
		s.confidenceOpts = append(s.confidenceOpts, opts...)
	}
}

// WithLabelerOptions forwards tightness/bias thresholds to the labeler.
func WithLabelerOptions(opts ...classify.LabelerOption) Option {
	return func(s *Service) {
		s.labelerOpts = append(s.labelerOpts, opts...)
	}
}

// WithAggregatorOptions forwards trend calibration to the aggregator.
func WithAggregatorOptions(opts ...aggregate.Option) Option {
	return func(s *Service) {
		s.aggregatorOpts = append(s.aggregatorOpts, opts...)
	}
}

// WithInsightOptions forwards thresholds to the insight generator.
func WithInsightOptions(opts ...insight.Option) Option {
	return func(s *Service) {
		s.insightOpts = append(s.insightOpts, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.history == nil {
		s.history = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory history store")
	}
	s.analyzer = groupstats.NewAnalyzer(s.analyzerOpts...)
	s.confidence = classify.NewConfidenceClassifier(s.confidenceOpts...)
	s.labeler = classify.NewLabeler(s.labelerOpts...)
	s.aggregator = aggregate.New(s.aggregatorOpts...)
	s.insights = insight.NewGenerator(s.insightOpts...)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("historySize", s.history.Count(ctx)),
	)
	return nil
}

// Stop shuts the service down, closing the history backend if it is
// closeable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if closer, ok := s.history.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "analysis service stopped")
}

// AnalyzeTarget runs the full single-target pipeline: normalize the pixel
// positions, compute group statistics, then grade and label them. Nothing is
// persisted.
func (s *Service) AnalyzeTarget(ctx context.Context, shots []model.Shot, imageWidth, imageHeight float64) (types.TargetReport, error) {
	frame, err := geometry.NewFrame(imageWidth, imageHeight)
	if err != nil {
		return types.TargetReport{}, fmt.Errorf("analyze target: %w", err)
	}

	result := s.analyzer.Analyze(frame.NormalizeAll(shots))
	result.Confidence = s.confidence.Classify(result.ShotCount)

	metrics.RecordTargetAnalyzed()
	if result.Suppressed() {
		metrics.RecordAnalysisSuppressed()
		return types.TargetReport{
			ShotCount:         result.ShotCount,
			Confidence:        result.Confidence,
			SuppressionReason: result.SuppressionReason,
		}, nil
	}
	metrics.RecordOutliersFlagged(len(result.OutlierIndices))

	label := s.labeler.Label(result)
	return types.TargetReport{
		ShotCount:      result.ShotCount,
		MPI:            &types.Point{U: result.MPI.U, V: result.MPI.V},
		GroupRadius:    result.GroupRadius,
		OutlierIndices: result.OutlierIndices,
		Confidence:     result.Confidence,
		Tightness:      string(label.Tightness),
		Bias:           label.Bias,
	}, nil
}

// RecordTarget analyzes a target and appends it to history. Suppressed
// analyses are returned but not stored: a pattern without statistics would
// poison every later aggregate. The returned report carries the minted
// pattern id when stored.
func (s *Service) RecordTarget(ctx context.Context, shots []model.Shot, imageWidth, imageHeight float64, session model.SessionType, ts time.Time) (types.TargetReport, error) {
	report, err := s.AnalyzeTarget(ctx, shots, imageWidth, imageHeight)
	if err != nil {
		return types.TargetReport{}, err
	}
	if report.SuppressionReason != "" {
		return report, nil
	}

	frame, err := geometry.NewFrame(imageWidth, imageHeight)
	if err != nil {
		return types.TargetReport{}, fmt.Errorf("record target: %w", err)
	}
	pattern := model.StoredTargetPattern{
		ID:           uuid.NewString(),
		Timestamp:    ts,
		Session:      session,
		Shots:        frame.NormalizeAll(shots),
		MPI:          model.NormalizedShot{U: report.MPI.U, V: report.MPI.V},
		GroupRadius:  report.GroupRadius,
		OutlierCount: len(report.OutlierIndices),
		ShotCount:    report.ShotCount,
	}
	if err := s.history.Append(ctx, pattern); err != nil {
		return types.TargetReport{}, fmt.Errorf("record target: %w", err)
	}

	metrics.RecordTargetRecorded(pattern.ShotCount)
	s.logger.Debug(ctx, "target recorded",
		logger.String("id", pattern.ID),
		logger.String("session", session.Name),
		logger.Int("shots", pattern.ShotCount),
		logger.Float64("groupRadius", pattern.GroupRadius),
	)
	report.PatternID = pattern.ID
	return report, nil
}

// History returns the filtered stored patterns, most recent first.
func (s *Service) History(ctx context.Context, filter model.DateFilter, sessions []model.SessionType) ([]types.PatternSummary, error) {
	patterns, err := s.history.Query(ctx, filter, sessions)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	out := make([]types.PatternSummary, len(patterns))
	for i, p := range patterns {
		out[i] = types.PatternSummary{
			ID:           p.ID,
			Timestamp:    p.Timestamp,
			SessionName:  p.Session.Name,
			Pressure:     int(p.Session.Pressure),
			ShotCount:    p.ShotCount,
			MPI:          types.Point{U: p.MPI.U, V: p.MPI.V},
			GroupRadius:  p.GroupRadius,
			OutlierCount: p.OutlierCount,
		}
	}
	return out, nil
}

// DeleteTarget removes one stored pattern; absent ids are a no-op.
func (s *Service) DeleteTarget(ctx context.Context, id string) error {
	if err := s.history.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	return nil
}

// Thumbnail returns the externally stored thumbnail for a pattern id, or
// nil when no thumbnail store is configured or the image is absent.
func (s *Service) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	if s.thumbnails == nil {
		return nil, nil
	}
	return s.thumbnails.Get(ctx, id)
}

// Insights pools the filtered history into aggregated metrics, labels the
// pooled view, and renders the coaching payload, including the low-vs-high
// pressure comparison over the same window.
func (s *Service) Insights(ctx context.Context, filter model.DateFilter, sessions []model.SessionType) (types.InsightsPayload, error) {
	patterns, err := s.history.Query(ctx, filter, sessions)
	if err != nil {
		return types.InsightsPayload{}, fmt.Errorf("query history: %w", err)
	}

	start := time.Now()
	pooled := s.aggregator.Aggregate(patterns)
	metrics.RecordAggregationLatency(float64(time.Since(start).Milliseconds()))

	label := s.labeler.LabelStats(pooled.AverageMPI, pooled.AverageGroupRadius)
	conf := s.confidence.Classify(pooled.TotalShots)
	ins := s.insights.FromMetrics(pooled, label, conf)
	metrics.RecordInsightsGenerated()

	payload := types.InsightsPayload{
		SessionCount:       pooled.SessionCount,
		TotalShots:         pooled.TotalShots,
		AverageMPI:         types.Point{U: pooled.AverageMPI.U, V: pooled.AverageMPI.V},
		AverageGroupRadius: pooled.AverageGroupRadius,
		OutlierRate:        pooled.OutlierRate,
		Trend:              string(pooled.Trend),
		Confidence:         conf,
		Observation:        ins.Observation,
		TrendText:          ins.Trend,
		OutlierText:        ins.Outliers,
		BiasText:           ins.Bias,
		Drills:             ins.Drills,
		SuppressionReason:  pooled.SuppressionReason,
	}
	if pooled.Suppressed() {
		return payload, nil
	}

	payload.Tightness = string(label.Tightness)
	payload.Bias = label.Bias
	payload.RadiusTrend = make([]types.TrendPoint, len(pooled.RadiusTrend))
	for i, p := range pooled.RadiusTrend {
		payload.RadiusTrend[i] = types.TrendPoint{Timestamp: p.Timestamp, GroupRadius: p.GroupRadius}
	}
	payload.PressureText = s.pressureComparison(patterns)
	return payload, nil
}

// pressureComparison splits the filtered window into the low-pressure pool
// and everything above it, then compares average radii.
func (s *Service) pressureComparison(patterns []model.StoredTargetPattern) string {
	var low, higher []model.StoredTargetPattern
	for _, p := range patterns {
		if p.Session.Pressure <= model.PressureLow {
			low = append(low, p)
		} else {
			higher = append(higher, p)
		}
	}
	if len(low) == 0 || len(higher) == 0 {
		return ""
	}
	return s.insights.PressureComparison(s.aggregator.Aggregate(low), s.aggregator.Aggregate(higher))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		stats["historySize"] = s.history.Count(context.Background())
	}
	return stats
}
