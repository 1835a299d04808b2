// Package bulb composes the stress kernels into a cached stress-bulb engine.
package bulb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alexiusacademia/gobulb/internal/cache"
	"github.com/alexiusacademia/gobulb/internal/config"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
)

// Limits bound the work a single request may ask for.
type Limits struct {
	MaxResolution int
	MaxDepthRatio float64
	// MaxIntegrationPoints caps N³ for the Integration method.
	MaxIntegrationPoints int
}

// Options configure an Engine.
type Options struct {
	Limits    Limits
	Smoothing stress.Smoothing
	Workers   int
	// IntegrationOrders overrides the quadrature orders of the Integration
	// method. Nil uses stress.DefaultIntegrationOrders.
	IntegrationOrders []int
	// Timeout bounds one computation. Zero means no bound beyond the
	// caller's context.
	Timeout time.Duration

	CacheCapacity int
	// Store, when set, persists computed fields between runs.
	Store cache.Store

	Logger *slog.Logger
}

// DefaultOptions mirror config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Engine)
}

// OptionsFromConfig maps the engine section of the configuration. The
// store is not opened here; see Open.
func OptionsFromConfig(c config.EngineConfig) Options {
	return Options{
		Limits: Limits{
			MaxResolution:        c.MaxResolution,
			MaxDepthRatio:        c.MaxDepthRatio,
			MaxIntegrationPoints: c.MaxIntegrationPoints,
		},
		Smoothing:     stress.Smoothing{Sigma: c.SmoothingSigma, MinResolution: c.SmoothingMinResolution},
		Workers:       c.Workers,
		Timeout:       c.Timeout,
		CacheCapacity: c.CacheCapacity,
	}
}

// Engine computes stress fields and memoizes them.
// It is safe for concurrent use.
type Engine struct {
	limits    Limits
	timeout   time.Duration
	evaluator *stress.Evaluator
	cache     *cache.Cache[*StressField]
	store     cache.Store
	logger    *slog.Logger
}

// New creates an engine with its own cache.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("component", "bulb"))

	return &Engine{
		limits:  opts.Limits,
		timeout: opts.Timeout,
		evaluator: &stress.Evaluator{
			Workers:   opts.Workers,
			Smoothing: opts.Smoothing,
			Orders:    opts.IntegrationOrders,
			Logger:    logger,
		},
		cache: cache.New(cache.Config[*StressField]{
			Capacity: opts.CacheCapacity,
			Store:    opts.Store,
			Codec:    gobCodec{},
			OnEvict:  func(string) { cacheEvictions.Inc() },
			Logger:   logger,
		}),
		store:  opts.Store,
		logger: logger,
	}
}

// Open creates an engine from configuration, opening the on-disk cache
// tier when a cache directory is configured.
func Open(c config.EngineConfig, logger *slog.Logger) (*Engine, error) {
	opts := OptionsFromConfig(c)
	opts.Logger = logger
	if c.CacheDir != "" {
		s, err := cache.OpenBadger(cache.BadgerConfig{Path: c.CacheDir, KeyPrefix: "field/"})
		if err != nil {
			return nil, fmt.Errorf("open field cache: %w", err)
		}
		opts.Store = s
	}
	return New(opts), nil
}

// Close releases the persistent cache tier, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// CheckLimits rejects a grid that exceeds the engine's resource bounds.
// Zero limits are not enforced.
func (e *Engine) CheckLimits(spec stress.GridSpec) error {
	l := e.limits
	var err *ResourceLimitError
	switch {
	case l.MaxResolution > 0 && spec.Resolution > l.MaxResolution:
		err = &ResourceLimitError{Param: "resolution", Value: float64(spec.Resolution), Limit: float64(l.MaxResolution)}
	case l.MaxDepthRatio > 0 && spec.DepthRatio > l.MaxDepthRatio:
		err = &ResourceLimitError{Param: "depth_ratio", Value: spec.DepthRatio, Limit: l.MaxDepthRatio}
	case spec.Method == stress.Integration && l.MaxIntegrationPoints > 0 &&
		cube(spec.Resolution) > float64(l.MaxIntegrationPoints):
		err = &ResourceLimitError{Param: "integration_points", Value: cube(spec.Resolution), Limit: float64(l.MaxIntegrationPoints)}
	}
	if err == nil {
		return nil
	}
	e.logger.Warn("request rejected", slog.String("param", err.Param),
		slog.Float64("value", err.Value), slog.Float64("limit", err.Limit))
	return e.rejectLimit(err.Param, err.Value, err.Limit)
}

func cube(n int) float64 {
	f := float64(n)
	return f * f * f
}

// Compute returns the stress field under foundation f for the given grid,
// from cache when an identical request was already computed.
//
// The request is validated and checked against the resource limits before
// any work starts. Concurrent requests for the same key share a single
// computation. Cancelling ctx stops a computation in progress.
func (e *Engine) Compute(ctx context.Context, f soil.Foundation, s soil.Soil, spec stress.GridSpec) (*StressField, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := e.CheckLimits(spec); err != nil {
		return nil, err
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	key := e.keyFor(f, spec)
	field, src, err := e.cache.GetOrCompute(ctx, key.String(), func(ctx context.Context) (*StressField, error) {
		return e.compute(ctx, f, s, spec)
	})
	if err != nil {
		computeErrors.Inc()
		return nil, err
	}
	fieldRequests.WithLabelValues(src.String()).Inc()
	if src != cache.Computed {
		e.logger.Debug("stress field cache hit", slog.String("key", key.String()), slog.String("source", src.String()))
	}
	return field, nil
}

func (e *Engine) compute(ctx context.Context, f soil.Foundation, s soil.Soil, spec stress.GridSpec) (*StressField, error) {
	g, err := stress.BuildGrid(f, spec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	e.logger.Info("computing stress field",
		slog.Float64("B", f.Width()), slog.Float64("L", f.Length()), slog.Float64("q", f.Pressure()),
		slog.Int("resolution", spec.Resolution), slog.String("method", string(spec.Method)),
		slog.Int("points", g.Len()))

	res, err := e.evaluator.Evaluate(ctx, g, f, spec.Method)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			e.logger.Warn("stress field computation cancelled", slog.Any("error", err))
		}
		return nil, fmt.Errorf("evaluate stress field: %w", err)
	}
	elapsed := time.Since(start)

	computeDuration.WithLabelValues(string(spec.Method)).Observe(elapsed.Seconds())
	gridPoints.Observe(float64(g.Len()))
	integrationFallbacks.Add(float64(res.Fallbacks))

	field := newField(g, res.Stresses, Metadata{
		Foundation: f,
		Soil:       summarize(s),
		Spec:       spec,
		ComputedAt: start.UTC(),
		Duration:   elapsed,
		Fallbacks:  res.Fallbacks,
		Smoothed:   res.Smoothed,
	})
	e.logger.Info("stress field computed",
		slog.String("id", field.ID().String()),
		slog.Duration("duration", elapsed),
		slog.Int("fallbacks", res.Fallbacks),
		slog.Bool("smoothed", res.Smoothed))
	return field, nil
}

// StressAt evaluates a single point below foundation f.
func (e *Engine) StressAt(f soil.Foundation, x, y, z float64, method stress.Method) (stress.Result, error) {
	if z < 0 {
		return stress.Result{}, fmt.Errorf("depth must not be negative, got %g", z)
	}
	if method != stress.Newmark && method != stress.Integration {
		return stress.Result{}, fmt.Errorf("unknown method %q", method)
	}
	r := e.rectangle(f).StressAt(x, y, z, method)
	if r.FallbackUsed {
		integrationFallbacks.Inc()
		e.logger.Debug("integration fell back to newmark",
			slog.Float64("x", x), slog.Float64("y", y), slog.Float64("z", z))
	}
	return r, nil
}

// PointLoadAt evaluates the stress at (x, y, z) under a concentrated load
// applied at the origin. At the point of application it returns a
// *stress.SingularityError.
func (e *Engine) PointLoadAt(load, x, y, z float64) (float64, error) {
	if z < 0 {
		return 0, fmt.Errorf("depth must not be negative, got %g", z)
	}
	if math.IsNaN(load) || math.IsInf(load, 0) {
		return 0, fmt.Errorf("load must be finite, got %g", load)
	}
	v, err := stress.PointLoadStress(load, x, y, z)
	if err != nil {
		e.logger.Debug("point load evaluated at its point of application",
			slog.Float64("x", x), slog.Float64("y", y), slog.Float64("z", z))
		return 0, err
	}
	return v, nil
}

// InfluenceDepth returns the depth at which the centerline stress under f
// falls below target (a fraction of q, e.g. 0.1).
func (e *Engine) InfluenceDepth(f soil.Foundation, target float64) (float64, error) {
	return stress.InfluenceDepth(f.Width(), f.Length(), target)
}

// Profile is the stress below one characteristic point.
type Profile struct {
	Point   stress.ProfilePoint
	Depths  []float64
	Results []stress.Result
}

// Profiles evaluates the characteristic points of f at n depths down to zMax.
func (e *Engine) Profiles(f soil.Foundation, zMax float64, n int, method stress.Method) ([]Profile, error) {
	if !(zMax > stress.GridEpsilon) {
		return nil, fmt.Errorf("profile depth must exceed %g m, got %g", stress.GridEpsilon, zMax)
	}
	if n < 2 {
		return nil, fmt.Errorf("profile needs at least 2 depths, got %d", n)
	}
	if e.limits.MaxResolution > 0 && n > 10*e.limits.MaxResolution {
		return nil, e.rejectLimit("profile_samples", float64(n), float64(10*e.limits.MaxResolution))
	}
	depths := stress.Depths(zMax, n)
	rect := e.rectangle(f)
	pts := stress.CharacteristicPoints(f.Width(), f.Length())
	out := make([]Profile, len(pts))
	for i, p := range pts {
		out[i] = Profile{Point: p, Depths: depths, Results: rect.Profile(p.X, p.Y, depths, method)}
	}
	return out, nil
}

func (e *Engine) rectangle(f soil.Foundation) stress.Rectangle {
	return stress.Rectangle{Q: f.Pressure(), B: f.Width(), L: f.Length(), Orders: e.evaluator.Orders}
}

func (e *Engine) keyFor(f soil.Foundation, spec stress.GridSpec) Key {
	k := KeyFor(f, spec, e.evaluator.Smoothing)
	k.Orders = e.evaluator.Orders
	return k
}

func (e *Engine) rejectLimit(param string, value, limit float64) error {
	limitRejections.WithLabelValues(param).Inc()
	return &ResourceLimitError{Param: param, Value: value, Limit: limit}
}

// CacheStats reports the field cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}
