package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tromp/pkg/cache"
	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/observability"
	"github.com/matzehuels/tromp/pkg/render"
	"github.com/matzehuels/tromp/pkg/tromp"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, stage logs are discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	t, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Term = t
	result.TermHash = CanonicalHash(t)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.TermSize = lambda.Size(t)
	result.Stats.Leaves = lambda.Leaves(t)
	result.Stats.MaxDepth = tromp.MaxDepth(t)

	r.Logger.Info("parsed expression",
		"notation", opts.Notation,
		"size", result.Stats.TermSize,
		"max_depth", result.Stats.MaxDepth,
		"duration", result.Stats.ParseTime)

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	if layout.Diagram != nil {
		result.Stats.Width = layout.Diagram.Width()
		result.Stats.Height = layout.Diagram.Height()
	}

	r.Logger.Info("computed layout",
		"viz", layout.VizType,
		"width", result.Stats.Width,
		"height", result.Stats.Height,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, t, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse parses the expression and reports the stage to the pipeline hooks.
func (r *Runner) Parse(ctx context.Context, opts Options) (lambda.Term, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Notation, len(opts.Expression))

	start := time.Now()
	t, err := Parse(opts)
	size := 0
	if err == nil {
		size = lambda.Size(t)
	}
	hooks.OnParseComplete(ctx, opts.Notation, size, time.Since(start), err)
	return t, err
}

// GenerateLayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, t lambda.Term, opts Options) (Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return Layout{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.VizType, lambda.Size(t))
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(CanonicalHash(t), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, cacheKey, opts.VizType); ok {
			hooks.OnLayoutComplete(ctx, opts.VizType, time.Since(start), nil)
			return l, true, nil
		}
	}

	l, err := GenerateLayout(t, opts)
	hooks.OnLayoutComplete(ctx, opts.VizType, time.Since(start), err)
	if err != nil {
		return Layout{}, false, err
	}

	if data, err := MarshalLayout(l); err == nil {
		r.store(ctx, observability.KeyLayout, cacheKey, data, cache.TTLLayout)
	}
	return l, false, nil
}

// GenerateLayout is a convenience wrapper that calls GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, t lambda.Term, opts Options) (Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, t, opts)
	return l, err
}

func (r *Runner) cachedLayout(ctx context.Context, key, vizType string) (Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, observability.KeyLayout)
		return Layout{}, false
	}
	l, err := UnmarshalLayout(vizType, data)
	if err != nil {
		r.Logger.Debug("discarding unreadable cached layout", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, observability.KeyLayout)
		return Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, observability.KeyLayout)
	return l, true
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l Layout, t lambda.Term, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := MarshalLayout(l)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	termHash := ""
	if t != nil {
		termHash = CanonicalHash(t)
	}
	layoutHash := hashString(termHash + "\x00" + string(layoutData))

	artifacts := make(map[string][]byte)
	allCached := !opts.Refresh
	if allCached {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, observability.KeyArtifact)
				allCached = false
				break
			}
			observability.Cache().OnCacheHit(ctx, observability.KeyArtifact)
			artifacts[format] = data
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, l, t, opts)
	if err != nil {
		err = classifyRenderError(ctx, err)
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, observability.KeyArtifact, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l Layout, t lambda.Term, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, t, opts)
	return artifacts, err
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func classifyRenderError(ctx context.Context, err error) error {
	switch {
	case errors.GetCode(err) != "":
		return err
	case stderrors.Is(err, render.ErrNoConverter):
		return errors.Wrap(errors.ErrCodeUnsupported, err, "format needs rsvg-convert")
	case ctx.Err() != nil:
		return checkContext(ctx)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
}

func checkContext(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "render timed out")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "canceled")
	}
}

func hashString(s string) string { return cache.Hash([]byte(s)) }

func placementOf(opts Options) tromp.Placement {
	p, _ := tromp.ParsePlacement(opts.Placement)
	return p
}

func reachOf(opts Options) tromp.Reach {
	r, _ := tromp.ParseReach(opts.Reach)
	return r
}
