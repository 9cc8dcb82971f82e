// Package pipeline provides the parse → layout → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: read the expression in classic or de Bruijn notation
//  2. Layout: compute the Tromp diagram (or the syntax-tree DOT source)
//  3. Render: serialize the layout to the requested formats
//
// Layouts and artifacts are cached through [cache.Cache]; parsing is cheap
// and always runs.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Expression: "(λ11)(λ11)",
//	    Notation:   "debruijn",
//	    Formats:    []string{"txt", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tromp/pkg/cache"
	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/tromp"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxTermSize bounds the number of nodes in a parsed term. Diagram
	// width grows with leaves and height with nesting, so very large terms
	// produce grids nobody can read.
	DefaultMaxTermSize = 20000

	// DefaultCellSize is the SVG edge length of one grid cell.
	DefaultCellSize = 8.0

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// MaxCellSize and MaxScale bound the output dimensions a request can ask for.
	MaxCellSize = 256.0
	MaxScale    = 16.0

	DefaultNotation  = "classic"
	DefaultPlacement = "stride"
	DefaultReach     = "enclosing"
)

// Visualization types.
const (
	VizTypeTromp = "tromp"
	VizTypeTree  = "tree"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeTromp

// Format constants for output formats.
const (
	FormatTXT  = "txt"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatTXT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// vizFormats lists the formats each visualization can produce.
var vizFormats = map[string][]string{
	VizTypeTromp: {FormatTXT, FormatSVG, FormatPNG, FormatPDF, FormatJSON},
	VizTypeTree:  {FormatDOT, FormatSVG, FormatPNG, FormatPDF},
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeTromp: true,
	VizTypeTree:  true,
}

// ContentTypes maps formats to HTTP content types.
var ContentTypes = map[string]string{
	FormatTXT:  "text/plain; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Expression  string `json:"expression"`
	Notation    string `json:"notation,omitempty"`
	MaxTermSize int    `json:"max_term_size,omitempty"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Layout options
	VizType   string `json:"viz_type,omitempty"`
	Placement string `json:"placement,omitempty"`
	Reach     string `json:"reach,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	CellSize float64  `json:"cell_size,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Color    string   `json:"color,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Term is the parsed term.
	Term lambda.Term

	// TermHash is the hash of the term's canonical de Bruijn text.
	TermHash string

	// Layout is the computed diagram or DOT source.
	Layout Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TermSize   int           `json:"term_size"`
	Leaves     int           `json:"leaves"`
	MaxDepth   int           `json:"max_depth"`
	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	ParseTime  time.Duration `json:"parse_ns"`
	LayoutTime time.Duration `json:"layout_ns"`
	RenderTime time.Duration `json:"render_ns"`
}

// String summarizes a result for logs.
func (s Stats) String() string {
	return fmt.Sprintf("size=%d leaves=%d depth=%d grid=%dx%d", s.TermSize, s.Leaves, s.MaxDepth, s.Width, s.Height)
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"` // Whether the layout came from cache
	RenderHit bool `json:"render_hit"` // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: txt, svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: tromp, tree)", vizType)
	}
	return nil
}

// ValidateFormatsFor checks that every format can be produced by vizType.
func ValidateFormatsFor(vizType string, formats []string) error {
	for _, f := range formats {
		if !slices.Contains(vizFormats[vizType], f) {
			return errors.New(errors.ErrCodeUnsupported,
				"format %q is not available for %s (use one of: %s)",
				f, vizType, strings.Join(vizFormats[vizType], ", "))
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks the expression and notation.
func (o *Options) ValidateForParse() error {
	if err := errors.ValidateExpression(o.Expression); err != nil {
		return err
	}
	if o.Notation == "" {
		o.Notation = DefaultNotation
	}
	n, err := lambda.ParseNotation(o.Notation)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidNotation, err, "invalid notation")
	}
	o.Notation = n.String()
	if o.MaxTermSize == 0 {
		o.MaxTermSize = DefaultMaxTermSize
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Placement == "" {
		o.Placement = DefaultPlacement
	}
	if o.Reach == "" {
		o.Reach = DefaultReach
	}
	if o.Notation == "" {
		o.Notation = DefaultNotation
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	placement, err := tromp.ParsePlacement(o.Placement)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPlacement, err, "invalid placement")
	}
	reach, err := tromp.ParseReach(o.Reach)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPlacement, err, "invalid reach")
	}
	// Canonical spellings keep "Traced" and "traced" on one cache entry.
	o.Placement, o.Reach = placement.String(), reach.String()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		if o.IsTree() {
			o.Formats = []string{FormatSVG}
		} else {
			o.Formats = []string{FormatTXT}
		}
	}
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := validateDimension("cell_size", o.CellSize, MaxCellSize); err != nil {
		return err
	}
	if err := validateDimension("scale", o.Scale, MaxScale); err != nil {
		return err
	}
	return ValidateFormatsFor(o.VizType, o.Formats)
}

func validateDimension(name string, v, limit float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v > limit {
		return errors.New(errors.ErrCodeInvalidInput, "%s must be a finite number in (0, %g], got %g", name, limit, v)
	}
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsTromp returns true if this is a Tromp diagram.
func (o *Options) IsTromp() bool {
	return o.VizType == "" || o.VizType == VizTypeTromp
}

// IsTree returns true if this is a syntax-tree view.
func (o *Options) IsTree() bool {
	return o.VizType == VizTypeTree
}

// NotationValue returns the parsed notation, defaulting to classic.
func (o *Options) NotationValue() lambda.Notation {
	n, _ := lambda.ParseNotation(o.Notation)
	return n
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	if o.IsTree() {
		return cache.LayoutKeyOpts{VizType: VizTypeTree, Labels: o.Notation}
	}
	return cache.LayoutKeyOpts{
		VizType:   VizTypeTromp,
		Placement: o.Placement,
		Reach:     o.Reach,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if o.IsTree() {
		if format == FormatPNG {
			k.Scale = o.Scale
		}
		return k
	}
	switch format {
	case FormatSVG, FormatPDF:
		k.CellSize, k.Color = o.CellSize, o.Color
	case FormatPNG:
		k.CellSize, k.Color, k.Scale = o.CellSize, o.Color, o.Scale
	}
	return k
}
