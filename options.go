package xlmedia

import (
	"log/slog"

	"github.com/google/uuid"
)

// Options holds configuration for a Workbook and its worksheets.
type Options struct {
	rangeDecoder  RangeDecoder
	newID         func() string
	logger        *slog.Logger
	defaultEditAs EditAs
	evaluator     ConditionEvaluator
}

func defaultOptions() *Options {
	return &Options{
		rangeDecoder:  A1Decoder{},
		newID:         uuid.NewString,
		logger:        slog.New(slog.DiscardHandler),
		defaultEditAs: OneCell,
		evaluator:     NewConditionEvaluator(),
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a Workbook.
type Option func(*Options)

// WithRangeDecoder sets the decoder for textual ranges (default: A1Decoder).
func WithRangeDecoder(dec RangeDecoder) Option {
	return func(o *Options) {
		if dec != nil {
			o.rangeDecoder = dec
		}
	}
}

// WithIDGenerator sets the source of sheetImageId candidates (default: random UUIDs).
// Candidates already issued on a worksheet are discarded and the generator is asked again.
func WithIDGenerator(fn func() string) Option {
	return func(o *Options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithLogger sets the logger for registry and placement events (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDefaultEditAs sets the mode used for structured ranges that give an
// extent but no editAs (default: oneCell). Ranges with a br default to twoCell.
func WithDefaultEditAs(e EditAs) Option {
	return func(o *Options) { o.defaultEditAs = e }
}

// WithConditionEvaluator sets the evaluator behind Worksheet.Query (default:
// an expr-lang evaluator with a compiled-program cache owned by the workbook).
func WithConditionEvaluator(ev ConditionEvaluator) Option {
	return func(o *Options) {
		if ev != nil {
			o.evaluator = ev
		}
	}
}
