package plot

import "errors"

// Sentinel errors for plot specs.
var (
	ErrInvalidSpec  = errors.New("invalid plot JSON")
	ErrMissingData  = errors.New("plot data must include a 'data' array")
	ErrUnknownChart = errors.New("unknown chart type")
	ErrShortSeries  = errors.New("series lengths differ")
)
