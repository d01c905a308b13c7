package models

import "errors"

// Resolution and request errors (400-class): the input never reaches the
// provider.
var (
	ErrInvalidSymbolInput = errors.New("invalid symbol input")
	ErrUnsupportedSymbol  = errors.New("unsupported symbol")
	ErrInvalidRange       = errors.New("invalid date range")
)

// Fetch errors. Callers distinguish "nothing there" (404-class) from
// "provider degraded" (503-class) from "response unusable".
var (
	ErrNoData              = errors.New("no data for symbol")
	ErrUpstreamUnavailable = errors.New("market data provider unavailable")
	ErrInvalidResponse     = errors.New("invalid provider response")
)
