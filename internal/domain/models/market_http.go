package models

// Requests for market-data HTTP endpoints. Defined in domain for consistency and reuse.

type ResolveRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type CandlesRequest struct {
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
	Timeframe string `query:"tf" json:"tf" default:"1d" validate:"oneof=5m 15m 1h 1d 1w 1mo"`
	From      string `query:"from" json:"from,omitempty"`
	To        string `query:"to" json:"to,omitempty"`
}

type ExpectedMoveRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	Timeframe  string `query:"tf" json:"tf" default:"1w" validate:"oneof=1d 1w 1mo custom"`
	CustomDays int    `query:"days" json:"days" default:"0" validate:"gte=0,lte=252"`
}

type ExpectedMoveBatchRequest struct {
	Symbols    []string `json:"symbols" validate:"required,min=1,max=50,dive,required"`
	Timeframe  string   `json:"tf" default:"1w" validate:"oneof=1d 1w 1mo custom"`
	CustomDays int      `json:"days" default:"0" validate:"gte=0,lte=252"`
}
