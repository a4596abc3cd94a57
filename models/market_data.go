package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents OHLC price data for one trading day
type Bar struct {
	Symbol    string          `json:"symbol"`
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

// InstrumentMetadata is a point-in-time fundamentals snapshot for one symbol.
// Every numeric field is a pointer: nil means the upstream source had no
// value, which must never be conflated with a legitimate zero.
type InstrumentMetadata struct {
	Symbol          string           `json:"symbol"`
	PERatio         *float64         `json:"pe_ratio,omitempty"`
	TrailingEPS     *float64         `json:"trailing_eps,omitempty"`
	ForwardEPS      *float64         `json:"forward_eps,omitempty"`
	OperatingMargin *float64         `json:"operating_margin,omitempty"`
	RevenueGrowth   *float64         `json:"revenue_growth,omitempty"`
	CurrentPrice    *decimal.Decimal `json:"current_price,omitempty"`
	Week52High      *decimal.Decimal `json:"week52_high,omitempty"`
	Week52Low       *decimal.Decimal `json:"week52_low,omitempty"`
	FreeCashFlow    *decimal.Decimal `json:"free_cash_flow,omitempty"`
	TotalDebt       *decimal.Decimal `json:"total_debt,omitempty"`
	NextEarnings    *time.Time       `json:"next_earnings,omitempty"`
	Headlines       []string         `json:"headlines,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// InstrumentData is what the provider adapter returns for one symbol:
// the fetched price series plus its metadata snapshot.
type InstrumentData struct {
	Series   []Bar
	Metadata *InstrumentMetadata
}
