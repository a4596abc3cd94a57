package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TechnicalProfile holds derived indicators for one instrument.
// A nil field means the fetched series was too short to compute it;
// consumers treat nil as "condition not satisfied", never as zero.
type TechnicalProfile struct {
	MA50        *decimal.Decimal `json:"ma50,omitempty"`
	MA200       *decimal.Decimal `json:"ma200,omitempty"`
	AllTimeHigh *decimal.Decimal `json:"ath,omitempty"`
	AllTimeLow  *decimal.Decimal `json:"atl,omitempty"`
	Week52High  *decimal.Decimal `json:"h52,omitempty"`
	Week52Low   *decimal.Decimal `json:"l52,omitempty"`
	StopLoss    *decimal.Decimal `json:"stop_loss,omitempty"`
}

// GeoStatus categorizes the geopolitical risk score.
type GeoStatus string

const (
	GeoStatusStable   GeoStatus = "STABLE"
	GeoStatusElevated GeoStatus = "ELEVATED"
	GeoStatusCritical GeoStatus = "CRITICAL"
)

// RiskAssessment is the headline-derived geopolitical risk for one instrument.
type RiskAssessment struct {
	Score  int       `json:"score"`
	Status GeoStatus `json:"status"`
}

// Action is the discrete recommendation for an instrument.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionHold Action = "HOLD"
	ActionSell Action = "SELL"
)

// EarningsStatus compares trailing EPS against the forward estimate.
// Unknown means at least one side was absent; absence is never treated
// as meeting expectations.
type EarningsStatus string

const (
	EarningsExceeded EarningsStatus = "EXCEEDED"
	EarningsMeets    EarningsStatus = "MEETS"
	EarningsUnknown  EarningsStatus = "UNKNOWN"
)

// FundamentalsSummary is the subset of metadata surfaced in a snapshot.
type FundamentalsSummary struct {
	PERatio        *float64         `json:"pe,omitempty"`
	TrailingEPS    *float64         `json:"eps,omitempty"`
	TotalDebt      *decimal.Decimal `json:"debt,omitempty"`
	FreeCashFlow   *decimal.Decimal `json:"cash_flow,omitempty"`
	EarningsStatus EarningsStatus   `json:"earnings_status"`
}

// InstrumentSnapshot aggregates everything derived for one instrument.
type InstrumentSnapshot struct {
	Ticker           string              `json:"ticker"`
	AssetType        string              `json:"asset_type"`
	Sentiment        SentimentLabel      `json:"sentiment"`
	CurrentPrice     *decimal.Decimal    `json:"current_price,omitempty"`
	Recommendation   Action              `json:"recommendation"`
	Insight          string              `json:"ai_insight"`
	StrengthWeakness string              `json:"strength_weakness"`
	Technical        TechnicalProfile    `json:"tech"`
	Fundamentals     FundamentalsSummary `json:"fundamentals"`
	Risk             RiskAssessment      `json:"risk"`
	EarningsDate     string              `json:"earnings_date"`
	ChartData        []decimal.Decimal   `json:"chart_data"`
	ChartLabels      []string            `json:"chart_labels"`
}

// InstrumentFailure marks an instrument whose fetch or derivation failed.
// Failed instruments are excluded from the portfolio list and the earnings
// calendar but never abort the rest of the snapshot.
type InstrumentFailure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// CurrencyAdvice is the discrete conversion advisory.
type CurrencyAdvice string

const (
	AdviceWait       CurrencyAdvice = "WAIT"
	AdviceConvertNow CurrencyAdvice = "CONVERT_NOW"
)

// CurrencyAdvisory is the moving-average crossover signal for the
// portfolio's base currency pair.
type CurrencyAdvisory struct {
	Pair   string          `json:"pair"`
	Rate   decimal.Decimal `json:"rate"`
	SMA5   decimal.Decimal `json:"sma5"`
	SMA20  decimal.Decimal `json:"sma20"`
	Advice CurrencyAdvice  `json:"advice"`
	Trend  string          `json:"trend"`
}

// EarningsEvent is one entry in the 30-day earnings calendar.
type EarningsEvent struct {
	Ticker   string `json:"ticker"`
	Date     string `json:"date"`
	DaysLeft int    `json:"days_left"`
}

// PortfolioSnapshot is the full per-user snapshot response. Portfolio order
// equals subscription order.
type PortfolioSnapshot struct {
	ID               uuid.UUID            `json:"id"`
	UserID           string               `json:"user_id"`
	Portfolio        []InstrumentSnapshot `json:"portfolio"`
	Failed           []InstrumentFailure  `json:"failed,omitempty"`
	Currency         *CurrencyAdvisory    `json:"currency,omitempty"`
	EarningsCalendar []EarningsEvent      `json:"earnings_calendar_30d"`
	ServerTime       time.Time            `json:"server_time"`
	LastSync         string               `json:"last_sync"`
}
