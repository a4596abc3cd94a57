package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"portfolio-machine/models"

	"github.com/shopspring/decimal"
)

// AlphaVantageService handles communication with Alpha Vantage API
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(apiKey string) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.alphavantage.co/query",
	}
}

// OverviewResponse represents the company overview response from Alpha Vantage.
// All numeric fields arrive as strings; absent values come as "" , "None" or "-".
type OverviewResponse struct {
	Symbol          string `json:"Symbol"`
	Name            string `json:"Name"`
	PERatio         string `json:"PERatio"`
	EPS             string `json:"EPS"`
	OperatingMargin string `json:"OperatingMarginTTM"`
	RevenueGrowth   string `json:"QuarterlyRevenueGrowthYOY"`
	Week52High      string `json:"52WeekHigh"`
	Week52Low       string `json:"52WeekLow"`
}

// GetOverview returns the metadata snapshot for a symbol. Unparseable or
// absent upstream values map to nil fields, never to zero.
func (s *AlphaVantageService) GetOverview(ctx context.Context, symbol string) (*models.InstrumentMetadata, error) {
	return WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*models.InstrumentMetadata, error) {
		var meta *models.InstrumentMetadata

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("function", "OVERVIEW")
			params.Set("symbol", symbol)
			params.Set("apikey", s.apiKey)

			resp, err := s.get(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to fetch overview: %w", err)
			}
			defer resp.Body.Close()

			var overview OverviewResponse
			if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
				return fmt.Errorf("failed to decode overview: %w", err)
			}

			if overview.Symbol == "" {
				return fmt.Errorf("no overview data for symbol %s", symbol)
			}

			meta = &models.InstrumentMetadata{
				Symbol:          symbol,
				PERatio:         parseOptionalFloat(overview.PERatio),
				TrailingEPS:     parseOptionalFloat(overview.EPS),
				OperatingMargin: parseOptionalFloat(overview.OperatingMargin),
				RevenueGrowth:   parseOptionalFloat(overview.RevenueGrowth),
				Week52High:      parseOptionalDecimal(overview.Week52High),
				Week52Low:       parseOptionalDecimal(overview.Week52Low),
				UpdatedAt:       time.Now(),
			}

			return nil
		})

		if err != nil {
			return nil, err
		}

		return meta, nil
	})
}

// QuoteResponse represents a quote from Alpha Vantage
type QuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

// GetQuotePrice returns the latest traded price for a symbol, or nil when
// the quote carries no price.
func (s *AlphaVantageService) GetQuotePrice(ctx context.Context, symbol string) (*decimal.Decimal, error) {
	return WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*decimal.Decimal, error) {
		params := url.Values{}
		params.Set("function", "GLOBAL_QUOTE")
		params.Set("symbol", symbol)
		params.Set("apikey", s.apiKey)

		resp, err := s.get(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quote: %w", err)
		}
		defer resp.Body.Close()

		var quoteResp QuoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
			return nil, fmt.Errorf("failed to decode quote: %w", err)
		}

		return parseOptionalDecimal(quoteResp.GlobalQuote.Price), nil
	})
}

// NewsResponse represents the news response from Alpha Vantage
type NewsResponse struct {
	Feed []struct {
		Title         string `json:"title"`
		TimePublished string `json:"time_published"`
	} `json:"feed"`
}

// GetHeadlines returns the most recent news headlines for a symbol,
// most-recent-first, at most limit entries.
func (s *AlphaVantageService) GetHeadlines(ctx context.Context, symbol string, limit int) ([]string, error) {
	return WithCircuitBreaker(ctx, BreakerAlphaVantage, func() ([]string, error) {
		params := url.Values{}
		params.Set("function", "NEWS_SENTIMENT")
		params.Set("tickers", symbol)
		params.Set("sort", "LATEST")
		params.Set("limit", strconv.Itoa(limit))
		params.Set("apikey", s.apiKey)

		resp, err := s.get(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch news: %w", err)
		}
		defer resp.Body.Close()

		var newsResp NewsResponse
		if err := json.NewDecoder(resp.Body).Decode(&newsResp); err != nil {
			return nil, fmt.Errorf("failed to decode news: %w", err)
		}

		headlines := make([]string, 0, limit)
		for _, item := range newsResp.Feed {
			if item.Title == "" {
				continue
			}
			headlines = append(headlines, item.Title)
			if len(headlines) == limit {
				break
			}
		}

		return headlines, nil
	})
}

// fxDailyBar is one day in the FX_DAILY time series
type fxDailyBar struct {
	Open  string `json:"1. open"`
	High  string `json:"2. high"`
	Low   string `json:"3. low"`
	Close string `json:"4. close"`
}

// FXDailyResponse represents the FX_DAILY response from Alpha Vantage
type FXDailyResponse struct {
	TimeSeries map[string]fxDailyBar `json:"Time Series FX (Daily)"`
}

// GetFXDaily returns the daily rate series for a currency pair,
// chronological, at most the last periods entries.
func (s *AlphaVantageService) GetFXDaily(ctx context.Context, base, quote string, periods int) ([]models.Bar, error) {
	return WithCircuitBreaker(ctx, BreakerAlphaVantage, func() ([]models.Bar, error) {
		var bars []models.Bar

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("function", "FX_DAILY")
			params.Set("from_symbol", base)
			params.Set("to_symbol", quote)
			params.Set("apikey", s.apiKey)

			resp, err := s.get(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to fetch fx series: %w", err)
			}
			defer resp.Body.Close()

			var fxResp FXDailyResponse
			if err := json.NewDecoder(resp.Body).Decode(&fxResp); err != nil {
				return fmt.Errorf("failed to decode fx series: %w", err)
			}

			if len(fxResp.TimeSeries) == 0 {
				return fmt.Errorf("no fx data for %s/%s", base, quote)
			}

			dates := make([]string, 0, len(fxResp.TimeSeries))
			for date := range fxResp.TimeSeries {
				dates = append(dates, date)
			}
			sort.Strings(dates)
			if len(dates) > periods {
				dates = dates[len(dates)-periods:]
			}

			bars = make([]models.Bar, 0, len(dates))
			for _, date := range dates {
				day := fxResp.TimeSeries[date]
				ts, err := time.Parse("2006-01-02", date)
				if err != nil {
					continue
				}
				open, _ := decimal.NewFromString(day.Open)
				high, _ := decimal.NewFromString(day.High)
				low, _ := decimal.NewFromString(day.Low)
				closePrice, _ := decimal.NewFromString(day.Close)
				bars = append(bars, models.Bar{
					Symbol:    base + "/" + quote,
					Timestamp: ts,
					Open:      open,
					High:      high,
					Low:       low,
					Close:     closePrice,
				})
			}

			return nil
		})

		if err != nil {
			return nil, err
		}

		return bars, nil
	})
}

func (s *AlphaVantageService) get(ctx context.Context, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}
	return resp, nil
}

// parseOptionalFloat maps Alpha Vantage string numerics to an optional
// float. "" / "None" / "-" and parse failures all mean absent.
func parseOptionalFloat(s string) *float64 {
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptionalDecimal(s string) *decimal.Decimal {
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &v
}
