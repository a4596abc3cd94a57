package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"portfolio-machine/models"

	"github.com/shopspring/decimal"
)

// FMPService handles communication with Financial Modeling Prep API
type FMPService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFMPService creates a new FMPService instance
func NewFMPService(apiKey string) *FMPService {
	return &FMPService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://financialmodelingprep.com/api/v3",
	}
}

// fmpEarningsResponse represents one entry from the FMP earnings calendar
type fmpEarningsResponse struct {
	Date         string   `json:"date"`
	Symbol       string   `json:"symbol"`
	EPS          *float64 `json:"eps"`
	EPSEstimated *float64 `json:"epsEstimated"`
}

// fmpBalanceSheetResponse represents the latest balance sheet statement
type fmpBalanceSheetResponse struct {
	Symbol    string `json:"symbol"`
	Date      string `json:"date"`
	TotalDebt int64  `json:"totalDebt"`
}

// fmpCashFlowResponse represents the latest cash flow statement
type fmpCashFlowResponse struct {
	Symbol       string `json:"symbol"`
	Date         string `json:"date"`
	FreeCashFlow int64  `json:"freeCashFlow"`
}

// GetUpcomingEarnings returns the next scheduled earnings event for a
// symbol. A symbol with no future event returns an outlook with both
// fields nil, not an error.
func (s *FMPService) GetUpcomingEarnings(ctx context.Context, symbol string) (*EarningsOutlook, error) {
	return WithCircuitBreaker(ctx, BreakerFMP, func() (*EarningsOutlook, error) {
		var outlook *EarningsOutlook

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			reqURL := fmt.Sprintf("%s/historical/earning_calendar/%s?apikey=%s",
				s.baseURL, url.PathEscape(symbol), s.apiKey)

			var calendar []fmpEarningsResponse
			if err := s.getJSON(ctx, reqURL, &calendar); err != nil {
				return fmt.Errorf("failed to fetch earnings calendar: %w", err)
			}

			today := time.Now().UTC().Truncate(24 * time.Hour)

			upcoming := make([]fmpEarningsResponse, 0, len(calendar))
			for _, entry := range calendar {
				date, err := time.Parse("2006-01-02", entry.Date)
				if err != nil {
					continue
				}
				if !date.Before(today) {
					upcoming = append(upcoming, entry)
				}
			}

			outlook = &EarningsOutlook{}
			if len(upcoming) == 0 {
				return nil
			}

			sort.Slice(upcoming, func(i, j int) bool {
				return upcoming[i].Date < upcoming[j].Date
			})

			next := upcoming[0]
			date, _ := time.Parse("2006-01-02", next.Date)
			outlook.NextEarnings = &date
			outlook.EstimatedEPS = next.EPSEstimated

			return nil
		})

		if err != nil {
			return nil, err
		}

		return outlook, nil
	})
}

// GetBalanceSheetHighlights returns total debt from the latest annual
// balance sheet statement.
func (s *FMPService) GetBalanceSheetHighlights(ctx context.Context, symbol string) (*models.InstrumentMetadata, error) {
	return WithCircuitBreaker(ctx, BreakerFMP, func() (*models.InstrumentMetadata, error) {
		reqURL := fmt.Sprintf("%s/balance-sheet-statement/%s?limit=1&apikey=%s",
			s.baseURL, url.PathEscape(symbol), s.apiKey)

		var statements []fmpBalanceSheetResponse
		if err := s.getJSON(ctx, reqURL, &statements); err != nil {
			return nil, fmt.Errorf("failed to fetch balance sheet: %w", err)
		}

		meta := &models.InstrumentMetadata{Symbol: symbol, UpdatedAt: time.Now()}
		if len(statements) > 0 {
			debt := decimal.NewFromInt(statements[0].TotalDebt)
			meta.TotalDebt = &debt
		}

		return meta, nil
	})
}

// GetCashFlowHighlights returns free cash flow from the latest annual
// cash flow statement.
func (s *FMPService) GetCashFlowHighlights(ctx context.Context, symbol string) (*models.InstrumentMetadata, error) {
	return WithCircuitBreaker(ctx, BreakerFMP, func() (*models.InstrumentMetadata, error) {
		reqURL := fmt.Sprintf("%s/cash-flow-statement/%s?limit=1&apikey=%s",
			s.baseURL, url.PathEscape(symbol), s.apiKey)

		var statements []fmpCashFlowResponse
		if err := s.getJSON(ctx, reqURL, &statements); err != nil {
			return nil, fmt.Errorf("failed to fetch cash flow statement: %w", err)
		}

		meta := &models.InstrumentMetadata{Symbol: symbol, UpdatedAt: time.Now()}
		if len(statements) > 0 {
			fcf := decimal.NewFromInt(statements[0].FreeCashFlow)
			meta.FreeCashFlow = &fcf
		}

		return meta, nil
	})
}

func (s *FMPService) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FMP API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
