package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fingpt-backend/internal/models"
)

// MarketService fetches quote snapshots from a Yahoo-style quoteSummary
// endpoint. Quotes are fetched fresh per request and never cached.
type MarketService struct {
	baseURL string
	client  *http.Client
}

func NewMarketService(baseURL string) *MarketService {
	return &MarketService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type quoteField struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName           string     `json:"longName"`
				RegularMarketPrice quoteField `json:"regularMarketPrice"`
				MarketCap          quoteField `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE       quoteField `json:"trailingPE"`
				FiftyTwoWeekHigh quoteField `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  quoteField `json:"fiftyTwoWeekLow"`
			} `json:"summaryDetail"`
		} `json:"result"`
		Error json.RawMessage `json:"error"`
	} `json:"quoteSummary"`
}

// Quote fetches a snapshot for one ticker. Price is required; every other
// missing field is left nil and renders as "N/A" downstream.
func (s *MarketService) Quote(ctx context.Context, ticker string) (*models.StockQuote, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		s.baseURL, url.PathEscape(ticker), url.QueryEscape("price,summaryDetail"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "fingpt-backend/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote provider returned status %d for %s", resp.StatusCode, ticker)
	}

	var body quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	if len(body.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	r := body.QuoteSummary.Result[0]
	if r.Price.RegularMarketPrice.Raw == nil {
		return nil, fmt.Errorf("no price available for %s", ticker)
	}

	return &models.StockQuote{
		Ticker:    ticker,
		Name:      r.Price.LongName,
		Price:     *r.Price.RegularMarketPrice.Raw,
		MarketCap: r.Price.MarketCap.Raw,
		PERatio:   r.SummaryDetail.TrailingPE.Raw,
		High52:    r.SummaryDetail.FiftyTwoWeekHigh.Raw,
		Low52:     r.SummaryDetail.FiftyTwoWeekLow.Raw,
	}, nil
}
