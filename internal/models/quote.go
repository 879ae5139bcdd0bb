package models

import "fmt"

// StockQuote holds the market snapshot of one ticker. Price is always
// present; the remaining fields are nil when the market API omits them.
type StockQuote struct {
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	PERatio   *float64 `json:"pe_ratio,omitempty"`
	High52    *float64 `json:"high_52w,omitempty"`
	Low52     *float64 `json:"low_52w,omitempty"`
}

// Summary renders the quote as a single prompt line, e.g.
//
//	Apple Inc. (AAPL): Price: $189.45, Market Cap: $2950.00B, P/E Ratio: 29.71, 52-Week High: $199.62, 52-Week Low: $164.08
func (q *StockQuote) Summary() string {
	name := q.Name
	if name == "" {
		name = q.Ticker
	}
	return fmt.Sprintf("%s (%s): Price: $%.2f, Market Cap: %s, P/E Ratio: %s, 52-Week High: %s, 52-Week Low: %s",
		name, q.Ticker, q.Price,
		formatBillions(q.MarketCap),
		formatRatio(q.PERatio),
		formatDollars(q.High52),
		formatDollars(q.Low52),
	)
}

func formatBillions(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2fB", *v/1e9)
}

func formatRatio(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatDollars(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *v)
}
