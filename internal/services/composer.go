package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"fingpt-backend/internal/models"
	"fingpt-backend/internal/store"
)

const systemPersona = `You are a helpful AI assistant named "FinGPT". Provide concise responses that are only related to finance. You ONLY respond to prompts on topics related to finance.`

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// MarketLookup is the subset of MarketService the composer needs; small
// enough to stub in tests.
type MarketLookup interface {
	Quote(ctx context.Context, ticker string) (*models.StockQuote, error)
}

// Composer assembles the message set sent to the model: exactly one system
// message and one user message. Prior turns are deliberately not resent as
// history; only the newest user message reaches the model.
type Composer struct {
	store  *store.ContextStore
	market MarketLookup
}

func NewComposer(contextStore *store.ContextStore, market MarketLookup) *Composer {
	return &Composer{store: contextStore, market: market}
}

// Compose builds the prompt for one user message. It never fails: missing
// context files degrade to placeholders and per-ticker lookup failures are
// inlined as error strings.
func (c *Composer) Compose(ctx context.Context, userMessage string) []models.ChatMessage {
	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: c.systemMessage()},
		{Role: models.RoleUser, Content: c.userMessage(ctx, userMessage)},
	}
}

func (c *Composer) systemMessage() string {
	tune := c.store.TuneText()
	if tune == "" {
		tune = store.NoContextPlaceholder
	}
	scores := c.store.ScoreTable()
	if scores == "" {
		scores = store.NoScorePlaceholder
	}

	var b strings.Builder
	b.WriteString(systemPersona)
	b.WriteString("\n\nReference notes:\n")
	b.WriteString(tune)
	b.WriteString("\n\nScore table:\n")
	b.WriteString(scores)
	return b.String()
}

func (c *Composer) userMessage(ctx context.Context, message string) string {
	if !wantsStockData(message) {
		return message
	}

	tickers := ExtractTickers(message)
	if len(tickers) == 0 {
		return message
	}

	var lines []string
	for _, ticker := range tickers {
		quote, err := c.market.Quote(ctx, ticker)
		if err != nil {
			log.Printf("market lookup failed for %s: %v", ticker, err)
			lines = append(lines, fmt.Sprintf("Unable to fetch information for %s. Error: %v", ticker, err))
			continue
		}
		lines = append(lines, quote.Summary())
	}

	return message + "\n\nStock information:\n" + strings.Join(lines, "\n")
}

// wantsStockData reports whether the message asks for quote augmentation:
// the token "stock" (case-insensitive) or a "$" anywhere in the text.
func wantsStockData(message string) bool {
	return strings.Contains(strings.ToLower(message), "stock") || strings.Contains(message, "$")
}

// ExtractTickers returns the lookup candidates in a message: whitespace
// delimited tokens that, after stripping "$" and surrounding punctuation,
// match ^[A-Z]{1,5}$. Plain lowercase words never qualify.
func ExtractTickers(message string) []string {
	var tickers []string
	for _, field := range strings.Fields(message) {
		token := strings.Trim(field, "$.,!?:;()[]\"'")
		if tickerPattern.MatchString(token) {
			tickers = append(tickers, token)
		}
	}
	return tickers
}
