// Package paper simulates trades against a virtual portfolio. Cash,
// positions and trade history live in a JSON snapshot so the portfolio
// survives restarts. No real orders are ever placed.
package paper

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"scryptbot/internal/interfaces"
	"scryptbot/internal/logger"
	"scryptbot/internal/storage"
	"scryptbot/internal/types"
)

// Sentiment thresholds for deriving a trading action.
const (
	buyThreshold  = 0.1
	sellThreshold = -0.1
)

// Portfolio is the persisted snapshot of the paper account.
type Portfolio struct {
	Cash      float64                   `json:"cash"`
	Positions map[string]types.Position `json:"positions"`
	History   []types.TradeRecord       `json:"history"`
}

// Params configures an Engine.
type Params struct {
	Market interfaces.MarketData
	Store  *storage.Store

	StartingCash float64
	CashReserve  float64
	Blacklist    []string
	RealMoney    bool
	Persist      bool
}

// Engine executes paper trades derived from company sentiment.
type Engine struct {
	p         Params
	blacklist map[string]struct{}
	portfolio Portfolio
}

// NewEngine builds an Engine, restoring a persisted portfolio when one
// exists and Persist is enabled, otherwise starting fresh.
func NewEngine(p Params) *Engine {
	if p.StartingCash <= 0 {
		p.StartingCash = 10000
	}
	if p.CashReserve < 0 {
		p.CashReserve = 0
	}

	e := &Engine{
		p:         p,
		blacklist: make(map[string]struct{}, len(p.Blacklist)),
		portfolio: Portfolio{
			Cash:      p.StartingCash,
			Positions: make(map[string]types.Position),
		},
	}
	for _, t := range p.Blacklist {
		e.blacklist[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}

	if p.Persist && p.Store != nil {
		var saved Portfolio
		if p.Store.LoadPortfolio(&saved) && saved.Positions != nil {
			e.portfolio = saved
		}
	}
	return e
}

func (e *Engine) save(ctx context.Context) {
	if !e.p.Persist || e.p.Store == nil {
		return
	}
	if err := e.p.Store.SavePortfolio(e.portfolio); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist portfolio", err)
	}
}

func (e *Engine) blacklisted(ticker string) bool {
	_, ok := e.blacklist[ticker]
	return ok
}

// Strategize derives one strategy per company from its sentiment.
// Blacklisted tickers always hold.
func (e *Engine) Strategize(companies []types.Company) []types.Strategy {
	out := make([]types.Strategy, 0, len(companies))
	for _, c := range companies {
		ticker := strings.ToUpper(strings.TrimSpace(c.Ticker))
		if ticker == "" {
			continue
		}
		s := types.Strategy{Company: c.Name, Ticker: ticker, Sentiment: c.Sentiment}
		switch {
		case e.blacklisted(ticker):
			s.Action = "hold"
			s.Reason = "ticker is blacklisted"
		case c.Sentiment > buyThreshold:
			s.Action = "buy"
			s.Reason = fmt.Sprintf("positive sentiment %.2f", c.Sentiment)
		case c.Sentiment < sellThreshold:
			s.Action = "sell"
			s.Reason = fmt.Sprintf("negative sentiment %.2f", c.Sentiment)
		default:
			s.Action = "hold"
			s.Reason = fmt.Sprintf("neutral sentiment %.2f", c.Sentiment)
		}
		out = append(out, s)
	}
	return out
}

// Apply derives strategies from the companies and executes the non-hold
// ones, splitting the tradable cash equally between them. Each strategy
// executes independently; one failure does not stop the rest. Returns
// true when at least one trade executed.
func (e *Engine) Apply(ctx context.Context, companies []types.Company) bool {
	if e.p.RealMoney {
		logger.Warn(ctx, "Real-money flag is set but live trading is not supported; simulating only")
	}

	strategies := e.Strategize(companies)

	active := 0
	for _, s := range strategies {
		if s.Action != "hold" {
			active++
		}
	}
	if active == 0 {
		logger.Info(ctx, "No actionable strategies", "companies", len(companies))
		return false
	}

	tradable := e.portfolio.Cash - e.p.CashReserve
	if tradable < 0 {
		tradable = 0
	}
	budget := tradable / float64(active)

	executed := false
	for _, s := range strategies {
		switch s.Action {
		case "buy":
			if e.buy(ctx, s, budget) {
				executed = true
			}
		case "sell":
			if e.sell(ctx, s) {
				executed = true
			}
		default:
			logger.Debug(ctx, "Holding", "ticker", s.Ticker, "reason", s.Reason)
		}
	}
	return executed
}

func (e *Engine) buy(ctx context.Context, s types.Strategy, budget float64) bool {
	price, ok := e.p.Market.CurrentPrice(ctx, s.Ticker)
	if !ok || price <= 0 {
		logger.Warn(ctx, "No price for buy, skipping", "ticker", s.Ticker)
		return false
	}

	qty := int(math.Floor(budget / price))
	if qty <= 0 {
		logger.Info(ctx, "Budget too small to buy a single share",
			"ticker", s.Ticker, "budget", budget, "price", price)
		return false
	}
	cost := float64(qty) * price
	if cost > e.portfolio.Cash {
		logger.Warn(ctx, "Insufficient cash for buy",
			"ticker", s.Ticker, "cost", cost, "cash", e.portfolio.Cash)
		return false
	}

	e.portfolio.Cash -= cost
	pos := e.portfolio.Positions[s.Ticker]
	pos.Quantity += qty
	pos.Cost += cost
	pos.AvgPrice = pos.Cost / float64(pos.Quantity)
	e.portfolio.Positions[s.Ticker] = pos

	e.record(ctx, s, "buy", qty, price, cost)
	return true
}

func (e *Engine) sell(ctx context.Context, s types.Strategy) bool {
	pos, held := e.portfolio.Positions[s.Ticker]
	if !held {
		// Shorting is not modeled; a sell with no position is a
		// successful no-op so the caller's flow is unaffected.
		logger.Info(ctx, "Sell signal without a position, simulated short skipped", "ticker", s.Ticker)
		return true
	}

	price, ok := e.p.Market.CurrentPrice(ctx, s.Ticker)
	if !ok || price <= 0 {
		logger.Warn(ctx, "No price for sell, skipping", "ticker", s.Ticker)
		return false
	}

	proceeds := float64(pos.Quantity) * price
	e.portfolio.Cash += proceeds
	delete(e.portfolio.Positions, s.Ticker)

	e.record(ctx, s, "sell", pos.Quantity, price, proceeds)
	return true
}

func (e *Engine) record(ctx context.Context, s types.Strategy, action string, qty int, price, value float64) {
	rec := types.TradeRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Ticker:    s.Ticker,
		Action:    action,
		Quantity:  qty,
		Price:     price,
		Value:     value,
		CashAfter: e.portfolio.Cash,
		Sentiment: s.Sentiment,
	}
	e.portfolio.History = append(e.portfolio.History, rec)
	e.save(ctx)

	logger.Trade(ctx, s.Ticker, action, qty, price, rec.ID,
		"value", value, "cash_after", e.portfolio.Cash, "reason", s.Reason)
}

// Cash returns the current cash balance.
func (e *Engine) Cash() float64 { return e.portfolio.Cash }

// Position returns the held position for ticker, if any.
func (e *Engine) Position(ticker string) (types.Position, bool) {
	pos, ok := e.portfolio.Positions[strings.ToUpper(ticker)]
	return pos, ok
}

// History returns the trade history, oldest first.
func (e *Engine) History() []types.TradeRecord {
	out := make([]types.TradeRecord, len(e.portfolio.History))
	copy(out, e.portfolio.History)
	return out
}

// Value computes cash plus the marked-to-market value of every
// position. Positions without a live price are valued at cost.
func (e *Engine) Value(ctx context.Context) float64 {
	total := e.portfolio.Cash
	for ticker, pos := range e.portfolio.Positions {
		if price, ok := e.p.Market.CurrentPrice(ctx, ticker); ok && price > 0 {
			total += float64(pos.Quantity) * price
		} else {
			total += pos.Cost
		}
	}
	return total
}

// Summary returns a snapshot for status reporting.
func (e *Engine) Summary(ctx context.Context) map[string]any {
	return map[string]any{
		"cash":      e.portfolio.Cash,
		"positions": e.portfolio.Positions,
		"trades":    len(e.portfolio.History),
		"value":     e.Value(ctx),
	}
}
